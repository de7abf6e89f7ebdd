// Copyright (c) 2025 BVK Chaitanya

package coinex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bvk/coinmonitor/exchange"
	"github.com/shopspring/decimal"
)

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/v2")
	if err != nil {
		t.Fatal(err)
	}
	opts := &Options{
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
		RetryInterval:     time.Millisecond,
	}
	a, err := NewAdapter(&Credentials{Key: "testkey", Secret: "testsecret"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestGetCoinPrice(t *testing.T) {
	var ncalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/spot/ticker", func(w http.ResponseWriter, r *http.Request) {
		if ncalls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		switch r.URL.Query().Get("market") {
		case "BTCUSDT":
			io.WriteString(w, `{"code":0,"message":"OK","data":[{"market":"BTCUSDT","last":"64123.5"}]}`)
		default:
			io.WriteString(w, `{"code":3639,"message":"market not found","data":null}`)
		}
	})
	a := newTestAdapter(t, mux)

	ctx := context.Background()
	price, err := a.GetCoinPrice(ctx, "btc", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.RequireFromString("64123.5"); !price.Equal(want) {
		t.Fatalf("want %s, got %s", want, price)
	}
	if n := ncalls.Load(); n != 2 {
		t.Fatalf("want one retry after throttling, got %d calls", n)
	}

	_, err = a.GetCoinPrice(ctx, "XYZ", "USDT")
	if !errors.Is(err, exchange.ErrPriceUnavailable) {
		t.Fatalf("want price unavailable error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 3639 {
		t.Fatalf("want api error with code 3639, got %v", err)
	}
}

func TestCreateMarketOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/spot/order", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-COINEX-KEY") != "testkey" || len(r.Header.Get("X-COINEX-SIGN")) != 64 || len(r.Header.Get("X-COINEX-TIMESTAMP")) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		req := new(CreateOrderRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Side == "buy" {
			io.WriteString(w, `{"code":3109,"message":"balance not enough","data":{}}`)
			return
		}
		if req.Market != "ETHUSDT" || req.OrderType != "market" || len(req.ClientOrderID) != 32 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, `{"code":0,"message":"OK","data":{"order_id":13400,"market":"ETHUSDT","side":"sell","type":"market"}}`)
	})
	a := newTestAdapter(t, mux)

	ctx := context.Background()
	req := &exchange.OrderRequest{
		PairID:   "test",
		Coin:     "ETH",
		BaseCoin: "USD",
		Amount:   decimal.NewFromInt(1),
	}
	id, err := a.SellCoin(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if id != "13400" {
		t.Fatalf("want order id 13400, got %q", id)
	}

	if _, err := a.BuyCoin(ctx, req); !errors.Is(err, exchange.ErrOrderRejected) {
		t.Fatalf("want order rejected error, got %v", err)
	}

	req.Amount = decimal.Zero
	if _, err := a.SellCoin(ctx, req); !errors.Is(err, exchange.ErrOrderRejected) {
		t.Fatalf("want order rejected for zero amount, got %v", err)
	}
}

func TestOrderSubmissionFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/spot/order", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	a := newTestAdapter(t, mux)

	req := &exchange.OrderRequest{Coin: "ETH", BaseCoin: "USDT", Amount: decimal.NewFromInt(2)}
	if _, err := a.SellCoin(context.Background(), req); !errors.Is(err, exchange.ErrOrderSubmission) {
		t.Fatalf("want order submission error, got %v", err)
	}
}

func TestSign(t *testing.T) {
	c, err := New("key", "secret", nil)
	if err != nil {
		t.Fatal(err)
	}
	u := c.endpoint("/spot/ticker", url.Values{"market": []string{"BTCUSDT"}})
	a := c.sign(http.MethodGet, u, "", "1700000000000")
	b := c.sign(http.MethodGet, u, "", "1700000000001")
	if len(a) != 64 || a == b {
		t.Fatalf("signatures must be 64 hex chars and depend on the timestamp")
	}
	if u.String() != "https://api.coinex.com/v2/spot/ticker?market=BTCUSDT" {
		t.Fatalf("unexpected endpoint url %s", u)
	}
}
