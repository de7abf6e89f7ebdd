// Copyright (c) 2025 BVK Chaitanya

package paper

import (
	"context"
	"errors"
	"testing"

	"github.com/bvk/coinmonitor/exchange"
	"github.com/shopspring/decimal"
)

func TestPaperExchange(t *testing.T) {
	ctx := context.Background()

	priceFunc := func(ctx context.Context, coin, base string) (decimal.Decimal, error) {
		if coin == "ETH" {
			return decimal.NewFromInt(3000), nil
		}
		return decimal.Zero, errors.New("unknown coin")
	}
	x := New(priceFunc)
	x.SetPrice("btc", "usd", decimal.NewFromInt(60000))

	if p, err := x.GetCoinPrice(ctx, "BTC", "USD"); err != nil || !p.Equal(decimal.NewFromInt(60000)) {
		t.Fatalf("want 60000, got %s (%v)", p, err)
	}
	if p, err := x.GetCoinPrice(ctx, "ETH", "USD"); err != nil || !p.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("want 3000, got %s (%v)", p, err)
	}
	if _, err := x.GetCoinPrice(ctx, "XYZ", "USD"); !errors.Is(err, exchange.ErrPriceUnavailable) {
		t.Fatalf("want price unavailable, got %v", err)
	}

	req := &exchange.OrderRequest{Coin: "ETH", BaseCoin: "USD", Amount: decimal.NewFromInt(2)}
	id, err := x.SellCoin(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	fills := x.Fills()
	if len(fills) != 1 || fills[0].OrderID != id || !fills[0].Price.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("unexpected fills %#v", fills)
	}

	req = &exchange.OrderRequest{Coin: "XYZ", BaseCoin: "USD", Amount: decimal.NewFromInt(1)}
	if _, err := x.BuyCoin(ctx, req); !errors.Is(err, exchange.ErrOrderRejected) {
		t.Fatalf("want order rejected, got %v", err)
	}
}
