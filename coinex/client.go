// Copyright (c) 2025 BVK Chaitanya

package coinex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/coinmonitor/ctxutil"
	"golang.org/x/time/rate"
)

// Client is a minimal CoinEx REST api client for the spot markets.
type Client struct {
	opts Options

	client http.Client

	limiter *rate.Limiter

	key, secret string
}

// New returns a new client instance. Key and secret are only required for
// the private apis.
func New(key, secret string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	c := &Client{
		opts:    *opts,
		key:     key,
		secret:  secret,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		client: http.Client{
			Timeout: opts.HttpClientTimeout,
		},
	}
	return c, nil
}

// Close releases resources and destroys the client instance.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) endpoint(p string, values url.Values) *url.URL {
	return &url.URL{
		Scheme:   c.opts.BaseURL.Scheme,
		Host:     c.opts.BaseURL.Host,
		Path:     path.Join(c.opts.BaseURL.Path, p),
		RawQuery: values.Encode(),
	}
}

// GetMarketInfo returns the ticker information for a market, eg, BTCUSDT.
func (c *Client) GetMarketInfo(ctx context.Context, market string) (*MarketInfo, error) {
	values := make(url.Values)
	values.Set("market", market)

	var infos []*MarketInfo
	addrURL := c.endpoint("/spot/ticker", values)
	if err := c.call(ctx, http.MethodGet, addrURL, nil /* request */, false /* private */, &infos); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not get market ticker information", "url", addrURL, "err", err)
		}
		return nil, err
	}
	for _, info := range infos {
		if strings.EqualFold(info.Market, market) {
			return info, nil
		}
	}
	return nil, fmt.Errorf("market %q is not found in the ticker response: %w", market, os.ErrNotExist)
}

// CreateOrder creates a spot order.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if req.MarketType != "SPOT" {
		return nil, fmt.Errorf("market type must be SPOT: %w", os.ErrInvalid)
	}
	order := new(Order)
	addrURL := c.endpoint("/spot/order", nil)
	if err := c.call(ctx, http.MethodPost, addrURL, req, true /* private */, order); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not create order", "url", addrURL, "market", req.Market, "side", req.Side, "err", err)
		}
		return nil, err
	}
	return order, nil
}

// sign returns the hex encoded HMAC-SHA256 signature for a request.
func (c *Client) sign(method string, addrURL *url.URL, body, timestamp string) string {
	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteString(addrURL.Path)
	if len(addrURL.RawQuery) != 0 {
		sb.WriteRune('?')
		sb.WriteString(addrURL.RawQuery)
	}
	sb.WriteString(body)
	sb.WriteString(timestamp)

	hash := hmac.New(sha256.New, []byte(c.secret))
	io.WriteString(hash, sb.String())
	return fmt.Sprintf("%x", hash.Sum(nil))
}

func (c *Client) do(ctx context.Context, method string, addrURL *url.URL, body string, private bool) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, addrURL.String(), strings.NewReader(body))
	if err != nil {
		slog.Error("could not create http request object with context", "method", method, "url", addrURL, "err", err)
		return nil, err
	}
	if len(body) != 0 {
		req.Header.Add("Content-Type", "application/json")
	}
	if private {
		timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
		req.Header.Add("X-COINEX-KEY", c.key)
		req.Header.Add("X-COINEX-SIGN", c.sign(method, addrURL, body, timestamp))
		req.Header.Add("X-COINEX-TIMESTAMP", timestamp)
	}
	return c.client.Do(req)
}

// call performs the http request and decodes the data field of a successful
// response. Throttled and bad gateway responses are retried.
func (c *Client) call(ctx context.Context, method string, addrURL *url.URL, request any, private bool, data any) error {
	var body string
	if request != nil {
		js, err := json.Marshal(request)
		if err != nil {
			return err
		}
		body = string(js)
	}

	for retries := 0; ; retries++ {
		resp, err := c.do(ctx, method, addrURL, body, private)
		if err != nil {
			return err
		}
		payload, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			slog.Warn("http request returned unsuccessful status code", "method", method, "url", addrURL, "status-code", resp.StatusCode, "response", string(payload))

			retryable := resp.StatusCode == http.StatusBadGateway ||
				resp.StatusCode == http.StatusTooManyRequests ||
				resp.StatusCode == http.StatusTeapot
			if !retryable || retries >= c.opts.MaxRetries {
				return fmt.Errorf("http %s returned %d", method, resp.StatusCode)
			}

			timeout := c.opts.RetryInterval
			if x := resp.Header.Get("Retry-After"); len(x) != 0 {
				if v, err := strconv.Atoi(x); err == nil {
					timeout = time.Duration(v) * time.Second
				}
			}
			if err := ctxutil.Sleep(ctx, timeout); err != nil {
				return err
			}
			continue
		}

		var generic genericResponse
		if err := json.Unmarshal(payload, &generic); err != nil {
			slog.Error("could not unmarshal into generic response", "response", string(payload), "err", err)
			return err
		}
		if generic.Code != 0 {
			return &APIError{Code: generic.Code, Message: generic.Message}
		}
		if data != nil {
			if err := json.Unmarshal(generic.Data, data); err != nil {
				slog.Error("could not decode response data to json", "err", err)
				return err
			}
		}
		return nil
	}
}
