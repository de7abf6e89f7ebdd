// Copyright (c) 2025 BVK Chaitanya

package coinex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bvk/coinmonitor/exchange"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ExchangeName = "coinex"

type Credentials struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

func (v *Credentials) Check() error {
	if len(v.Key) == 0 || len(v.Secret) == 0 {
		return fmt.Errorf("coinex key and secret must be non-empty: %w", os.ErrInvalid)
	}
	return nil
}

// Adapter implements the monitor's exchange adapter with market orders.
type Adapter struct {
	client *Client
}

var _ exchange.Adapter = &Adapter{}

func NewAdapter(creds *Credentials, opts *Options) (*Adapter, error) {
	if err := creds.Check(); err != nil {
		return nil, err
	}
	client, err := New(creds.Key, creds.Secret, opts)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// NewPublicAdapter returns an adapter without credentials. It can only quote
// prices; orders are rejected by the exchange.
func NewPublicAdapter(opts *Options) (*Adapter, error) {
	client, err := New("", "", opts)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

// NewFactory returns an exchange factory that creates coinex adapters.
func NewFactory(creds *Credentials, opts *Options) exchange.Factory {
	return func(context.Context) (exchange.Adapter, error) {
		return NewAdapter(creds, opts)
	}
}

func (v *Adapter) Close() error {
	return v.client.Close()
}

func (v *Adapter) ExchangeName() string {
	return ExchangeName
}

// marketName returns the coinex market name for a coin pair. USD base coin
// is traded against USDT.
func marketName(coin, baseCoin string) string {
	base := strings.ToUpper(baseCoin)
	if base == "USD" {
		base = "USDT"
	}
	return strings.ToUpper(coin) + base
}

func (v *Adapter) GetCoinPrice(ctx context.Context, coin, baseCoin string) (decimal.Decimal, error) {
	info, err := v.client.GetMarketInfo(ctx, marketName(coin, baseCoin))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", exchange.ErrPriceUnavailable, err)
	}
	if !info.LastPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("market %s has no last price: %w", info.Market, exchange.ErrPriceUnavailable)
	}
	return info.LastPrice, nil
}

func (v *Adapter) BuyCoin(ctx context.Context, req *exchange.OrderRequest) (exchange.OrderID, error) {
	return v.createMarketOrder(ctx, "buy", req)
}

func (v *Adapter) SellCoin(ctx context.Context, req *exchange.OrderRequest) (exchange.OrderID, error) {
	return v.createMarketOrder(ctx, "sell", req)
}

func (v *Adapter) createMarketOrder(ctx context.Context, side string, req *exchange.OrderRequest) (exchange.OrderID, error) {
	if err := req.Check(); err != nil {
		return "", err
	}

	// Client ids are limited to 32 characters.
	clientID := strings.ReplaceAll(uuid.NewString(), "-", "")
	creq := &CreateOrderRequest{
		ClientOrderID: clientID,
		Market:        marketName(req.Coin, req.BaseCoin),
		MarketType:    "SPOT",
		Side:          side,
		OrderType:     "market",
		Amount:        req.Amount,
	}
	order, err := v.client.CreateOrder(ctx, creq)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %w", exchange.ErrOrderRejected, err)
		}
		return "", fmt.Errorf("%w: %w", exchange.ErrOrderSubmission, err)
	}
	if order.OrderID == 0 {
		return "", fmt.Errorf("coinex returned no order id for client id %s: %w", clientID, exchange.ErrOrderRejected)
	}
	return exchange.OrderID(strconv.FormatInt(order.OrderID, 10)), nil
}
