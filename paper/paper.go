// Copyright (c) 2025 BVK Chaitanya

// Package paper implements an exchange adapter that simulates market orders
// against externally supplied prices.
package paper

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bvk/coinmonitor/exchange"
	"github.com/bvk/coinmonitor/syncmap"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ExchangeName = "paper"

// PriceFunc returns the price of a coin from an external source.
type PriceFunc func(ctx context.Context, coin, baseCoin string) (decimal.Decimal, error)

// Fill is a simulated order execution.
type Fill struct {
	OrderID exchange.OrderID
	Side    string

	Coin     string
	BaseCoin string

	Amount decimal.Decimal
	Price  decimal.Decimal
}

type Exchange struct {
	priceFunc PriceFunc

	priceMap syncmap.Map[string, decimal.Decimal]

	mu    sync.Mutex
	fills []*Fill
}

var _ exchange.Adapter = &Exchange{}

// New returns a paper exchange. Prices set with SetPrice take precedence over
// the optional price function.
func New(priceFunc PriceFunc) *Exchange {
	return &Exchange{priceFunc: priceFunc}
}

// NewFactory returns an exchange factory that creates a paper exchange.
func NewFactory(priceFunc PriceFunc) exchange.Factory {
	return func(context.Context) (exchange.Adapter, error) {
		return New(priceFunc), nil
	}
}

func productID(coin, baseCoin string) string {
	return strings.ToUpper(coin) + "-" + strings.ToUpper(baseCoin)
}

func (v *Exchange) ExchangeName() string {
	return ExchangeName
}

// SetPrice sets the price for a coin pair.
func (v *Exchange) SetPrice(coin, baseCoin string, price decimal.Decimal) {
	v.priceMap.Store(productID(coin, baseCoin), price)
}

func (v *Exchange) GetCoinPrice(ctx context.Context, coin, baseCoin string) (decimal.Decimal, error) {
	if price, ok := v.priceMap.Load(productID(coin, baseCoin)); ok {
		return price, nil
	}
	if v.priceFunc == nil {
		return decimal.Zero, fmt.Errorf("no price for %s: %w", productID(coin, baseCoin), exchange.ErrPriceUnavailable)
	}
	price, err := v.priceFunc(ctx, coin, baseCoin)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not get price for %s: %w: %w", productID(coin, baseCoin), exchange.ErrPriceUnavailable, err)
	}
	return price, nil
}

func (v *Exchange) BuyCoin(ctx context.Context, req *exchange.OrderRequest) (exchange.OrderID, error) {
	return v.fill(ctx, "BUY", req)
}

func (v *Exchange) SellCoin(ctx context.Context, req *exchange.OrderRequest) (exchange.OrderID, error) {
	return v.fill(ctx, "SELL", req)
}

func (v *Exchange) fill(ctx context.Context, side string, req *exchange.OrderRequest) (exchange.OrderID, error) {
	if err := req.Check(); err != nil {
		return "", err
	}
	price := req.Price
	if !price.IsPositive() {
		p, err := v.GetCoinPrice(ctx, req.Coin, req.BaseCoin)
		if err != nil {
			return "", fmt.Errorf("%w: %w", exchange.ErrOrderRejected, err)
		}
		price = p
	}

	f := &Fill{
		OrderID:  exchange.OrderID(uuid.NewString()),
		Side:     side,
		Coin:     req.Coin,
		BaseCoin: req.BaseCoin,
		Amount:   req.Amount,
		Price:    price,
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.fills = append(v.fills, f)
	return f.OrderID, nil
}

// Fills returns all simulated order executions.
func (v *Exchange) Fills() []*Fill {
	v.mu.Lock()
	defer v.mu.Unlock()

	return append([]*Fill(nil), v.fills...)
}
