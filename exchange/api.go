// Copyright (c) 2025 BVK Chaitanya

package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrPriceUnavailable is returned when an exchange cannot quote a price
	// for a coin pair.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrOrderRejected is returned when an exchange declines an order.
	ErrOrderRejected = errors.New("order rejected")

	// ErrOrderSubmission is returned when an order could not be delivered to
	// the exchange.
	ErrOrderSubmission = errors.New("order submission failed")
)

type OrderID string

// OrderRequest describes a market order for a tracked pair.
type OrderRequest struct {
	// PairID is the tracked pair identifier. Adapters may use it to derive
	// client order ids.
	PairID string

	Coin     string
	BaseCoin string

	// Amount is the order size in the coin units.
	Amount decimal.Decimal

	// Price is the last fetched price. It is informational for market orders.
	Price decimal.Decimal
}

func (v *OrderRequest) Check() error {
	if len(v.Coin) == 0 || len(v.BaseCoin) == 0 {
		return fmt.Errorf("coin and base coin must be non-empty: %w", ErrOrderRejected)
	}
	if !v.Amount.IsPositive() {
		return fmt.Errorf("order amount %s must be positive: %w", v.Amount, ErrOrderRejected)
	}
	return nil
}

// Adapter is the capability every exchange backend provides to the monitor.
type Adapter interface {
	ExchangeName() string

	// GetCoinPrice returns the current price of coin denominated in the
	// baseCoin.
	GetCoinPrice(ctx context.Context, coin, baseCoin string) (decimal.Decimal, error)

	BuyCoin(ctx context.Context, req *OrderRequest) (OrderID, error)
	SellCoin(ctx context.Context, req *OrderRequest) (OrderID, error)
}

// Factory creates an adapter instance. It is invoked at most once per
// successful registry lookup.
type Factory func(ctx context.Context) (Adapter, error)
