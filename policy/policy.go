// Copyright (c) 2025 BVK Chaitanya

// Package policy decides the order action for a tracked pair from its percent
// price change.
package policy

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	None OrderType = "NONE"
	Buy  OrderType = "BUY"
	Sell OrderType = "SELL"
)

// IsValid returns true if the order type is one of NONE, BUY or SELL.
func (t OrderType) IsValid() bool {
	return t == None || t == Buy || t == Sell
}

func ParseOrderType(s string) (OrderType, error) {
	t := OrderType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return None, fmt.Errorf("invalid order type %q: %w", s, os.ErrInvalid)
	}
	return t, nil
}

// Policy returns the order action for a pair. Implementations must not have
// side effects other than their own bookkeeping.
type Policy interface {
	Decide(ctx context.Context, pairID string, change decimal.Decimal) (OrderType, error)
}

// OrderObserver is an optional interface for policies that track the orders
// placed for their decisions.
type OrderObserver interface {
	OrderDone(ctx context.Context, pairID string, side OrderType)
}

// Func adapts an ordinary function into a Policy.
type Func func(ctx context.Context, pairID string, change decimal.Decimal) (OrderType, error)

func (f Func) Decide(ctx context.Context, pairID string, change decimal.Decimal) (OrderType, error) {
	return f(ctx, pairID, change)
}

// Never is a policy that never places orders.
var Never = Func(func(context.Context, string, decimal.Decimal) (OrderType, error) {
	return None, nil
})
