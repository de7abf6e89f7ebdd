// Copyright (c) 2025 BVK Chaitanya

package monitor

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrComputation is returned for degenerate inputs to price computations and
// for invalid decisions.
var ErrComputation = errors.New("computation error")

var hundred = decimal.NewFromInt(100)

// ComputeChange returns the percent change of the current price relative to
// the reference price as (current - reference) * 100 / current, rounded to
// two decimal places. The divisor is the current price, not the reference
// price.
func ComputeChange(reference, current decimal.Decimal) (decimal.Decimal, error) {
	if current.IsZero() {
		return decimal.Zero, fmt.Errorf("current price is zero: %w", ErrComputation)
	}
	return current.Sub(reference).Mul(hundred).Div(current).Round(2), nil
}
