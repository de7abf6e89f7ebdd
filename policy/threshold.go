// Copyright (c) 2025 BVK Chaitanya

package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/bvk/coinmonitor/syncmap"
	"github.com/shopspring/decimal"
)

// Limits holds the percent change thresholds for a pair.
type Limits struct {
	// BuyBelow triggers a buy when the change is at or below this value. It
	// is usually negative.
	BuyBelow decimal.Decimal

	// SellAbove triggers a sell when the change is at or above this value.
	SellAbove decimal.Decimal
}

func (v *Limits) Check() error {
	if !v.BuyBelow.LessThan(v.SellAbove) {
		return fmt.Errorf("buy threshold %s must be less than the sell threshold %s: %w", v.BuyBelow, v.SellAbove, os.ErrInvalid)
	}
	return nil
}

type ThresholdOptions struct {
	// Default limits are used for pairs without an entry in PairLimits.
	Default Limits

	PairLimits map[string]*Limits

	// Alternate when true never repeats the same order side back to back for
	// a pair. A pair that sold last can only buy next and vice versa.
	Alternate bool
}

func (v *ThresholdOptions) setDefaults() {
	if v.Default.BuyBelow.IsZero() && v.Default.SellAbove.IsZero() {
		v.Default.BuyBelow = decimal.NewFromInt(-5)
		v.Default.SellAbove = decimal.NewFromInt(5)
	}
}

func (v *ThresholdOptions) Check() error {
	if err := v.Default.Check(); err != nil {
		return err
	}
	for id, l := range v.PairLimits {
		if err := l.Check(); err != nil {
			return fmt.Errorf("pair %s: %w", id, err)
		}
	}
	return nil
}

// Threshold is a single threshold trigger policy.
type Threshold struct {
	opts ThresholdOptions

	lastSideMap syncmap.Map[string, OrderType]
}

func NewThreshold(opts *ThresholdOptions) (*Threshold, error) {
	if opts == nil {
		opts = new(ThresholdOptions)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Threshold{opts: *opts}, nil
}

func (p *Threshold) limits(pairID string) *Limits {
	if l, ok := p.opts.PairLimits[pairID]; ok && l != nil {
		return l
	}
	return &p.opts.Default
}

func (p *Threshold) Decide(ctx context.Context, pairID string, change decimal.Decimal) (OrderType, error) {
	l := p.limits(pairID)

	side := None
	if change.GreaterThanOrEqual(l.SellAbove) {
		side = Sell
	} else if change.LessThanOrEqual(l.BuyBelow) {
		side = Buy
	}

	if side != None && p.opts.Alternate {
		if last, ok := p.lastSideMap.Load(pairID); ok && last == side {
			return None, nil
		}
	}
	return side, nil
}

// OrderDone records the side of the last order for a pair.
func (p *Threshold) OrderDone(ctx context.Context, pairID string, side OrderType) {
	if side == Buy || side == Sell {
		p.lastSideMap.Store(pairID, side)
	}
}

// LastSide returns the side of the last recorded order for a pair.
func (p *Threshold) LastSide(pairID string) (OrderType, bool) {
	return p.lastSideMap.Load(pairID)
}
