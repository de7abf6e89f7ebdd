// Copyright (c) 2025 BVK Chaitanya

package policy

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestThreshold(t *testing.T) {
	ctx := context.Background()

	opts := &ThresholdOptions{
		Default: Limits{
			BuyBelow:  decimal.NewFromInt(-10),
			SellAbove: decimal.NewFromInt(15),
		},
		PairLimits: map[string]*Limits{
			"tight": {
				BuyBelow:  decimal.NewFromInt(-1),
				SellAbove: decimal.NewFromInt(1),
			},
		},
	}
	p, err := NewThreshold(opts)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		pair   string
		change string
		want   OrderType
	}{
		{"any", "16.67", Sell},
		{"any", "15", Sell},
		{"any", "14.99", None},
		{"any", "0", None},
		{"any", "-10", Buy},
		{"any", "-25.5", Buy},
		{"tight", "1.01", Sell},
		{"tight", "-1", Buy},
		{"tight", "0.5", None},
	}
	for _, test := range tests {
		got, err := p.Decide(ctx, test.pair, decimal.RequireFromString(test.change))
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Fatalf("%s with change %s: want %s, got %s", test.pair, test.change, test.want, got)
		}
	}
}

func TestThresholdAlternate(t *testing.T) {
	ctx := context.Background()

	p, err := NewThreshold(&ThresholdOptions{Alternate: true})
	if err != nil {
		t.Fatal(err)
	}

	up := decimal.NewFromInt(20)
	if side, _ := p.Decide(ctx, "a", up); side != Sell {
		t.Fatalf("want SELL, got %s", side)
	}
	p.OrderDone(ctx, "a", Sell)
	if side, _ := p.Decide(ctx, "a", up); side != None {
		t.Fatalf("want NONE after a sell, got %s", side)
	}
	if side, _ := p.Decide(ctx, "b", up); side != Sell {
		t.Fatalf("other pairs must not be affected, got %s", side)
	}
	if side, _ := p.Decide(ctx, "a", up.Neg()); side != Buy {
		t.Fatalf("want BUY after a sell, got %s", side)
	}
}

func TestInvalidOptions(t *testing.T) {
	opts := &ThresholdOptions{
		Default: Limits{
			BuyBelow:  decimal.NewFromInt(5),
			SellAbove: decimal.NewFromInt(-5),
		},
	}
	if _, err := NewThreshold(opts); err == nil {
		t.Fatalf("want error for inverted thresholds")
	}
	if _, err := ParseOrderType("hold"); err == nil {
		t.Fatalf("want error for invalid order type")
	}
	if v, err := ParseOrderType(" sell "); err != nil || v != Sell {
		t.Fatalf("want SELL, got %s, %v", v, err)
	}
}
