// Copyright (c) 2025 BVK Chaitanya

package pair

import (
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	p, err := Parse("CoinEx:btc-usdt:0.5")
	if err != nil {
		t.Fatal(err)
	}
	if p.ExchangeName != "coinex" || p.Coin != "BTC" || p.BaseCoin != "USDT" {
		t.Fatalf("unexpected pair fields %#v", p)
	}
	if !p.Amount.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("want amount 0.5, got %s", p.Amount)
	}

	q, err := Parse("coinex:BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != q.ID {
		t.Fatalf("pair ids must be stable: %s != %s", p.ID, q.ID)
	}
	if !q.Amount.IsZero() {
		t.Fatalf("want zero amount, got %s", q.Amount)
	}

	bad := []string{"", "coinex", "coinex:BTC", "coinex:-USD", ":BTC-USD", "coinex:BTC-USD:x", "coinex:BTC-USD:-1"}
	for _, s := range bad {
		if _, err := Parse(s); err == nil {
			t.Fatalf("want error for %q", s)
		}
	}
	if _, err := Parse("a:b:c:d"); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want os.ErrInvalid, got %v", err)
	}
}

func TestParseList(t *testing.T) {
	pairs, err := ParseList("paper:BTC-USD, paper:ETH-USD:2,")
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("want 2 pairs, got %d", len(pairs))
	}
	if pairs[1].String() != "paper:ETH-USD" {
		t.Fatalf("want paper:ETH-USD, got %s", pairs[1])
	}
}

func TestInit(t *testing.T) {
	p := New("paper", "BTC", "USD", decimal.Zero)
	if !p.NeedsInit() {
		t.Fatalf("new pair must need initialization")
	}

	price := decimal.NewFromInt(100)
	p.Init(price)
	if p.NeedsInit() {
		t.Fatalf("initialized pair must not need initialization")
	}
	if !p.OrderPrice.Equal(price) || !p.StartPrice.Equal(price) || !p.ExchangePrice.Equal(price) {
		t.Fatalf("want all prices at %s, got %#v", price, p)
	}
	if !p.Amount.Equal(decimal.NewFromInt(1)) || !p.PriceChange.IsZero() {
		t.Fatalf("want amount 1 and zero change, got %s and %s", p.Amount, p.PriceChange)
	}

	// Existing values are kept.
	q := New("paper", "ETH", "USD", decimal.NewFromInt(3))
	q.StartPrice = decimal.NewFromInt(50)
	q.Init(price)
	if !q.StartPrice.Equal(decimal.NewFromInt(50)) || !q.Amount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("init must not overwrite existing fields: %#v", q)
	}

	if v := FromGob(q.ToGob()); *v != *q {
		t.Fatalf("gob conversion mismatch: %#v != %#v", v, q)
	}
}
