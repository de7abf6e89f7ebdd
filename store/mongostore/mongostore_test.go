// Copyright (c) 2025 BVK Chaitanya

package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/pair"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPairDocConversion(t *testing.T) {
	p := pair.New("coinex", "BTC", "USDT", decimal.RequireFromString("0.0015"))
	p.Init(decimal.RequireFromString("64123.57"))
	p.ExchangePrice = decimal.RequireFromString("65000.1")
	p.PriceChange = decimal.RequireFromString("1.35")

	doc, err := newPairDoc(p)
	if err != nil {
		t.Fatal(err)
	}
	q, err := doc.toPair()
	if err != nil {
		t.Fatal(err)
	}
	if q.ID != p.ID || q.String() != p.String() {
		t.Fatalf("want pair %s, got %s", p, q)
	}
	checks := [][2]decimal.Decimal{
		{p.Amount, q.Amount},
		{p.ExchangePrice, q.ExchangePrice},
		{p.OrderPrice, q.OrderPrice},
		{p.StartPrice, q.StartPrice},
		{p.PriceChange, q.PriceChange},
	}
	for i, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Fatalf("field %d: want %s, got %s", i, c[0], c[1])
		}
	}
}

func TestOrderDocConversion(t *testing.T) {
	order := &gobs.OrderRecord{
		ID:              uuid.NewString(),
		PairID:          uuid.NewString(),
		Type:            "SELL",
		ExchangeOrderID: "12345",
		Price:           decimal.RequireFromString("120"),
		Amount:          decimal.RequireFromString("1"),
		CreateTime:      time.Now(),
	}
	doc, err := newOrderDoc(order)
	if err != nil {
		t.Fatal(err)
	}
	got, err := doc.toRecord()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Price.Equal(order.Price) || got.Type != "SELL" || got.ExchangeOrderID != "12345" {
		t.Fatalf("unexpected order record %#v", got)
	}
}

// TestStore runs against a real database when COINMONITOR_TEST_MONGO_URI is
// set.
func TestStore(t *testing.T) {
	uri := os.Getenv("COINMONITOR_TEST_MONGO_URI")
	if len(uri) == 0 {
		t.Skip("COINMONITOR_TEST_MONGO_URI is not set")
		return
	}

	ctx := context.Background()
	s, err := New(ctx, &Options{URI: uri, Database: "coinmonitor_test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	p := pair.New("paper", "BTC", "USD", decimal.NewFromInt(1))
	p.Init(decimal.NewFromInt(100))
	if err := s.SavePair(ctx, p); err != nil {
		t.Fatal(err)
	}
	pairs, err := s.PairsToTrade(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || pairs[0].ID != p.ID {
		t.Fatalf("want one pair %s, got %d pairs", p.ID, len(pairs))
	}

	order := &gobs.OrderRecord{
		ID:         uuid.NewString(),
		PairID:     p.ID,
		Type:       "BUY",
		Price:      decimal.NewFromInt(100),
		Amount:     decimal.NewFromInt(1),
		CreateTime: time.Now(),
	}
	if err := s.SaveOrder(ctx, order); err != nil {
		t.Fatal(err)
	}
	last, err := s.LastOrder(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if last.ID != order.ID {
		t.Fatalf("want last order %s, got %s", order.ID, last.ID)
	}

	if err := s.DeletePair(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPair(ctx, p.ID); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}
