// Copyright (c) 2025 BVK Chaitanya

package kvstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/store"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPairs(t *testing.T) {
	ctx := context.Background()
	s := New(kvmemdb.New())

	pairs, err := s.PairsToTrade(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Fatalf("want no pairs in an empty store, got %d", len(pairs))
	}

	btc := pair.New("paper", "BTC", "USD", decimal.NewFromInt(1))
	btc.Init(decimal.NewFromInt(100))
	eth := pair.New("paper", "ETH", "USD", decimal.NewFromInt(2))
	for _, p := range []*pair.Pair{btc, eth} {
		if err := s.SavePair(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	// Saving again replaces the old state.
	btc.ExchangePrice = decimal.NewFromInt(110)
	if err := s.SavePair(ctx, btc); err != nil {
		t.Fatal(err)
	}

	pairs, err = s.PairsToTrade(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("want 2 pairs, got %d", len(pairs))
	}

	got, err := s.GetPair(ctx, btc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.ExchangePrice.Equal(decimal.NewFromInt(110)) || !got.StartPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected pair state %#v", got)
	}

	if err := s.DeletePair(ctx, eth.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPair(ctx, eth.ID); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist after delete, got %v", err)
	}

	if err := s.SavePair(ctx, &pair.Pair{}); !errors.Is(err, store.ErrPersistence) {
		t.Fatalf("want ErrPersistence for invalid pair, got %v", err)
	}
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := New(kvmemdb.New())

	btc := pair.New("paper", "BTC", "USD", decimal.NewFromInt(1))
	eth := pair.New("paper", "ETH", "USD", decimal.NewFromInt(1))

	if _, err := s.LastOrder(ctx, btc.ID); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist without orders, got %v", err)
	}

	now := time.Now()
	save := func(p *pair.Pair, side string, at time.Time) {
		order := &gobs.OrderRecord{
			ID:              uuid.NewString(),
			PairID:          p.ID,
			Coin:            p.Coin,
			BaseCoin:        p.BaseCoin,
			ExchangeName:    p.ExchangeName,
			Type:            side,
			ExchangeOrderID: uuid.NewString(),
			Price:           decimal.NewFromInt(100),
			Amount:          p.Amount,
			CreateTime:      at,
		}
		if err := s.SaveOrder(ctx, order); err != nil {
			t.Fatal(err)
		}
	}
	save(btc, "BUY", now)
	save(btc, "SELL", now.Add(time.Minute))
	save(eth, "BUY", now.Add(time.Second))

	orders, err := s.ListOrders(ctx, btc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || orders[0].Type != "BUY" || orders[1].Type != "SELL" {
		t.Fatalf("want BUY then SELL orders, got %d orders", len(orders))
	}

	last, err := s.LastOrder(ctx, btc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if last.Type != "SELL" {
		t.Fatalf("want last order SELL, got %s", last.Type)
	}

	all, err := s.ListOrders(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 orders, got %d", len(all))
	}

	if err := s.SaveOrder(ctx, &gobs.OrderRecord{}); !errors.Is(err, store.ErrPersistence) {
		t.Fatalf("want ErrPersistence for invalid order, got %v", err)
	}
}
