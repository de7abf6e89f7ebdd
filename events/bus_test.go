// Copyright (c) 2025 BVK Chaitanya

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bvk/coinmonitor/pair"
	"github.com/shopspring/decimal"
)

func TestBusWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	var kinds []Kind
	done := make(chan struct{})

	run, err := bus.Watch(0, func(_ context.Context, e *Event) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, e.Kind)
		if e.Kind == CycleDone {
			close(done)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		run(ctx)
	}()

	p := pair.New("paper", "BTC", "USD", decimal.NewFromInt(1))
	bus.Notify(New(Start, 0))
	bus.Notify(New(CycleStart, 1, p))
	bus.Notify(NewPair(CheckPair, 1, p))
	bus.Notify(New(CycleDone, 1))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for events")
	}
	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []Kind{Start, CycleStart, CheckPair, CycleDone}
	if len(kinds) != len(want) {
		t.Fatalf("want %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("want %v, got %v", want, kinds)
		}
	}
}

func TestEventSnapshots(t *testing.T) {
	p := pair.New("paper", "BTC", "USD", decimal.NewFromInt(1))
	e := NewPair(PriceChange, 3, p)
	p.ExchangePrice = decimal.NewFromInt(42)
	if !e.Pair.ExchangePrice.IsZero() {
		t.Fatalf("event pair must be a snapshot")
	}

	var r Recorder
	r.Notify(e)
	r.Notify(New(Start, 0))
	if n := len(r.Events(PriceChange)); n != 1 {
		t.Fatalf("want one price-change event, got %d", n)
	}
	if n := len(r.Events()); n != 2 {
		t.Fatalf("want two events, got %d", n)
	}
}
