// Copyright (c) 2025 BVK Chaitanya

// Package events defines the notifications emitted by the monitor engine and
// a non-blocking bus to deliver them to subscribers.
package events

import (
	"sync"
	"time"

	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/policy"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	Start            Kind = "start"
	PairsLoaded      Kind = "pairs-loaded"
	PairsInitialized Kind = "pairs-initialized"
	CycleStart       Kind = "cycle"
	CheckPair        Kind = "check-pair"
	PriceChange      Kind = "price-change"
	MakeOrder        Kind = "make-order"
	OrderDone        Kind = "order-done"
	PairError        Kind = "pair-error"
	CycleDone        Kind = "cycle-done"
)

// Event is a notification from the engine. Pair values are snapshots and are
// safe to read from other goroutines.
type Event struct {
	Kind Kind
	Time time.Time

	// Cycle is the cycle number, starting at one. It is zero for the startup
	// events.
	Cycle int64

	// Pairs holds the working set for the PairsLoaded, PairsInitialized and
	// CycleStart events.
	Pairs []*pair.Pair

	// Pair is set for the per-pair events.
	Pair *pair.Pair

	Change decimal.Decimal

	OrderType policy.OrderType
	OrderID   string

	Err error
}

// New creates an event with snapshots of the input pairs.
func New(kind Kind, cycle int64, pairs ...*pair.Pair) *Event {
	e := &Event{
		Kind:  kind,
		Time:  time.Now(),
		Cycle: cycle,
	}
	for _, p := range pairs {
		e.Pairs = append(e.Pairs, p.Clone())
	}
	return e
}

// NewPair creates a per-pair event with a snapshot of the pair.
func NewPair(kind Kind, cycle int64, p *pair.Pair) *Event {
	return &Event{
		Kind:  kind,
		Time:  time.Now(),
		Cycle: cycle,
		Pair:  p.Clone(),
	}
}

// Sink receives engine notifications. Notify must not block.
type Sink interface {
	Notify(e *Event)
}

type SinkFunc func(e *Event)

func (f SinkFunc) Notify(e *Event) {
	f(e)
}

// Discard is a sink that drops all events.
var Discard = SinkFunc(func(*Event) {})

// Recorder is a sink that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *Recorder) Notify(e *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

// Events returns the recorded events, optionally filtered by kind.
func (r *Recorder) Events(kinds ...Kind) []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(kinds) == 0 {
		return append([]*Event(nil), r.events...)
	}
	var result []*Event
	for _, e := range r.events {
		for _, k := range kinds {
			if e.Kind == k {
				result = append(result, e)
				break
			}
		}
	}
	return result
}
