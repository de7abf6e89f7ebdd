// Copyright (c) 2025 BVK Chaitanya

package events

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/visvasity/topic"
)

// DefaultQueueLimit is the number of undelivered events a subscriber may
// accumulate before older events are dropped.
const DefaultQueueLimit = 1024

// Bus is a Sink that fans out events to independent subscribers. Slow
// subscribers lose old events instead of blocking the publisher.
type Bus struct {
	tp *topic.Topic[*Event]
}

func NewBus() *Bus {
	return &Bus{tp: topic.New[*Event]()}
}

func (b *Bus) Close() {
	b.tp.Close()
}

func (b *Bus) Notify(e *Event) {
	b.tp.Send(e)
}

// Subscribe returns a receiver for events published after the call.
func (b *Bus) Subscribe(limit int) (*topic.Receiver[*Event], error) {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return topic.Subscribe(b.tp, limit, false /* includeRecent */)
}

// Watch subscribes to the bus and returns a function that calls fn for every
// event until the context is canceled or the bus is closed. Events published
// after Watch returns are delivered to fn. Panics in fn are logged and
// rethrown.
func (b *Bus) Watch(limit int, fn func(context.Context, *Event)) (func(context.Context) error, error) {
	receiver, err := b.Subscribe(limit)
	if err != nil {
		return nil, fmt.Errorf("could not subscribe to events: %w", err)
	}
	eventsCh, err := topic.ReceiveCh(receiver)
	if err != nil {
		receiver.Close()
		return nil, fmt.Errorf("could not get receiver channel: %w", err)
	}

	run := func(ctx context.Context) error {
		defer receiver.Close()

		defer func() {
			if r := recover(); r != nil {
				slog.Error("CAUGHT PANIC", "panic", r)
				slog.Error(string(debug.Stack()))
				panic(r)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return context.Cause(ctx)
			case e, ok := <-eventsCh:
				if !ok {
					return nil
				}
				fn(ctx, e)
			}
		}
	}
	return run, nil
}
