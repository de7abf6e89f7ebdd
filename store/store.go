// Copyright (c) 2025 BVK Chaitanya

// Package store defines the persistence interfaces for tracked pairs and
// order records.
package store

import (
	"context"
	"errors"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/pair"
)

// ErrPersistence is wrapped by all write failures from the stores.
var ErrPersistence = errors.New("persistence failure")

// PairSource provides the pairs to monitor. An empty result is not an error.
type PairSource interface {
	PairsToTrade(ctx context.Context) ([]*pair.Pair, error)
}

// Saver is the write side used by the monitor engine. Implementations must
// allow concurrent writes for distinct pairs.
type Saver interface {
	// SavePair inserts or replaces the full pair state.
	SavePair(ctx context.Context, p *pair.Pair) error

	// SaveOrder appends an order record.
	SaveOrder(ctx context.Context, order *gobs.OrderRecord) error
}

type Store interface {
	PairSource
	Saver

	// GetPair returns the pair with the id or an error wrapping
	// os.ErrNotExist.
	GetPair(ctx context.Context, id string) (*pair.Pair, error)

	DeletePair(ctx context.Context, id string) error

	// ListOrders returns the orders for a pair in creation order. An empty
	// pair id lists orders for all pairs.
	ListOrders(ctx context.Context, pairID string) ([]*gobs.OrderRecord, error)

	// LastOrder returns the most recent order for a pair or an error wrapping
	// os.ErrNotExist.
	LastOrder(ctx context.Context, pairID string) (*gobs.OrderRecord, error)
}
