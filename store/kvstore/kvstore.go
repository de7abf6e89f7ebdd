// Copyright (c) 2025 BVK Chaitanya

// Package kvstore implements the store interfaces over a key-value database.
package kvstore

import (
	"context"
	"fmt"
	"path"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/kvutil"
	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/store"
	"github.com/bvkgo/kv"
)

const (
	KeyPrefix = "/coinmonitor"

	pairsDir  = KeyPrefix + "/pairs"
	ordersDir = KeyPrefix + "/orders"
)

type Store struct {
	db kv.Database
}

var _ store.Store = &Store{}

func New(db kv.Database) *Store {
	return &Store{db: db}
}

func pairKey(id string) string {
	return path.Join(pairsDir, id)
}

// orderKey orders records of a pair by their creation time.
func orderKey(order *gobs.OrderRecord) string {
	return path.Join(ordersDir, order.PairID, fmt.Sprintf("%020d-%s", order.CreateTime.UnixNano(), order.ID))
}

func (s *Store) PairsToTrade(ctx context.Context) ([]*pair.Pair, error) {
	var pairs []*pair.Pair
	collect := func(_ context.Context, _ string, v *gobs.PairState) error {
		pairs = append(pairs, pair.FromGob(v))
		return nil
	}
	begin, end := kvutil.PathRange(pairsDir)
	if err := kvutil.WalkDB(ctx, s.db, begin, end, collect); err != nil {
		return nil, fmt.Errorf("could not load pairs: %w", err)
	}
	return pairs, nil
}

func (s *Store) GetPair(ctx context.Context, id string) (*pair.Pair, error) {
	v, err := kvutil.GetDB[gobs.PairState](ctx, s.db, pairKey(id))
	if err != nil {
		return nil, err
	}
	return pair.FromGob(v), nil
}

func (s *Store) SavePair(ctx context.Context, p *pair.Pair) error {
	if err := p.Check(); err != nil {
		return fmt.Errorf("could not save invalid pair: %w: %w", store.ErrPersistence, err)
	}
	if err := kvutil.SetDB(ctx, s.db, pairKey(p.ID), p.ToGob()); err != nil {
		return fmt.Errorf("could not save pair %s: %w: %w", p, store.ErrPersistence, err)
	}
	return nil
}

func (s *Store) DeletePair(ctx context.Context, id string) error {
	del := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Delete(ctx, pairKey(id))
	}
	if err := kv.WithReadWriter(ctx, s.db, del); err != nil {
		return fmt.Errorf("could not delete pair %s: %w", id, err)
	}
	return nil
}

func (s *Store) SaveOrder(ctx context.Context, order *gobs.OrderRecord) error {
	if len(order.PairID) == 0 || len(order.ID) == 0 {
		return fmt.Errorf("order record must have an id and pair id: %w", store.ErrPersistence)
	}
	if err := kvutil.SetDB(ctx, s.db, orderKey(order), order); err != nil {
		return fmt.Errorf("could not save order %s for pair %s: %w: %w", order.ID, order.PairID, store.ErrPersistence, err)
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, pairID string) ([]*gobs.OrderRecord, error) {
	dir := ordersDir
	if len(pairID) != 0 {
		dir = path.Join(ordersDir, pairID)
	}
	var orders []*gobs.OrderRecord
	collect := func(_ context.Context, _ string, v *gobs.OrderRecord) error {
		orders = append(orders, v)
		return nil
	}
	begin, end := kvutil.PathRange(dir)
	if err := kvutil.WalkDB(ctx, s.db, begin, end, collect); err != nil {
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	return orders, nil
}

func (s *Store) LastOrder(ctx context.Context, pairID string) (*gobs.OrderRecord, error) {
	begin, end := kvutil.PathRange(path.Join(ordersDir, pairID))
	_, v, err := kvutil.LastDB[gobs.OrderRecord](ctx, s.db, begin, end)
	if err != nil {
		return nil, fmt.Errorf("could not find last order for pair %s: %w", pairID, err)
	}
	return v, nil
}
