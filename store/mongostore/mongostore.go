// Copyright (c) 2025 BVK Chaitanya

// Package mongostore implements the store interfaces over a MongoDB database
// with one collection for the pairs and another for the orders.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PairsCollection  = "coinexchanges"
	OrdersCollection = "orders"
)

type Options struct {
	// URI is the MongoDB connection string.
	URI string

	// Database name. Defaults to "coinmonitor".
	Database string

	// Timeout limits every database operation.
	Timeout time.Duration
}

func (v *Options) setDefaults() {
	if len(v.Database) == 0 {
		v.Database = "coinmonitor"
	}
	if v.Timeout == 0 {
		v.Timeout = 10 * time.Second
	}
}

func (v *Options) Check() error {
	if len(v.URI) == 0 {
		return fmt.Errorf("mongodb uri cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}

type Store struct {
	opts Options

	client *mongo.Client
	pairs  *mongo.Collection
	orders *mongo.Collection
}

var _ store.Store = &Store{}

// New connects to the database and prepares the collection indexes.
func New(ctx context.Context, opts *Options) (_ *Store, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	copts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.Timeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	client, err := mongo.Connect(cctx, copts)
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongodb: %w", err)
	}
	defer func() {
		if status != nil {
			client.Disconnect(context.Background())
		}
	}()

	if err := client.Ping(cctx, nil); err != nil {
		return nil, fmt.Errorf("could not ping mongodb: %w", err)
	}

	db := client.Database(opts.Database)
	s := &Store{
		opts:   *opts,
		client: client,
		pairs:  db.Collection(PairsCollection),
		orders: db.Collection(OrdersCollection),
	}

	index := mongo.IndexModel{
		Keys: bson.D{{Key: "pair_id", Value: 1}, {Key: "created_at", Value: 1}},
	}
	if _, err := s.orders.Indexes().CreateOne(cctx, index); err != nil {
		return nil, fmt.Errorf("could not create orders index: %w", err)
	}

	slog.Info("connected to mongodb", "database", opts.Database)
	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) PairsToTrade(ctx context.Context) ([]*pair.Pair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	cursor, err := s.pairs.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("could not query pairs: %w", err)
	}
	defer cursor.Close(ctx)

	var pairs []*pair.Pair
	for cursor.Next(ctx) {
		doc := new(pairDoc)
		if err := cursor.Decode(doc); err != nil {
			return nil, fmt.Errorf("could not decode pair document: %w", err)
		}
		p, err := doc.toPair()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate pair documents: %w", err)
	}
	return pairs, nil
}

func (s *Store) GetPair(ctx context.Context, id string) (*pair.Pair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	doc := new(pairDoc)
	if err := s.pairs.FindOne(ctx, bson.M{"_id": id}).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("pair %s: %w", id, os.ErrNotExist)
		}
		return nil, fmt.Errorf("could not query pair %s: %w", id, err)
	}
	return doc.toPair()
}

func (s *Store) SavePair(ctx context.Context, p *pair.Pair) error {
	if err := p.Check(); err != nil {
		return fmt.Errorf("could not save invalid pair: %w: %w", store.ErrPersistence, err)
	}
	doc, err := newPairDoc(p)
	if err != nil {
		return fmt.Errorf("could not convert pair %s: %w: %w", p, store.ErrPersistence, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.pairs.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, opts); err != nil {
		return fmt.Errorf("could not save pair %s: %w: %w", p, store.ErrPersistence, err)
	}
	return nil
}

func (s *Store) DeletePair(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result, err := s.pairs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("could not delete pair %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("pair %s: %w", id, os.ErrNotExist)
	}
	return nil
}

func (s *Store) SaveOrder(ctx context.Context, order *gobs.OrderRecord) error {
	if len(order.PairID) == 0 || len(order.ID) == 0 {
		return fmt.Errorf("order record must have an id and pair id: %w", store.ErrPersistence)
	}
	doc, err := newOrderDoc(order)
	if err != nil {
		return fmt.Errorf("could not convert order %s: %w: %w", order.ID, store.ErrPersistence, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if _, err := s.orders.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("could not save order %s for pair %s: %w: %w", order.ID, order.PairID, store.ErrPersistence, err)
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, pairID string) ([]*gobs.OrderRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	filter := bson.M{}
	if len(pairID) != 0 {
		filter["pair_id"] = pairID
	}
	opts := options.Find().SetSort(bson.D{{Key: "pair_id", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("could not query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode order documents: %w", err)
	}
	orders := make([]*gobs.OrderRecord, 0, len(docs))
	for _, doc := range docs {
		order, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Store) LastOrder(ctx context.Context, pairID string) (*gobs.OrderRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	doc := new(orderDoc)
	if err := s.orders.FindOne(ctx, bson.M{"pair_id": pairID}, opts).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no orders for pair %s: %w", pairID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("could not query last order for pair %s: %w", pairID, err)
	}
	return doc.toRecord()
}
