// Copyright (c) 2025 BVK Chaitanya

package mongostore

import (
	"fmt"
	"time"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/pair"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pairDoc struct {
	ID           string `bson:"_id"`
	Coin         string `bson:"coin"`
	BaseCoin     string `bson:"base_coin"`
	ExchangeName string `bson:"exchange"`

	Amount        primitive.Decimal128 `bson:"amount"`
	ExchangePrice primitive.Decimal128 `bson:"exchange_price"`
	OrderPrice    primitive.Decimal128 `bson:"order_price"`
	StartPrice    primitive.Decimal128 `bson:"start_price"`
	PriceChange   primitive.Decimal128 `bson:"price_change"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type orderDoc struct {
	ID              string `bson:"_id"`
	PairID          string `bson:"pair_id"`
	Coin            string `bson:"coin"`
	BaseCoin        string `bson:"base_coin"`
	ExchangeName    string `bson:"exchange"`
	Type            string `bson:"type"`
	ExchangeOrderID string `bson:"exchange_order_id"`

	Price  primitive.Decimal128 `bson:"price"`
	Amount primitive.Decimal128 `bson:"amount"`

	CreatedAt time.Time `bson:"created_at"`
}

// converter remembers the first conversion failure so that many fields can
// be converted before checking for an error.
type converter struct {
	err error
}

func (c *converter) toMongo(d decimal.Decimal) primitive.Decimal128 {
	if c.err != nil {
		return primitive.Decimal128{}
	}
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		c.err = fmt.Errorf("could not convert %s to decimal128: %w", d, err)
	}
	return v
}

func (c *converter) fromMongo(v primitive.Decimal128) decimal.Decimal {
	if c.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		c.err = fmt.Errorf("could not convert decimal128 %s: %w", v, err)
	}
	return d
}

func newPairDoc(p *pair.Pair) (*pairDoc, error) {
	var c converter
	doc := &pairDoc{
		ID:            p.ID,
		Coin:          p.Coin,
		BaseCoin:      p.BaseCoin,
		ExchangeName:  p.ExchangeName,
		Amount:        c.toMongo(p.Amount),
		ExchangePrice: c.toMongo(p.ExchangePrice),
		OrderPrice:    c.toMongo(p.OrderPrice),
		StartPrice:    c.toMongo(p.StartPrice),
		PriceChange:   c.toMongo(p.PriceChange),
		CreatedAt:     p.CreateTime,
		UpdatedAt:     p.UpdateTime,
	}
	if c.err != nil {
		return nil, c.err
	}
	return doc, nil
}

func (doc *pairDoc) toPair() (*pair.Pair, error) {
	var c converter
	p := &pair.Pair{
		ID:            doc.ID,
		Coin:          doc.Coin,
		BaseCoin:      doc.BaseCoin,
		ExchangeName:  doc.ExchangeName,
		Amount:        c.fromMongo(doc.Amount),
		ExchangePrice: c.fromMongo(doc.ExchangePrice),
		OrderPrice:    c.fromMongo(doc.OrderPrice),
		StartPrice:    c.fromMongo(doc.StartPrice),
		PriceChange:   c.fromMongo(doc.PriceChange),
		CreateTime:    doc.CreatedAt,
		UpdateTime:    doc.UpdatedAt,
	}
	if c.err != nil {
		return nil, fmt.Errorf("pair document %s: %w", doc.ID, c.err)
	}
	return p, nil
}

func newOrderDoc(order *gobs.OrderRecord) (*orderDoc, error) {
	var c converter
	doc := &orderDoc{
		ID:              order.ID,
		PairID:          order.PairID,
		Coin:            order.Coin,
		BaseCoin:        order.BaseCoin,
		ExchangeName:    order.ExchangeName,
		Type:            order.Type,
		ExchangeOrderID: order.ExchangeOrderID,
		Price:           c.toMongo(order.Price),
		Amount:          c.toMongo(order.Amount),
		CreatedAt:       order.CreateTime,
	}
	if c.err != nil {
		return nil, c.err
	}
	return doc, nil
}

func (doc *orderDoc) toRecord() (*gobs.OrderRecord, error) {
	var c converter
	order := &gobs.OrderRecord{
		ID:              doc.ID,
		PairID:          doc.PairID,
		Coin:            doc.Coin,
		BaseCoin:        doc.BaseCoin,
		ExchangeName:    doc.ExchangeName,
		Type:            doc.Type,
		ExchangeOrderID: doc.ExchangeOrderID,
		Price:           c.fromMongo(doc.Price),
		Amount:          c.fromMongo(doc.Amount),
		CreateTime:      doc.CreatedAt,
	}
	if c.err != nil {
		return nil, fmt.Errorf("order document %s: %w", doc.ID, c.err)
	}
	return order, nil
}
