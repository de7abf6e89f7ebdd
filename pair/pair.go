// Copyright (c) 2025 BVK Chaitanya

// Package pair defines the tracked coin/exchange pair type.
package pair

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// namespace is used to derive stable pair ids from the pair names.
var namespace = uuid.MustParse("6f1f3a53-7c1e-4b8e-9d2a-3b5e0c7d9a41")

// Pair is one coin monitored against a base coin on an exchange. A zero
// price or amount field means the value is not yet known.
type Pair struct {
	ID string

	Coin         string
	BaseCoin     string
	ExchangeName string

	Amount decimal.Decimal

	// ExchangePrice is the most recently fetched price.
	ExchangePrice decimal.Decimal

	// OrderPrice is the reference price used for computing the price change.
	// It is the price at the last order or at initialization.
	OrderPrice decimal.Decimal

	// StartPrice is the first seen price and is never updated once set.
	StartPrice decimal.Decimal

	// PriceChange is the last computed percent change.
	PriceChange decimal.Decimal

	CreateTime time.Time
	UpdateTime time.Time
}

// New returns a pair with an id derived from the exchange, coin and base
// coin names.
func New(exchangeName, coin, baseCoin string, amount decimal.Decimal) *Pair {
	p := &Pair{
		Coin:         strings.ToUpper(coin),
		BaseCoin:     strings.ToUpper(baseCoin),
		ExchangeName: strings.ToLower(exchangeName),
		Amount:       amount,
		CreateTime:   time.Now(),
	}
	p.ID = uuid.NewSHA1(namespace, []byte(p.String())).String()
	return p
}

// Parse parses a pair from "exchange:COIN-BASE" or "exchange:COIN-BASE:amount"
// text.
func Parse(s string) (*Pair, error) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) != 2 && len(fields) != 3 {
		return nil, fmt.Errorf("pair %q must be in exchange:COIN-BASE[:amount] form: %w", s, os.ErrInvalid)
	}
	coin, base, ok := strings.Cut(fields[1], "-")
	if !ok || len(coin) == 0 || len(base) == 0 || len(fields[0]) == 0 {
		return nil, fmt.Errorf("pair %q has invalid exchange or product: %w", s, os.ErrInvalid)
	}
	var amount decimal.Decimal
	if len(fields) == 3 {
		v, err := decimal.NewFromString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("could not parse amount in pair %q: %w", s, err)
		}
		if !v.IsPositive() {
			return nil, fmt.Errorf("pair %q amount must be positive: %w", s, os.ErrInvalid)
		}
		amount = v
	}
	return New(fields[0], coin, base, amount), nil
}

// ParseList parses a comma separated list of pairs.
func ParseList(s string) ([]*Pair, error) {
	var pairs []*Pair
	for _, item := range strings.Split(s, ",") {
		if len(strings.TrimSpace(item)) == 0 {
			continue
		}
		p, err := Parse(item)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func (p *Pair) String() string {
	return fmt.Sprintf("%s:%s", p.ExchangeName, p.ProductID())
}

func (p *Pair) ProductID() string {
	return p.Coin + "-" + p.BaseCoin
}

func (p *Pair) Check() error {
	if len(p.ID) == 0 {
		return fmt.Errorf("pair id cannot be empty: %w", os.ErrInvalid)
	}
	if len(p.Coin) == 0 || len(p.BaseCoin) == 0 {
		return fmt.Errorf("pair %s coin names cannot be empty: %w", p.ID, os.ErrInvalid)
	}
	if len(p.ExchangeName) == 0 {
		return fmt.Errorf("pair %s exchange name cannot be empty: %w", p.ID, os.ErrInvalid)
	}
	if p.Amount.IsNegative() {
		return fmt.Errorf("pair %s amount cannot be negative: %w", p.ID, os.ErrInvalid)
	}
	return nil
}

// NeedsInit returns true if any of the baseline fields are not set.
func (p *Pair) NeedsInit() bool {
	return p.OrderPrice.IsZero() || p.StartPrice.IsZero() || p.ExchangePrice.IsZero() || p.Amount.IsZero()
}

// Init fills the missing baseline fields with the input price and a default
// amount of one. Fields that are already set are left untouched.
func (p *Pair) Init(price decimal.Decimal) {
	if p.OrderPrice.IsZero() {
		p.OrderPrice = price
	}
	if p.StartPrice.IsZero() {
		p.StartPrice = price
	}
	if p.ExchangePrice.IsZero() {
		p.ExchangePrice = price
	}
	if p.Amount.IsZero() {
		p.Amount = decimal.NewFromInt(1)
	}
}

// Clone returns a copy of the pair. Decimal values are immutable so a shallow
// copy is sufficient.
func (p *Pair) Clone() *Pair {
	v := *p
	return &v
}

func (p *Pair) ToGob() *gobs.PairState {
	return &gobs.PairState{
		ID:            p.ID,
		Coin:          p.Coin,
		BaseCoin:      p.BaseCoin,
		ExchangeName:  p.ExchangeName,
		Amount:        p.Amount,
		ExchangePrice: p.ExchangePrice,
		OrderPrice:    p.OrderPrice,
		StartPrice:    p.StartPrice,
		PriceChange:   p.PriceChange,
		CreateTime:    p.CreateTime,
		UpdateTime:    p.UpdateTime,
	}
}

func FromGob(s *gobs.PairState) *Pair {
	return &Pair{
		ID:            s.ID,
		Coin:          s.Coin,
		BaseCoin:      s.BaseCoin,
		ExchangeName:  s.ExchangeName,
		Amount:        s.Amount,
		ExchangePrice: s.ExchangePrice,
		OrderPrice:    s.OrderPrice,
		StartPrice:    s.StartPrice,
		PriceChange:   s.PriceChange,
		CreateTime:    s.CreateTime,
		UpdateTime:    s.UpdateTime,
	}
}
