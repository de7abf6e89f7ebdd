// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// PairState is the persistent form of a tracked coin/exchange pair.
type PairState struct {
	ID string

	Coin         string
	BaseCoin     string
	ExchangeName string

	Amount decimal.Decimal

	ExchangePrice decimal.Decimal
	OrderPrice    decimal.Decimal
	StartPrice    decimal.Decimal
	PriceChange   decimal.Decimal

	CreateTime time.Time
	UpdateTime time.Time
}

// OrderRecord is an immutable record for an order accepted by an exchange.
type OrderRecord struct {
	ID     string
	PairID string

	Coin         string
	BaseCoin     string
	ExchangeName string

	Type            string
	ExchangeOrderID string

	Price  decimal.Decimal
	Amount decimal.Decimal

	CreateTime time.Time
}

type KeyValue struct {
	Key   string
	Value []byte
}

type TelegramState struct {
	UserChatIDMap map[string]int64
}

// ServerState holds the daemon bookkeeping saved across restarts.
type ServerState struct {
	StartTime time.Time

	// LastBackupTime is updated by the periodic backup job.
	LastBackupTime time.Time
	LastBackupFile string
}
