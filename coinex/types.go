// Copyright (c) 2025 BVK Chaitanya

package coinex

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// APIError is returned when the exchange responds with a non-zero status
// code.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinex api failed with code=%d message=%s", e.Code, e.Message)
}

type genericResponse struct {
	Code int `json:"code"`

	Message string `json:"message"`

	Data json.RawMessage `json:"data"`
}

type MarketInfo struct {
	Market string `json:"market"`

	LastPrice decimal.Decimal `json:"last"`

	OpenPrice decimal.Decimal `json:"open"`
	HighPrice decimal.Decimal `json:"high"`
	LowPrice  decimal.Decimal `json:"low"`

	FilledVolume decimal.Decimal `json:"volume"`
	FilledValue  decimal.Decimal `json:"value"`

	TimePeriod int64 `json:"period"`
}

type CreateOrderRequest struct {
	ClientOrderID string          `json:"client_id"`
	Market        string          `json:"market"`
	MarketType    string          `json:"market_type"`
	Side          string          `json:"side"`
	OrderType     string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price,omitempty"`
}

type Order struct {
	OrderID        int64           `json:"order_id"`
	ClientOrderID  string          `json:"client_id"`
	Market         string          `json:"market"`
	MarketType     string          `json:"market_type"`
	Side           string          `json:"side"`
	OrderType      string          `json:"type"`
	OrderAmount    decimal.Decimal `json:"amount"`
	FilledAmount   decimal.Decimal `json:"filled_amount"`
	FilledValue    decimal.Decimal `json:"filled_value"`
	CreatedAtMilli int64           `json:"created_at"`
	UpdatedAtMilli int64           `json:"updated_at"`
}
