// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"fmt"
)

// NewByTypename returns a pointer to a zero value of the named gob type. It
// is used by the database commands to decode raw values.
func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "PairState":
		v = new(PairState)
	case "OrderRecord":
		v = new(OrderRecord)
	case "KeyValue":
		v = new(KeyValue)
	case "TelegramState":
		v = new(TelegramState)
	case "ServerState":
		v = new(ServerState)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
