// Copyright (c) 2025 BVK Chaitanya

package events

import (
	"context"
	"log/slog"
)

// Log writes one structured log line for the event. Errors are logged at the
// warning level.
func Log(ctx context.Context, e *Event) {
	attrs := []any{"kind", e.Kind}
	if e.Cycle != 0 {
		attrs = append(attrs, "cycle", e.Cycle)
	}
	if len(e.Pairs) != 0 {
		attrs = append(attrs, "npairs", len(e.Pairs))
	}
	if e.Pair != nil {
		attrs = append(attrs, "pair", e.Pair.String(), "price", e.Pair.ExchangePrice, "order-price", e.Pair.OrderPrice)
	}

	switch e.Kind {
	case PriceChange:
		attrs = append(attrs, "change", e.Change.StringFixed(2))
	case MakeOrder, OrderDone:
		attrs = append(attrs, "type", e.OrderType)
		if len(e.OrderID) != 0 {
			attrs = append(attrs, "order-id", e.OrderID)
		}
	}

	if e.Err != nil {
		slog.WarnContext(ctx, "monitor event", append(attrs, "err", e.Err)...)
		return
	}
	if e.Kind == CheckPair {
		slog.DebugContext(ctx, "monitor event", attrs...)
		return
	}
	slog.InfoContext(ctx, "monitor event", attrs...)
}
