// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bvk/coinmonitor/events"
)

// alertOnEvent sends alerts for the completed orders and the pair errors.
// Repeated errors for a pair are suppressed till the freeze deadline.
func (s *Server) alertOnEvent(ctx context.Context, e *events.Event) {
	switch e.Kind {
	case events.OrderDone:
		p := e.Pair
		if e.Err != nil {
			s.SendMessage(ctx, e.Time, "%s order %s for %s %s at price %s is placed, but could not be saved: %v",
				e.OrderType, e.OrderID, p.Amount, p, p.ExchangePrice, e.Err)
			return
		}
		s.SendMessage(ctx, e.Time, "%s order %s for %s %s is placed at price %s after %s%% change.",
			e.OrderType, e.OrderID, p.Amount, p, p.ExchangePrice, p.PriceChange.StringFixed(2))

	case events.PairError:
		if e.Pair == nil || e.Err == nil {
			return
		}
		key := fmt.Sprintf("alerts/pair-error/%s", e.Pair.ID)
		if !s.freezeAlert(key, e.Time) {
			return
		}
		s.SendMessage(ctx, e.Time, "Pair %s has failed in cycle %d: %v", e.Pair, e.Cycle, e.Err)
	}
}

// freezeAlert returns true if an alert for the key can be sent now and
// freezes further alerts for the key.
func (s *Server) freezeAlert(key string, now time.Time) bool {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()

	if deadline, ok := s.alertFreezeDeadlineMap[key]; ok {
		if now.Before(deadline) {
			return false
		}
		delete(s.alertFreezeDeadlineMap, key)
	}
	s.alertFreezeDeadlineMap[key] = now.Add(s.opts.AlertFreezeTimeout)
	return true
}

// summary returns one line per pair with the latest price and change.
func (s *Server) summary() string {
	pairs := s.engine.Pairs()
	if len(pairs) == 0 {
		return "No pairs are monitored."
	}
	var sb strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&sb, "%s: price %s reference %s change %s%%\n",
			p, p.ExchangePrice, p.OrderPrice, p.PriceChange.StringFixed(2))
	}
	return sb.String()
}
