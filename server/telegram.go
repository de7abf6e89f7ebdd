// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/visvasity/cli"
)

func (s *Server) addTelegramCommands(ctx context.Context) error {
	if s.telegramClient == nil {
		return nil
	}
	if err := s.telegramClient.AddCommand(ctx, "status", "Prints the monitor status", s.statusTelegramCmd); err != nil {
		return err
	}
	if err := s.telegramClient.AddCommand(ctx, "pairs", "Prints the monitored pairs", s.pairsTelegramCmd); err != nil {
		return err
	}
	if err := s.telegramClient.AddCommand(ctx, "orders", "Prints the recent orders for all or one pair", s.ordersTelegramCmd); err != nil {
		return err
	}
	return nil
}

func (s *Server) statusTelegramCmd(ctx context.Context, args []string) error {
	resp, err := s.Status(ctx)
	if err != nil {
		return err
	}
	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "State: %s\n", resp.State)
	fmt.Fprintf(stdout, "Cycle: %d\n", resp.Cycle)
	fmt.Fprintf(stdout, "Pairs: %d\n", resp.NumPairs)
	fmt.Fprintf(stdout, "Uptime: %s\n", resp.Uptime)
	if !resp.LastCycleTime.IsZero() {
		fmt.Fprintf(stdout, "Last Cycle: %s\n", resp.LastCycleTime.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func (s *Server) pairsTelegramCmd(ctx context.Context, args []string) error {
	fmt.Fprint(cli.Stdout(ctx), s.summary())
	return nil
}

// ordersTelegramCmd prints the last few orders. An optional argument selects
// the pair by its id or its exchange:COIN-BASE name.
func (s *Server) ordersTelegramCmd(ctx context.Context, args []string) error {
	const limit = 10

	var pairID string
	if len(args) > 0 {
		for _, p := range s.engine.Pairs() {
			if p.ID == args[0] || strings.EqualFold(p.String(), args[0]) {
				pairID = p.ID
				break
			}
		}
		if len(pairID) == 0 {
			return fmt.Errorf("pair %q is not monitored", args[0])
		}
	}

	orders, err := s.store.ListOrders(ctx, pairID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(cli.Stdout(ctx), "No orders.")
		return nil
	}
	if len(orders) > limit {
		orders = orders[len(orders)-limit:]
	}
	stdout := cli.Stdout(ctx)
	for _, o := range orders {
		fmt.Fprintf(stdout, "%s %s %s %s-%s at %s on %s\n",
			o.CreateTime.Format("01-02 15:04"), o.Type, o.Amount, o.Coin, o.BaseCoin, o.Price, o.ExchangeName)
	}
	return nil
}
