// Copyright (c) 2025 BVK Chaitanya

package orders

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/bvk/coinmonitor/subcmds/pairs"
	"github.com/visvasity/cli"
)

type List struct {
	cmdutil.DBFlags

	limit int
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.IntVar(&c.limit, "limit", 0, "when non-zero prints only the last few orders")
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) Purpose() string {
	return "Prints the orders for all pairs or one pair"
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("command takes at most one (pair id or name) argument")
	}

	st, closer, err := c.DBFlags.GetStore(ctx)
	if err != nil {
		return fmt.Errorf("could not open the store: %w", err)
	}
	defer closer()

	var pairID string
	if len(args) == 1 {
		p, err := pairs.Resolve(ctx, st, args[0])
		if err != nil {
			return err
		}
		pairID = p.ID
	}

	orders, err := st.ListOrders(ctx, pairID)
	if err != nil {
		return err
	}
	if c.limit > 0 && len(orders) > c.limit {
		orders = orders[len(orders)-c.limit:]
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 8, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Time\tType\tExchange\tProduct\tAmount\tPrice\tOrderID\t")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s-%s\t%s\t%s\t%s\t\n",
			o.CreateTime.Format("2006-01-02 15:04:05"), o.Type, o.ExchangeName, o.Coin, o.BaseCoin, o.Amount, o.Price, o.ExchangeOrderID)
	}
	return tw.Flush()
}
