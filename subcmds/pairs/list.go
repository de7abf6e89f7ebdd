// Copyright (c) 2025 BVK Chaitanya

package pairs

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type List struct {
	cmdutil.DBFlags
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) Purpose() string {
	return "Prints the saved pairs with their last prices"
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	st, closer, err := c.DBFlags.GetStore(ctx)
	if err != nil {
		return fmt.Errorf("could not open the store: %w", err)
	}
	defer closer()

	pairs, err := st.PairsToTrade(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.Stdout(ctx), 8, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPair\tAmount\tPrice\tReference\tChange\tUpdated\t")
	for _, p := range pairs {
		updated := "-"
		if !p.UpdateTime.IsZero() {
			updated = p.UpdateTime.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s%%\t%s\t\n",
			p.ID, p, p.Amount, p.ExchangePrice, p.OrderPrice, p.PriceChange.StringFixed(2), updated)
	}
	return tw.Flush()
}
