// Copyright (c) 2025 BVK Chaitanya

package pairs

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Add struct {
	cmdutil.DBFlags
}

func (c *Add) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "add", fset, cli.CmdFunc(c.run)
}

func (c *Add) Purpose() string {
	return "Adds coin pairs to monitor"
}

func (c *Add) Description() string {
	return `
Command "add" saves one or more pairs in exchange:COIN-BASE[:amount] form, for
example paper:BTC-USD:0.01 or coinex:ETH-USDT. Amount defaults to one coin.
Prices are initialized when the daemon loads the pairs on its next start.
`
}

func (c *Add) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("command takes one or more pair arguments")
	}
	var pairs []*pair.Pair
	for _, arg := range args {
		p, err := pair.Parse(arg)
		if err != nil {
			return err
		}
		pairs = append(pairs, p)
	}

	st, closer, err := c.DBFlags.GetStore(ctx)
	if err != nil {
		return fmt.Errorf("could not open the store: %w", err)
	}
	defer closer()

	stdout := cli.Stdout(ctx)
	for _, p := range pairs {
		if _, err := st.GetPair(ctx, p.ID); err == nil {
			return fmt.Errorf("pair %s already exists: %w", p, os.ErrExist)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := st.SavePair(ctx, p); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s %s\n", p.ID, p)
	}
	return nil
}
