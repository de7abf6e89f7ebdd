// Copyright (c) 2025 BVK Chaitanya

package pairs

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Remove struct {
	cmdutil.DBFlags
}

func (c *Remove) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("remove", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "remove", fset, cli.CmdFunc(c.run)
}

func (c *Remove) Purpose() string {
	return "Removes a pair by its id or name"
}

func (c *Remove) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (pair id or name) argument")
	}

	st, closer, err := c.DBFlags.GetStore(ctx)
	if err != nil {
		return fmt.Errorf("could not open the store: %w", err)
	}
	defer closer()

	p, err := Resolve(ctx, st, args[0])
	if err != nil {
		return err
	}
	if err := st.DeletePair(ctx, p.ID); err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "removed %s %s\n", p.ID, p)
	return nil
}
