// Copyright (c) 2025 BVK Chaitanya

package db

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinmonitor/kvutil"
	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Restore struct {
	cmdutil.DBFlags
}

func (c *Restore) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("restore", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "restore", fset, cli.CmdFunc(c.run)
}

func (c *Restore) Purpose() string {
	return "Replaces the database content with a backup file"
}

func (c *Restore) Description() string {
	return `
Command "restore" deletes all keys in the target database and loads the
key-value items from a backup file created by the "backup" command. Restoring
into the remote database of a running daemon is not recommended because the
daemon keeps its pairs in memory.
`
}

func (c *Restore) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (input backup file) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return fmt.Errorf("could not get database instance: %w", err)
	}
	defer closer()

	if err := kvutil.RestoreDB(ctx, db, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "database is restored from %s\n", args[0])
	return nil
}
