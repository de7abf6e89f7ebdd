// Copyright (c) 2025 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/coinmonitor/subcmds"
	"github.com/bvk/coinmonitor/subcmds/db"
	"github.com/bvk/coinmonitor/subcmds/orders"
	"github.com/bvk/coinmonitor/subcmds/pairs"
	"github.com/bvk/coinmonitor/subcmds/setup"
	"github.com/visvasity/cli"
)

func main() {
	pairCmds := []cli.Command{
		new(pairs.Add),
		new(pairs.List),
		new(pairs.Remove),
	}

	orderCmds := []cli.Command{
		new(orders.List),
	}

	dbCmds := []cli.Command{
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	setupCmds := []cli.Command{
		new(setup.CoinEx),
		new(setup.Pushover),
		new(setup.Telegram),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Status),
		cli.NewGroup("pairs", "Manage the monitored coin pairs", pairCmds...),
		cli.NewGroup("orders", "View the placed orders", orderCmds...),
		cli.NewGroup("db", "View/update database directly", dbCmds...),
		cli.NewGroup("setup", "Configure exchange and alert credentials", setupCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
