// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bvk/coinmonitor/api"
	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/dustin/go-humanize"
	"github.com/visvasity/cli"
)

type Status struct {
	cmdutil.ClientFlags

	showPairs bool
}

func (c *Status) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.showPairs, "pairs", true, "when true also prints the monitored pairs")
	return "status", fset, cli.CmdFunc(c.run)
}

func (c *Status) Purpose() string {
	return "Prints the status of a running coinmonitor daemon"
}

func (c *Status) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	status, err := cmdutil.Get[api.StatusResponse](ctx, &c.ClientFlags, api.StatusPath, nil)
	if err != nil {
		return fmt.Errorf("could not get daemon status: %w", err)
	}
	if err := status.Check(); err != nil {
		return err
	}

	stdout := cli.Stdout(ctx)
	fmt.Fprintf(stdout, "PID: %d\n", status.PID)
	fmt.Fprintf(stdout, "Memory: %s\n", humanize.IBytes(status.RSS))
	fmt.Fprintf(stdout, "Uptime: %s\n", status.Uptime)
	fmt.Fprintf(stdout, "State: %s\n", status.State)
	fmt.Fprintf(stdout, "Cycle: %d\n", status.Cycle)
	if !status.LastCycleTime.IsZero() {
		fmt.Fprintf(stdout, "Last Cycle: %s\n", humanize.Time(status.LastCycleTime))
	}
	fmt.Fprintf(stdout, "Exchanges: %s\n", strings.Join(status.Exchanges, ", "))
	if !status.LastBackupTime.IsZero() {
		fmt.Fprintf(stdout, "Last Backup: %s (%s)\n", status.LastBackupFile, humanize.Time(status.LastBackupTime))
	}

	if !c.showPairs {
		return nil
	}
	pairs, err := cmdutil.Get[api.PairsResponse](ctx, &c.ClientFlags, api.PairsPath, nil)
	if err != nil {
		return fmt.Errorf("could not get monitored pairs: %w", err)
	}
	fmt.Fprintln(stdout)
	tw := tabwriter.NewWriter(stdout, 8, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Pair\tPrice\tReference\tChange\t")
	for _, p := range pairs.Pairs {
		fmt.Fprintf(tw, "%s:%s-%s\t%s\t%s\t%s%%\t\n",
			p.ExchangeName, p.Coin, p.BaseCoin, p.ExchangePrice, p.OrderPrice, p.PriceChange.StringFixed(2))
	}
	return tw.Flush()
}
