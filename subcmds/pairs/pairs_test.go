// Copyright (c) 2025 BVK Chaitanya

package pairs

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

func runCmd(ctx context.Context, t *testing.T, cmd cli.Command, args ...string) (string, error) {
	t.Helper()

	_, fset, run := cmd.Command()
	if err := fset.Parse(args); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	err := run(cli.WithStdout(ctx, &out), fset.Args())
	return out.String(), err
}

func TestAddListRemove(t *testing.T) {
	t.Setenv(cmdutil.MongoURIEnv, "")

	ctx := context.Background()
	dir := t.TempDir()

	out, err := runCmd(ctx, t, new(Add), "-data-dir", dir, "paper:btc-usd:0.5", "coinex:ETH-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "paper:BTC-USD") || !strings.Contains(out, "coinex:ETH-USDT") {
		t.Fatalf("unexpected add output %q", out)
	}

	if _, err := runCmd(ctx, t, new(Add), "-data-dir", dir, "paper:BTC-USD"); !errors.Is(err, os.ErrExist) {
		t.Fatalf("want os.ErrExist for a duplicate pair, got %v", err)
	}

	out, err = runCmd(ctx, t, new(List), "-data-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "paper:BTC-USD") || !strings.Contains(out, "0.5") {
		t.Fatalf("unexpected list output %q", out)
	}

	if _, err := runCmd(ctx, t, new(Remove), "-data-dir", dir, "PAPER:BTC-USD"); err != nil {
		t.Fatal(err)
	}
	out, err = runCmd(ctx, t, new(List), "-data-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "paper:BTC-USD") {
		t.Fatalf("removed pair is still listed: %q", out)
	}

	if _, err := runCmd(ctx, t, new(Remove), "-data-dir", dir, "paper:DOGE-USD"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist for unknown pair, got %v", err)
	}
}
