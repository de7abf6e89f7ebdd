// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/coinmonitor/coinex"
	"github.com/bvk/coinmonitor/server"
	"github.com/visvasity/cli"
)

type CoinEx struct {
	dataDir     string
	skipTesting bool
	key         string
	secret      string
}

func (c *CoinEx) Purpose() string {
	return "Configures CoinEx API access keys"
}

func (c *CoinEx) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("coinex", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.key, "access-key", "", "CoinEx API access key as a string")
	fset.StringVar(&c.secret, "access-secret", "", "CoinEx API access secret (prompted when empty)")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "coinex", fset, cli.CmdFunc(c.run)
}

func (c *CoinEx) Description() string {
	return `
Command "coinex" saves the CoinEx exchange API keys in the secrets file. Keys
are required to place orders for the coinex pairs:

  $ coinmonitor setup coinex --access-key=xxxx

The access secret is read from the terminal when it is not given as a flag.
`
}

func (c *CoinEx) run(ctx context.Context, args []string) error {
	if len(c.key) == 0 {
		return fmt.Errorf("--access-key flag is required")
	}
	if len(c.secret) == 0 {
		secret, err := readSecret("CoinEx access secret")
		if err != nil {
			return err
		}
		c.secret = secret
	}

	fpath, err := secretsPath(c.dataDir)
	if err != nil {
		return err
	}
	secrets, err := server.SecretsFromFile(fpath)
	if err != nil {
		return err
	}
	secrets.CoinEx = &coinex.Credentials{
		Key:    c.key,
		Secret: c.secret,
	}

	if !c.skipTesting {
		adapter, err := coinex.NewAdapter(secrets.CoinEx, nil /* opts */)
		if err != nil {
			return err
		}
		defer adapter.Close()

		price, err := adapter.GetCoinPrice(ctx, "BTC", "USDT")
		if err != nil {
			return fmt.Errorf("could not reach coinex api: %w", err)
		}
		fmt.Fprintf(cli.Stdout(ctx), "coinex BTC-USDT price is %s\n", price)
	}
	return saveSecrets(fpath, secrets)
}
