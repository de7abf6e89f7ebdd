// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/coinmonitor/pushover"
	"github.com/bvk/coinmonitor/server"
	"github.com/visvasity/cli"
)

type Pushover struct {
	dataDir     string
	skipTesting bool
	appKey      string
	userKey     string
}

func (c *Pushover) Purpose() string {
	return "Configures Pushover notification keys"
}

func (c *Pushover) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("pushover", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.appKey, "application-key", "", "Pushover application key")
	fset.StringVar(&c.userKey, "user-key", "", "Pushover user key")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't send a test message")
	return "pushover", fset, cli.CmdFunc(c.run)
}

func (c *Pushover) run(ctx context.Context, args []string) error {
	if len(c.appKey) == 0 || len(c.userKey) == 0 {
		return fmt.Errorf("--application-key and --user-key flags are required")
	}

	fpath, err := secretsPath(c.dataDir)
	if err != nil {
		return err
	}
	secrets, err := server.SecretsFromFile(fpath)
	if err != nil {
		return err
	}
	secrets.Pushover = &pushover.Keys{
		ApplicationKey: c.appKey,
		UserKey:        c.userKey,
	}

	if !c.skipTesting {
		client, err := pushover.New(secrets.Pushover)
		if err != nil {
			return err
		}
		if err := client.SendMessage(ctx, time.Now(), "Test message from coinmonitor setup; please ignore."); err != nil {
			return err
		}
	}
	return saveSecrets(fpath, secrets)
}
