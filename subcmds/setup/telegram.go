// Copyright (c) 2025 BVK Chaitanya

package setup

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bvk/coinmonitor/ctxutil"
	"github.com/bvk/coinmonitor/server"
	"github.com/bvk/coinmonitor/telegram"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type Telegram struct {
	dataDir     string
	skipTesting bool

	ownerID  string
	otherIDs string
	botToken string
}

func (c *Telegram) Purpose() string {
	return "Configures the Telegram bot for alerts and commands"
}

func (c *Telegram) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("telegram", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.ownerID, "owner-id", "", "Owner's telegram user name")
	fset.StringVar(&c.otherIDs, "other-ids", "", "Comma separated list of other telegram user names")
	fset.StringVar(&c.botToken, "bot-token", "", "Telegram bot's authentication token (prompted when empty)")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "telegram", fset, cli.CmdFunc(c.run)
}

func (c *Telegram) Description() string {
	return `
Command "telegram" configures alerts to a Telegram account through a Telegram
bot. Authorized users can also run bot commands like /status and /pairs:

  $ coinmonitor setup telegram --owner-id=username

`
}

func (c *Telegram) run(ctx context.Context, args []string) error {
	if len(c.botToken) == 0 {
		token, err := readSecret("Telegram bot token")
		if err != nil {
			return err
		}
		c.botToken = token
	}

	fpath, err := secretsPath(c.dataDir)
	if err != nil {
		return err
	}
	secrets, err := server.SecretsFromFile(fpath)
	if err != nil {
		return err
	}

	var others []string
	for _, id := range strings.Split(c.otherIDs, ",") {
		if id = strings.TrimSpace(id); len(id) != 0 {
			others = append(others, id)
		}
	}
	secrets.Telegram = &telegram.Secrets{
		OwnerID:  c.ownerID,
		OtherIDs: others,
		BotToken: c.botToken,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		if err := waitForKey("Start a chat with the telegram bot and then press any key"); err != nil {
			return err
		}
		client, err := telegram.New(ctx, kvmemdb.New(), secrets.Telegram)
		if err != nil {
			return err
		}
		defer client.Close()

		ctxutil.Sleep(ctx, time.Second)
		if err := client.SendMessage(ctx, time.Now(), "Test message from coinmonitor setup; please ignore."); err != nil {
			return err
		}
	}
	return saveSecrets(fpath, secrets)
}

func waitForKey(prompt string) error {
	fmt.Println(prompt)
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("could not switch terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil {
		return err
	}
	return nil
}
