// Copyright (c) 2025 BVK Chaitanya

// Package setup implements the commands that configure the secrets file.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvk/coinmonitor/server"
	"github.com/bvk/coinmonitor/subcmds/cmdutil"
	"golang.org/x/term"
)

func secretsPath(dataDir string) (string, error) {
	dir, err := cmdutil.DataDir(dataDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "secrets.json"), nil
}

func saveSecrets(fpath string, secrets *server.Secrets) error {
	if err := secrets.Check(); err != nil {
		return err
	}
	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, js, os.FileMode(0600))
}

// readSecret prompts for a value on the terminal without echo.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("standard input is not a terminal to read %s", prompt)
	}
	fmt.Printf("%s: ", prompt)
	data, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", prompt, err)
	}
	return string(data), nil
}
