// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bvk/coinmonitor/coinex"
	"github.com/bvk/coinmonitor/pushover"
	"github.com/bvk/coinmonitor/telegram"
)

// Secrets holds the exchange api keys and the alert service credentials. All
// sections are optional.
type Secrets struct {
	CoinEx   *coinex.Credentials `json:"coinex"`
	Pushover *pushover.Keys      `json:"pushover"`
	Telegram *telegram.Secrets   `json:"telegram"`
}

// SecretsFromFile reads the secrets from a json file. A missing file is the
// same as an empty secrets file.
func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		if os.IsNotExist(err) {
			return new(Secrets), nil
		}
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not parse secrets file %q: %w", fpath, err)
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("invalid secrets in file %q: %w", fpath, err)
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.CoinEx != nil {
		if err := v.CoinEx.Check(); err != nil {
			return err
		}
	}
	if v.Pushover != nil {
		if err := v.Pushover.Check(); err != nil {
			return err
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return err
		}
	}
	return nil
}
