// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"fmt"
	"os"
	"time"

	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/paper"
	"github.com/bvk/coinmonitor/policy"
)

type Options struct {
	// RefreshInterval is the delay between monitoring cycles.
	RefreshInterval time.Duration

	// CallTimeout when non-zero limits each exchange call.
	CallTimeout time.Duration

	// DefaultPairs are monitored when the store has no pairs.
	DefaultPairs []*pair.Pair

	Thresholds policy.ThresholdOptions

	// SummaryInterval is the interval for the pairs summary alert. Zero
	// disables the summary alerts.
	SummaryInterval time.Duration

	// BackupInterval is the interval for the database backup job. Zero
	// disables the periodic backups.
	BackupInterval time.Duration

	// BackupDir is the directory for backup files.
	BackupDir string

	// AlertFreezeTimeout is the minimum duration between two error alerts for
	// the same pair.
	AlertFreezeTimeout time.Duration

	// PaperPrices when non-nil is the price source for the paper exchange.
	// Public coinex ticker prices are used otherwise.
	PaperPrices paper.PriceFunc
}

func (v *Options) setDefaults() {
	if v.AlertFreezeTimeout == 0 {
		v.AlertFreezeTimeout = time.Hour
	}
	if v.BackupInterval != 0 && len(v.BackupDir) == 0 {
		v.BackupDir = os.TempDir()
	}
}

func (v *Options) Check() error {
	if v.RefreshInterval < 0 || v.CallTimeout < 0 {
		return fmt.Errorf("refresh interval and call timeout cannot be negative: %w", os.ErrInvalid)
	}
	if v.SummaryInterval < 0 || v.BackupInterval < 0 {
		return fmt.Errorf("job intervals cannot be negative: %w", os.ErrInvalid)
	}
	if v.AlertFreezeTimeout < 0 {
		return fmt.Errorf("alert freeze timeout cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
