// Copyright (c) 2025 BVK Chaitanya

package monitor

import (
	"fmt"
	"os"
	"time"

	"github.com/bvk/coinmonitor/pair"
)

const DefaultRefreshInterval = 30 * time.Second

type Options struct {
	// RefreshInterval is the delay between the end of a cycle and the start of
	// the next cycle.
	RefreshInterval time.Duration

	// DefaultPairs are monitored when the pair source has no pairs.
	DefaultPairs []*pair.Pair

	// CallTimeout when non-zero limits each exchange call.
	CallTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.RefreshInterval == 0 {
		v.RefreshInterval = DefaultRefreshInterval
	}
}

func (v *Options) Check() error {
	if v.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval cannot be negative: %w", os.ErrInvalid)
	}
	if v.CallTimeout < 0 {
		return fmt.Errorf("call timeout cannot be negative: %w", os.ErrInvalid)
	}
	for _, p := range v.DefaultPairs {
		if err := p.Check(); err != nil {
			return fmt.Errorf("invalid default pair: %w", err)
		}
	}
	return nil
}
