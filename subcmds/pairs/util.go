// Copyright (c) 2025 BVK Chaitanya

package pairs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/store"
)

// Resolve finds a stored pair by its id or its exchange:COIN-BASE name.
func Resolve(ctx context.Context, st store.Store, arg string) (*pair.Pair, error) {
	if p, err := st.GetPair(ctx, arg); err == nil {
		return p, nil
	}
	pairs, err := st.PairsToTrade(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load pairs: %w", err)
	}
	for _, p := range pairs {
		if strings.EqualFold(p.String(), arg) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("pair %q is not found: %w", arg, os.ErrNotExist)
}
