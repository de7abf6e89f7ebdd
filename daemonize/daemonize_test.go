// Copyright (c) 2025 BVK Chaitanya

package daemonize

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestInvalidParentPid(t *testing.T) {
	const key = "COINMONITOR_TEST_DAEMONIZE"
	t.Setenv(key, "not-a-pid")

	if err := Daemonize(context.Background(), key, nil); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want os.ErrInvalid, got %v", err)
	}
}
