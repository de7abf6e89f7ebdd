// Copyright (c) 2025 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	var ndone atomic.Int32
	for i := 0; i < 100; i++ {
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
			ndone.Add(1)
		})
	}

	cg.Close()
	if n := ndone.Load(); n != 100 {
		t.Fatalf("want 100 goroutines done, got %d", n)
	}
	if err := context.Cause(cg.Context()); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("want os.ErrClosed cause, got %v", err)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(os.ErrClosed)
	if err := Sleep(ctx, time.Hour); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("want os.ErrClosed, got %v", err)
	}
}

func TestRetryTimeout(t *testing.T) {
	var n int
	err := RetryTimeout(context.Background(), time.Millisecond, time.Second, func() error {
		if n++; n < 3 {
			return os.ErrDeadlineExceeded
		}
		return nil
	})
	if err != nil || n != 3 {
		t.Fatalf("want success on the third attempt, got %v after %d", err, n)
	}
}
