// Copyright (c) 2025 BVK Chaitanya

package kvutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvkgo/kv/kvmemdb"
)

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()

	db := kvmemdb.New()
	for _, id := range []string{"a", "b", "c"} {
		state := &gobs.PairState{ID: id, Coin: "BTC", BaseCoin: "USD", ExchangeName: "paper"}
		if err := SetDB(ctx, db, "/pairs/"+id, state); err != nil {
			t.Fatal(err)
		}
	}

	file := filepath.Join(t.TempDir(), "backup.gob")
	if err := BackupDB(ctx, db, file); err != nil {
		t.Fatal(err)
	}

	other := kvmemdb.New()
	if err := SetDB(ctx, other, "/stale", &gobs.KeyValue{Key: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := RestoreDB(ctx, other, file); err != nil {
		t.Fatal(err)
	}

	if _, err := GetDB[gobs.KeyValue](ctx, other, "/stale"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want stale key removed, got %v", err)
	}

	var ids []string
	begin, end := PathRange("/pairs")
	if err := WalkDB(ctx, other, begin, end, func(_ context.Context, _ string, v *gobs.PairState) error {
		ids = append(ids, v.ID)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Fatalf("want [a b c], got %v", ids)
	}

	key, last, err := LastDB[gobs.PairState](ctx, other, begin, end)
	if err != nil {
		t.Fatal(err)
	}
	if key != "/pairs/c" || last.ID != "c" {
		t.Fatalf("want last key /pairs/c, got %s", key)
	}

	begin, end = PathRange("/orders")
	if _, _, err := LastDB[gobs.PairState](ctx, other, begin, end); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist for empty range, got %v", err)
	}
}
