// Copyright (c) 2025 BVK Chaitanya

// Package kvutil has typed helpers to store gob-encoded values in a
// key-value database.
package kvutil

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/bvkgo/kv"
)

func decode[T any](key string, r io.Reader) (*T, error) {
	v := new(T)
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return nil, fmt.Errorf("could not gob-decode value at key %q: %w", key, err)
	}
	return v, nil
}

// Get reads and decodes the value at key. Missing keys return an error
// wrapping os.ErrNotExist.
func Get[T any](ctx context.Context, g kv.Getter, key string) (*T, error) {
	r, err := g.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not get value at key %q: %w", key, err)
	}
	return decode[T](key, r)
}

func Set[T any](ctx context.Context, s kv.Setter, key string, value *T) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("could not gob-encode value for key %q: %w", key, err)
	}
	return s.Set(ctx, key, &buf)
}

func GetDB[T any](ctx context.Context, db kv.Database, key string) (value *T, err error) {
	err = kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		value, err = Get[T](ctx, r, key)
		return err
	})
	return value, err
}

func SetDB[T any](ctx context.Context, db kv.Database, key string, value *T) error {
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return Set(ctx, rw, key, value)
	})
}

// WalkFunc is invoked with every decoded key and value in a range. Returning
// a non-nil error stops the walk.
type WalkFunc[T any] func(ctx context.Context, key string, value *T) error

// Walk visits all values in the [begin, end) range in ascending key order.
func Walk[T any](ctx context.Context, r kv.Reader, begin, end string, fn WalkFunc[T]) error {
	it, err := r.Ascend(ctx, begin, end)
	if err != nil {
		return fmt.Errorf("could not create ascending iterator: %w", err)
	}
	defer kv.Close(it)

	for k, v, err := it.Fetch(ctx, false); err == nil; k, v, err = it.Fetch(ctx, true) {
		value, err := decode[T](k, v)
		if err != nil {
			return err
		}
		if err := fn(ctx, k, value); err != nil {
			return err
		}
	}
	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not complete the walk: %w", err)
	}
	return nil
}

func WalkDB[T any](ctx context.Context, db kv.Database, begin, end string, fn WalkFunc[T]) error {
	return kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		return Walk(ctx, r, begin, end, fn)
	})
}

// Last returns the largest key and its value in the [begin, end) range. An
// empty range returns an error wrapping os.ErrNotExist.
func Last[T any](ctx context.Context, r kv.Reader, begin, end string) (string, *T, error) {
	it, err := r.Descend(ctx, begin, end)
	if err != nil {
		return "", nil, fmt.Errorf("could not create descending iterator: %w", err)
	}
	defer kv.Close(it)

	k, v, err := it.Fetch(ctx, false)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("range [%q, %q) is empty: %w", begin, end, os.ErrNotExist)
		}
		return "", nil, fmt.Errorf("could not fetch from descending iterator: %w", err)
	}
	value, err := decode[T](k, v)
	if err != nil {
		return "", nil, err
	}
	return k, value, nil
}

func LastDB[T any](ctx context.Context, db kv.Database, begin, end string) (key string, value *T, err error) {
	err = kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		key, value, err = Last[T](ctx, r, begin, end)
		return err
	})
	return key, value, err
}

// PathRange returns the key range covering all keys under a directory.
func PathRange(dir string) (begin string, end string) {
	dir = path.Clean(dir)
	if dir == "/" {
		return "", ""
	}
	return dir + "/", dir + string('/'+1)
}
