// Copyright (c) 2025 BVK Chaitanya

package httputil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
)

func TestServer(t *testing.T) {
	ctx := context.Background()

	s, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
	id, err := s.StartTCP(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	if addr.Port == 0 {
		t.Fatalf("want the chosen port to be updated")
	}

	type status struct {
		Name string `json:"name"`
	}
	s.AddHandler("/status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, &status{Name: "test"})
	}))
	s.AddHandler("/missing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, fmt.Errorf("pair: %w", os.ErrNotExist))
	}))

	base := "http://" + addr.String()
	v, err := GetJSON[status](ctx, http.DefaultClient, base+"/status")
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "test" {
		t.Fatalf("want test, got %q", v.Name)
	}
	if _, err := GetJSON[status](ctx, http.DefaultClient, base+"/missing"); err == nil {
		t.Fatalf("want error for not found response")
	}

	if !s.RemoveHandler("/status") {
		t.Fatalf("want handler to be removed")
	}
	if s.RemoveHandler("/status") {
		t.Fatalf("second remove must return false")
	}
	if _, err := GetJSON[status](ctx, http.DefaultClient, base+"/status"); err == nil {
		t.Fatalf("want error after the handler is removed")
	}

	if err := s.Stop(id); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(id); err == nil {
		t.Fatalf("second stop must fail")
	}
}
