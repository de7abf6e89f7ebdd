// Copyright (c) 2025 BVK Chaitanya

package pushover

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

var testingKeys *Keys

func checkKeys() bool {
	if testingKeys != nil {
		return true
	}
	data, err := os.ReadFile("pushover-keys.json")
	if err != nil {
		return false
	}
	s := new(Keys)
	if err := json.Unmarshal(data, s); err != nil {
		return false
	}
	testingKeys = s
	return true
}

func TestSendMessage(t *testing.T) {
	if !checkKeys() {
		t.Skip("no keys")
		return
	}

	c, err := New(testingKeys)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SendMessage(context.Background(), time.Now(), t.Name()); err != nil {
		t.Fatal(err)
	}
}

func TestSendMessageLocal(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got["token"] != "app" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"status":0,"errors":["application token is invalid"]}`)
			return
		}
		io.WriteString(w, `{"status":1,"request":"test"}`)
	}))
	defer server.Close()

	c, err := New(&Keys{ApplicationKey: "app", UserKey: "user"})
	if err != nil {
		t.Fatal(err)
	}
	c.endpoint = server.URL
	if err := c.SendMessage(context.Background(), time.Now(), "hello"); err != nil {
		t.Fatal(err)
	}
	if got["message"] != "hello" || got["user"] != "user" {
		t.Fatalf("unexpected request %v", got)
	}

	c.token = "bad"
	if err := c.SendMessage(context.Background(), time.Now(), "hello"); err == nil {
		t.Fatalf("want error for invalid token")
	}

	if _, err := New(&Keys{}); err == nil {
		t.Fatalf("empty keys must fail")
	}
}
