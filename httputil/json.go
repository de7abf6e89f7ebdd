// Copyright (c) 2025 BVK Chaitanya

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
)

// WriteJSON writes the value as a json response with the status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("could not write json response", "err", err)
	}
}

// WriteError writes the error as a json response. The status code is picked
// from the well known os package errors.
func WriteError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, os.ErrNotExist):
		code = http.StatusNotFound
	case errors.Is(err, os.ErrInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, os.ErrExist):
		code = http.StatusConflict
	}
	WriteJSON(w, code, map[string]string{"error": err.Error()})
}

// GetJSON fetches the url and decodes the json response into the value.
func GetJSON[T any](ctx context.Context, client *http.Client, url string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &e); err == nil && len(e.Error) != 0 {
			return nil, fmt.Errorf("http get returned %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("http get returned %d", resp.StatusCode)
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("could not decode json response: %w", err)
	}
	return v, nil
}
