// Copyright (c) 2025 BVK Chaitanya

package coinex

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

var RestURL = url.URL{
	Scheme: "https",
	Host:   "api.coinex.com",
	Path:   "/v2",
}

type Options struct {
	// BaseURL overrides the REST api endpoint. Used by the tests.
	BaseURL *url.URL

	// Timeout to use for the HTTP requests.
	HttpClientTimeout time.Duration

	// RequestsPerSecond limits the rate of requests to the exchange.
	RequestsPerSecond float64

	// MaxRetries limits the number of retries for throttled or bad gateway
	// responses.
	MaxRetries int

	// RetryInterval is the default delay between retries when the server
	// doesn't suggest one.
	RetryInterval time.Duration
}

func (v *Options) setDefaults() {
	if v.BaseURL == nil {
		v.BaseURL = &RestURL
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 5 * time.Second
	}
	if v.RequestsPerSecond == 0 {
		v.RequestsPerSecond = 20
	}
	if v.MaxRetries == 0 {
		v.MaxRetries = 3
	}
	if v.RetryInterval == 0 {
		v.RetryInterval = time.Second
	}
}

// Check validates the options.
func (v *Options) Check() error {
	if v.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative: %w", os.ErrInvalid)
	}
	if v.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
