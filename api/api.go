// Copyright (c) 2025 BVK Chaitanya

// Package api defines the http endpoints and message types served by the
// coinmonitor daemon.
package api

import (
	"time"

	"github.com/bvk/coinmonitor/gobs"
)

const (
	PairsPath  = "/api/pairs"
	OrdersPath = "/api/orders"
	StatusPath = "/api/status"

	// PidPath returns the daemon process id as plain text.
	PidPath = "/pid"

	// DBPath is the prefix for the remote database handler.
	DBPath = "/db"
)

type PairsResponse struct {
	Pairs []*gobs.PairState
}

type OrdersResponse struct {
	Orders []*gobs.OrderRecord
}

type StatusResponse struct {
	PID int

	// RSS is the resident memory size of the daemon in bytes.
	RSS uint64

	StartTime time.Time
	Uptime    string

	State string
	Cycle int64

	LastCycleTime time.Time

	NumPairs  int
	Exchanges []string

	LastBackupTime time.Time
	LastBackupFile string
}
