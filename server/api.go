// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bvk/coinmonitor/api"
	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/httputil"
	"github.com/bvk/coinmonitor/kvutil"
	"github.com/bvk/coinmonitor/telegram"
	"github.com/shirou/gopsutil/v4/process"
)

func (s *Server) handlePid(w http.ResponseWriter, r *http.Request) {
	writeText(w, fmt.Sprintf("%d", os.Getpid()))
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, fmt.Errorf("method %s is not supported: %w", r.Method, os.ErrInvalid))
		return
	}
	resp := new(api.PairsResponse)
	for _, p := range s.engine.Pairs() {
		resp.Pairs = append(resp.Pairs, p.ToGob())
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, fmt.Errorf("method %s is not supported: %w", r.Method, os.ErrInvalid))
		return
	}
	orders, err := s.store.ListOrders(r.Context(), r.URL.Query().Get("pair"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &api.OrdersResponse{Orders: orders})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Status(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Status returns the daemon and engine status.
func (s *Server) Status(ctx context.Context) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{
		PID:           os.Getpid(),
		StartTime:     s.startTime,
		Uptime:        telegram.FormatUptime(time.Since(s.startTime)),
		State:         s.engine.State().String(),
		Cycle:         s.engine.Cycle(),
		LastCycleTime: s.engine.LastCycleTime(),
		NumPairs:      len(s.engine.Pairs()),
		Exchanges:     s.registry.Names(),
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(resp.PID)); err != nil {
		slog.Warn("could not lookup self process (ignored)", "err", err)
	} else if mem, err := proc.MemoryInfoWithContext(ctx); err != nil {
		slog.Warn("could not read process memory info (ignored)", "err", err)
	} else {
		resp.RSS = mem.RSS
	}

	state, err := kvutil.GetDB[gobs.ServerState](ctx, s.db, ServerStateKey)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load server state: %w", err)
		}
		state = new(gobs.ServerState)
	}
	resp.LastBackupTime = state.LastBackupTime
	resp.LastBackupFile = state.LastBackupFile
	return resp, nil
}
