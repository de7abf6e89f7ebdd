// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/kvutil"
)

const backupTimeFormat = "20060102-150405"

// scheduleJobs adds the periodic summary alert and database backup jobs to
// the scheduler. Jobs run with the server's close group context.
func (s *Server) scheduleJobs() error {
	s.scheduler.SingletonModeAll()

	if s.opts.SummaryInterval > 0 {
		summary := func() {
			ctx := s.cg.Context()
			s.SendMessage(ctx, time.Now(), "Summary of cycle %d:\n%s", s.engine.Cycle(), s.summary())
		}
		if _, err := s.scheduler.Every(s.opts.SummaryInterval).WaitForSchedule().Do(summary); err != nil {
			return fmt.Errorf("could not schedule the summary job: %w", err)
		}
	}
	if s.opts.BackupInterval > 0 {
		backup := func() {
			if _, err := s.Backup(s.cg.Context()); err != nil {
				slog.Error("could not take periodic database backup", "err", err)
			}
		}
		if _, err := s.scheduler.Every(s.opts.BackupInterval).WaitForSchedule().Do(backup); err != nil {
			return fmt.Errorf("could not schedule the backup job: %w", err)
		}
	}
	return nil
}

// Backup writes the database into a new file in the backup directory and
// records it in the server state.
func (s *Server) Backup(ctx context.Context) (string, error) {
	now := time.Now()
	file := filepath.Join(s.opts.BackupDir, fmt.Sprintf("coinmonitor-%s.gob", now.UTC().Format(backupTimeFormat)))
	if err := kvutil.BackupDB(ctx, s.db, file); err != nil {
		return "", err
	}
	if err := s.updateServerState(ctx, func(state *gobs.ServerState) {
		state.LastBackupTime = now
		state.LastBackupFile = file
	}); err != nil {
		slog.Warn("could not record the backup in server state (ignored)", "file", file, "err", err)
	}
	slog.Info("database backup is complete", "file", file)
	return file, nil
}
