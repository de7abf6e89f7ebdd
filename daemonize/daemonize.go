// Copyright (c) 2025 BVK Chaitanya

// Package daemonize respawns the current program as a background process.
package daemonize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// CheckFunc verifies that the background process is initialized. It returns
// true for retry when the check should be repeated after an error.
type CheckFunc func(ctx context.Context, child *os.Process) (retry bool, err error)

// Daemonize respawns the current program in the background with the same
// command-line arguments. It must be called early, before opening databases
// or starting servers.
//
// The envKey environment variable identifies the background process and
// holds the parent process pid. Standard input and outputs of the background
// process are redirected to /dev/null.
//
// In the parent process, Daemonize waits till the check function reports the
// child as initialized and exits the parent process, or returns an error. In
// the background process Daemonize returns nil.
func Daemonize(ctx context.Context, envKey string, check CheckFunc) error {
	if v := os.Getenv(envKey); len(v) != 0 {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("environment variable %s has invalid parent pid %q: %w", envKey, v, os.ErrInvalid)
		}
		if _, err := unix.Setsid(); err != nil {
			return fmt.Errorf("could not set session id: %w", err)
		}
		return nil
	}

	child, err := respawn(envKey)
	if err != nil {
		return err
	}
	if err := wait(ctx, child, check); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}

func respawn(envKey string) (*os.Process, error) {
	binary, err := exec.LookPath(os.Args[0])
	if err != nil {
		return nil, fmt.Errorf("could not lookup binary: %w", err)
	}
	binaryPath, err := filepath.Abs(binary)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for binary: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	attr := &os.ProcAttr{
		Dir:   wd,
		Env:   append(os.Environ(), fmt.Sprintf("%s=%d", envKey, os.Getpid())),
		Files: []*os.File{devnull, devnull, devnull},
	}
	child, err := os.StartProcess(binaryPath, os.Args, attr)
	if err != nil {
		return nil, fmt.Errorf("could not start background process: %w", err)
	}
	return child, nil
}

func wait(ctx context.Context, child *os.Process, check CheckFunc) error {
	if check == nil {
		return nil
	}

	// Receive a signal when the child process dies.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGCHLD, os.Interrupt)
	defer stop()

	for ctx.Err() == nil {
		time.Sleep(time.Second)
		retry, err := check(ctx, child)
		if err == nil {
			return nil
		}
		if !retry {
			child.Kill()
			return fmt.Errorf("background process could not be initialized: %w", err)
		}
		slog.WarnContext(ctx, "background process is not yet initialized", "pid", child.Pid, "err", err)
	}
	return fmt.Errorf("background process has died or was interrupted: %w", context.Cause(ctx))
}
