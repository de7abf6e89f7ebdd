// Copyright (c) 2025 BVK Chaitanya

// Package server wires the monitor engine with its exchanges, stores, alert
// services and http apis into a daemon.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bvk/coinmonitor/api"
	"github.com/bvk/coinmonitor/coinex"
	"github.com/bvk/coinmonitor/ctxutil"
	"github.com/bvk/coinmonitor/events"
	"github.com/bvk/coinmonitor/exchange"
	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/kvutil"
	"github.com/bvk/coinmonitor/monitor"
	"github.com/bvk/coinmonitor/paper"
	"github.com/bvk/coinmonitor/policy"
	"github.com/bvk/coinmonitor/pushover"
	"github.com/bvk/coinmonitor/store"
	"github.com/bvk/coinmonitor/store/kvstore"
	"github.com/bvk/coinmonitor/telegram"
	"github.com/bvkgo/kv"
	"github.com/go-co-op/gocron"
)

// ServerStateKey is the database key for the gobs.ServerState value.
const ServerStateKey = "/coinmonitor/server/state"

type Server struct {
	cg ctxutil.CloseGroup

	opts Options

	db kv.Database

	store store.Store

	registry *exchange.Registry

	policy *policy.Threshold

	bus *events.Bus

	engine *monitor.Engine

	scheduler *gocron.Scheduler

	telegramClient *telegram.Client

	pushoverClient *pushover.Client

	startTime time.Time

	handlerMap map[string]http.Handler

	alertMu                sync.Mutex
	alertFreezeDeadlineMap map[string]time.Time
}

// New creates a server. Pairs and orders are kept in the st store when it is
// non-nil and in the db otherwise. Telegram state and backups always use the
// db.
func New(ctx context.Context, secrets *Secrets, db kv.Database, st store.Store, opts *Options) (_ *Server, status error) {
	if db == nil {
		return nil, fmt.Errorf("database is required: %w", os.ErrInvalid)
	}
	if secrets == nil {
		secrets = new(Secrets)
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if st == nil {
		st = kvstore.New(db)
	}

	threshold, err := policy.NewThreshold(&opts.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("could not create threshold policy: %w", err)
	}

	s := &Server{
		opts:                   *opts,
		db:                     db,
		store:                  st,
		policy:                 threshold,
		registry:               exchange.NewRegistry(),
		bus:                    events.NewBus(),
		scheduler:              gocron.NewScheduler(time.UTC),
		startTime:              time.Now(),
		alertFreezeDeadlineMap: make(map[string]time.Time),
	}
	defer func() {
		if status != nil {
			s.Close()
		}
	}()

	if err := s.registerExchanges(secrets); err != nil {
		return nil, err
	}

	if secrets.Pushover != nil {
		client, err := pushover.New(secrets.Pushover)
		if err != nil {
			return nil, fmt.Errorf("could not create pushover client: %w", err)
		}
		s.pushoverClient = client
	}
	if secrets.Telegram != nil {
		client, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = client
	}

	mopts := &monitor.Options{
		RefreshInterval: opts.RefreshInterval,
		CallTimeout:     opts.CallTimeout,
		DefaultPairs:    opts.DefaultPairs,
	}
	engine, err := monitor.New(s.registry, st, st, threshold, s.bus, mopts)
	if err != nil {
		return nil, fmt.Errorf("could not create monitor engine: %w", err)
	}
	s.engine = engine

	s.handlerMap = map[string]http.Handler{
		api.PairsPath:  http.HandlerFunc(s.handlePairs),
		api.OrdersPath: http.HandlerFunc(s.handleOrders),
		api.StatusPath: http.HandlerFunc(s.handleStatus),
		api.PidPath:    http.HandlerFunc(s.handlePid),
	}
	return s, nil
}

func (s *Server) registerExchanges(secrets *Secrets) error {
	prices := s.opts.PaperPrices
	if prices == nil {
		public, err := coinex.NewPublicAdapter(nil /* opts */)
		if err != nil {
			return fmt.Errorf("could not create public coinex client: %w", err)
		}
		prices = public.GetCoinPrice
	}
	if err := s.registry.Register(paper.ExchangeName, paper.NewFactory(prices)); err != nil {
		return err
	}
	if secrets.CoinEx != nil {
		if err := s.registry.Register(coinex.ExchangeName, coinex.NewFactory(secrets.CoinEx, nil /* opts */)); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the monitor engine, the background jobs and releases all
// resources. Database and store are owned by the caller.
func (s *Server) Close() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.engine != nil {
		s.engine.Close()
	}
	s.bus.Close()
	s.cg.Close()
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	s.registry.Close()
	return nil
}

// HandlerMap returns the http api handlers keyed by their paths.
func (s *Server) HandlerMap() map[string]http.Handler {
	return s.handlerMap
}

// Engine returns the monitor engine.
func (s *Server) Engine() *monitor.Engine {
	return s.engine
}

// Start seeds the policy from the order history, starts the event watchers,
// the monitor engine and the periodic jobs. Engine startup errors are
// returned as is.
func (s *Server) Start(ctx context.Context) error {
	if err := s.seedPolicy(ctx); err != nil {
		return err
	}
	if err := s.updateServerState(ctx, func(state *gobs.ServerState) {
		state.StartTime = s.startTime
	}); err != nil {
		slog.Warn("could not save server start time (ignored)", "err", err)
	}

	logger, err := s.bus.Watch(0, events.Log)
	if err != nil {
		return err
	}
	s.cg.Go(func(ctx context.Context) {
		logger(ctx)
	})
	alerter, err := s.bus.Watch(0, s.alertOnEvent)
	if err != nil {
		return err
	}
	s.cg.Go(func(ctx context.Context) {
		alerter(ctx)
	})

	if err := s.engine.Start(ctx); err != nil {
		return fmt.Errorf("could not start monitor engine: %w", err)
	}

	if err := s.addTelegramCommands(ctx); err != nil {
		return err
	}
	if err := s.scheduleJobs(); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// seedPolicy loads the last order side for every known pair, so that
// alternation continues across restarts.
func (s *Server) seedPolicy(ctx context.Context) error {
	pairs, err := s.store.PairsToTrade(ctx)
	if err != nil {
		return fmt.Errorf("could not load pairs: %w", err)
	}
	pairs = append(pairs, s.opts.DefaultPairs...)
	for _, p := range pairs {
		last, err := s.store.LastOrder(ctx, p.ID)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("could not load last order for pair %s: %w", p, err)
		}
		side, err := policy.ParseOrderType(last.Type)
		if err != nil {
			slog.Warn("last order has invalid type (ignored)", "pair", p, "order", last.ID, "type", last.Type)
			continue
		}
		s.policy.OrderDone(ctx, p.ID, side)
	}
	return nil
}

func (s *Server) updateServerState(ctx context.Context, update func(*gobs.ServerState)) error {
	return kv.WithReadWriter(ctx, s.db, func(ctx context.Context, rw kv.ReadWriter) error {
		state, err := kvutil.Get[gobs.ServerState](ctx, rw, ServerStateKey)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			state = new(gobs.ServerState)
		}
		update(state)
		return kvutil.Set(ctx, rw, ServerStateKey, state)
	})
}

// SendMessage sends the message to all configured alert services. Failures
// are logged and ignored.
func (s *Server) SendMessage(ctx context.Context, at time.Time, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.telegramClient != nil {
		if err := s.telegramClient.SendMessage(ctx, at, msg); err != nil {
			slog.Error("could not send telegram message (ignored)", "err", err)
		}
	}
	if s.pushoverClient != nil {
		if err := s.pushoverClient.SendMessage(ctx, at, msg); err != nil {
			slog.Error("could not send pushover message (ignored)", "err", err)
		}
	}
	if s.telegramClient == nil && s.pushoverClient == nil {
		slog.Debug("no alert service is configured to send the message", "message", msg)
	}
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := io.WriteString(w, text); err != nil {
		slog.Warn("could not write text response", "err", err)
	}
}
