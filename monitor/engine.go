// Copyright (c) 2025 BVK Chaitanya

// Package monitor implements the periodic price monitoring and trading loop.
//
// An Engine loads the pairs to monitor once at startup, fills in the missing
// baseline prices and then runs cycles forever. Every cycle evaluates all
// pairs concurrently: it fetches the current price, computes the percent
// change from the reference price, asks the policy for an order action and
// places the order if required. Pair state is saved at the end of every
// evaluation. The next cycle starts RefreshInterval after the previous cycle
// completes.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bvk/coinmonitor/ctxutil"
	"github.com/bvk/coinmonitor/events"
	"github.com/bvk/coinmonitor/exchange"
	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/policy"
	"github.com/bvk/coinmonitor/store"
	"github.com/bvk/coinmonitor/syncmap"
)

// Adapters looks up exchange adapters by the exchange name.
type Adapters interface {
	Get(ctx context.Context, name string) (exchange.Adapter, error)
}

type Engine struct {
	cg ctxutil.CloseGroup

	opts Options

	adapters Adapters
	source   store.PairSource
	saver    store.Saver
	policy   policy.Policy
	sink     events.Sink

	started atomic.Bool
	state   atomic.Int32
	cycle   atomic.Int64

	lastCycleTime atomic.Pointer[time.Time]

	// cycleMu serializes the cycles.
	cycleMu sync.Mutex

	mu    sync.Mutex
	pairs []*pair.Pair

	// snapshotMap holds a copy of every pair as of its last evaluation.
	snapshotMap syncmap.Map[string, *pair.Pair]
}

// New creates an engine. A nil sink drops all events.
func New(adapters Adapters, source store.PairSource, saver store.Saver, p policy.Policy, sink events.Sink, opts *Options) (*Engine, error) {
	if adapters == nil || source == nil || saver == nil || p == nil {
		return nil, fmt.Errorf("adapters, pair source, saver and policy are required: %w", os.ErrInvalid)
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = events.Discard
	}
	e := &Engine{
		opts:     *opts,
		adapters: adapters,
		source:   source,
		saver:    saver,
		policy:   p,
		sink:     sink,
	}
	return e, nil
}

// Close stops the cycle loop and waits for the current cycle to finish.
func (e *Engine) Close() error {
	e.cg.Close()
	e.setState(Stopped)
	return nil
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Cycle returns the number of cycles started so far.
func (e *Engine) Cycle() int64 {
	return e.cycle.Load()
}

// LastCycleTime returns the completion time of the last cycle.
func (e *Engine) LastCycleTime() time.Time {
	if t := e.lastCycleTime.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// Pairs returns copies of the working set pairs as of their last evaluation.
func (e *Engine) Pairs() []*pair.Pair {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*pair.Pair, 0, len(e.pairs))
	for _, p := range e.pairs {
		if v, ok := e.snapshotMap.Load(p.ID); ok {
			result = append(result, v.Clone())
		}
	}
	return result
}

// notify delivers the event to the sink. Sink panics are logged and dropped
// so that they never reach the cycle logic.
func (e *Engine) notify(ev *events.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CAUGHT PANIC", "panic", r, "event", ev.Kind)
			slog.Error(string(debug.Stack()))
		}
	}()
	e.sink.Notify(ev)
}

// Start loads and initializes the pairs and then starts the cycle loop in
// the background. Errors in loading or initializing the pairs are returned
// and the loop is not started. The loop runs till the engine is closed or
// the input context is canceled.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return fmt.Errorf("engine is already started: %w", os.ErrExist)
	}

	if err := e.prepare(ctx); err != nil {
		e.started.Store(false)
		e.setState(Idle)
		return err
	}

	e.cg.Go(func(cgctx context.Context) {
		lctx, lcancel := context.WithCancelCause(cgctx)
		defer lcancel(nil)

		stop := context.AfterFunc(ctx, func() { lcancel(context.Cause(ctx)) })
		defer stop()

		e.goRun(lctx)
	})
	return nil
}

func (e *Engine) prepare(ctx context.Context) error {
	e.notify(events.New(events.Start, 0))

	pairs, err := e.loadPairs(ctx)
	if err != nil {
		return err
	}
	if err := e.initializePairs(ctx, pairs); err != nil {
		return err
	}

	e.mu.Lock()
	e.pairs = pairs
	e.mu.Unlock()
	for _, p := range pairs {
		e.snapshotMap.Store(p.ID, p.Clone())
	}
	return nil
}

func (e *Engine) goRun(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CAUGHT PANIC", "panic", r)
			slog.Error(string(debug.Stack()))
			panic(r)
		}
	}()

	for ctx.Err() == nil {
		if err := e.RunCycle(ctx); err != nil {
			slog.Warn("monitor cycle completed with failures", "cycle", e.Cycle(), "err", err)
		}
		e.setState(Waiting)
		if err := ctxutil.Sleep(ctx, e.opts.RefreshInterval); err != nil {
			break
		}
	}
	e.setState(Stopped)
	slog.Info("monitor cycle loop is stopped", "cycles", e.Cycle(), "cause", context.Cause(ctx))
}

func (e *Engine) loadPairs(ctx context.Context) ([]*pair.Pair, error) {
	e.setState(LoadingPairs)

	pairs, err := e.source.PairsToTrade(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load pairs to trade: %w", err)
	}
	if len(pairs) == 0 {
		slog.Info("pair source is empty; using the default pairs", "ndefaults", len(e.opts.DefaultPairs))
		for _, p := range e.opts.DefaultPairs {
			pairs = append(pairs, p.Clone())
		}
	}
	e.notify(events.New(events.PairsLoaded, 0, pairs...))
	return pairs, nil
}

func (e *Engine) initializePairs(ctx context.Context, pairs []*pair.Pair) error {
	e.setState(Initializing)

	for _, p := range pairs {
		if err := e.initializePair(ctx, p); err != nil {
			return err
		}
	}
	e.notify(events.New(events.PairsInitialized, 0, pairs...))
	return nil
}

// initializePair fills the missing baseline fields of a pair from one fresh
// price.
func (e *Engine) initializePair(ctx context.Context, p *pair.Pair) error {
	if !p.NeedsInit() {
		return nil
	}
	adapter, err := e.adapters.Get(ctx, p.ExchangeName)
	if err != nil {
		return fmt.Errorf("could not get adapter for pair %s: %w", p, err)
	}
	price, err := e.getPrice(ctx, adapter, p)
	if err != nil {
		return fmt.Errorf("could not initialize pair %s: %w", p, err)
	}
	if !price.IsPositive() {
		return fmt.Errorf("could not initialize pair %s with price %s: %w", p, price, ErrComputation)
	}
	p.Init(price)
	return nil
}
