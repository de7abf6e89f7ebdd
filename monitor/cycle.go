// Copyright (c) 2025 BVK Chaitanya

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bvk/coinmonitor/ctxutil"
	"github.com/bvk/coinmonitor/events"
	"github.com/bvk/coinmonitor/exchange"
	"github.com/bvk/coinmonitor/gobs"
	"github.com/bvk/coinmonitor/pair"
	"github.com/bvk/coinmonitor/policy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunCycle evaluates every pair in the working set concurrently and returns
// after all of them are finished. Returned error joins the per-pair failures,
// which do not affect the evaluation of other pairs.
func (e *Engine) RunCycle(ctx context.Context) error {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	e.mu.Lock()
	pairs := e.pairs
	e.mu.Unlock()

	cycle := e.cycle.Add(1)
	e.setState(RunningCycle)
	e.notify(events.New(events.CycleStart, cycle, pairs...))

	errs := make([]error, len(pairs))
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = e.checkPair(ctx, cycle, p)
		}()
	}
	wg.Wait()

	now := time.Now()
	e.lastCycleTime.Store(&now)

	err := errors.Join(errs...)
	done := events.New(events.CycleDone, cycle)
	done.Err = err
	e.notify(done)
	return err
}

// checkPair runs one evaluation for the pair. Pair state is saved at the end
// irrespective of the result.
func (e *Engine) checkPair(ctx context.Context, cycle int64, p *pair.Pair) (status error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CAUGHT PANIC", "panic", r, "pair", p)
			status = fmt.Errorf("pair %s evaluation panicked: %v", p, r)
		}

		p.UpdateTime = time.Now()
		if err := e.saver.SavePair(ctx, p); err != nil {
			status = errors.Join(status, fmt.Errorf("could not save pair %s: %w", p, err))
		}
		e.snapshotMap.Store(p.ID, p.Clone())

		if status != nil {
			ev := events.NewPair(events.PairError, cycle, p)
			ev.Err = status
			e.notify(ev)
		}
	}()

	e.notify(events.NewPair(events.CheckPair, cycle, p))

	adapter, err := e.adapters.Get(ctx, p.ExchangeName)
	if err != nil {
		return fmt.Errorf("could not get adapter for pair %s: %w", p, err)
	}

	price, err := e.getPrice(ctx, adapter, p)
	if err != nil {
		return err
	}

	change, err := ComputeChange(p.OrderPrice, price)
	if err != nil {
		return fmt.Errorf("could not compute price change for pair %s: %w", p, err)
	}
	p.ExchangePrice = price
	p.PriceChange = change

	pc := events.NewPair(events.PriceChange, cycle, p)
	pc.Change = change
	e.notify(pc)

	side, err := e.policy.Decide(ctx, p.ID, change)
	if err != nil {
		return fmt.Errorf("could not decide order for pair %s: %w", p, err)
	}
	if !side.IsValid() {
		return fmt.Errorf("policy returned invalid order type %q for pair %s: %w", side, p, ErrComputation)
	}
	if side == policy.None {
		return nil
	}
	return e.placeOrder(ctx, cycle, adapter, p, side, price)
}

func (e *Engine) getPrice(ctx context.Context, adapter exchange.Adapter, p *pair.Pair) (decimal.Decimal, error) {
	cctx, cancel := ctxutil.WithOptionalTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	price, err := adapter.GetCoinPrice(cctx, p.Coin, p.BaseCoin)
	if err != nil {
		if errors.Is(err, exchange.ErrPriceUnavailable) {
			return decimal.Zero, fmt.Errorf("could not get price for pair %s: %w", p, err)
		}
		return decimal.Zero, fmt.Errorf("could not get price for pair %s: %w: %w", p, exchange.ErrPriceUnavailable, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("exchange returned negative price %s for pair %s: %w", price, p, exchange.ErrPriceUnavailable)
	}
	return price, nil
}

// placeOrder submits the order and updates the reference price when the
// exchange accepts it.
func (e *Engine) placeOrder(ctx context.Context, cycle int64, adapter exchange.Adapter, p *pair.Pair, side policy.OrderType, price decimal.Decimal) error {
	mo := events.NewPair(events.MakeOrder, cycle, p)
	mo.Change = p.PriceChange
	mo.OrderType = side
	e.notify(mo)

	req := &exchange.OrderRequest{
		PairID:   p.ID,
		Coin:     p.Coin,
		BaseCoin: p.BaseCoin,
		Amount:   p.Amount,
		Price:    price,
	}

	cctx, cancel := ctxutil.WithOptionalTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	var id exchange.OrderID
	var err error
	if side == policy.Buy {
		id, err = adapter.BuyCoin(cctx, req)
	} else {
		id, err = adapter.SellCoin(cctx, req)
	}
	if err != nil {
		if errors.Is(err, exchange.ErrOrderRejected) || errors.Is(err, exchange.ErrOrderSubmission) {
			return fmt.Errorf("could not place %s order for pair %s: %w", side, p, err)
		}
		return fmt.Errorf("could not place %s order for pair %s: %w: %w", side, p, exchange.ErrOrderSubmission, err)
	}
	if len(id) == 0 {
		return fmt.Errorf("exchange returned empty order id for %s order on pair %s: %w", side, p, exchange.ErrOrderRejected)
	}

	p.OrderPrice = price

	if o, ok := e.policy.(policy.OrderObserver); ok {
		o.OrderDone(ctx, p.ID, side)
	}

	record := &gobs.OrderRecord{
		ID:              uuid.NewString(),
		PairID:          p.ID,
		Coin:            p.Coin,
		BaseCoin:        p.BaseCoin,
		ExchangeName:    p.ExchangeName,
		Type:            string(side),
		ExchangeOrderID: string(id),
		Price:           price,
		Amount:          p.Amount,
		CreateTime:      time.Now(),
	}
	saveErr := e.saver.SaveOrder(ctx, record)
	if saveErr != nil {
		saveErr = fmt.Errorf("could not save %s order %s for pair %s: %w", side, id, p, saveErr)
	}

	od := events.NewPair(events.OrderDone, cycle, p)
	od.Change = p.PriceChange
	od.OrderType = side
	od.OrderID = string(id)
	od.Err = saveErr
	e.notify(od)
	return saveErr
}
