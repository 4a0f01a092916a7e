// Package backtest replays daily A-share market data through a strategy,
// one calendar day at a time. Each day the engine advances the store clock,
// shows the strategy a portfolio view, validates the orders it returns
// against exchange rules, executes the survivors on the ledger and marks the
// book to market. The replay is strictly sequential; nothing here is safe
// for concurrent use.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"ashare-backtest/journal"
	"ashare-backtest/market"
	"ashare-backtest/metrics"
	"ashare-backtest/portfolio"
	"ashare-backtest/rules"
)

// Option configures an Engine.
type Option func(*Engine)

// WithJournal attaches a persistence sink. Every trade and snapshot is
// written as it happens; the run header follows once the replay completes.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine drives one replay over a store/ledger pair.
type Engine struct {
	store   *market.Store
	ledger  *portfolio.Ledger
	journal journal.Journal
	log     *slog.Logger
}

// New returns an engine over store and ledger. The ledger is expected to be
// fresh: its cash at Run entry is taken as the initial capital.
func New(store *market.Store, ledger *portfolio.Ledger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		ledger: ledger,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run replays every calendar day from start through end inclusive. Days
// without data still produce a snapshot valued at last known closes, so the
// equity curve has one point per day.
//
// Rule violations and ledger refusals (funds, shares, breadth cap) are
// recorded as rejections and the replay continues. Strategy errors, store
// clock errors and journal write failures abort the run.
func (e *Engine) Run(ctx context.Context, start, end market.Date, d Decider) (*Result, error) {
	if e.store == nil {
		return nil, fmt.Errorf("backtest: store is required")
	}
	if e.ledger == nil {
		return nil, fmt.Errorf("backtest: ledger is required")
	}
	if d == nil {
		return nil, fmt.Errorf("backtest: decider is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("backtest: start and end dates are required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("backtest: end %s precedes start %s", end, start)
	}

	res := &Result{
		RunID:          ulid.Make().String(),
		Strategy:       deciderName(d),
		StartDate:      start,
		EndDate:        end,
		InitialCapital: e.ledger.Cash(),
	}

	e.log.Info("backtest starting",
		"run_id", res.RunID,
		"strategy", res.Strategy,
		"start", start,
		"end", end,
		"capital", res.InitialCapital)

	for day := start; !day.After(end); day = day.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.store.Advance(day); err != nil {
			return nil, err
		}

		view, err := e.view(day)
		if err != nil {
			return nil, err
		}

		orders, err := d.Decide(ctx, day, view, e.store)
		if err != nil {
			return nil, fmt.Errorf("backtest: strategy %q on %s: %w", res.Strategy, day, err)
		}
		for _, o := range orders {
			if err := e.place(res, day, o); err != nil {
				return nil, err
			}
		}

		snap, err := e.ledger.MarkToMarket(day, e.store)
		if err != nil {
			return nil, err
		}
		res.Snapshots = append(res.Snapshots, snap)
		e.log.Debug("mark to market", "date", day, "total", snap.TotalValue)
		if e.journal != nil {
			if err := e.journal.RecordSnapshot(journal.NewSnapshotRecord(res.RunID, snap)); err != nil {
				return nil, fmt.Errorf("backtest: record snapshot: %w", err)
			}
		}
	}

	res.Summary = metrics.Compute(res.InitialCapital, res.Snapshots, res.Trades)
	if e.journal != nil {
		if err := e.journal.RecordRun(res.runRecord(time.Now())); err != nil {
			return nil, fmt.Errorf("backtest: record run: %w", err)
		}
	}

	e.log.Info("backtest finished",
		"run_id", res.RunID,
		"days", res.Summary.Days,
		"final", res.Summary.FinalValue,
		"return", res.Summary.TotalReturn,
		"trades", len(res.Trades),
		"rejections", len(res.Rejections))

	return res, nil
}

// view values the book for the morning of day: the day's close when the
// symbol trades, the last known close otherwise.
func (e *Engine) view(day market.Date) (PortfolioView, error) {
	held := e.ledger.Positions()
	views := make([]PositionView, 0, len(held))
	var sum float64
	for _, p := range held {
		px := p.LastClose()
		c, ok, err := e.store.Close(p.Symbol, day)
		if err != nil {
			return PortfolioView{}, err
		}
		if ok {
			px = c
		}
		value := portfolio.Round2(px * float64(p.Quantity))
		views = append(views, PositionView{
			Symbol:   p.Symbol,
			Quantity: p.Quantity,
			AvgCost:  p.AvgCost,
			Settled:  e.ledger.SettledQuantity(p.Symbol, day),
			Price:    px,
			Value:    value,
		})
		sum += value
	}
	return PortfolioView{
		Date:       day,
		Cash:       e.ledger.Cash(),
		Positions:  views,
		TotalValue: portfolio.Round2(e.ledger.Cash() + sum),
	}, nil
}

// place validates and executes one order. Violations and ledger refusals
// become rejections; anything else is fatal to the run.
func (e *Engine) place(res *Result, day market.Date, o portfolio.Order) error {
	mkt, pos, err := e.contexts(day, o.Symbol)
	if err != nil {
		return err
	}

	if dec := rules.Evaluate(o, mkt, pos); !dec.Allowed {
		e.reject(res, day, o, dec.Reasons())
		return nil
	}

	tr, err := e.ledger.Execute(o, day)
	if err != nil {
		if errors.Is(err, portfolio.ErrInsufficientFunds) ||
			errors.Is(err, portfolio.ErrInsufficientShares) ||
			errors.Is(err, portfolio.ErrPositionLimit) {
			e.reject(res, day, o, []string{err.Error()})
			return nil
		}
		return fmt.Errorf("backtest: execute %s %d %s: %w", o.Action, o.Quantity, o.Symbol, err)
	}

	res.Trades = append(res.Trades, tr)
	e.log.Info("order filled",
		"date", day,
		"symbol", tr.Symbol,
		"action", tr.Action,
		"quantity", tr.Quantity,
		"fill", tr.Fill,
		"cash", tr.CashAfter)
	if e.journal != nil {
		if err := e.journal.RecordTrade(journal.NewTradeRecord(res.RunID, tr)); err != nil {
			return fmt.Errorf("backtest: record trade: %w", err)
		}
	}
	return nil
}

// contexts assembles the market and position inputs for rule evaluation. A
// symbol is treated as ST when either the bar flags it or the day's side
// record carries an ST-prefixed name.
func (e *Engine) contexts(day market.Date, symbol string) (rules.MarketContext, rules.PositionContext, error) {
	var mkt rules.MarketContext

	bar, ok, err := e.store.Bar(symbol, day)
	if err != nil {
		return mkt, rules.PositionContext{}, err
	}
	if ok {
		mkt = rules.MarketContext{
			HasBar:    true,
			Close:     bar.Close,
			PrevClose: bar.PrevClose,
			Suspended: bar.Suspended(),
			IsST:      bar.IsST,
		}
	}

	side, ok, err := e.store.Side(symbol, day)
	if err != nil {
		return mkt, rules.PositionContext{}, err
	}
	if ok && market.IsSTName(side.Name) {
		mkt.IsST = true
	}

	pos := rules.PositionContext{Settled: e.ledger.SettledQuantity(symbol, day)}
	if p, held := e.ledger.Position(symbol); held {
		pos.Held = p.Quantity
	}
	return mkt, pos, nil
}

func (e *Engine) reject(res *Result, day market.Date, o portfolio.Order, reasons []string) {
	res.Rejections = append(res.Rejections, Rejection{
		Date:     day,
		Symbol:   o.Symbol,
		Action:   o.Action,
		Quantity: o.Quantity,
		Reasons:  reasons,
	})
	e.log.Warn("order rejected",
		"date", day,
		"symbol", o.Symbol,
		"action", o.Action,
		"quantity", o.Quantity,
		"reasons", strings.Join(reasons, "; "))
}

func deciderName(d Decider) string {
	if n, ok := d.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
