package exchange

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crypto-alert-bot/internal/events"
	"crypto-alert-bot/internal/strategy"
)

// PriceSource supplies the live price used to re-price open positions.
type PriceSource interface {
	GetCurrentPrice(symbol string) (float64, error)
}

// Notifier is the message sink for open/close notifications. Failures are
// logged and swallowed; settlement never depends on delivery.
type Notifier interface {
	SendMessage(text string) error
}

// HistorySink receives each position exactly once, at close.
type HistorySink interface {
	WriteClosed(p *Position) error
}

// SnapshotSink receives the full open set after every tick, replacing the
// previous snapshot.
type SnapshotSink interface {
	WriteOpen(positions []*Position) error
}

// Stats are the exchange's running aggregates. TPHits accumulates
// profit-in-R of winning closes rather than counting close events, so a
// position that ratcheted twice contributes 2, not 1.
type Stats struct {
	Open          int     `json:"open"`
	Closed        int     `json:"closed"`
	TPHits        float64 `json:"tp_hits"`
	SLHits        int     `json:"sl_hits"`
	BreakevenHits int     `json:"breakeven_hits"`
	ProfitSum     float64 `json:"profit_sum"`
}

// VirtualExchange owns every open position and drives the opened -> closed
// transition. All mutation of the open set and the aggregate counters
// happens under one mutex; the polling loop is single-threaded but the
// monitoring API reads concurrently, so the accessors hand out struct
// copies taken under the lock rather than the live pointers.
type VirtualExchange struct {
	prices   PriceSource
	notifier Notifier
	history  HistorySink
	snapshot SnapshotSink
	bus      *events.Bus
	logger   zerolog.Logger

	mu            sync.Mutex
	nextID        int64
	open          []*Position
	closed        []*Position
	tpHits        float64
	slHits        int
	breakevenHits int
	profitSum     float64
}

// NewVirtualExchange creates a settlement engine. notifier, history,
// snapshot and bus may each be nil; the corresponding side effect is then
// skipped.
func NewVirtualExchange(prices PriceSource, notifier Notifier, history HistorySink, snapshot SnapshotSink, bus *events.Bus, logger zerolog.Logger) *VirtualExchange {
	return &VirtualExchange{
		prices:   prices,
		notifier: notifier,
		history:  history,
		snapshot: snapshot,
		bus:      bus,
		logger:   logger.With().Str("component", "VirtualExchange").Logger(),
	}
}

// OpenPosition accepts a pending position: assigns the next sequential id,
// stamps the open time and marks it opened. A nil position is a no-op.
func (ve *VirtualExchange) OpenPosition(p *Position) {
	if p == nil {
		return
	}

	ve.mu.Lock()
	ve.nextID++
	p.ID = ve.nextID
	p.Status = StatusOpened
	now := time.Now().UTC()
	p.OpenedAt = &now
	p.UpdatePrice(p.Entry)
	ve.open = append(ve.open, p)
	message := openMessage(p, ve.statsLocked())
	ve.mu.Unlock()

	ve.notify(message)
	ve.publish(events.EventPositionOpened, p)

	ve.logger.Info().
		Int64("id", p.ID).
		Str("symbol", p.Symbol).
		Str("interval", p.Interval).
		Str("direction", string(p.Direction)).
		Float64("entry", p.Entry).
		Float64("stop_loss", p.StopLoss).
		Float64("take_profit", p.TakeProfit).
		Msg("position opened")
}

// Tick re-prices every open position exactly once, in acceptance order.
// A failed price fetch leaves that position untouched until the next tick
// and never disturbs the rest of the loop. Settlement and the counters
// update under the lock; history writes, notifications and the snapshot
// of survivors run after it, so a slow sink never stalls concurrent API
// reads.
func (ve *VirtualExchange) Tick() {
	ve.mu.Lock()

	stillOpen := make([]*Position, 0, len(ve.open))
	var closes []settledClose
	for _, pos := range ve.open {
		price, err := ve.prices.GetCurrentPrice(pos.Symbol)
		if err != nil {
			ve.logger.Warn().Err(err).
				Str("symbol", pos.Symbol).
				Str("interval", pos.Interval).
				Msg("price check failed, retrying next tick")
			stillOpen = append(stillOpen, pos)
			continue
		}

		pos.UpdatePrice(price)

		switch {
		case pos.StopLossHit(price):
			closes = append(closes, ve.closePositionLocked(pos, price, ExitReasonStopLoss))
		case pos.TakeProfitHit(price):
			pos.Ratchet()
			ve.logger.Info().
				Int64("id", pos.ID).
				Str("symbol", pos.Symbol).
				Int("wins", pos.Wins).
				Float64("stop_loss", pos.StopLoss).
				Float64("take_profit", pos.TakeProfit).
				Msg("take profit reached, ratcheting")
			ve.publish(events.EventPositionUpdate, pos)
			stillOpen = append(stillOpen, pos)
		default:
			stillOpen = append(stillOpen, pos)
		}
	}
	ve.open = stillOpen
	survivors := append([]*Position(nil), ve.open...)
	ve.mu.Unlock()

	for _, c := range closes {
		ve.finishClose(c)
	}

	if ve.snapshot != nil {
		if err := ve.snapshot.WriteOpen(survivors); err != nil {
			ve.logger.Warn().Err(err).Msg("failed to write open-positions snapshot")
		}
	}
}

// settledClose carries a close out of the locked section so its side
// effects can run without the mutex.
type settledClose struct {
	pos     *Position
	message string
	profit  float64
}

// closePositionLocked is the single place aggregate counters change. The
// caller holds the mutex and drops the position from the open list; the
// returned close is handed to finishClose after unlock.
func (ve *VirtualExchange) closePositionLocked(p *Position, exitPrice float64, reason string) settledClose {
	p.ExitPrice = exitPrice
	p.ExitReason = reason
	p.Status = StatusClosed
	now := time.Now().UTC()
	p.ClosedAt = &now
	ve.closed = append(ve.closed, p)

	profit := p.ProfitInR()
	switch {
	case profit > 0:
		ve.tpHits += profit
	case profit < 0:
		ve.slHits++
	default:
		ve.breakevenHits++
	}
	ve.profitSum += profit

	return settledClose{pos: p, message: closeMessage(p, ve.statsLocked()), profit: profit}
}

// finishClose runs the close's side effects. The position is immutable
// once closed, so no lock is needed here.
func (ve *VirtualExchange) finishClose(c settledClose) {
	if ve.history != nil {
		if err := ve.history.WriteClosed(c.pos); err != nil {
			ve.logger.Warn().Err(err).Int64("id", c.pos.ID).Msg("failed to log closed position")
		}
	}

	ve.notify(c.message)
	ve.publish(events.EventPositionClosed, c.pos)

	ve.logger.Info().
		Int64("id", c.pos.ID).
		Str("symbol", c.pos.Symbol).
		Str("reason", c.pos.ExitReason).
		Float64("exit_price", c.pos.ExitPrice).
		Float64("profit", c.profit).
		Str("duration", c.pos.Duration()).
		Msg("position closed")
}

// FindOpen returns the open position matching symbol, interval, direction
// and strategy name, or nil. Used by the agent's duplicate suppression.
func (ve *VirtualExchange) FindOpen(symbol, interval string, direction strategy.Direction, strategyName string) *Position {
	ve.mu.Lock()
	defer ve.mu.Unlock()

	for _, pos := range ve.open {
		if pos.Symbol == symbol &&
			pos.Interval == interval &&
			pos.Direction == direction &&
			pos.Strategy == strategyName {
			return pos
		}
	}
	return nil
}

// ReArm updates an open position's working stop-loss and take-profit under
// the exchange lock.
func (ve *VirtualExchange) ReArm(p *Position, stopLoss, takeProfit float64) {
	if p == nil {
		return
	}
	ve.mu.Lock()
	p.ReArm(stopLoss, takeProfit)
	ve.mu.Unlock()

	ve.logger.Info().
		Int64("id", p.ID).
		Str("symbol", p.Symbol).
		Float64("stop_loss", stopLoss).
		Float64("take_profit", takeProfit).
		Msg("position re-armed from fresh signal")
	ve.publish(events.EventPositionUpdate, p)
}

// OpenPositions returns the open set in acceptance order, as struct
// copies taken under the lock. The tick loop keeps mutating the live
// positions, so callers must never see those pointers.
func (ve *VirtualExchange) OpenPositions() []Position {
	ve.mu.Lock()
	defer ve.mu.Unlock()
	out := make([]Position, len(ve.open))
	for i, p := range ve.open {
		out[i] = *p
	}
	return out
}

// ClosedPositions returns the closed history, oldest first.
func (ve *VirtualExchange) ClosedPositions() []Position {
	ve.mu.Lock()
	defer ve.mu.Unlock()
	out := make([]Position, len(ve.closed))
	for i, p := range ve.closed {
		out[i] = *p
	}
	return out
}

// Stats returns the current aggregates.
func (ve *VirtualExchange) Stats() Stats {
	ve.mu.Lock()
	defer ve.mu.Unlock()
	return ve.statsLocked()
}

func (ve *VirtualExchange) statsLocked() Stats {
	return Stats{
		Open:          len(ve.open),
		Closed:        len(ve.closed),
		TPHits:        ve.tpHits,
		SLHits:        ve.slHits,
		BreakevenHits: ve.breakevenHits,
		ProfitSum:     ve.profitSum,
	}
}

func (ve *VirtualExchange) notify(message string) {
	if ve.notifier == nil {
		return
	}
	if err := ve.notifier.SendMessage(message); err != nil {
		ve.logger.Warn().Err(err).Msg("failed to send notification")
	}
}

func (ve *VirtualExchange) publish(eventType events.Type, p *Position) {
	if ve.bus == nil {
		return
	}
	ve.bus.Publish(events.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"id":        p.ID,
			"symbol":    p.Symbol,
			"interval":  p.Interval,
			"direction": string(p.Direction),
			"strategy":  p.Strategy,
			"status":    string(p.Status),
			"profit":    p.ProfitInR(),
		},
	})
}
