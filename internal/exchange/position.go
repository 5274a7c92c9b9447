// Package exchange implements the virtual position lifecycle and the
// settlement engine that re-prices open positions against the live feed.
package exchange

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crypto-alert-bot/internal/strategy"
)

// Status is a position's lifecycle state. Transitions only move forward:
// pending -> opened -> closed.
type Status string

const (
	// StatusPending is the zero value: created but not yet accepted by the
	// exchange.
	StatusPending Status = ""
	StatusOpened  Status = "opened"
	StatusClosed  Status = "closed"
)

// ExitReasonStopLoss is the exit reason for every stop-loss close. Under
// the ratchet policy this is the only terminal reason: take-profit hits
// extend the position instead of closing it.
const ExitReasonStopLoss = "SL Hit"

const timestampLayout = "2006-01-02 15:04"

// Position is a simulated trade. Entry, InitialStopLoss and
// InitialTakeProfit never change after creation; InitialStopLoss anchors
// the risk unit R used for all profit-in-R math. StopLoss and TakeProfit
// ratchet forward as take-profit levels are reached.
type Position struct {
	ID        int64              `json:"id"`
	Strategy  string             `json:"strategy"`
	Symbol    string             `json:"symbol"`
	Interval  string             `json:"interval"`
	Direction strategy.Direction `json:"direction"`

	Entry             float64 `json:"entry"`
	InitialStopLoss   float64 `json:"initial_stop_loss"`
	InitialTakeProfit float64 `json:"initial_take_profit"`
	StopLoss          float64 `json:"stop_loss"`
	TakeProfit        float64 `json:"take_profit"`

	CurrentPrice float64 `json:"current_price"`
	PnL          float64 `json:"pnl"`     // unrealized profit in R
	MaxPnL       float64 `json:"max_pnl"` // best unrealized profit seen
	MinPnL       float64 `json:"min_pnl"` // worst unrealized profit seen
	Wins         int     `json:"wins"`    // take-profit ratchets so far

	Status     Status     `json:"status"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	ExitReason string     `json:"exit_reason,omitempty"`
}

// NewPosition builds a pending position from a signal. The exchange
// assigns the id and timestamps when the position is accepted.
func NewPosition(symbol, interval, strategyName string, sig *strategy.Signal) *Position {
	return &Position{
		Strategy:          strategyName,
		Symbol:            symbol,
		Interval:          interval,
		Direction:         sig.Direction,
		Entry:             sig.Entry,
		InitialStopLoss:   sig.StopLoss,
		InitialTakeProfit: sig.TakeProfit,
		StopLoss:          sig.StopLoss,
		TakeProfit:        sig.TakeProfit,
	}
}

// Risk returns the risk unit R: the distance from entry to the initial
// stop-loss, positive for a well-formed signal.
func (p *Position) Risk() float64 {
	return p.Direction.Sign() * (p.Entry - p.InitialStopLoss)
}

// ProfitInR returns profit as a multiple of R. While open it is marked
// against the current price; once closed, against the exit price. A
// degenerate signal with entry == initial stop-loss yields 0.
func (p *Position) ProfitInR() float64 {
	risk := p.Risk()
	if risk == 0 {
		return 0
	}
	ref := p.CurrentPrice
	if p.Status == StatusClosed {
		ref = p.ExitPrice
	}
	return p.Direction.Sign() * (ref - p.Entry) / risk
}

// UpdatePrice records a new market price and tracks the unrealized
// profit extremes.
func (p *Position) UpdatePrice(price float64) {
	p.CurrentPrice = price
	p.PnL = p.unrealized()
	if p.PnL > p.MaxPnL {
		p.MaxPnL = p.PnL
	}
	if p.PnL < p.MinPnL {
		p.MinPnL = p.PnL
	}
}

func (p *Position) unrealized() float64 {
	risk := p.Risk()
	if risk == 0 {
		return 0
	}
	return p.Direction.Sign() * (p.CurrentPrice - p.Entry) / risk
}

// StopLossHit reports whether price triggers the current stop-loss.
func (p *Position) StopLossHit(price float64) bool {
	if p.Direction == strategy.Short {
		return price >= p.StopLoss
	}
	return price <= p.StopLoss
}

// TakeProfitHit reports whether price reaches the current take-profit.
func (p *Position) TakeProfitHit(price float64) bool {
	if p.Direction == strategy.Short {
		return price <= p.TakeProfit
	}
	return price >= p.TakeProfit
}

// Ratchet moves stop-loss and take-profit one risk unit in the position's
// favor after a take-profit hit, keeping the position open to ride the run.
func (p *Position) Ratchet() {
	r := p.Risk()
	if p.Direction == strategy.Short {
		p.StopLoss -= r
		p.TakeProfit -= r
	} else {
		p.StopLoss += r
		p.TakeProfit += r
	}
	p.Wins++
}

// ReArm overwrites the working stop-loss and take-profit with a fresh
// signal's levels. Used by duplicate suppression instead of opening a
// second position. The initial levels, and therefore R, are untouched.
func (p *Position) ReArm(stopLoss, takeProfit float64) {
	p.StopLoss = stopLoss
	p.TakeProfit = takeProfit
}

// Duration renders the position's lifetime as "1d 23h 13m 20s". It is
// empty until both timestamps are set. A close stamped before the open
// (a caller error) renders with a leading sign rather than panicking.
func (p *Position) Duration() string {
	if p.OpenedAt == nil || p.ClosedAt == nil {
		return ""
	}
	return formatDuration(p.ClosedAt.Sub(*p.OpenedAt))
}

func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if len(parts) > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if len(parts) > 0 || minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return sign + strings.Join(parts, " ")
}

// HistoryHeader is the column order of closed-position history records.
var HistoryHeader = []string{
	"id", "strategy", "type", "symbol", "interval",
	"entry", "initial_sl", "initial_tp", "exit_price", "exit_reason",
	"profit", "min_pnl", "max_pnl", "open_time", "close_time", "duration",
}

// HistoryRow returns the position as an ordered history record matching
// HistoryHeader.
func (p *Position) HistoryRow() []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Strategy,
		string(p.Direction),
		p.Symbol,
		p.Interval,
		formatPrice(p.Entry),
		formatPrice(p.InitialStopLoss),
		formatPrice(p.InitialTakeProfit),
		formatPrice(p.ExitPrice),
		p.ExitReason,
		formatProfit(p.ProfitInR()),
		formatProfit(p.MinPnL),
		formatProfit(p.MaxPnL),
		formatTime(p.OpenedAt),
		formatTime(p.ClosedAt),
		p.Duration(),
	}
}

// SnapshotHeader is the column order of live open-position records.
var SnapshotHeader = []string{
	"id", "strategy", "type", "symbol", "interval", "open_time",
	"entry", "initial_sl", "current_sl", "next_tp", "pnl", "current_price",
}

// SnapshotRow returns the position as an ordered live-snapshot record
// matching SnapshotHeader.
func (p *Position) SnapshotRow() []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Strategy,
		string(p.Direction),
		p.Symbol,
		p.Interval,
		formatTime(p.OpenedAt),
		formatPrice(p.Entry),
		formatPrice(p.InitialStopLoss),
		formatPrice(p.StopLoss),
		formatPrice(p.TakeProfit),
		formatProfit(p.PnL),
		formatPrice(p.CurrentPrice),
	}
}

func formatPrice(v float64) string  { return strconv.FormatFloat(v, 'f', 4, 64) }
func formatProfit(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
