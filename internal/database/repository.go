package database

import (
	"context"
	"fmt"
	"time"

	"crypto-alert-bot/internal/exchange"
)

// Repository persists closed positions to PostgreSQL. It implements
// exchange.HistorySink so it can be stacked next to the CSV sink.
type Repository struct {
	db *DB
}

// NewRepository creates a repository backed by db.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveClosedPosition inserts one closed position into positions_history.
func (r *Repository) SaveClosedPosition(ctx context.Context, p *exchange.Position) error {
	query := `
		INSERT INTO positions_history (
			id, strategy, direction, symbol, interval,
			entry, initial_sl, initial_tp, exit_price, exit_reason,
			profit, min_pnl, max_pnl, opened_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Pool.Exec(ctx, query,
		p.ID, p.Strategy, string(p.Direction), p.Symbol, p.Interval,
		p.Entry, p.InitialStopLoss, p.InitialTakeProfit, p.ExitPrice, p.ExitReason,
		p.ProfitInR(), p.MinPnL, p.MaxPnL, p.OpenedAt, p.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save closed position: %w", err)
	}
	return nil
}

// WriteClosed satisfies exchange.HistorySink with a bounded timeout so a
// slow database cannot stall the tick loop for long.
func (r *Repository) WriteClosed(p *exchange.Position) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.SaveClosedPosition(ctx, p)
}

var _ exchange.HistorySink = (*Repository)(nil)
