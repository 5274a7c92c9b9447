// Package agent scans chart/strategy pairs for fresh signals and feeds
// resulting positions into the virtual exchange, suppressing duplicates.
package agent

import (
	"github.com/rs/zerolog"

	"crypto-alert-bot/internal/exchange"
	"crypto-alert-bot/internal/strategy"
)

// Chart is what the agent scans: a strategy chart that additionally knows
// whether a new candle has opened since its last fetch.
type Chart interface {
	strategy.Chart
	HaveNewData() bool
}

// Config gates what the agent is allowed to do. Direction gates drop
// signals before duplicate suppression runs.
type Config struct {
	Enabled bool
	Long    bool
	Short   bool
}

// Agent evaluates every configured strategy against every chart with fresh
// data, once per polling cycle.
type Agent struct {
	charts     []Chart
	strategies []strategy.Strategy
	exchange   *exchange.VirtualExchange
	cfg        Config
	logger     zerolog.Logger
}

// New creates an agent.
func New(charts []Chart, strategies []strategy.Strategy, ex *exchange.VirtualExchange, cfg Config, logger zerolog.Logger) *Agent {
	return &Agent{
		charts:     charts,
		strategies: strategies,
		exchange:   ex,
		cfg:        cfg,
		logger:     logger.With().Str("component", "Agent").Logger(),
	}
}

// Analyze runs one scan cycle. A strategy error on one chart is logged and
// never stops the scan of the remaining pairs.
func (a *Agent) Analyze() {
	if !a.cfg.Enabled {
		return
	}

	for _, chart := range a.charts {
		if !chart.HaveNewData() {
			continue
		}
		for _, strat := range a.strategies {
			a.evaluate(chart, strat)
		}
	}
}

func (a *Agent) evaluate(chart Chart, strat strategy.Strategy) {
	sig, err := strat.GenerateSignal(chart)
	if err != nil {
		a.logger.Warn().Err(err).
			Str("symbol", chart.Symbol()).
			Str("interval", chart.Interval()).
			Str("strategy", strat.Name()).
			Msg("signal generation failed")
		return
	}
	if sig == nil {
		return
	}

	if sig.Direction == strategy.Long && !a.cfg.Long {
		return
	}
	if sig.Direction == strategy.Short && !a.cfg.Short {
		return
	}

	// Re-arm an existing position instead of stacking a duplicate for the
	// same instrument, timeframe, direction and strategy.
	if existing := a.exchange.FindOpen(chart.Symbol(), chart.Interval(), sig.Direction, strat.Name()); existing != nil {
		a.exchange.ReArm(existing, sig.StopLoss, sig.TakeProfit)
		return
	}

	pos := exchange.NewPosition(chart.Symbol(), chart.Interval(), strat.Name(), sig)
	a.exchange.OpenPosition(pos)
}
