// Package strategy contains the candlestick pattern strategies and the
// signal type they emit.
package strategy

import (
	"fmt"

	"crypto-alert-bot/internal/binance"
)

// Direction is the side of a signal or position.
type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// Sign returns +1 for Long and -1 for Short.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// Signal is the immutable output of one strategy evaluation.
type Signal struct {
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Direction  Direction
}

// Chart is the market view a strategy evaluates. It is implemented by
// market.Chart; strategies never talk to the data source directly.
type Chart interface {
	Symbol() string
	Interval() string
	// RecentCandles returns the n most recent candles, oldest first.
	RecentCandles(n int) ([]binance.Kline, error)
	// At returns a chart for the same symbol on another interval.
	At(interval string) (Chart, error)
}

// Strategy evaluates a chart and may emit a signal. Implementations are
// stateless; candle-boundary gating happens in the agent layer.
type Strategy interface {
	Name() string
	GenerateSignal(chart Chart) (*Signal, error)
}

// ForName builds a strategy from its configuration name.
func ForName(name string) (Strategy, error) {
	switch name {
	case "hammer":
		return NewHammerCandles(), nil
	case "fullbody_macd":
		return NewFullBodyMACD(), nil
	case "htf_macd":
		return NewHigherTimeframeMACD(), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}
