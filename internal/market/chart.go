package market

import (
	"fmt"
	"sync"
	"time"

	"crypto-alert-bot/internal/binance"
	"crypto-alert-bot/internal/strategy"
)

// klineCache shares fetched candles between charts so that several
// strategies scanning the same (symbol, timeframe) within one cycle do not
// refetch.
type klineCache struct {
	mu      sync.Mutex
	entries map[string][]binance.Kline
}

var sharedCache = &klineCache{entries: make(map[string][]binance.Kline)}

func cacheKey(symbol string, tf Timeframe, n int) string {
	return fmt.Sprintf("%s:%s:%d", symbol, tf, n)
}

// Chart is a (symbol, timeframe) view over the market data source. It
// remembers the open time of the newest candle it has seen, which gates
// re-evaluation until the next candle boundary.
type Chart struct {
	source    binance.MarketDataSource
	symbol    string
	timeframe Timeframe

	mu       sync.Mutex
	lastSeen time.Time // open time of the newest fetched candle
}

// NewChart creates a chart, rejecting unsupported timeframes eagerly.
func NewChart(source binance.MarketDataSource, symbol string, tf Timeframe) (*Chart, error) {
	if _, err := ParseTimeframe(string(tf)); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	return &Chart{source: source, symbol: symbol, timeframe: tf}, nil
}

func (c *Chart) Symbol() string       { return c.symbol }
func (c *Chart) Timeframe() Timeframe { return c.timeframe }

// Interval returns the timeframe in Binance notation.
func (c *Chart) Interval() string { return string(c.timeframe) }

// HaveNewData reports whether a new candle should have opened since the
// last fetch. Before any fetch it is always true.
func (c *Chart) HaveNewData() bool {
	return c.haveNewDataAt(time.Now().UTC())
}

func (c *Chart) haveNewDataAt(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastSeen.IsZero() {
		return true
	}
	return !now.Before(c.timeframe.NextOpen(c.lastSeen))
}

// RecentCandles returns the n most recent candles, oldest first. The shared
// cache is reused while no new candle boundary has passed.
func (c *Chart) RecentCandles(n int) ([]binance.Kline, error) {
	key := cacheKey(c.symbol, c.timeframe, n)

	sharedCache.mu.Lock()
	cached, ok := sharedCache.entries[key]
	sharedCache.mu.Unlock()

	if ok && !c.HaveNewData() {
		return cached, nil
	}

	klines, err := c.source.GetKlines(c.symbol, string(c.timeframe), n)
	if err != nil {
		return nil, fmt.Errorf("fetching candles for %s %s: %w", c.symbol, c.timeframe, err)
	}

	if len(klines) > 0 {
		c.mu.Lock()
		c.lastSeen = time.UnixMilli(klines[len(klines)-1].OpenTime).UTC()
		c.mu.Unlock()

		sharedCache.mu.Lock()
		sharedCache.entries[key] = klines
		sharedCache.mu.Unlock()
	}

	return klines, nil
}

// CurrentPrice returns the live price for the chart's symbol.
func (c *Chart) CurrentPrice() (float64, error) {
	return c.source.GetCurrentPrice(c.symbol)
}

// At returns a chart over the same symbol and source on another timeframe.
// Used by strategies that confirm signals against a higher timeframe.
func (c *Chart) At(interval string) (strategy.Chart, error) {
	tf, err := ParseTimeframe(interval)
	if err != nil {
		return nil, err
	}
	return NewChart(c.source, c.symbol, tf)
}

var _ strategy.Chart = (*Chart)(nil)
