package binance

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// MockClient provides simulated market data for development and mock mode.
// Prices follow a small random walk around realistic base values.
type MockClient struct {
	prices     map[string]float64
	lastUpdate time.Time
	rng        *rand.Rand
	mu         sync.Mutex // protects prices, lastUpdate and rng
}

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{
		prices: map[string]float64{
			"BTCUSDT":  104500.00,
			"ETHUSDT":  3900.00,
			"BNBUSDT":  710.00,
			"SOLUSDT":  220.00,
			"XRPUSDT":  2.35,
			"ADAUSDT":  1.05,
			"DOGEUSDT": 0.40,
			"AVAXUSDT": 50.00,
			"LINKUSDT": 28.00,
			"TRXUSDT":  0.29,
			"SUIUSDT":  4.20,
			"PAXGUSDT": 2650.00,
		},
		lastUpdate: time.Now(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// updatePrices adds small random variations to simulate market movement.
// Caller must hold mu.
func (mc *MockClient) updatePrices() {
	if time.Since(mc.lastUpdate) < time.Second {
		return
	}
	for symbol, price := range mc.prices {
		// up to +/-0.1% per update
		change := (mc.rng.Float64() - 0.5) * 0.002
		mc.prices[symbol] = price * (1 + change)
	}
	mc.lastUpdate = time.Now()
}

// GetCurrentPrice returns the simulated price for a symbol.
func (mc *MockClient) GetCurrentPrice(symbol string) (float64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.updatePrices()
	price, ok := mc.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("unknown symbol: %s", symbol)
	}
	return price, nil
}

// GetKlines synthesizes a plausible candle history ending at the current
// simulated price, aligned to the interval's duration.
func (mc *MockClient) GetKlines(symbol, interval string, limit int) ([]Kline, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.updatePrices()
	price, ok := mc.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol: %s", symbol)
	}

	step := intervalDuration(interval)
	now := time.Now().Truncate(step)

	klines := make([]Kline, limit)
	close := price
	for i := limit - 1; i >= 0; i-- {
		open := close * (1 + (mc.rng.Float64()-0.5)*0.01)
		high := open
		low := open
		if close > high {
			high = close
		}
		if close < low {
			low = close
		}
		high *= 1 + mc.rng.Float64()*0.003
		low *= 1 - mc.rng.Float64()*0.003

		openTime := now.Add(time.Duration(i-limit+1) * step)
		klines[i] = Kline{
			OpenTime:       openTime.UnixMilli(),
			Open:           open,
			High:           high,
			Low:            low,
			Close:          close,
			Volume:         100 + mc.rng.Float64()*900,
			CloseTime:      openTime.Add(step).UnixMilli() - 1,
			NumberOfTrades: 100 + mc.rng.Intn(1000),
		}
		close = open
	}

	return klines, nil
}

// intervalDuration approximates an interval string as a duration for
// synthesizing candle open times. Unknown intervals fall back to a minute.
func intervalDuration(interval string) time.Duration {
	if len(interval) < 2 {
		return time.Minute
	}
	unit := interval[len(interval)-1]
	var value int
	if _, err := fmt.Sscanf(interval[:len(interval)-1], "%d", &value); err != nil || value <= 0 {
		return time.Minute
	}
	switch unit {
	case 'm':
		return time.Duration(value) * time.Minute
	case 'h':
		return time.Duration(value) * time.Hour
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour
	case 'M':
		return time.Duration(value) * 30 * 24 * time.Hour
	default:
		return time.Minute
	}
}
