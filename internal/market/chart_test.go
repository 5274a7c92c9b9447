package market

import (
	"errors"
	"testing"
	"time"

	"crypto-alert-bot/internal/binance"
)

type stubSource struct {
	klines     []binance.Kline
	klineCalls int
	price      float64
	err        error
}

func (s *stubSource) GetKlines(symbol, interval string, limit int) ([]binance.Kline, error) {
	s.klineCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.klines, nil
}

func (s *stubSource) GetCurrentPrice(symbol string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.price, nil
}

func TestNewChartValidation(t *testing.T) {
	source := &stubSource{}

	if _, err := NewChart(source, "BTCUSDT", "15m"); err != nil {
		t.Errorf("Valid chart should construct: %v", err)
	}
	if _, err := NewChart(source, "BTCUSDT", "7m"); err == nil {
		t.Error("Unsupported timeframe should be rejected")
	}
	if _, err := NewChart(source, "", "15m"); err == nil {
		t.Error("Empty symbol should be rejected")
	}
}

func TestHaveNewDataBeforeFirstFetch(t *testing.T) {
	chart, err := NewChart(&stubSource{}, "NEWCOIN1USDT", "15m")
	if err != nil {
		t.Fatal(err)
	}
	if !chart.HaveNewData() {
		t.Error("A chart that never fetched must report new data")
	}
}

func TestHaveNewDataAtBoundary(t *testing.T) {
	chart, err := NewChart(&stubSource{}, "NEWCOIN2USDT", "15m")
	if err != nil {
		t.Fatal(err)
	}

	chart.lastSeen = time.Date(2026, 3, 10, 14, 15, 0, 0, time.UTC)

	if chart.haveNewDataAt(time.Date(2026, 3, 10, 14, 20, 0, 0, time.UTC)) {
		t.Error("No new candle before the boundary")
	}
	if !chart.haveNewDataAt(time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)) {
		t.Error("New candle exactly at the boundary")
	}
	if !chart.haveNewDataAt(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)) {
		t.Error("New candle after the boundary")
	}
}

func TestRecentCandlesUpdatesLastSeen(t *testing.T) {
	open := time.Date(2026, 3, 10, 14, 15, 0, 0, time.UTC)
	source := &stubSource{klines: []binance.Kline{
		{OpenTime: open.Add(-15 * time.Minute).UnixMilli(), Close: 100},
		{OpenTime: open.UnixMilli(), Close: 101},
	}}
	chart, err := NewChart(source, "NEWCOIN3USDT", "15m")
	if err != nil {
		t.Fatal(err)
	}

	klines, err := chart.RecentCandles(2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(klines) != 2 {
		t.Fatalf("Should return the fetched candles, got %d", len(klines))
	}
	if !chart.lastSeen.Equal(open) {
		t.Errorf("lastSeen should be the newest open time, got %v", chart.lastSeen)
	}

	// Within the same candle the cache answers without a refetch
	if chart.haveNewDataAt(open.Add(5 * time.Minute)) {
		t.Error("Mid-candle there is no new data")
	}
}

func TestRecentCandlesCacheReuse(t *testing.T) {
	now := time.Now().UTC()
	source := &stubSource{klines: []binance.Kline{
		{OpenTime: now.UnixMilli(), Close: 100},
	}}
	chart, err := NewChart(source, "NEWCOIN4USDT", "1d")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := chart.RecentCandles(1); err != nil {
		t.Fatal(err)
	}
	if _, err := chart.RecentCandles(1); err != nil {
		t.Fatal(err)
	}
	if source.klineCalls != 1 {
		t.Errorf("Second read within the candle should hit the cache, got %d fetches", source.klineCalls)
	}
}

func TestRecentCandlesError(t *testing.T) {
	source := &stubSource{err: errors.New("feed down")}
	chart, err := NewChart(source, "NEWCOIN5USDT", "15m")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := chart.RecentCandles(2); err == nil {
		t.Error("Source errors should propagate")
	}
}

func TestAtReturnsHigherTimeframe(t *testing.T) {
	chart, err := NewChart(&stubSource{}, "BTCUSDT", "15m")
	if err != nil {
		t.Fatal(err)
	}

	higher, err := chart.At("4h")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if higher.Symbol() != "BTCUSDT" || higher.Interval() != "4h" {
		t.Errorf("Higher chart should keep the symbol on the new interval, got %s %s", higher.Symbol(), higher.Interval())
	}

	if _, err := chart.At("7m"); err == nil {
		t.Error("Unsupported interval should be rejected")
	}
}
