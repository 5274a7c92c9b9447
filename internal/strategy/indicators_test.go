package strategy

import (
	"math"
	"testing"

	"crypto-alert-bot/internal/binance"
)

func klinesFromCloses(closes ...float64) []binance.Kline {
	out := make([]binance.Kline, len(closes))
	for i, c := range closes {
		out[i] = binance.Kline{Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func TestCalculateSMA(t *testing.T) {
	klines := klinesFromCloses(1, 2, 3, 4, 5)

	if got := CalculateSMA(klines, 5); got != 3 {
		t.Errorf("SMA(5) of 1..5 should be 3, got %f", got)
	}
	if got := CalculateSMA(klines, 2); got != 4.5 {
		t.Errorf("SMA(2) should use the last two closes, got %f", got)
	}
	if got := CalculateSMA(klines, 10); got != 0 {
		t.Errorf("Short input should yield 0, got %f", got)
	}
	if got := CalculateSMA(klines, 0); got != 0 {
		t.Errorf("Non-positive period should yield 0, got %f", got)
	}
}

func TestCalculateEMA(t *testing.T) {
	// Constant series: EMA equals the constant
	klines := klinesFromCloses(5, 5, 5, 5, 5)
	if got := CalculateEMA(klines, 3); got != 5 {
		t.Errorf("EMA of a constant series should be the constant, got %f", got)
	}

	// Rising series: EMA lags below the last close but above the SMA seed
	rising := klinesFromCloses(1, 2, 3, 4, 5, 6)
	ema := CalculateEMA(rising, 3)
	if ema <= CalculateSMA(rising[:3], 3) || ema >= 6 {
		t.Errorf("EMA of a rising series should sit between the seed and the last close, got %f", ema)
	}

	if got := CalculateEMA(klinesFromCloses(1, 2), 3); got != 0 {
		t.Errorf("Short input should yield 0, got %f", got)
	}
}

func TestMACDTrend(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	for i := range rising {
		rising[i] = float64(i + 1)
		falling[i] = float64(len(falling) - i)
	}

	if got := MACDTrend(klinesFromCloses(rising...)); got != TrendUp {
		t.Errorf("Steadily rising closes should trend up, got %v", got)
	}
	if got := MACDTrend(klinesFromCloses(falling...)); got != TrendDown {
		t.Errorf("Steadily falling closes should trend down, got %v", got)
	}

	// Too little history collapses to a zero MACD, read as neutral
	if got := MACDTrend(klinesFromCloses(rising[:10]...)); got != TrendNeutral {
		t.Errorf("Insufficient history should be neutral, got %v", got)
	}
}

func TestCalculateMACDConstantSeries(t *testing.T) {
	constant := make([]float64, 60)
	for i := range constant {
		constant[i] = 100
	}
	m := CalculateMACD(klinesFromCloses(constant...), 12, 26, 9)
	if math.Abs(m.Line) > 1e-9 || math.Abs(m.Signal) > 1e-9 || math.Abs(m.Histogram) > 1e-9 {
		t.Errorf("MACD of a flat series should be zero, got %+v", m)
	}
}
