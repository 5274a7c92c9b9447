package strategy

import (
	"testing"

	"crypto-alert-bot/internal/binance"
)

func TestClassifyFullBody(t *testing.T) {
	// Body fills the range almost entirely
	if got := classifyFullBody(100, 110.2, 99.9, 110, 0.8, 0.2); got != FullBodyGreen {
		t.Errorf("Should classify full-body green, got %v", got)
	}
	if got := classifyFullBody(110, 110.1, 99.8, 100, 0.8, 0.2); got != FullBodyRed {
		t.Errorf("Should classify full-body red, got %v", got)
	}

	// Big shadows disqualify
	if got := classifyFullBody(100, 115, 99, 110, 0.8, 0.2); got != NonFullBody {
		t.Errorf("Long shadows should disqualify, got %v", got)
	}

	// Flat candle
	if got := classifyFullBody(100, 100, 100, 100, 0.8, 0.2); got != NonFullBody {
		t.Errorf("Zero range should disqualify, got %v", got)
	}
}

// risingFullBodyChart builds a steady uptrend whose last closed candle is a
// full-body green.
func risingFullBodyChart() *fakeChart {
	candles := make([]binance.Kline, 60)
	for i := range candles {
		open := 100 + float64(i)
		close := open + 1
		candles[i] = binance.Kline{Open: open, High: close, Low: open, Close: close}
	}
	return &fakeChart{symbol: "BTCUSDT", interval: "15m", candles: candles}
}

func TestFullBodyMACDSignalLong(t *testing.T) {
	chart := risingFullBodyChart()

	sig, err := NewFullBodyMACD().GenerateSignal(chart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig == nil {
		t.Fatal("Full-body green in an uptrend should signal long")
	}
	if sig.Direction != Long {
		t.Errorf("Direction should be Long, got %v", sig.Direction)
	}

	// Previous closed candle opens at 158 and closes at 159
	if sig.Entry != 159 || sig.StopLoss != 158 {
		t.Errorf("Entry/stop should come from the closed candle, got entry=%f sl=%f", sig.Entry, sig.StopLoss)
	}
	if sig.TakeProfit != 162 {
		t.Errorf("Target should be three risk units above entry, got %f", sig.TakeProfit)
	}
}

func TestFullBodyMACDNoSignalAgainstTrend(t *testing.T) {
	// Downtrend with one green full-body candle near the end
	candles := make([]binance.Kline, 60)
	for i := range candles {
		open := 200 - float64(i)
		close := open - 1
		candles[i] = binance.Kline{Open: open, High: open, Low: close, Close: close}
	}
	// Make the last closed candle green against the downtrend
	candles[58] = binance.Kline{Open: 142, High: 143, Low: 142, Close: 143}
	chart := &fakeChart{symbol: "BTCUSDT", interval: "15m", candles: candles}

	sig, err := NewFullBodyMACD().GenerateSignal(chart)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig != nil {
		t.Error("Green candle against a downtrend must not signal")
	}
}

func TestHTFMACDRequiresConfirmation(t *testing.T) {
	base := risingFullBodyChart()

	// Higher timeframe trending down blocks the signal
	downCandles := make([]binance.Kline, 60)
	for i := range downCandles {
		c := 200 - float64(i)
		downCandles[i] = binance.Kline{Open: c + 1, High: c + 1, Low: c, Close: c}
	}
	base.at = map[string]*fakeChart{
		"4h": {symbol: "BTCUSDT", interval: "4h", candles: downCandles},
	}

	sig, err := NewHigherTimeframeMACD().GenerateSignal(base)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig != nil {
		t.Error("Conflicting higher-timeframe trend must block the signal")
	}

	// Aligned higher timeframe lets the signal through
	base.at["4h"] = risingFullBodyChart()
	sig, err = NewHigherTimeframeMACD().GenerateSignal(base)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig == nil || sig.Direction != Long {
		t.Error("Aligned higher-timeframe trend should confirm the long signal")
	}
}

func TestHTFMACDSkipsUnmappedIntervals(t *testing.T) {
	chart := risingFullBodyChart()
	chart.interval = "1h" // no confirmation mapping

	sig, err := NewHigherTimeframeMACD().GenerateSignal(chart)
	if err != nil || sig != nil {
		t.Error("Unmapped base interval should yield no signal and no error")
	}
}
