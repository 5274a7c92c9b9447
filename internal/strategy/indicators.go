package strategy

import "crypto-alert-bot/internal/binance"

// TrendDirection classifies the market trend derived from an indicator.
type TrendDirection string

const (
	TrendUp      TrendDirection = "uptrend"
	TrendDown    TrendDirection = "downtrend"
	TrendNeutral TrendDirection = "neutral"
)

// CalculateSMA calculates Simple Moving Average over the closes of klines.
func CalculateSMA(klines []binance.Kline, period int) float64 {
	if len(klines) < period || period <= 0 {
		return 0
	}

	sum := 0.0
	for i := len(klines) - period; i < len(klines); i++ {
		sum += klines[i].Close
	}
	return sum / float64(period)
}

// CalculateEMA calculates Exponential Moving Average over the closes.
func CalculateEMA(klines []binance.Kline, period int) float64 {
	series := emaSeries(closes(klines), period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// MACD holds the three MACD components at the latest candle.
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD computes MACD(fast, slow, signal) at the latest candle.
// It needs at least slow+signal candles; short inputs yield a zero MACD.
func CalculateMACD(klines []binance.Kline, fast, slow, signal int) MACD {
	prices := closes(klines)
	if len(prices) < slow+signal {
		return MACD{}
	}

	fastEMA := emaSeries(prices, fast)
	slowEMA := emaSeries(prices, slow)

	// MACD line exists from the point both EMAs exist
	offset := len(fastEMA) - len(slowEMA)
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalSeries := emaSeries(line, signal)
	if len(signalSeries) == 0 {
		return MACD{}
	}

	m := MACD{
		Line:   line[len(line)-1],
		Signal: signalSeries[len(signalSeries)-1],
	}
	m.Histogram = m.Line - m.Signal
	return m
}

// MACDTrend classifies the trend from the standard MACD(12, 26, 9).
func MACDTrend(klines []binance.Kline) TrendDirection {
	m := CalculateMACD(klines, 12, 26, 9)
	switch {
	case m.Line > m.Signal:
		return TrendUp
	case m.Line < m.Signal:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// macdCandles is how much history MACD-based strategies fetch so the
// signal line has settled.
const macdCandles = 26 + 9 + 100

func closes(klines []binance.Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Close
	}
	return out
}

// emaSeries returns the EMA values starting from the first full period,
// seeded with the SMA of that period.
func emaSeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	sum := 0.0
	for _, p := range prices[:period] {
		sum += p
	}
	ema := sum / float64(period)
	multiplier := 2.0 / float64(period+1)

	series := make([]float64, 0, len(prices)-period+1)
	series = append(series, ema)
	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
		series = append(series, ema)
	}
	return series
}
