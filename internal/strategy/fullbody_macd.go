package strategy

// FullBodyType classifies a candle whose body dominates its range.
type FullBodyType int

const (
	NonFullBody FullBodyType = iota
	FullBodyGreen
	FullBodyRed
)

func classifyFullBody(open, high, low, close float64, minBodyRatio, maxShadowRatio float64) FullBodyType {
	body := close - open
	if body < 0 {
		body = -body
	}
	rng := high - low
	if rng == 0 {
		return NonFullBody
	}

	top, bottom := open, open
	if close > top {
		top = close
	}
	if close < bottom {
		bottom = close
	}
	shadowRatio := ((high - top) + (bottom - low)) / rng
	bodyRatio := body / rng

	if bodyRatio < minBodyRatio || shadowRatio > maxShadowRatio {
		return NonFullBody
	}
	if close > open {
		return FullBodyGreen
	}
	if close < open {
		return FullBodyRed
	}
	return NonFullBody
}

// FullBodyMACD signals on a full-body candle in the direction of the MACD
// trend, targeting three risk units.
type FullBodyMACD struct{}

func NewFullBodyMACD() *FullBodyMACD { return &FullBodyMACD{} }

func (s *FullBodyMACD) Name() string { return "FBdy+MCD" }

func (s *FullBodyMACD) GenerateSignal(chart Chart) (*Signal, error) {
	candles, err := chart.RecentCandles(macdCandles)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, nil
	}

	// Previous closed candle; the last one is still forming.
	c := candles[len(candles)-2]
	candleType := classifyFullBody(c.Open, c.High, c.Low, c.Close, 0.8, 0.2)
	if candleType == NonFullBody {
		return nil, nil
	}

	trend := MACDTrend(candles[:len(candles)-1])

	if candleType == FullBodyGreen && trend == TrendUp {
		return &Signal{
			Entry:      c.Close,
			StopLoss:   c.Open,
			TakeProfit: c.Close + 3*(c.Close-c.Open),
			Direction:  Long,
		}, nil
	}

	if candleType == FullBodyRed && trend == TrendDown {
		return &Signal{
			Entry:      c.Close,
			StopLoss:   c.Open,
			TakeProfit: c.Close - 3*(c.Open-c.Close),
			Direction:  Short,
		}, nil
	}

	return nil, nil
}
