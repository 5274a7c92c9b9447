package strategy

// HigherTimeframeMACD is FullBodyMACD additionally confirmed by the MACD
// trend of one or more higher timeframes. It only evaluates the base
// timeframes it has a confirmation mapping for.
type HigherTimeframeMACD struct {
	higher map[string][]string
}

func NewHigherTimeframeMACD() *HigherTimeframeMACD {
	return &HigherTimeframeMACD{
		higher: map[string][]string{
			"15m": {"4h"},
			"30m": {"4h"},
		},
	}
}

func (s *HigherTimeframeMACD) Name() string { return "HTF_MCD" }

// higherTrend returns the shared trend of all confirmation timeframes, or
// neutral when they disagree.
func (s *HigherTimeframeMACD) higherTrend(chart Chart) (TrendDirection, error) {
	trends := make(map[TrendDirection]struct{})
	for _, interval := range s.higher[chart.Interval()] {
		higher, err := chart.At(interval)
		if err != nil {
			return TrendNeutral, err
		}
		candles, err := higher.RecentCandles(macdCandles)
		if err != nil {
			return TrendNeutral, err
		}
		trends[MACDTrend(candles)] = struct{}{}
	}

	if len(trends) != 1 {
		return TrendNeutral, nil
	}
	for trend := range trends {
		return trend, nil
	}
	return TrendNeutral, nil
}

func (s *HigherTimeframeMACD) GenerateSignal(chart Chart) (*Signal, error) {
	if _, ok := s.higher[chart.Interval()]; !ok {
		return nil, nil
	}

	candles, err := chart.RecentCandles(macdCandles)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, nil
	}

	c := candles[len(candles)-2]
	candleType := classifyFullBody(c.Open, c.High, c.Low, c.Close, 0.7, 0.3)
	if candleType == NonFullBody {
		return nil, nil
	}

	trend := MACDTrend(candles[:len(candles)-1])
	confirmation, err := s.higherTrend(chart)
	if err != nil {
		return nil, err
	}

	if candleType == FullBodyGreen && trend == TrendUp && confirmation == TrendUp {
		return &Signal{
			Entry:      c.Close,
			StopLoss:   c.Open,
			TakeProfit: c.Close + 3*(c.Close-c.Open),
			Direction:  Long,
		}, nil
	}

	if candleType == FullBodyRed && trend == TrendDown && confirmation == TrendDown {
		return &Signal{
			Entry:      c.Close,
			StopLoss:   c.Open,
			TakeProfit: c.Close - 3*(c.Open-c.Close),
			Direction:  Short,
		}, nil
	}

	return nil, nil
}
