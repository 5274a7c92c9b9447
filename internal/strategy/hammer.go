package strategy

// HammerType classifies a candle's hammer shape.
type HammerType int

const (
	NonHammer HammerType = iota
	BullishHammer
	BearishHammer
)

const (
	minShadowToBodyRatio   = 2.0
	maxOppositeShadowRatio = 0.2
)

// HammerCandles signals on hammer-shaped reversal candles: a long shadow
// against the trend with a small opposite shadow.
type HammerCandles struct{}

func NewHammerCandles() *HammerCandles { return &HammerCandles{} }

func (s *HammerCandles) Name() string { return "Hammer Candle" }

func classifyHammer(open, high, low, close float64) HammerType {
	body := close - open
	if body < 0 {
		body = -body
	}
	if body == 0 {
		return NonHammer
	}

	top, bottom := open, open
	if close > top {
		top = close
	}
	if close < bottom {
		bottom = close
	}
	upperShadow := high - top
	lowerShadow := bottom - low

	if close > open &&
		lowerShadow >= minShadowToBodyRatio*body &&
		upperShadow <= maxOppositeShadowRatio*lowerShadow {
		return BullishHammer
	}

	if close < open &&
		upperShadow >= minShadowToBodyRatio*body &&
		lowerShadow <= maxOppositeShadowRatio*upperShadow {
		return BearishHammer
	}

	return NonHammer
}

func (s *HammerCandles) GenerateSignal(chart Chart) (*Signal, error) {
	candles, err := chart.RecentCandles(2)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, nil
	}

	// candles[0] is the previous closed candle; candles[1] is still forming
	c := candles[0]

	switch classifyHammer(c.Open, c.High, c.Low, c.Close) {
	case BullishHammer:
		sl := c.Low + c.LowerShadow()/2
		return &Signal{
			Entry:      c.Close,
			StopLoss:   sl,
			TakeProfit: c.Close + (c.Close - sl),
			Direction:  Long,
		}, nil
	case BearishHammer:
		sl := c.High - c.UpperShadow()/2
		return &Signal{
			Entry:      c.Close,
			StopLoss:   sl,
			TakeProfit: c.Close - (sl - c.Close),
			Direction:  Short,
		}, nil
	}

	return nil, nil
}
