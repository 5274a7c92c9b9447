package binance

// MarketDataSource defines the market-data operations the engine consumes.
type MarketDataSource interface {
	GetKlines(symbol, interval string, limit int) ([]Kline, error)
	GetCurrentPrice(symbol string) (float64, error)
}

// Ensure both Client and MockClient implement MarketDataSource
var _ MarketDataSource = (*Client)(nil)
var _ MarketDataSource = (*MockClient)(nil)
