package persistence

import "crypto-alert-bot/internal/exchange"

// MultiHistory fans closed positions out to several history sinks. Every
// sink gets an attempt; the last error is returned.
type MultiHistory []exchange.HistorySink

func (m MultiHistory) WriteClosed(p *exchange.Position) error {
	var lastErr error
	for _, sink := range m {
		if err := sink.WriteClosed(p); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// MultiSnapshot fans open-position snapshots out to several sinks.
type MultiSnapshot []exchange.SnapshotSink

func (m MultiSnapshot) WriteOpen(positions []*exchange.Position) error {
	var lastErr error
	for _, sink := range m {
		if err := sink.WriteOpen(positions); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

var (
	_ exchange.HistorySink  = (MultiHistory)(nil)
	_ exchange.SnapshotSink = (MultiSnapshot)(nil)
)
