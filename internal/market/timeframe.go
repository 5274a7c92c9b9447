// Package market models chart timeframes and candle-boundary time math
// on top of the Binance market-data source.
package market

import (
	"fmt"
	"time"
)

// Timeframe is a candle interval in Binance notation ("15m", "4h", "1d", ...).
type Timeframe string

const (
	Minute1  Timeframe = "1m"
	Minute3  Timeframe = "3m"
	Minute5  Timeframe = "5m"
	Minute15 Timeframe = "15m"
	Minute30 Timeframe = "30m"
	Hour1    Timeframe = "1h"
	Hour2    Timeframe = "2h"
	Hour4    Timeframe = "4h"
	Hour6    Timeframe = "6h"
	Hour8    Timeframe = "8h"
	Hour12   Timeframe = "12h"
	Day1     Timeframe = "1d"
	Day3     Timeframe = "3d"
	Week1    Timeframe = "1w"
	Month1   Timeframe = "1M"
)

var supportedTimeframes = map[Timeframe]struct{}{
	Minute1: {}, Minute3: {}, Minute5: {}, Minute15: {}, Minute30: {},
	Hour1: {}, Hour2: {}, Hour4: {}, Hour6: {}, Hour8: {}, Hour12: {},
	Day1: {}, Day3: {}, Week1: {}, Month1: {},
}

// ParseTimeframe validates an interval string. Unsupported timeframes are a
// configuration error and are rejected eagerly.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := supportedTimeframes[tf]; !ok {
		return "", fmt.Errorf("unsupported timeframe: %q", s)
	}
	return tf, nil
}

// String returns the Binance interval notation.
func (tf Timeframe) String() string { return string(tf) }

// value and unit split "15m" into 15 and 'm'. Only called on validated
// timeframes.
func (tf Timeframe) value() int {
	var v int
	fmt.Sscanf(string(tf[:len(tf)-1]), "%d", &v)
	return v
}

func (tf Timeframe) unit() byte { return tf[len(tf)-1] }

// NextOpen returns the open time of the candle following the one opened at
// lastOpen, aligned to calendar boundaries in UTC.
func (tf Timeframe) NextOpen(lastOpen time.Time) time.Time {
	t := lastOpen.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	v := tf.value()

	switch tf.unit() {
	case 'm':
		totalMinutes := t.Hour()*60 + t.Minute()
		next := ((totalMinutes / v) + 1) * v
		return midnight.Add(time.Duration(next) * time.Minute)
	case 'h':
		nextHour := ((t.Hour() / v) + 1) * v
		next := midnight.Add(time.Duration(nextHour) * time.Hour)
		if next.YearDay() != t.YearDay() || next.Year() != t.Year() {
			return midnight.AddDate(0, 0, 1)
		}
		return next
	case 'd':
		return midnight.AddDate(0, 0, v)
	case 'w':
		// candles open on Mondays
		daysUntilMonday := (8 - int(t.Weekday())) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return midnight.AddDate(0, 0, daysUntilMonday)
	case 'M':
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, v, 0)
	}
	return midnight.AddDate(0, 0, 1)
}
