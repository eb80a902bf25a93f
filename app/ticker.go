package app

import "time"

// Ticker delivers poll ticks. It exists so the poll loop can be driven by
// something other than wall-clock time.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFunc func(time.Duration) Ticker

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func NewTimeTicker(interval time.Duration) Ticker {
	return timeTicker{Ticker: time.NewTicker(interval)}
}
