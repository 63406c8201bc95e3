package usecase

import (
	"sync"
	"time"
)

// Ticker is a recurring trigger.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// timerHandle is the controller's cancellable hold on a running ticker.
// Cancel may be called any number of times.
type timerHandle struct {
	ticker Ticker
	stop   chan struct{}
	once   sync.Once
}

// startTimer forwards every tick of a new ticker to fire until the handle is cancelled.
func startTimer(factory TickerFactory, interval time.Duration, fire func()) *timerHandle {
	h := &timerHandle{
		ticker: factory(interval),
		stop:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-h.stop:
				return
			case <-h.ticker.C():
				fire()
			}
		}
	}()

	return h
}

// Cancel stops the ticker and its forwarding goroutine.
func (h *timerHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.stop)
	})
}
