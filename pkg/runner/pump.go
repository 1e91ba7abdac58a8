package runner

import (
	"time"

	"github.com/aretw0/tendril/pkg/ports"
)

// Pump is a ports.Scheduler that delivers timer callbacks over a channel,
// so a single-goroutine host can run them on its own loop instead of on
// timer goroutines. Close releases any fire still in flight.
type Pump struct {
	c    chan func()
	done chan struct{}
}

// NewPump creates a Pump. The channel is buffered; a session arms at most
// one wait timer at a time.
func NewPump() *Pump {
	return &Pump{
		c:    make(chan func(), 4),
		done: make(chan struct{}),
	}
}

// C is the channel the loop drains. Each received func must be called on
// the loop goroutine.
func (p *Pump) C() <-chan func() {
	return p.c
}

// After implements ports.Scheduler.
func (p *Pump) After(d time.Duration, fn func()) ports.CancelFunc {
	t := time.AfterFunc(d, func() {
		select {
		case p.c <- fn:
		case <-p.done:
		}
	})
	return func() { t.Stop() }
}

// Close unblocks pending fires. Safe to call once, after the loop exits.
func (p *Pump) Close() {
	close(p.done)
}
