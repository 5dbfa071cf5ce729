// Package debounce delays an action until its trigger has been quiet for a
// fixed window.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used for interactive search.
const DefaultWindow = 500 * time.Millisecond

// Debouncer runs the most recent submitted function once no newer call has
// arrived within the window. Work that already started is not cancelled.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	seq     uint64
	running int
}

func New(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Debouncer{window: window}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Call schedules fn, replacing any call still waiting.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.running++
		d.mu.Unlock()

		defer func() {
			d.mu.Lock()
			d.running--
			if d.running == 0 {
				d.idle.Broadcast()
			}
			d.mu.Unlock()
		}()
		fn()
	})
}

// Stop drops the pending call, if any, and waits for a call that already
// fired to return. It must not be called from inside fn.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	for d.running > 0 {
		d.idle.Wait()
	}
}
