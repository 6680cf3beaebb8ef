package playback

import (
	"sync"
	"time"
)

// ChannelTimer is a Timer that delivers generation tags on a channel. The
// goroutine that owns the Engine selects on Ticks and passes each value to
// Engine.Tick.
type ChannelTimer struct {
	ticks chan uint64

	mu   sync.Mutex
	stop chan struct{}
}

var _ Timer = (*ChannelTimer)(nil)

// NewChannelTimer returns a stopped timer.
func NewChannelTimer() *ChannelTimer {
	return &ChannelTimer{ticks: make(chan uint64, 1)}
}

// Ticks returns the channel ticks are delivered on.
func (t *ChannelTimer) Ticks() <-chan uint64 { return t.ticks }

// Start stops any running ticker and starts a new one tagged with gen.
func (t *ChannelTimer) Start(interval time.Duration, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	stop := make(chan struct{})
	t.stop = stop
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				select {
				case t.ticks <- gen:
				case <-stop:
					return
				}
			}
		}
	}()
}

// Stop halts the running ticker. A tick already queued on the channel may
// still be received; Engine.Tick discards it by generation.
func (t *ChannelTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *ChannelTimer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
