package services

import (
	"context"
	"sync"
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

// Lifecycle tracks the phases of one view: Unmounted, Initializing, Ready,
// and back to Unmounted. Each mount gets a new generation so work started
// under an earlier mount can tell it is stale.
type Lifecycle struct {
	mu          sync.Mutex
	state       domain.ViewState
	generation  uint64
	ctx         context.Context
	cancel      context.CancelFunc
	resizeTimer *time.Timer
	refreshStop chan struct{}
	refreshDone chan struct{}
}

// NewLifecycle starts unmounted.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: domain.StateUnmounted}
}

// Begin moves Unmounted to Initializing. It returns false when the view is
// already mounted or initialising.
func (l *Lifecycle) Begin() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != domain.StateUnmounted {
		return l.generation, false
	}
	l.generation++
	l.state = domain.StateInitializing
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l.generation, true
}

// Ready moves Initializing to Ready for the given mount.
func (l *Lifecycle) Ready(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.generation != gen || l.state != domain.StateInitializing {
		return false
	}
	l.state = domain.StateReady
	return true
}

// State returns the current phase.
func (l *Lifecycle) State() domain.ViewState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Generation returns the current mount and whether it is live.
func (l *Lifecycle) Generation() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation, l.state != domain.StateUnmounted
}

// Context is cancelled when the current mount ends.
func (l *Lifecycle) Context() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return l.ctx
}

// Do runs fn while holding the lifecycle lock if gen is still the live
// mount. Unmount cannot interleave with fn.
func (l *Lifecycle) Do(gen uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.generation != gen || l.state == domain.StateUnmounted {
		return false
	}
	fn()
	return true
}

// Debounce runs fn once d has passed without another call.
func (l *Lifecycle) Debounce(d time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == domain.StateUnmounted {
		return
	}
	if l.resizeTimer != nil {
		l.resizeTimer.Stop()
	}
	l.resizeTimer = time.AfterFunc(d, fn)
}

// Current reports whether gen is the live mount and has reached Ready.
func (l *Lifecycle) Current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation == gen && l.state == domain.StateReady
}

// StartTicker calls fn every interval until the mount ends. It only starts
// for gen while gen is the Ready mount. A second call while a ticker runs is
// ignored.
func (l *Lifecycle) StartTicker(gen uint64, interval time.Duration, fn func(ctx context.Context)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if interval <= 0 || l.generation != gen || l.state != domain.StateReady || l.refreshStop != nil {
		return false
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	l.refreshStop, l.refreshDone = stop, done
	ctx := l.ctx

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
	return true
}

// End moves any phase to Unmounted. cleanup runs under the lifecycle lock
// before timers are released. End waits for a running ticker to exit and
// reports whether the view was mounted.
func (l *Lifecycle) End(cleanup func()) bool {
	l.mu.Lock()
	if l.state == domain.StateUnmounted {
		l.mu.Unlock()
		return false
	}

	l.state = domain.StateUnmounted
	if cleanup != nil {
		cleanup()
	}
	if l.resizeTimer != nil {
		l.resizeTimer.Stop()
		l.resizeTimer = nil
	}
	if l.cancel != nil {
		l.cancel()
	}
	stop, done := l.refreshStop, l.refreshDone
	l.refreshStop, l.refreshDone = nil, nil
	l.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return true
}
