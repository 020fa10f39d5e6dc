package pool

import "time"

// drainPollInterval is the fixed wake interval of the drain observer.
// Drains are rare administrative operations; a bounded busy-wait keeps the
// engine free of cross-cutting wakeup plumbing.
const drainPollInterval = 50 * time.Millisecond

// Drain stops admission and invokes done once the pool is quiescent: no
// request pending and no resource checked out. Draining is irrevocable for
// the pool's remaining lifetime; subsequent Acquire calls fail fast with
// ErrDraining.
func (p *Pool[T]) Drain(done func()) {
	p.mu.Lock()
	p.draining = true
	p.mu.Unlock()
	p.logger.Info("Pool draining")

	go func() {
		ticker := time.NewTicker(drainPollInterval)
		defer ticker.Stop()
		for range ticker.C {
			p.mu.Lock()
			quiet := p.waiters.Len() == 0 && len(p.available) == p.total
			p.mu.Unlock()
			if quiet {
				p.logger.Info("Pool drained")
				if done != nil {
					done()
				}
				return
			}
		}
	}()
}

// DestroyAllNow forcibly destroys every available resource without waiting
// for idle timeouts, cancels any scheduled reaper sweep, and invokes done.
// It does not set draining: with Min > 0 and no drain in effect,
// replenishment will rebuild the pool. Callers wanting a hard stop should
// drain first or run with Min = 0.
func (p *Pool[T]) DestroyAllNow(done func()) {
	p.mu.Lock()
	if p.reapTimer != nil {
		p.reapTimer.Stop()
		p.reaperArmed = false
	}

	victims := make([]T, len(p.available))
	for i, e := range p.available {
		victims[i] = e.res
	}
	p.available = nil

	var after []func()
	for _, res := range victims {
		after = append(after, p.destroyLocked(res, "shutdown")...)
	}
	p.mu.Unlock()

	p.logger.Info("Destroyed all available resources", "destroyed", len(victims))
	run(after)
	if done != nil {
		done()
	}
}
