// Package pool implements the resource-lifecycle engine: admission with
// priority ordering, idle-timeout reclamation, minimum-pool replenishment,
// and graceful draining.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/nillis/observable-connection-pool/internal/domain"
	"github.com/nillis/observable-connection-pool/internal/metrics"
	"github.com/nillis/observable-connection-pool/pkg/logging"
)

// entry pairs an available resource with its idle deadline.
type entry[T comparable] struct {
	res      T
	deadline time.Time
}

// Pool is a bounded pool of externally-created resources shared among many
// concurrent consumers. All state transitions are serialized behind one
// mutex; factory calls and sink callbacks always run outside it.
type Pool[T comparable] struct {
	cfg     Config[T]
	factory Factory[T]
	logger  *logging.Logger
	metrics *metrics.Collector

	mu          sync.Mutex
	total       int        // created and not yet destroyed, incl. mid-creation and checked out
	available   []entry[T] // idle resources in dispatch order
	waiters     waitQueue[T]
	draining    bool
	reaperArmed bool
	reapTimer   *time.Timer
	seq         uint64
}

// New creates a pool around factory and immediately starts replenishing
// toward cfg.Min.
func New[T comparable](factory Factory[T], cfg Config[T]) *Pool[T] {
	cfg.normalize()

	p := &Pool[T]{
		cfg:     cfg,
		factory: factory,
		logger:  cfg.Logger.With("component", "pool"),
		metrics: cfg.Metrics,
	}

	p.mu.Lock()
	after := p.replenishLocked()
	p.mu.Unlock()
	run(after)

	return p
}

// run executes deferred actions collected under the lock. Actions are sink
// deliveries, factory calls, and creation launches; they must never run
// inside the serialized region.
func run(actions []func()) {
	for _, fn := range actions {
		fn()
	}
}

// Acquire enqueues an acquisition request delivered through s. Lower
// priority values are served first; DefaultPriority selects the mid-range.
// If the pool is draining, s receives ErrDraining before Acquire returns.
//
// The returned hint reports whether the pool had headroom to grow
// (total < max) at the moment of the call. It is informational only.
func (p *Pool[T]) Acquire(s Sink[T], priority int) bool {
	return p.acquire(sinkNotifier(s), priority)
}

// AcquireFunc is the single-callback acquisition shape: fn receives either
// a resource or an error, exactly once.
func (p *Pool[T]) AcquireFunc(fn func(T, error), priority int) bool {
	return p.acquire(funcNotifier(fn), priority)
}

// AcquireContext blocks until a resource is delivered or ctx is done. If
// ctx expires while the request is still queued, the eventual resource (if
// any) is returned to the pool.
func (p *Pool[T]) AcquireContext(ctx context.Context, priority int) (T, error) {
	type outcome struct {
		res T
		err error
	}
	ch := make(chan outcome, 1)
	p.AcquireFunc(func(res T, err error) {
		ch <- outcome{res: res, err: err}
	}, priority)

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		go func() {
			if o := <-ch; o.err == nil {
				p.Release(o.res)
			}
		}()
		var zero T
		return zero, ctx.Err()
	}
}

func (p *Pool[T]) acquire(n notifier[T], priority int) bool {
	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.AcquisitionsTotal.WithLabelValues("rejected").Inc()
		}
		n.fail(domain.ErrDraining)
		return false
	}

	w := &waiter[T]{
		notifier:   n,
		priority:   p.clampPriority(priority),
		seq:        p.seq,
		enqueuedAt: time.Now(),
	}
	p.seq++
	p.waiters.push(w)

	headroom := p.total < p.cfg.Max
	after := p.dispatchLocked()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.AcquisitionsTotal.WithLabelValues("queued").Inc()
	}
	run(after)
	return headroom
}

// clampPriority bounds priority into [0, PriorityRange-1]; lower value =
// higher priority. Negative input selects the mid-range default.
func (p *Pool[T]) clampPriority(priority int) int {
	if priority < 0 {
		return p.cfg.PriorityRange / 2
	}
	if priority > p.cfg.PriorityRange-1 {
		return p.cfg.PriorityRange - 1
	}
	return priority
}

// Release returns a checked-out resource to the pool. Releasing a resource
// that is already available is a no-op, which protects against a double
// release. There is no error return; callers must not release twice
// without an intervening acquire.
func (p *Pool[T]) Release(res T) {
	p.mu.Lock()
	if p.containsLocked(res) {
		p.mu.Unlock()
		p.logger.Debug("Ignoring duplicate release")
		return
	}
	p.insertAvailableLocked(res)
	after := p.dispatchLocked()
	p.armReaperLocked()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.ReleasesTotal.Inc()
	}
	run(after)
}

// Destroy removes res from the pool and releases it through the factory.
// Consumers call this for a checked-out resource they found unusable; the
// engine calls it for validation failures and idle eviction.
func (p *Pool[T]) Destroy(res T) {
	p.mu.Lock()
	after := p.destroyLocked(res, "manual")
	after = append(after, p.dispatchLocked()...)
	p.mu.Unlock()
	run(after)
}

// dispatchLocked is the core matching step, run after every state change.
// It hands at most one resource to at most one waiter; entries failing
// validation are destroyed during the scan. If nothing could be handed out
// and there is headroom, one creation is started for the queue.
func (p *Pool[T]) dispatchLocked() []func() {
	if p.waiters.Len() == 0 {
		return nil
	}

	start := time.Now()
	var after []func()
	handed := false

	for len(p.available) > 0 {
		e := p.available[0]
		p.available = p.available[1:]

		if !p.cfg.Validate(e.res) {
			p.logger.Debug("Validation failed, destroying resource")
			after = append(after, p.destroyLocked(e.res, "validate")...)
			continue
		}

		w := p.waiters.pop()
		p.observeWait(w)
		res := e.res
		after = append(after, func() { w.deliver(res) })
		handed = true
		break
	}

	// Once draining, the count only shrinks; pending waiters are served
	// from releases, never from new creations.
	if !handed && !p.draining && p.total < p.cfg.Max {
		after = append(after, p.createLocked())
	}

	if p.metrics != nil {
		p.metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}
	return after
}

// createLocked optimistically counts a resource and returns the action
// that launches its creation.
func (p *Pool[T]) createLocked() func() {
	p.total++
	return func() { go p.runCreate() }
}

// runCreate performs one factory create attempt and re-enters the
// serialized region with the outcome.
func (p *Pool[T]) runCreate() {
	start := time.Now()
	res, err := p.factory.Create(context.Background())
	if p.metrics != nil {
		p.metrics.CreateDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		p.mu.Lock()
		p.total--
		if p.total < 0 {
			p.total = 0
		}
		// Failures go to the oldest request, not the highest-priority one:
		// the request that has waited longest learns first that the pool
		// cannot grow.
		w := p.waiters.popOldest()
		p.mu.Unlock()

		if p.metrics != nil {
			p.metrics.CreationsTotal.WithLabelValues("failure").Inc()
		}
		p.logger.Warn("Factory create failed", "error", err)
		if w != nil {
			w.fail(err)
		}
		// Retry on a fresh tick so a synchronous failure cannot re-enter
		// creation in the same call stack.
		go p.redispatch()
		return
	}

	if p.metrics != nil {
		p.metrics.CreationsTotal.WithLabelValues("success").Inc()
	}

	p.mu.Lock()
	if w := p.waiters.pop(); w != nil {
		// Satisfy the oldest highest-priority request directly, bypassing
		// the available list.
		p.observeWait(w)
		p.mu.Unlock()
		w.deliver(res)
		return
	}
	// Nobody waiting: the new resource enters the pool as if released.
	p.insertAvailableLocked(res)
	p.armReaperLocked()
	p.mu.Unlock()
}

func (p *Pool[T]) redispatch() {
	p.mu.Lock()
	after := p.dispatchLocked()
	p.mu.Unlock()
	run(after)
}

// replenishLocked starts exactly min-total creations when below the floor.
func (p *Pool[T]) replenishLocked() []func() {
	if p.draining {
		return nil
	}
	var after []func()
	for n := p.cfg.Min - p.total; n > 0; n-- {
		after = append(after, p.createLocked())
	}
	return after
}

// destroyLocked removes res from the available list if present, decrements
// the count, schedules the factory destroy, and triggers replenishment.
func (p *Pool[T]) destroyLocked(res T, reason string) []func() {
	p.removeAvailableLocked(res)
	p.total--
	if p.total < 0 {
		p.total = 0
	}
	after := []func(){func() { go p.destroyResource(res, reason) }}
	return append(after, p.replenishLocked()...)
}

// destroyResource hands res back to the factory. Destroy is fire-and-forget
// from the pool's perspective; errors are logged and ignored.
func (p *Pool[T]) destroyResource(res T, reason string) {
	if err := p.factory.Destroy(context.Background(), res); err != nil {
		p.logger.Warn("Factory destroy failed", "reason", reason, "error", err)
	}
	if p.metrics != nil {
		p.metrics.DestroysTotal.WithLabelValues(reason).Inc()
	}
}

func (p *Pool[T]) insertAvailableLocked(res T) {
	e := entry[T]{res: res, deadline: time.Now().Add(p.cfg.IdleTimeout)}
	if p.cfg.ReturnToHead {
		p.available = append([]entry[T]{e}, p.available...)
	} else {
		p.available = append(p.available, e)
	}
}

func (p *Pool[T]) containsLocked(res T) bool {
	for _, e := range p.available {
		if e.res == res {
			return true
		}
	}
	return false
}

func (p *Pool[T]) removeAvailableLocked(res T) {
	for i, e := range p.available {
		if e.res == res {
			p.available = append(p.available[:i], p.available[i+1:]...)
			return
		}
	}
}

func (p *Pool[T]) observeWait(w *waiter[T]) {
	if p.metrics != nil {
		p.metrics.AcquireWaitDuration.Observe(time.Since(w.enqueuedAt).Seconds())
	}
}

// Total returns the number of resources created and not yet destroyed,
// including those mid-creation and those checked out.
func (p *Pool[T]) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Available returns the number of idle resources.
func (p *Pool[T]) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

// Pending returns the number of queued acquisition requests.
func (p *Pool[T]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waiters.Len()
}

// Cap returns the configured maximum pool size.
func (p *Pool[T]) Cap() int {
	return p.cfg.Max
}

// Stats returns a point-in-time snapshot of pool state.
func (p *Pool[T]) Stats() domain.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.PoolStats{
		Total:     p.total,
		Available: len(p.available),
		Pending:   p.waiters.Len(),
		Capacity:  p.cfg.Max,
		Draining:  p.draining,
	}
}
