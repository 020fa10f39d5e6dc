package pool

import "time"

// armReaperLocked schedules the next sweep. At most one sweep is scheduled
// at a time.
func (p *Pool[T]) armReaperLocked() {
	if p.reaperArmed {
		return
	}
	p.reaperArmed = true
	p.reapTimer = time.AfterFunc(p.cfg.ReapInterval, p.sweep)
}

// sweep evicts available resources past their idle deadline. The entry at
// position i is eligible only if i >= total-min, so at least min resources
// survive the sweep; positions are evaluated against the state at sweep
// start. Re-arms itself while anything remains available.
func (p *Pool[T]) sweep() {
	p.mu.Lock()
	p.reaperArmed = false

	if !p.cfg.RefreshIdle {
		p.mu.Unlock()
		return
	}

	now := time.Now()
	// Position floor and eviction cap, both against the state at sweep
	// start: entries before total-min are protected, and never more than
	// total-min entries go, so the sweep cannot drop the count below min.
	floor := p.total - p.cfg.Min

	var victims []T
	kept := p.available[:0]
	for i, e := range p.available {
		if i >= floor && len(victims) < floor && now.After(e.deadline) {
			victims = append(victims, e.res)
		} else {
			kept = append(kept, e)
		}
	}
	p.available = kept

	var after []func()
	for _, res := range victims {
		after = append(after, p.destroyLocked(res, "idle")...)
	}
	if len(p.available) > 0 {
		p.armReaperLocked()
	}
	remaining := len(p.available)
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.SweepsTotal.Inc()
	}
	if len(victims) > 0 {
		p.logger.Debug("Reaper evicted idle resources", "evicted", len(victims), "remaining", remaining)
	}
	run(after)
}
