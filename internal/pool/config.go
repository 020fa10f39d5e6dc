package pool

import (
	"time"

	"github.com/nillis/observable-connection-pool/internal/metrics"
	"github.com/nillis/observable-connection-pool/pkg/logging"
)

// DefaultPriority selects the mid-range priority for an acquisition.
const DefaultPriority = -1

// Config holds pool configuration. It is immutable after New.
type Config[T comparable] struct {
	// Max is the hard cap on total resources (>= 1).
	Max int

	// Min is the floor the pool replenishes to and the idle reaper
	// preserves. Clamped to [0, Max-1].
	Min int

	// IdleTimeout is how long a released resource may sit available before
	// it becomes eligible for eviction.
	IdleTimeout time.Duration

	// ReapInterval is the delay between idle-reaper sweeps.
	ReapInterval time.Duration

	// RefreshIdle enables idle eviction. DefaultConfig sets it true;
	// leaving it false opts out of eviction entirely.
	RefreshIdle bool

	// ReturnToHead selects stack discipline for release: released resources
	// go to the head of the available list instead of the tail.
	ReturnToHead bool

	// PriorityRange bounds acquisition priorities to [0, PriorityRange-1].
	// Lower values are served first.
	PriorityRange int

	// Validate vets an available resource before it is handed out. A
	// resource that fails is destroyed, never delivered. Defaults to
	// always-true.
	Validate func(res T) bool

	// Logger receives pool events. Nil means logging.Nop().
	Logger *logging.Logger

	// Metrics, when non-nil, receives counters and histograms for pool
	// activity.
	Metrics *metrics.Collector
}

// DefaultConfig returns the documented defaults: a single-resource pool
// with a 30s idle timeout, 1s reap interval, idle eviction on, queue
// discipline, and ten priority classes.
func DefaultConfig[T comparable]() Config[T] {
	return Config[T]{
		Max:           1,
		Min:           0,
		IdleTimeout:   30 * time.Second,
		ReapInterval:  time.Second,
		RefreshIdle:   true,
		PriorityRange: 10,
	}
}

// normalize clamps the configuration into its documented domain.
func (c *Config[T]) normalize() {
	if c.Max < 1 {
		c.Max = 1
	}
	if c.Min < 0 {
		c.Min = 0
	}
	if c.Min > c.Max-1 {
		c.Min = c.Max - 1
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = time.Second
	}
	if c.PriorityRange < 1 {
		c.PriorityRange = 10
	}
	if c.Validate == nil {
		c.Validate = func(T) bool { return true }
	}
	if c.Logger == nil {
		c.Logger = logging.Nop()
	}
}
