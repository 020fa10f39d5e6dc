package domain

// PoolStats is a point-in-time snapshot of pool state.
type PoolStats struct {
	Total     int  `json:"total"`     // Resources created and not yet destroyed (includes mid-creation and checked out)
	Available int  `json:"available"` // Resources idle in the pool, eligible for dispatch
	Pending   int  `json:"pending"`   // Acquisition requests waiting for a resource
	Capacity  int  `json:"capacity"`  // Maximum allowed resources
	Draining  bool `json:"draining"`  // New acquisitions are being rejected
}

// CheckedOut returns how many resources are currently held by consumers
// (or still mid-creation).
func (s *PoolStats) CheckedOut() int {
	out := s.Total - s.Available
	if out < 0 {
		return 0
	}
	return out
}

// Headroom returns how many more resources can be created.
func (s *PoolStats) Headroom() int {
	if s.Total >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Total
}

// Quiescent reports whether the pool has no pending requests and no
// checked-out resources. Draining completes once this holds.
func (s *PoolStats) Quiescent() bool {
	return s.Pending == 0 && s.Available == s.Total
}
