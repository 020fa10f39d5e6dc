package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nillis/observable-connection-pool/internal/domain"
	"github.com/nillis/observable-connection-pool/pkg/logging"
)

type fakeConn struct {
	id int
}

// fakePool implements PoolController for handler tests.
type fakePool struct {
	mu        sync.Mutex
	available []*fakeConn
	draining  bool
	released  []*fakeConn
	destroyed []*fakeConn
}

func (p *fakePool) AcquireContext(ctx context.Context, priority int) (*fakeConn, error) {
	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		return nil, domain.ErrDraining
	}
	if len(p.available) > 0 {
		res := p.available[0]
		p.available = p.available[1:]
		p.mu.Unlock()
		return res, nil
	}
	p.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *fakePool) Release(res *fakeConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = append(p.released, res)
	p.available = append(p.available, res)
}

func (p *fakePool) Destroy(res *fakeConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyed = append(p.destroyed, res)
}

func (p *fakePool) Drain(done func()) {
	p.mu.Lock()
	p.draining = true
	p.mu.Unlock()
	done()
}

func (p *fakePool) DestroyAllNow(done func()) {
	p.mu.Lock()
	p.destroyed = append(p.destroyed, p.available...)
	p.available = nil
	p.mu.Unlock()
	done()
}

func (p *fakePool) Stats() domain.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.PoolStats{
		Total:     len(p.available) + len(p.released),
		Available: len(p.available),
		Capacity:  10,
		Draining:  p.draining,
	}
}

func newTestHandler(p *fakePool, apiKey string) *Handler[*fakeConn] {
	return NewHandler[*fakeConn](p, nil, logging.Nop(), apiKey)
}

func doRequest(h *Handler[*fakeConn], method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&fakePool{}, "")

	w := doRequest(h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestStats(t *testing.T) {
	p := &fakePool{available: []*fakeConn{{id: 1}, {id: 2}}}
	h := newTestHandler(p, "")

	w := doRequest(h, http.MethodGet, "/api/v1/pool/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var stats domain.PoolStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Available != 2 {
		t.Errorf("stats.Available = %d, want 2", stats.Available)
	}
	if stats.Capacity != 10 {
		t.Errorf("stats.Capacity = %d, want 10", stats.Capacity)
	}
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	p := &fakePool{available: []*fakeConn{{id: 1}}}
	h := newTestHandler(p, "")

	w := doRequest(h, http.MethodPost, "/api/v1/pool/acquire", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("acquire status = %d, want 200", w.Code)
	}

	var resp AcquireResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode acquire response: %v", err)
	}
	if resp.LeaseID == "" {
		t.Fatal("empty lease_id")
	}

	w = doRequest(h, http.MethodDelete, "/api/v1/leases/"+resp.LeaseID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("release status = %d, want 204", w.Code)
	}
	if len(p.released) != 1 {
		t.Errorf("released = %d resources, want 1", len(p.released))
	}

	// The lease is gone now.
	w = doRequest(h, http.MethodDelete, "/api/v1/leases/"+resp.LeaseID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second release status = %d, want 404", w.Code)
	}
}

func TestAcquire_DrainingRejected(t *testing.T) {
	p := &fakePool{draining: true}
	h := newTestHandler(p, "")

	w := doRequest(h, http.MethodPost, "/api/v1/pool/acquire", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAcquire_Timeout(t *testing.T) {
	p := &fakePool{} // nothing available, fake blocks until ctx expiry
	h := newTestHandler(p, "")

	start := time.Now()
	w := doRequest(h, http.MethodPost, "/api/v1/pool/acquire?timeout=20ms", nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("acquire blocked %v, want ~20ms", elapsed)
	}
}

func TestAcquire_InvalidParams(t *testing.T) {
	h := newTestHandler(&fakePool{available: []*fakeConn{{id: 1}}}, "")

	tests := []struct {
		name string
		path string
	}{
		{name: "bad priority", path: "/api/v1/pool/acquire?priority=high"},
		{name: "bad timeout", path: "/api/v1/pool/acquire?timeout=whenever"},
		{name: "negative timeout", path: "/api/v1/pool/acquire?timeout=-5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, tt.path, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	p := &fakePool{available: []*fakeConn{{id: 1}}}
	h := newTestHandler(p, "")

	w := doRequest(h, http.MethodPost, "/api/v1/pool/acquire", nil)
	var resp AcquireResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode acquire response: %v", err)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/leases/"+resp.LeaseID+"/discard", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("discard status = %d, want 204", w.Code)
	}
	if len(p.destroyed) != 1 {
		t.Errorf("destroyed = %d resources, want 1", len(p.destroyed))
	}
}

func TestDrainEndpoint(t *testing.T) {
	p := &fakePool{}
	h := newTestHandler(p, "")

	w := doRequest(h, http.MethodPost, "/api/v1/pool/drain", nil)
	if w.Code != http.StatusAccepted {
		t.Errorf("drain status = %d, want 202", w.Code)
	}

	w = doRequest(h, http.MethodPost, "/api/v1/pool/drain?wait=true", nil)
	if w.Code != http.StatusOK {
		t.Errorf("drain wait status = %d, want 200", w.Code)
	}

	if !p.draining {
		t.Error("pool not draining after drain request")
	}
}

func TestDestroyAllEndpoint(t *testing.T) {
	p := &fakePool{available: []*fakeConn{{id: 1}, {id: 2}}}
	h := newTestHandler(p, "")

	w := doRequest(h, http.MethodPost, "/api/v1/pool/destroy-all", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if len(p.destroyed) != 2 {
		t.Errorf("destroyed = %d resources, want 2", len(p.destroyed))
	}
}
