// Package api exposes the pool over HTTP: stats, lease management, and
// administrative drain operations.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nillis/observable-connection-pool/internal/domain"
	"github.com/nillis/observable-connection-pool/internal/metrics"
	"github.com/nillis/observable-connection-pool/pkg/logging"
)

// defaultAcquireTimeout bounds how long an HTTP acquire waits in the queue.
const defaultAcquireTimeout = 30 * time.Second

// PoolController is the view of the pool the API needs.
type PoolController[T comparable] interface {
	AcquireContext(ctx context.Context, priority int) (T, error)
	Release(res T)
	Destroy(res T)
	Drain(done func())
	DestroyAllNow(done func())
	Stats() domain.PoolStats
}

// Handler holds the HTTP handlers and dependencies. Checked-out resources
// are tracked as leases keyed by UUID so they can be released or discarded
// over the wire.
type Handler[T comparable] struct {
	pool    PoolController[T]
	metrics *metrics.Collector
	logger  *logging.Logger
	apiKey  string

	mu     sync.Mutex
	leases map[string]T
}

// NewHandler creates a new API handler.
func NewHandler[T comparable](p PoolController[T], m *metrics.Collector, logger *logging.Logger, apiKey string) *Handler[T] {
	return &Handler[T]{
		pool:    p,
		metrics: m,
		logger:  logger.With("component", "api"),
		apiKey:  apiKey,
		leases:  make(map[string]T),
	}
}

// Router returns the configured Gin router.
func (h *Handler[T]) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	v1 := r.Group("/api/v1", APIKeyAuth(h.apiKey))
	{
		pool := v1.Group("/pool")
		{
			pool.GET("/stats", h.stats)
			pool.POST("/acquire", h.acquire)
			pool.POST("/drain", h.drain)
			pool.POST("/destroy-all", h.destroyAll)
		}

		leases := v1.Group("/leases")
		{
			leases.DELETE("/:id", h.release)
			leases.POST("/:id/discard", h.discard)
		}
	}

	return r
}

func (h *Handler[T]) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler[T]) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.pool.Stats())
}

// acquire checks a resource out of the pool and returns a lease for it.
// Optional query parameters: priority (lower is served first) and timeout.
func (h *Handler[T]) acquire(c *gin.Context) {
	priority := -1
	if raw := c.Query("priority"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid priority", Code: "BAD_REQUEST"})
			return
		}
		priority = p
	}

	timeout := defaultAcquireTimeout
	if raw := c.Query("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid timeout", Code: "BAD_REQUEST"})
			return
		}
		timeout = d
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	res, err := h.pool.AcquireContext(ctx, priority)
	switch {
	case errors.Is(err, domain.ErrDraining):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "DRAINING"})
		return
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: domain.ErrAcquireTimeout.Error(), Code: "TIMEOUT"})
		return
	case err != nil:
		h.logger.Warn("Acquire failed", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "BACKEND_ERROR"})
		return
	}

	leaseID := uuid.New().String()
	h.mu.Lock()
	h.leases[leaseID] = res
	h.mu.Unlock()

	c.JSON(http.StatusOK, AcquireResponse{LeaseID: leaseID})
}

func (h *Handler[T]) release(c *gin.Context) {
	res, ok := h.takeLease(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrLeaseNotFound.Error(), Code: "NOT_FOUND"})
		return
	}
	h.pool.Release(res)
	c.Status(http.StatusNoContent)
}

// discard destroys a leased resource the consumer found unusable.
func (h *Handler[T]) discard(c *gin.Context) {
	res, ok := h.takeLease(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrLeaseNotFound.Error(), Code: "NOT_FOUND"})
		return
	}
	h.pool.Destroy(res)
	c.Status(http.StatusNoContent)
}

// drain starts draining the pool. With ?wait=true the request blocks until
// the pool is quiescent.
func (h *Handler[T]) drain(c *gin.Context) {
	done := make(chan struct{})
	h.pool.Drain(func() { close(done) })

	if c.Query("wait") != "true" {
		c.Status(http.StatusAccepted)
		return
	}

	select {
	case <-done:
		c.JSON(http.StatusOK, h.pool.Stats())
	case <-c.Request.Context().Done():
		c.Status(http.StatusGatewayTimeout)
	}
}

func (h *Handler[T]) destroyAll(c *gin.Context) {
	done := make(chan struct{})
	h.pool.DestroyAllNow(func() { close(done) })
	<-done
	c.JSON(http.StatusOK, h.pool.Stats())
}

func (h *Handler[T]) takeLease(id string) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	res, ok := h.leases[id]
	if ok {
		delete(h.leases, id)
	}
	return res, ok
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AcquireResponse is returned by a successful acquire.
type AcquireResponse struct {
	LeaseID string `json:"lease_id"`
}
