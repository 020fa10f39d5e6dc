package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nillis/observable-connection-pool/internal/pool"
)

// NATSFactory creates NATS connections, one per pool slot. Connects are
// single-attempt; the pool owns retry scheduling.
type NATSFactory struct {
	url string
}

func NewNATSFactory(url string) *NATSFactory {
	return &NATSFactory{url: url}
}

func (f *NATSFactory) Create(ctx context.Context) (*nats.Conn, error) {
	nc, err := nats.Connect(f.url,
		nats.Name("poold"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func (f *NATSFactory) Destroy(ctx context.Context, nc *nats.Conn) error {
	nc.Close()
	return nil
}

// Validate reports whether the connection is still established.
func (f *NATSFactory) Validate(nc *nats.Conn) bool {
	return nc.IsConnected()
}

var _ pool.Factory[*nats.Conn] = (*NATSFactory)(nil)
