package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/nillis/observable-connection-pool/internal/config"
	"github.com/nillis/observable-connection-pool/internal/pool"
)

// validateTimeout bounds the health probe run before a resource is handed
// out.
const validateTimeout = time.Second

// ValkeyFactory creates Valkey clients, one per pool slot.
type ValkeyFactory struct {
	opts valkey.ClientOption
}

// NewValkeyFactory prepares client options from the backend configuration.
func NewValkeyFactory(cfg *config.BackendConfig) *ValkeyFactory {
	opts := valkey.ClientOption{
		InitAddress: []string{cfg.ValkeyAddr},
		SelectDB:    cfg.ValkeyDB,
	}
	if cfg.ValkeyPassword != "" {
		opts.Password = cfg.ValkeyPassword
	}
	return &ValkeyFactory{opts: opts}
}

func (f *ValkeyFactory) Create(ctx context.Context) (valkey.Client, error) {
	client, err := valkey.NewClient(f.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}
	return client, nil
}

func (f *ValkeyFactory) Destroy(ctx context.Context, client valkey.Client) error {
	client.Close()
	return nil
}

// Validate sends a PING on the client.
func (f *ValkeyFactory) Validate(client valkey.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()
	return client.Do(ctx, client.B().Ping().Build()).Error() == nil
}

var _ pool.Factory[valkey.Client] = (*ValkeyFactory)(nil)
