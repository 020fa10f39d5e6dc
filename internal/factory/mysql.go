package factory

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/nillis/observable-connection-pool/internal/pool"
)

// MySQLFactory creates raw MySQL driver connections. database/sql's own
// pooling is deliberately bypassed: each Create yields one dedicated
// driver.Conn owned by the pool.
type MySQLFactory struct {
	connector driver.Connector
}

// NewMySQLFactory parses dsn and prepares a connector. No connection is
// made until the pool asks for one.
func NewMySQLFactory(dsn string) (*MySQLFactory, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build mysql connector: %w", err)
	}
	return &MySQLFactory{connector: connector}, nil
}

func (f *MySQLFactory) Create(ctx context.Context) (driver.Conn, error) {
	conn, err := f.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	return conn, nil
}

func (f *MySQLFactory) Destroy(ctx context.Context, conn driver.Conn) error {
	return conn.Close()
}

// Validate pings the connection so broken ones are destroyed instead of
// handed out.
func (f *MySQLFactory) Validate(conn driver.Conn) bool {
	pinger, ok := conn.(driver.Pinger)
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()
	return pinger.Ping(ctx) == nil
}

var _ pool.Factory[driver.Conn] = (*MySQLFactory)(nil)
