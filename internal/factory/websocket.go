package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nillis/observable-connection-pool/internal/pool"
)

// WebSocketFactory dials WebSocket connections, one per pool slot.
type WebSocketFactory struct {
	url    string
	dialer *websocket.Dialer
}

func NewWebSocketFactory(url string) *WebSocketFactory {
	return &WebSocketFactory{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

func (f *WebSocketFactory) Create(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", f.url, err)
	}
	return conn, nil
}

func (f *WebSocketFactory) Destroy(ctx context.Context, conn *websocket.Conn) error {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return conn.Close()
}

// Validate sends a control ping on the connection.
func (f *WebSocketFactory) Validate(conn *websocket.Conn) bool {
	deadline := time.Now().Add(validateTimeout)
	return conn.WriteControl(websocket.PingMessage, nil, deadline) == nil
}

var _ pool.Factory[*websocket.Conn] = (*WebSocketFactory)(nil)
