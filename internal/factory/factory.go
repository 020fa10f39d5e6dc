// Package factory provides pool.Factory backends for the supported
// connection types. Each backend creates one connection per pool slot and
// exposes a validate predicate suited to its protocol.
package factory

// Backend modes recognized by the daemon.
const (
	ModeMySQL     = "mysql"
	ModeValkey    = "valkey"
	ModeNATS      = "nats"
	ModeWebSocket = "websocket"
)
