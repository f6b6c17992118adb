// Package session implements the live session core: the registry of
// connected users, the wire protocol, and the orchestrator that ties the
// content store, social graph, and notification router together.
package session

// CloseCode mirrors the websocket close codes the core cares about without
// importing any transport package.
type CloseCode int

const (
	// CloseNormal ends a session without signalling a fault.
	CloseNormal CloseCode = 1000
	// ClosePolicyViolation signals a missing or invalid identity.
	ClosePolicyViolation CloseCode = 1008
	// CloseInternalError signals a registry rejection such as a duplicate
	// connect.
	CloseInternalError CloseCode = 1011
)

// Channel is the minimal outbound capability the core holds per connection.
// Send must not block indefinitely: implementations enqueue onto a buffered
// writer and report an error when the peer is gone or the buffer is full.
// Close tears the connection down with a reason; it is safe to call more
// than once.
type Channel interface {
	Send(payload []byte) error
	Close(code CloseCode, reason string)
}
