// Package protocol owns the TCP socket and inbound ring buffer, and
// produces framed, optionally zlib-compressed packets. It carries no
// packet semantics of its own - dispatch by (state, id) lives in
// pkg/engine's modules.
package protocol

// State is the connection's protocol state.
type State int

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StateConfiguration
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}

// HandshakeIntent is the next_state field of the outbound handshake packet.
type HandshakeIntent int32

const (
	IntentStatus HandshakeIntent = 1
	IntentLogin  HandshakeIntent = 2
)
