package engine

import "github.com/go-mclib/polymer/pkg/protocol"

// Module is a pluggable game-state component.
type Module interface {
	// Name returns a unique key for this module (e.g. "protocol", "world").
	Name() string
	// Init is called once when the module is registered on an engine.
	// Store the *Engine reference for later use.
	Init(e *Engine)
	// HandlePacket is called for every incoming packet in any connection state.
	HandlePacket(pkt *protocol.WirePacket)
	// Reset is called on reconnect to clear module state.
	Reset()
}

// ConnectHandler is optionally implemented by modules that need to act
// after TCP connection is established but before the packet loop starts.
// The protocol module uses this to send handshake + login start.
type ConnectHandler interface {
	OnConnect()
}

// Handler is a lightweight packet callback for one-off matching.
type Handler func(e *Engine, pkt *protocol.WirePacket)
