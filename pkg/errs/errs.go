// Package errs defines the tagged error kinds shared across the core engine.
//
// Every failure surfaced by the protocol, NBT, and asset layers is one of a
// small fixed set of kinds. Call sites wrap a sentinel with
// fmt.Errorf("...: %w", err) so callers can still fmt.Sprintf a message while
// errors.Is keeps working against the sentinel.
package errs

import "errors"

// Sentinels for errors.Is matching. Wrap these with fmt.Errorf("...: %w", Kind)
// to attach context without losing the tag.
var (
	// IncompleteFrame: a read hit the write cursor mid-packet. Recovered
	// locally by rewinding and waiting for more bytes.
	IncompleteFrame = errors.New("incomplete frame")

	// MalformedPacket: a VarInt overflowed, a string length exceeded the
	// frame size, or a tagged enum hit an undefined variant.
	MalformedPacket = errors.New("malformed packet")

	// MalformedNbt: the NBT tag stream is not well-formed.
	MalformedNbt = errors.New("malformed nbt")

	// TooDeep: NBT (or model parent-chain) nesting exceeded the depth bound.
	TooDeep = errors.New("nesting too deep")

	// MalformedModel: a block model/blockstate JSON failed to parse, or a
	// parent-chain cycle was detected.
	MalformedModel = errors.New("malformed model")

	// MissingAsset: a referenced texture or parent model could not be found.
	MissingAsset = errors.New("missing asset")

	// SocketError: fatal to the session.
	SocketError = errors.New("socket error")

	// UnsupportedProtocol: encryption requested, or an unrecognized
	// compression result. The connection is closed cleanly.
	UnsupportedProtocol = errors.New("unsupported protocol")
)
