package protocol

import "github.com/go-mclib/polymer/pkg/ringbuf"

// WirePacket is a fully-drained, decompressed packet body: just an id and
// the remaining payload bytes, ready for a handler to decode with the
// ringbuf Read* helpers.
type WirePacket struct {
	State    State
	PacketID int32
	Payload  []byte
}

// Reader returns a fresh ring buffer preloaded with the packet's payload,
// positioned at offset zero, for sequential field reads.
func (p *WirePacket) Reader() *ringbuf.RingBuffer {
	return ringbuf.FromBytes(p.Payload)
}
