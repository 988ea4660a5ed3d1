// Package ringbuf implements the inbound byte staging buffer and primitive
// wire codecs shared by the protocol and NBT layers.
//
// Peek hands callers a contiguous []byte for any in-range read, copying
// into a scratch buffer only when a read actually straddles the physical
// end of the array, so no caller ever handles wraparound itself.
package ringbuf

import (
	"fmt"

	"github.com/go-mclib/polymer/pkg/errs"
)

// RingBuffer is a power-of-two-capacity circular byte buffer with
// independent read and write cursors. readable = (write - read) mod capacity;
// wrap never produces torn reads (see Peek).
type RingBuffer struct {
	buf     []byte
	scratch []byte
	cap     uint64
	mask    uint64
	read    uint64 // monotonic virtual cursor
	write   uint64 // monotonic virtual cursor
}

// New allocates a ring buffer of the given capacity, which must be a power
// of two.
func New(capacity uint64) *RingBuffer {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic(fmt.Sprintf("ringbuf: capacity %d is not a power of two", capacity))
	}
	return &RingBuffer{
		buf:     make([]byte, capacity),
		scratch: make([]byte, capacity),
		cap:     capacity,
		mask:    capacity - 1,
	}
}

// Cap returns the buffer's capacity in bytes.
func (rb *RingBuffer) Cap() uint64 { return rb.cap }

// Readable returns the number of unread bytes currently buffered.
func (rb *RingBuffer) Readable() uint64 { return rb.write - rb.read }

// Writable returns the number of bytes that can be written before the
// buffer is full.
func (rb *RingBuffer) Writable() uint64 { return rb.cap - rb.Readable() }

// Reset discards all buffered content.
func (rb *RingBuffer) Reset() {
	rb.read = 0
	rb.write = 0
}

// FromBytes builds a ring buffer preloaded with b, sized to the next power
// of two at or above len(b) (minimum 16). Used to hand a single already-
// extracted packet frame to the ordinary Read* codec functions without a
// second staging buffer.
func FromBytes(b []byte) *RingBuffer {
	capacity := uint64(16)
	for capacity < uint64(len(b)) {
		capacity <<= 1
	}
	rb := New(capacity)
	if len(b) > 0 {
		if _, err := rb.Write(b); err != nil {
			panic(err) // capacity was sized to fit b
		}
	}
	return rb
}

// Write appends p to the buffer, advancing the write cursor. It returns an
// error without writing anything if p would overflow capacity.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	n := uint64(len(p))
	if n > rb.Writable() {
		return 0, fmt.Errorf("ringbuf: write of %d bytes exceeds writable space %d", n, rb.Writable())
	}
	if n == 0 {
		return 0, nil
	}
	idx := rb.write & rb.mask
	first := rb.cap - idx
	if first > n {
		first = n
	}
	copy(rb.buf[idx:idx+first], p[:first])
	if first < n {
		copy(rb.buf[0:n-first], p[first:])
	}
	rb.write += n
	return len(p), nil
}

// Peek returns a contiguous view of n bytes starting offset bytes ahead of
// the read cursor, without advancing it. It returns errs.IncompleteFrame if
// fewer than offset+n bytes are currently readable.
func (rb *RingBuffer) Peek(offset, n uint64) ([]byte, error) {
	if offset+n > rb.Readable() {
		return nil, errs.IncompleteFrame
	}
	if n == 0 {
		return nil, nil
	}
	start := (rb.read + offset) & rb.mask
	if start+n <= rb.cap {
		return rb.buf[start : start+n], nil
	}
	first := rb.cap - start
	copy(rb.scratch[:first], rb.buf[start:rb.cap])
	copy(rb.scratch[first:n], rb.buf[:n-first])
	return rb.scratch[:n], nil
}

// Advance moves the read cursor forward by n bytes. n must not exceed
// Readable().
func (rb *RingBuffer) Advance(n uint64) {
	if n > rb.Readable() {
		panic("ringbuf: advance past write cursor")
	}
	rb.read += n
}

// Mark returns the current read cursor, for use with Rewind.
func (rb *RingBuffer) Mark() uint64 { return rb.read }

// Rewind restores the read cursor to a value previously returned by Mark.
// Used when a multi-field read fails partway through and must leave the
// buffer exactly as it found it.
func (rb *RingBuffer) Rewind(mark uint64) { rb.read = mark }
