package ringbuf

import (
	"fmt"
	"io"

	"github.com/go-mclib/polymer/pkg/errs"
)

const (
	maxVarIntBytes  = 5
	maxVarLongBytes = 10
)

func peekByte(rb *RingBuffer, offset uint64) (byte, error) {
	b, err := rb.Peek(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadVarInt reads 1-5 bytes, LEB128, 7 bits per byte, MSB=continuation. It
// never advances the read cursor past the write cursor: on a short read it
// reports errs.IncompleteFrame and leaves the cursor untouched.
func ReadVarInt(rb *RingBuffer) (int32, error) {
	var result int32
	for i := 0; i < maxVarIntBytes; i++ {
		b, err := peekByte(rb, uint64(i))
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7F) << uint(7*i)
		if b&0x80 == 0 {
			rb.Advance(uint64(i + 1))
			return result, nil
		}
	}
	return 0, fmt.Errorf("varint overflow: %w", errs.MalformedPacket)
}

// ReadVarLong is the 64-bit counterpart of ReadVarInt, up to 10 bytes.
func ReadVarLong(rb *RingBuffer) (int64, error) {
	var result int64
	for i := 0; i < maxVarLongBytes; i++ {
		b, err := peekByte(rb, uint64(i))
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7F) << uint(7*i)
		if b&0x80 == 0 {
			rb.Advance(uint64(i + 1))
			return result, nil
		}
	}
	return 0, fmt.Errorf("varlong overflow: %w", errs.MalformedPacket)
}

// VarIntSize returns the number of bytes WriteVarInt would emit for v.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// VarLongSize returns the number of bytes WriteVarLong would emit for v.
func VarLongSize(v int64) int {
	u := uint64(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// WriteVarInt encodes v as LEB128 to w.
func WriteVarInt(w io.Writer, v int32) error {
	u := uint32(v)
	var buf [maxVarIntBytes]byte
	n := 0
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	return err
}

// WriteVarLong encodes v as LEB128 to w, up to 10 bytes.
func WriteVarLong(w io.Writer, v int64) error {
	u := uint64(v)
	var buf [maxVarLongBytes]byte
	n := 0
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if u == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	return err
}
