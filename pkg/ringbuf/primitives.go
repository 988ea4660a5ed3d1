package ringbuf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-mclib/polymer/pkg/errs"
)

// ReadUint8 reads one unsigned byte.
func ReadUint8(rb *RingBuffer) (uint8, error) {
	b, err := rb.Peek(0, 1)
	if err != nil {
		return 0, err
	}
	rb.Advance(1)
	return b[0], nil
}

// ReadInt8 reads one signed byte.
func ReadInt8(rb *RingBuffer) (int8, error) {
	v, err := ReadUint8(rb)
	return int8(v), err
}

// ReadBool reads a single byte, nonzero meaning true.
func ReadBool(rb *RingBuffer) (bool, error) {
	v, err := ReadUint8(rb)
	return v != 0, err
}

// ReadUint16 reads a big-endian uint16.
func ReadUint16(rb *RingBuffer) (uint16, error) {
	b, err := rb.Peek(0, 2)
	if err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(b)
	rb.Advance(2)
	return v, nil
}

// ReadInt16 reads a big-endian int16.
func ReadInt16(rb *RingBuffer) (int16, error) {
	v, err := ReadUint16(rb)
	return int16(v), err
}

// ReadUint32 reads a big-endian uint32.
func ReadUint32(rb *RingBuffer) (uint32, error) {
	b, err := rb.Peek(0, 4)
	if err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b)
	rb.Advance(4)
	return v, nil
}

// ReadInt32 reads a big-endian int32.
func ReadInt32(rb *RingBuffer) (int32, error) {
	v, err := ReadUint32(rb)
	return int32(v), err
}

// ReadUint64 reads a big-endian uint64.
func ReadUint64(rb *RingBuffer) (uint64, error) {
	b, err := rb.Peek(0, 8)
	if err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(b)
	rb.Advance(8)
	return v, nil
}

// ReadInt64 reads a big-endian int64.
func ReadInt64(rb *RingBuffer) (int64, error) {
	v, err := ReadUint64(rb)
	return int64(v), err
}

// ReadFloat32 reads a big-endian IEEE-754 single-precision float.
func ReadFloat32(rb *RingBuffer) (float32, error) {
	v, err := ReadUint32(rb)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a big-endian IEEE-754 double-precision float.
func ReadFloat64(rb *RingBuffer) (float64, error) {
	v, err := ReadUint64(rb)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBytes reads exactly n raw bytes, copied out of the ring buffer so the
// result survives subsequent writes.
func ReadBytes(rb *RingBuffer, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read negative length %d: %w", n, errs.MalformedPacket)
	}
	if n == 0 {
		return []byte{}, nil
	}
	b, err := rb.Peek(0, uint64(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	rb.Advance(uint64(n))
	return out, nil
}

// maxStringBytes bounds string length reads against adversarial VarInt
// lengths that exceed any plausible frame, producing MalformedPacket instead
// of an enormous allocation.
const maxStringBytes = 1 << 20

// ReadString reads a VarInt length followed by that many UTF-8 bytes.
func ReadString(rb *RingBuffer) (string, error) {
	mark := rb.Mark()
	n, err := ReadVarInt(rb)
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxStringBytes {
		rb.Rewind(mark)
		return "", fmt.Errorf("string length %d out of range: %w", n, errs.MalformedPacket)
	}
	b, err := ReadBytes(rb, int(n))
	if err != nil {
		rb.Rewind(mark)
		return "", err
	}
	return string(b), nil
}

// ReadRawString reads exactly n bytes with no length prefix.
func ReadRawString(rb *RingBuffer, n int) (string, error) {
	b, err := ReadBytes(rb, n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadUUID reads 16 raw bytes.
func ReadUUID(rb *RingBuffer) ([16]byte, error) {
	var out [16]byte
	b, err := rb.Peek(0, 16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	rb.Advance(16)
	return out, nil
}

// ReadBitSet reads a VarInt-length-prefixed array of u64 words.
func ReadBitSet(rb *RingBuffer) ([]uint64, error) {
	mark := rb.Mark()
	n, err := ReadVarInt(rb)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 1<<16 {
		rb.Rewind(mark)
		return nil, fmt.Errorf("bitset length %d out of range: %w", n, errs.MalformedPacket)
	}
	out := make([]uint64, n)
	for i := range out {
		v, err := ReadUint64(rb)
		if err != nil {
			rb.Rewind(mark)
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// BitSetTest reports whether bit index i is set in a BitSet word array.
func BitSetTest(bits []uint64, i int) bool {
	word := i / 64
	if word < 0 || word >= len(bits) {
		return false
	}
	return bits[word]&(1<<uint(i%64)) != 0
}

// --- Write side (outbound packet builder) ---

func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteUint8(w, 1)
	}
	return WriteUint8(w, 0)
}

func WriteUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteFloat32(w io.Writer, v float32) error {
	return WriteUint32(w, math.Float32bits(v))
}

func WriteFloat64(w io.Writer, v float64) error {
	return WriteUint64(w, math.Float64bits(v))
}

func WriteString(w io.Writer, s string) error {
	if err := WriteVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func WriteUUID(w io.Writer, u [16]byte) error {
	_, err := w.Write(u[:])
	return err
}

func WriteBitSet(w io.Writer, bits []uint64) error {
	if err := WriteVarInt(w, int32(len(bits))); err != nil {
		return err
	}
	for _, word := range bits {
		if err := WriteUint64(w, word); err != nil {
			return err
		}
	}
	return nil
}
