package nbt

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/go-mclib/polymer/pkg/errs"
	"github.com/go-mclib/polymer/pkg/ringbuf"
)

// encodeCompound builds a minimal named-root compound by hand: TagCompound,
// a name, one TagInt child named "x", then TagEnd (root terminator; an Int
// child carries no terminator of its own).
func encodeCompound(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(byte(TagCompound))
	writeU16String(&buf, "root")
	buf.WriteByte(byte(TagInt))
	writeU16String(&buf, "x")
	buf.Write([]byte{0x00, 0x00, 0x00, 0x2A}) // 42
	buf.WriteByte(byte(TagEnd))
	return buf.Bytes()
}

func writeU16String(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s) >> 8))
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

func TestDecodeValidCompound(t *testing.T) {
	raw := encodeCompound(t)
	rb := ringbuf.New(128)
	if _, err := rb.Write(raw); err != nil {
		t.Fatalf("rb.Write: %v", err)
	}

	tag, err := Decode(rb)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tag.Type != TagCompound {
		t.Fatalf("tag.Type = %v, want TagCompound", tag.Type)
	}
	child, ok := tag.Find("x")
	if !ok {
		t.Fatal("expected child \"x\"")
	}
	if child.Type != TagInt || child.Int != 42 {
		t.Errorf("child = %+v, want TagInt(42)", child)
	}
	if rb.Readable() != 0 {
		t.Errorf("Readable() = %d, want 0 (whole buffer consumed)", rb.Readable())
	}
}

// P3: every strict prefix of a valid encoding must yield IncompleteFrame and
// must not move the read cursor.
func TestDecodeIncompletePrefixes(t *testing.T) {
	raw := encodeCompound(t)
	for n := 0; n < len(raw); n++ {
		rb := ringbuf.New(128)
		if _, err := rb.Write(raw[:n]); err != nil {
			t.Fatalf("rb.Write: %v", err)
		}
		mark := rb.Mark()
		_, err := Decode(rb)
		if !errors.Is(err, errs.IncompleteFrame) {
			t.Errorf("prefix len %d: err = %v, want IncompleteFrame", n, err)
		}
		if rb.Mark() != mark {
			t.Errorf("prefix len %d: read cursor moved on IncompleteFrame", n)
		}
	}
}

// P3: arbitrary random bytes must terminate in bounded time and either
// succeed or fail with MalformedNbt/TooDeep/IncompleteFrame.
func TestDecodeFuzzTerminates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		n := rng.Intn(64)
		buf := make([]byte, n)
		rng.Read(buf)

		rb := ringbuf.New(128)
		if _, err := rb.Write(buf); err != nil {
			continue // random length happened to exceed this tiny capacity
		}
		_, err := Decode(rb)
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.IncompleteFrame) && !errors.Is(err, errs.MalformedNbt) && !errors.Is(err, errs.TooDeep) {
			t.Fatalf("iteration %d: unexpected error kind: %v", i, err)
		}
	}
}

func TestDecodeTooDeep(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagCompound))
	writeU16String(&buf, "root")
	for i := 0; i < maxDepth+10; i++ {
		buf.WriteByte(byte(TagCompound))
		writeU16String(&buf, "nested")
	}
	// deliberately never close any of the nested compounds or the root.

	rb := ringbuf.New(1 << 16)
	if _, err := rb.Write(buf.Bytes()); err != nil {
		t.Fatalf("rb.Write: %v", err)
	}
	_, err := Decode(rb)
	if !errors.Is(err, errs.TooDeep) {
		t.Fatalf("err = %v, want TooDeep", err)
	}
}

func TestDecodeEmptyRoot(t *testing.T) {
	rb := ringbuf.New(16)
	if _, err := rb.Write([]byte{byte(TagEnd)}); err != nil {
		t.Fatalf("rb.Write: %v", err)
	}
	tag, err := Decode(rb)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tag.Type != TagEnd {
		t.Errorf("tag.Type = %v, want TagEnd", tag.Type)
	}
}

func TestDecodeNetworkRoot(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagInt))
	writeU16String(&buf, "count")
	buf.Write([]byte{0, 0, 0, 7})
	buf.WriteByte(byte(TagEnd))

	rb := ringbuf.New(64)
	if _, err := rb.Write(buf.Bytes()); err != nil {
		t.Fatalf("rb.Write: %v", err)
	}
	tag, err := DecodeNetworkRoot(rb)
	if err != nil {
		t.Fatalf("DecodeNetworkRoot: %v", err)
	}
	child, ok := tag.Find("count")
	if !ok || child.Int != 7 {
		t.Errorf("child = %+v, want TagInt(7)", child)
	}
}
