package ringbuf

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   int32
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"127", 127, []byte{0x7F}},
		{"128", 128, []byte{0x80, 0x01}},
		{"-1", -1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{"min_int32", -2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
		{"max_int32", 2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteVarInt(&buf, tt.in); err != nil {
				t.Fatalf("WriteVarInt: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("WriteVarInt(%d) = %x, want %x", tt.in, buf.Bytes(), tt.want)
			}
			if got := VarIntSize(tt.in); got != len(tt.want) {
				t.Errorf("VarIntSize(%d) = %d, want %d", tt.in, got, len(tt.want))
			}

			rb := New(64)
			if _, err := rb.Write(buf.Bytes()); err != nil {
				t.Fatalf("rb.Write: %v", err)
			}
			got, err := ReadVarInt(rb)
			if err != nil {
				t.Fatalf("ReadVarInt: %v", err)
			}
			if got != tt.in {
				t.Errorf("ReadVarInt roundtrip = %d, want %d", got, tt.in)
			}
			if rb.Readable() != 0 {
				t.Errorf("ReadVarInt left %d unread bytes", rb.Readable())
			}
		})
	}
}

func TestVarLongRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"two_pow_63", -9223372036854775808, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteVarLong(&buf, tt.in); err != nil {
				t.Fatalf("WriteVarLong: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("WriteVarLong(%d) = %x, want %x", tt.in, buf.Bytes(), tt.want)
			}

			rb := New(64)
			_, _ = rb.Write(buf.Bytes())
			got, err := ReadVarLong(rb)
			if err != nil {
				t.Fatalf("ReadVarLong: %v", err)
			}
			if got != tt.in {
				t.Errorf("ReadVarLong roundtrip = %d, want %d", got, tt.in)
			}
		})
	}
}

// 2^63 (an unsigned 64-bit quantity fed through WriteVarLong with the
// sign bit set) should produce the ten-byte maximal encoding.
func TestVarLongTwoPow63(t *testing.T) {
	var shift int64 = 1
	shift <<= 62
	shift <<= 1
	var buf bytes.Buffer
	if err := WriteVarLong(&buf, shift); err != nil {
		t.Fatalf("WriteVarLong: %v", err)
	}
	want := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("WriteVarLong(2^63) = %x, want %x", buf.Bytes(), want)
	}
}

func TestReadVarIntIncompleteFrame(t *testing.T) {
	rb := New(16)
	_, _ = rb.Write([]byte{0x80, 0x80}) // continuation bits set, buffer runs dry
	mark := rb.Mark()
	_, err := ReadVarInt(rb)
	if err == nil {
		t.Fatal("expected IncompleteFrame, got nil")
	}
	if rb.Mark() != mark {
		t.Error("ReadVarInt must not advance the read cursor on IncompleteFrame")
	}
}

func TestReadVarIntOverflow(t *testing.T) {
	rb := New(16)
	// five bytes, every one a continuation byte: never terminates within 5 bytes.
	_, _ = rb.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	if _, err := ReadVarInt(rb); err == nil {
		t.Fatal("expected malformed-packet error on varint overflow")
	}
}

// P2: ring buffer wrap. capacity 16, write 10 bytes 0..9, read 10, write 10
// bytes 10..19, read 10 - observed sequence 0..19.
func TestRingBufferWrap(t *testing.T) {
	rb := New(16)

	first := make([]byte, 10)
	for i := range first {
		first[i] = byte(i)
	}
	if _, err := rb.Write(first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	got, err := rb.Peek(0, 10)
	if err != nil {
		t.Fatalf("peek first: %v", err)
	}
	if !bytes.Equal(got, first) {
		t.Fatalf("peek first = %v, want %v", got, first)
	}
	rb.Advance(10)

	second := make([]byte, 10)
	for i := range second {
		second[i] = byte(10 + i)
	}
	if _, err := rb.Write(second); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err = rb.Peek(0, 10)
	if err != nil {
		t.Fatalf("peek second: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Fatalf("peek second (wrapped) = %v, want %v", got, second)
	}
	rb.Advance(10)

	if rb.Readable() != 0 {
		t.Errorf("Readable() = %d, want 0", rb.Readable())
	}
}

func TestRingBufferWriteOverflow(t *testing.T) {
	rb := New(8)
	if _, err := rb.Write(make([]byte, 9)); err == nil {
		t.Fatal("expected error writing more than capacity")
	}
}

func TestStringRoundTrip(t *testing.T) {
	rb := New(64)
	var buf bytes.Buffer
	if err := WriteString(&buf, "hello, minecraft"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if _, err := rb.Write(buf.Bytes()); err != nil {
		t.Fatalf("rb.Write: %v", err)
	}
	got, err := ReadString(rb)
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if got != "hello, minecraft" {
		t.Errorf("ReadString = %q, want %q", got, "hello, minecraft")
	}
}
