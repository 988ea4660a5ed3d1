package protocol

import (
	"bytes"
	"log"
	"net"
	"os"
	"testing"
	"time"
)

func pipeConnections(t *testing.T) (*Connection, *Connection) {
	t.Helper()
	a, b := net.Pipe()
	logger := log.New(os.Stdout, "", 0)
	ca := New(logger)
	ca.conn = a
	cb := New(logger)
	cb.conn = b
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return ca, cb
}

func drainEventually(t *testing.T, c *Connection) *WirePacket {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := c.Poll(); err != nil {
			t.Fatalf("Poll: %v", err)
		}
		pkt, err := c.DrainPacket()
		if err == nil {
			return pkt
		}
	}
	t.Fatal("timed out waiting for packet")
	return nil
}

func TestUncompressedRoundTrip(t *testing.T) {
	sender, receiver := pipeConnections(t)

	payload := []byte("hello world")
	done := make(chan error, 1)
	go func() { done <- sender.WritePacket(5, payload) }()

	pkt := drainEventually(t, receiver)
	if err := <-done; err != nil {
		t.Fatalf("WritePacket: %v", err)
	}

	if pkt.PacketID != 5 {
		t.Errorf("PacketID = %d, want 5", pkt.PacketID)
	}
	if !bytes.Equal(pkt.Payload, payload) {
		t.Errorf("Payload = %q, want %q", pkt.Payload, payload)
	}
}

func TestCompressedRoundTripAboveThreshold(t *testing.T) {
	sender, receiver := pipeConnections(t)
	sender.SetCompressionThreshold(8)
	receiver.SetCompressionThreshold(8)

	payload := bytes.Repeat([]byte("x"), 256)
	done := make(chan error, 1)
	go func() { done <- sender.WritePacket(9, payload) }()

	pkt := drainEventually(t, receiver)
	if err := <-done; err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if pkt.PacketID != 9 {
		t.Errorf("PacketID = %d, want 9", pkt.PacketID)
	}
	if !bytes.Equal(pkt.Payload, payload) {
		t.Errorf("Payload mismatch, len got %d want %d", len(pkt.Payload), len(payload))
	}
}

func TestCompressedRoundTripBelowThreshold(t *testing.T) {
	sender, receiver := pipeConnections(t)
	sender.SetCompressionThreshold(256)
	receiver.SetCompressionThreshold(256)

	payload := []byte("short")
	done := make(chan error, 1)
	go func() { done <- sender.WritePacket(3, payload) }()

	pkt := drainEventually(t, receiver)
	if err := <-done; err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if pkt.PacketID != 3 || !bytes.Equal(pkt.Payload, payload) {
		t.Errorf("got id=%d payload=%q, want id=3 payload=%q", pkt.PacketID, pkt.Payload, payload)
	}
}

func TestDrainPacketIncompleteFrameDoesNotCorruptCursor(t *testing.T) {
	_, receiver := pipeConnections(t)

	// stage only the length-prefix of a frame whose body hasn't arrived yet.
	if err := receiver.stage([]byte{0x05}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	mark := receiver.in.Mark()
	if _, err := receiver.DrainPacket(); err == nil {
		t.Fatal("expected IncompleteFrame")
	}
	if receiver.in.Mark() != mark {
		t.Error("DrainPacket must not advance the cursor on IncompleteFrame")
	}
}
