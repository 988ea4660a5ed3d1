package engine_test

import (
	"bytes"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/go-mclib/polymer/pkg/engine"
	protomod "github.com/go-mclib/polymer/pkg/engine/modules/protocol"
	worldmod "github.com/go-mclib/polymer/pkg/engine/modules/world"
	"github.com/go-mclib/polymer/pkg/packetids"
	wire "github.com/go-mclib/polymer/pkg/protocol"
	"github.com/go-mclib/polymer/pkg/ringbuf"
)

// writeUncompressedFrame writes VarInt length | VarInt id | payload.
func writeUncompressedFrame(t *testing.T, conn net.Conn, id int32, payload []byte) {
	t.Helper()
	var body bytes.Buffer
	_ = ringbuf.WriteVarInt(&body, id)
	body.Write(payload)
	var frame bytes.Buffer
	_ = ringbuf.WriteVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())
	if _, err := conn.Write(frame.Bytes()); err != nil {
		t.Errorf("server write: %v", err)
	}
}

// writeCompressedRawFrame writes the compressed frame format with
// data_length == 0 (payload below threshold, sent raw).
func writeCompressedRawFrame(t *testing.T, conn net.Conn, id int32, payload []byte) {
	t.Helper()
	var body bytes.Buffer
	_ = ringbuf.WriteVarInt(&body, 0) // data_length: not compressed
	_ = ringbuf.WriteVarInt(&body, id)
	body.Write(payload)
	var frame bytes.Buffer
	_ = ringbuf.WriteVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())
	if _, err := conn.Write(frame.Bytes()); err != nil {
		t.Errorf("server write: %v", err)
	}
}

// dimensionTypeNBT encodes the network-root compound
// {min_y: -64, height: 384}.
func dimensionTypeNBT() []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x03) // TagInt
	buf.Write([]byte{0x00, 0x05})
	buf.WriteString("min_y")
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xC0}) // -64
	buf.WriteByte(0x03) // TagInt
	buf.Write([]byte{0x00, 0x06})
	buf.WriteString("height")
	buf.Write([]byte{0x00, 0x00, 0x01, 0x80}) // 384
	buf.WriteByte(0x00) // TagEnd
	return buf.Bytes()
}

func loginSuccessPayload() []byte {
	var buf bytes.Buffer
	uuid := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	_ = ringbuf.WriteUUID(&buf, uuid)
	_ = ringbuf.WriteString(&buf, "tester")
	_ = ringbuf.WriteVarInt(&buf, 0) // property count
	return buf.Bytes()
}

func registryDataPayload() []byte {
	var buf bytes.Buffer
	_ = ringbuf.WriteString(&buf, "minecraft:dimension_type")
	_ = ringbuf.WriteVarInt(&buf, 1)
	_ = ringbuf.WriteString(&buf, "minecraft:overworld")
	_ = ringbuf.WriteBool(&buf, true)
	buf.Write(dimensionTypeNBT())
	return buf.Bytes()
}

func playLoginPayload() []byte {
	var buf bytes.Buffer
	_ = ringbuf.WriteUint32(&buf, 7)  // entity id
	_ = ringbuf.WriteBool(&buf, false) // hardcore
	_ = ringbuf.WriteVarInt(&buf, 1)
	_ = ringbuf.WriteString(&buf, "minecraft:overworld")
	_ = ringbuf.WriteVarInt(&buf, 20)  // max players
	_ = ringbuf.WriteVarInt(&buf, 10)  // view distance
	_ = ringbuf.WriteVarInt(&buf, 10)  // simulation distance
	_ = ringbuf.WriteBool(&buf, false) // reduced debug info
	_ = ringbuf.WriteBool(&buf, true)  // respawn screen
	_ = ringbuf.WriteBool(&buf, false) // limited crafting
	_ = ringbuf.WriteVarInt(&buf, 0)   // dimension type index
	_ = ringbuf.WriteString(&buf, "minecraft:overworld")
	return buf.Bytes()
}

// TestLoginToPlay walks a scripted Login -> Configuration -> Play flow:
// SetCompression(256), LoginSuccess, RegistryData with one dimension type
// {min_y: -64, height: 384}, FinishConfiguration, then the play-state
// Login selecting dimension type 0.
func TestLoginToPlay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		go io.Copy(io.Discard, conn) // the script never parses client packets

		var threshold bytes.Buffer
		_ = ringbuf.WriteVarInt(&threshold, 256)
		writeUncompressedFrame(t, conn, packetids.S2CLoginCompressionID, threshold.Bytes())
		writeCompressedRawFrame(t, conn, packetids.S2CLoginFinishedID, loginSuccessPayload())
		writeCompressedRawFrame(t, conn, packetids.S2CRegistryDataID, registryDataPayload())
		writeCompressedRawFrame(t, conn, packetids.S2CFinishConfigurationID, nil)
		writeCompressedRawFrame(t, conn, packetids.S2CLoginPlayID, playLoginPayload())

		// Hold the socket open until the client has drained everything.
		time.Sleep(2 * time.Second)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	e := engine.New(engine.Config{Host: "127.0.0.1", Port: addr.Port, Username: "tester"})
	e.Logger = log.New(io.Discard, "", 0)
	e.Conn.Logger = e.Logger

	pm := protomod.New()
	e.Register(pm)
	wm := worldmod.New()
	e.Register(wm)

	var states []wire.State
	e.RegisterHandler(func(e *engine.Engine, pkt *wire.WirePacket) {
		s := e.Conn.State()
		if len(states) == 0 || states[len(states)-1] != s {
			states = append(states, s)
		}
	})

	if err := e.Conn.Connect("127.0.0.1", addr.Port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer e.Conn.Close()
	pm.OnConnect()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if err := e.Conn.Poll(); err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if _, err := e.Interpret(); err != nil {
			t.Fatalf("Interpret: %v", err)
		}
		if e.Conn.State() == wire.StatePlay && wm.Cache() != nil {
			break
		}
	}

	want := []wire.State{wire.StateLogin, wire.StateConfiguration, wire.StatePlay}
	if len(states) != len(want) {
		t.Fatalf("state sequence = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state sequence = %v, want %v", states, want)
		}
	}

	if !e.Conn.Compressed() {
		t.Error("compression not enabled after SetCompression")
	}
	if len(e.Dimensions) != 1 {
		t.Fatalf("dimension count = %d, want 1", len(e.Dimensions))
	}
	dim := e.Dimensions[0]
	if dim.Name != "minecraft:overworld" || dim.MinY != -64 || dim.Height != 384 {
		t.Errorf("dimension = %+v, want minecraft:overworld [-64, 384)", dim)
	}

	cache := wm.Cache()
	if cache == nil {
		t.Fatal("world cache not created by play login")
	}
	if cache.DimensionMinY != -64 || cache.DimensionTop != 320 {
		t.Errorf("height range = [%d, %d), want [-64, 320)", cache.DimensionMinY, cache.DimensionTop)
	}
}
