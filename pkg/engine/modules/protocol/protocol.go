// Package protocol is the engine module that drives the client through
// login -> configuration -> play. The wire
// framing itself lives in pkg/protocol; this module owns the dispatch
// tables for the Login and Configuration states plus the play-state
// lifecycle packets (keepalive, ping, disconnect, transfer).
package protocol

import (
	"bytes"
	"crypto/md5"
	"fmt"

	"github.com/google/uuid"

	"github.com/go-mclib/polymer/pkg/engine"
	"github.com/go-mclib/polymer/pkg/errs"
	"github.com/go-mclib/polymer/pkg/nbt"
	"github.com/go-mclib/polymer/pkg/packetids"
	wire "github.com/go-mclib/polymer/pkg/protocol"
	"github.com/go-mclib/polymer/pkg/ringbuf"
)

const ModuleName = "protocol"

// Module drives the protocol state machine.
type Module struct {
	engine *engine.Engine
}

func New() *Module {
	return &Module{}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(e *engine.Engine) { m.engine = e }

func (m *Module) Reset() {}

// From retrieves the protocol module from an engine.
func From(e *engine.Engine) *Module {
	mod := e.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// OnConnect sends handshake and login start after TCP connection.
func (m *Module) OnConnect() {
	e := m.engine

	if err := e.Conn.SendHandshake(wire.IntentLogin, packetids.ProtocolVersion, e.Config.Host, uint16(e.Config.Port)); err != nil {
		e.Logger.Println("send handshake:", err)
		return
	}
	e.Conn.SetState(wire.StateLogin)

	var buf bytes.Buffer
	if err := ringbuf.WriteString(&buf, e.Config.Username); err != nil {
		return
	}
	if err := ringbuf.WriteUUID(&buf, offlineUUID(e.Config.Username)); err != nil {
		return
	}
	if err := e.WritePacket(packetids.C2SHelloID, buf.Bytes()); err != nil {
		e.Logger.Println("send login start:", err)
	}
}

// offlineUUID derives the offline-mode player UUID the same way vanilla
// servers do, an MD5 name-based UUID over "OfflinePlayer:<name>".
func offlineUUID(name string) [16]byte {
	h := md5.Sum([]byte("OfflinePlayer:" + name))
	h[6] = (h[6] & 0x0f) | 0x30 // version 3
	h[8] = (h[8] & 0x3f) | 0x80 // IETF variant
	return h
}

func (m *Module) HandlePacket(pkt *wire.WirePacket) {
	switch pkt.State {
	case wire.StateLogin:
		m.handleLogin(pkt)
	case wire.StateConfiguration:
		m.handleConfiguration(pkt)
	case wire.StatePlay:
		m.handlePlay(pkt)
	}
}

func (m *Module) handleLogin(pkt *wire.WirePacket) {
	e := m.engine

	switch pkt.PacketID {
	case packetids.S2CLoginDisconnectID:
		rb := pkt.Reader()
		reason, err := ringbuf.ReadString(rb)
		if err != nil {
			e.Logger.Println("login disconnect (parse):", err)
		} else {
			e.Logger.Printf("login disconnect: %s", reason)
		}
		e.Disconnect(false)
	case packetids.S2CHelloID:
		// Online-mode encryption is unsupported: close cleanly instead of
		// negotiating.
		e.Logger.Printf("server requested encryption: %v", fmt.Errorf("online mode: %w", errs.UnsupportedProtocol))
		e.Disconnect(true)
	case packetids.S2CLoginFinishedID:
		m.handleLoginFinished(pkt)
	case packetids.S2CLoginCompressionID:
		rb := pkt.Reader()
		threshold, err := ringbuf.ReadVarInt(rb)
		if err != nil {
			e.Logger.Println("compression threshold:", err)
			return
		}
		e.Conn.SetCompressionThreshold(int(threshold))
		e.Logger.Printf("compression enabled: %d", threshold)
	default:
		e.Logger.Printf("ignoring login packet 0x%02X", pkt.PacketID)
	}
}

func (m *Module) handleLoginFinished(pkt *wire.WirePacket) {
	e := m.engine

	rb := pkt.Reader()
	id, err := ringbuf.ReadUUID(rb)
	if err != nil {
		e.Logger.Println("login finished (uuid):", err)
		return
	}
	name, err := ringbuf.ReadString(rb)
	if err != nil {
		e.Logger.Println("login finished (name):", err)
		return
	}
	e.Logger.Printf("login successful: %s (%s)", name, uuid.UUID(id))

	_ = e.WritePacket(packetids.C2SLoginAcknowledgedID, nil)
	e.Conn.SetState(wire.StateConfiguration)
	m.sendBrandPluginMessage()
	m.sendClientInformation()
	e.Logger.Println("switched from login -> configuration state")
}

func (m *Module) handleConfiguration(pkt *wire.WirePacket) {
	e := m.engine

	switch pkt.PacketID {
	case packetids.S2CDisconnectConfigurationID:
		rb := pkt.Reader()
		reason, _ := ringbuf.ReadString(rb)
		e.Logger.Printf("disconnected during configuration: %s", reason)
		e.Disconnect(false)
	case packetids.S2CFinishConfigurationID:
		_ = e.WritePacket(packetids.C2SFinishConfigurationID, nil)
		e.Conn.SetState(wire.StatePlay)
		e.Logger.Println("switched from configuration -> play state")
	case packetids.S2CKeepAliveConfigurationID:
		m.echoKeepAlive(pkt, packetids.C2SKeepAliveConfigurationID)
	case packetids.S2CPingConfigurationID:
		rb := pkt.Reader()
		if id, err := ringbuf.ReadUint32(rb); err == nil {
			var buf bytes.Buffer
			_ = ringbuf.WriteUint32(&buf, id)
			_ = e.WritePacket(packetids.C2SPongConfigurationID, buf.Bytes())
		}
	case packetids.S2CRegistryDataID:
		m.handleRegistryData(pkt)
	case packetids.S2CSelectKnownPacksID:
		// Reply with an empty pack list so the server inlines every
		// registry entry instead of referencing known packs.
		var buf bytes.Buffer
		_ = ringbuf.WriteVarInt(&buf, 0)
		_ = e.WritePacket(packetids.C2SSelectKnownPacksID, buf.Bytes())
	}
}

// handleRegistryData ingests one registry from the configuration codec. Only
// minecraft:dimension_type is retained; its entries become the dimension
// table Login/Respawn select from.
func (m *Module) handleRegistryData(pkt *wire.WirePacket) {
	e := m.engine
	rb := pkt.Reader()

	registryID, err := ringbuf.ReadString(rb)
	if err != nil {
		e.Logger.Println("registry data (id):", err)
		return
	}
	count, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		e.Logger.Println("registry data (count):", err)
		return
	}

	keep := registryID == "minecraft:dimension_type"
	var dims []engine.Dimension
	for i := int32(0); i < count; i++ {
		name, err := ringbuf.ReadString(rb)
		if err != nil {
			e.Logger.Printf("registry %s entry %d: %v", registryID, i, err)
			return
		}
		hasData, err := ringbuf.ReadBool(rb)
		if err != nil {
			return
		}
		var tag nbt.Tag
		if hasData {
			tag, err = nbt.DecodeNetworkRoot(rb)
			if err != nil {
				e.Logger.Printf("registry %s entry %s: %v", registryID, name, err)
				return
			}
		}
		if keep {
			dims = append(dims, engine.DimensionFromTag(name, tag))
		}
	}
	if keep {
		e.Dimensions = dims
		e.Logger.Printf("registered %d dimension types", len(dims))
	}
}

func (m *Module) handlePlay(pkt *wire.WirePacket) {
	e := m.engine

	switch pkt.PacketID {
	case packetids.S2CDisconnectPlayID:
		rb := pkt.Reader()
		reason, _ := ringbuf.ReadString(rb)
		e.Logger.Printf("disconnect: %s", reason)
		e.Disconnect(false)
	case packetids.S2CStartConfigurationID:
		_ = e.WritePacket(packetids.C2SConfigurationAcknowledgedID, nil)
		e.Conn.SetState(wire.StateConfiguration)
		e.Logger.Println("switched from play -> configuration state (server transfer)")
	case packetids.S2CKeepAlivePlayID:
		m.echoKeepAlive(pkt, packetids.C2SKeepAlivePlayID)
	case packetids.S2CPingPlayID:
		rb := pkt.Reader()
		if id, err := ringbuf.ReadUint32(rb); err == nil {
			var buf bytes.Buffer
			_ = ringbuf.WriteUint32(&buf, id)
			_ = e.WritePacket(packetids.C2SPongPlayID, buf.Bytes())
		}
	}
}

// echoKeepAlive reads the server's 64-bit keepalive id and echoes it back
// on respondID.
func (m *Module) echoKeepAlive(pkt *wire.WirePacket, respondID int32) {
	rb := pkt.Reader()
	id, err := ringbuf.ReadUint64(rb)
	if err != nil {
		return
	}
	var buf bytes.Buffer
	_ = ringbuf.WriteUint64(&buf, id)
	_ = m.engine.WritePacket(respondID, buf.Bytes())
}

func (m *Module) sendClientInformation() {
	e := m.engine
	var buf bytes.Buffer
	_ = ringbuf.WriteString(&buf, "en_us")
	_ = ringbuf.WriteUint8(&buf, uint8(e.Config.ViewDistance))
	_ = ringbuf.WriteVarInt(&buf, 0) // chat mode: enabled
	_ = ringbuf.WriteBool(&buf, true)
	_ = ringbuf.WriteUint8(&buf, 0x7F) // displayed skin parts
	_ = ringbuf.WriteVarInt(&buf, 1)   // main hand: right
	_ = ringbuf.WriteBool(&buf, false) // text filtering
	_ = ringbuf.WriteBool(&buf, true)  // allow server listings
	_ = ringbuf.WriteVarInt(&buf, 2)   // particle status
	_ = e.WritePacket(packetids.C2SClientInformationConfigurationID, buf.Bytes())
}

func (m *Module) sendBrandPluginMessage() {
	e := m.engine
	var buf bytes.Buffer
	_ = ringbuf.WriteString(&buf, "minecraft:brand")
	_ = ringbuf.WriteString(&buf, e.Config.Brand)
	_ = e.WritePacket(packetids.C2SCustomPayloadConfigurationID, buf.Bytes())
}
