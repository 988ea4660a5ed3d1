// Package world is the engine module owning the world cache: the
// play-state handlers that mutate world and player state, plus the
// dirty-chunk queue the engine's mesh build loop drains.
package world

import (
	"bytes"
	"math"

	"github.com/go-mclib/polymer/pkg/engine"
	"github.com/go-mclib/polymer/pkg/mesher"
	"github.com/go-mclib/polymer/pkg/packetids"
	wire "github.com/go-mclib/polymer/pkg/protocol"
	"github.com/go-mclib/polymer/pkg/ringbuf"
	"github.com/go-mclib/polymer/pkg/world"
)

const ModuleName = "world"

// Player is the camera/position state PlayerPositionAndLook updates.
type Player struct {
	X, Y, Z    float64
	Yaw, Pitch float32
}

type Module struct {
	engine *engine.Engine

	cache     *world.Cache
	dimension engine.Dimension
	player    Player

	centerChunkX int32
	centerChunkZ int32

	dirty     [][3]int32
	dirtySet  map[[3]int32]struct{}

	onBlockUpdate []func(x, y, z int, stateID int32)
}

func New() *Module {
	return &Module{dirtySet: make(map[[3]int32]struct{})}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(e *engine.Engine) { m.engine = e }

func (m *Module) Reset() {
	m.cache = nil
	m.dimension = engine.Dimension{}
	m.player = Player{}
	m.dirty = nil
	m.dirtySet = make(map[[3]int32]struct{})
}

// From retrieves the world module from an engine.
func From(e *engine.Engine) *Module {
	mod := e.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// Cache returns the live world cache, or nil before the play Login packet.
func (m *Module) Cache() *world.Cache { return m.cache }

// Dimension returns the active dimension.
func (m *Module) Dimension() engine.Dimension { return m.dimension }

// Player returns the last server-confirmed player position.
func (m *Module) Player() Player { return m.player }

// OnBlockUpdate registers an observer fired for every block mutation.
func (m *Module) OnBlockUpdate(cb func(x, y, z int, stateID int32)) {
	m.onBlockUpdate = append(m.onBlockUpdate, cb)
}

func (m *Module) HandlePacket(pkt *wire.WirePacket) {
	if pkt.State != wire.StatePlay {
		return
	}
	switch pkt.PacketID {
	case packetids.S2CLoginPlayID:
		m.handleLogin(pkt)
	case packetids.S2CRespawnID:
		m.handleRespawn(pkt)
	case packetids.S2CLevelChunkWithLightID:
		m.handleChunkData(pkt)
	case packetids.S2CForgetLevelChunkID:
		m.handleUnloadChunk(pkt)
	case packetids.S2CBlockUpdateID:
		m.handleBlockUpdate(pkt)
	case packetids.S2CSectionBlocksUpdateID:
		m.handleSectionBlocksUpdate(pkt)
	case packetids.S2CPlayerPositionID:
		m.handlePlayerPosition(pkt)
	case packetids.S2CExplodeID:
		m.handleExplosion(pkt)
	case packetids.S2CSetChunkCacheCenterID:
		m.handleSetChunkCacheCenter(pkt)
	case packetids.S2CChunkBatchFinishedID:
		m.handleChunkBatchFinished(pkt)
	}
}

// selectDimension looks idx up in the configuration codec and swaps the
// world cache to the new span, clearing all chunk state.
func (m *Module) selectDimension(idx int32) {
	e := m.engine
	dim, ok := e.DimensionByIndex(idx)
	if !ok {
		e.Logger.Printf("unknown dimension type %d, keeping current dimension", idx)
		return
	}
	m.dimension = dim
	m.cache = world.NewCache(dim.MinY, dim.Height)
	m.dirty = nil
	m.dirtySet = make(map[[3]int32]struct{})
	e.Logger.Printf("dimension %s: height range [%d, %d)", dim.Name, dim.MinY, dim.MinY+dim.Height)
}

// handleLogin reads the play-state Login packet up through the dimension
// fields; the tail of the payload carries nothing the core retains.
func (m *Module) handleLogin(pkt *wire.WirePacket) {
	e := m.engine
	rb := pkt.Reader()

	entityID, err := ringbuf.ReadInt32(rb)
	if err != nil {
		e.Logger.Println("play login (entity id):", err)
		return
	}
	if _, err := ringbuf.ReadBool(rb); err != nil { // hardcore
		return
	}
	dimCount, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}
	for i := int32(0); i < dimCount; i++ {
		if _, err := ringbuf.ReadString(rb); err != nil {
			return
		}
	}
	if _, err := ringbuf.ReadVarInt(rb); err != nil { // max players
		return
	}
	if _, err := ringbuf.ReadVarInt(rb); err != nil { // view distance
		return
	}
	if _, err := ringbuf.ReadVarInt(rb); err != nil { // simulation distance
		return
	}
	if _, err := ringbuf.ReadBool(rb); err != nil { // reduced debug info
		return
	}
	if _, err := ringbuf.ReadBool(rb); err != nil { // respawn screen
		return
	}
	if _, err := ringbuf.ReadBool(rb); err != nil { // limited crafting
		return
	}
	dimType, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		e.Logger.Println("play login (dimension type):", err)
		return
	}
	dimName, err := ringbuf.ReadString(rb)
	if err != nil {
		e.Logger.Println("play login (dimension name):", err)
		return
	}

	e.Logger.Printf("joined as entity %d in %s", entityID, dimName)
	m.selectDimension(dimType)
}

// handleRespawn re-selects the dimension and clears the chunk cache (spec
// §4.4: "fires on_dimension_change() which clears the chunk cache").
func (m *Module) handleRespawn(pkt *wire.WirePacket) {
	rb := pkt.Reader()
	dimType, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}
	dimName, _ := ringbuf.ReadString(rb)
	m.engine.Logger.Printf("respawn into %s", dimName)
	m.selectDimension(dimType)
}

func (m *Module) handleChunkData(pkt *wire.WirePacket) {
	e := m.engine
	if m.cache == nil {
		e.Logger.Println("chunk data before play login, dropping")
		return
	}
	rb := pkt.Reader()

	chunkX, err := ringbuf.ReadInt32(rb)
	if err != nil {
		return
	}
	chunkZ, err := ringbuf.ReadInt32(rb)
	if err != nil {
		return
	}

	minChunkY := m.dimension.MinY / world.ChunkSize
	sections := int(m.dimension.Height) / world.ChunkSize
	column, err := world.DecodeChunkColumn(rb, chunkX, chunkZ, minChunkY, sections)
	if err != nil {
		e.Logger.Printf("failed to parse chunk column at (%d, %d): %v", chunkX, chunkZ, err)
		return
	}

	m.cache.PutChunk(column)
	m.markColumnDirty(column)

	// A fresh column also completes the neighbor halo of columns already
	// cached around it, so their meshes become buildable (or stale).
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if n := m.cache.GetChunk(chunkX+dx, chunkZ+dz); n != nil {
				m.markColumnDirty(n)
			}
		}
	}
}

func (m *Module) handleUnloadChunk(pkt *wire.WirePacket) {
	if m.cache == nil {
		return
	}
	rb := pkt.Reader()
	chunkX, err := ringbuf.ReadInt32(rb)
	if err != nil {
		return
	}
	chunkZ, err := ringbuf.ReadInt32(rb)
	if err != nil {
		return
	}
	m.cache.UnloadChunk(chunkX, chunkZ)
}

func (m *Module) handleBlockUpdate(pkt *wire.WirePacket) {
	if m.cache == nil {
		return
	}
	rb := pkt.Reader()
	packed, err := ringbuf.ReadUint64(rb)
	if err != nil {
		return
	}
	blockID, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}

	x, y, z := world.UnpackBlockPos(packed)
	m.setBlock(int(x), int(y), int(z), blockID)
}

func (m *Module) handleSectionBlocksUpdate(pkt *wire.WirePacket) {
	if m.cache == nil {
		return
	}
	rb := pkt.Reader()
	packed, err := ringbuf.ReadUint64(rb)
	if err != nil {
		return
	}
	sectionX, sectionY, sectionZ := world.DecodeSectionPosition(packed)

	count, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}
	for i := int32(0); i < count; i++ {
		entry, err := ringbuf.ReadVarLong(rb)
		if err != nil {
			return
		}
		stateID, lx, ly, lz := world.DecodeBlockEntry(entry)
		x := int(sectionX)*world.ChunkSize + lx
		y := int(sectionY)*world.ChunkSize + ly
		z := int(sectionZ)*world.ChunkSize + lz
		m.setBlock(x, y, z, stateID)
	}
}

// handlePlayerPosition updates the camera and confirms the teleport with
// the received id.
func (m *Module) handlePlayerPosition(pkt *wire.WirePacket) {
	rb := pkt.Reader()

	x, err := ringbuf.ReadFloat64(rb)
	if err != nil {
		return
	}
	y, err := ringbuf.ReadFloat64(rb)
	if err != nil {
		return
	}
	z, err := ringbuf.ReadFloat64(rb)
	if err != nil {
		return
	}
	yaw, err := ringbuf.ReadFloat32(rb)
	if err != nil {
		return
	}
	pitch, err := ringbuf.ReadFloat32(rb)
	if err != nil {
		return
	}
	if _, err := ringbuf.ReadUint8(rb); err != nil { // relative flags
		return
	}
	teleportID, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}

	m.player = Player{X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch}

	var buf bytes.Buffer
	_ = ringbuf.WriteVarInt(&buf, teleportID)
	_ = m.engine.WritePacket(packetids.C2SAcceptTeleportationID, buf.Bytes())
}

// handleExplosion clears every block named by the explosion's (dx,dy,dz)
// record list.
func (m *Module) handleExplosion(pkt *wire.WirePacket) {
	if m.cache == nil {
		return
	}
	rb := pkt.Reader()

	cx, err := ringbuf.ReadFloat64(rb)
	if err != nil {
		return
	}
	cy, err := ringbuf.ReadFloat64(rb)
	if err != nil {
		return
	}
	cz, err := ringbuf.ReadFloat64(rb)
	if err != nil {
		return
	}
	if _, err := ringbuf.ReadFloat32(rb); err != nil { // strength
		return
	}
	count, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}
	bx, by, bz := int(math.Floor(cx)), int(math.Floor(cy)), int(math.Floor(cz))
	for i := int32(0); i < count; i++ {
		dx, err := ringbuf.ReadInt8(rb)
		if err != nil {
			return
		}
		dy, err := ringbuf.ReadInt8(rb)
		if err != nil {
			return
		}
		dz, err := ringbuf.ReadInt8(rb)
		if err != nil {
			return
		}
		m.setBlock(bx+int(dx), by+int(dy), bz+int(dz), 0)
	}
}

func (m *Module) handleSetChunkCacheCenter(pkt *wire.WirePacket) {
	rb := pkt.Reader()
	x, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}
	z, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return
	}
	m.centerChunkX, m.centerChunkZ = x, z
}

func (m *Module) handleChunkBatchFinished(pkt *wire.WirePacket) {
	var buf bytes.Buffer
	_ = ringbuf.WriteFloat32(&buf, 25.0)
	_ = m.engine.WritePacket(packetids.C2SChunkBatchReceivedID, buf.Bytes())
}

func (m *Module) setBlock(x, y, z int, stateID int32) {
	m.cache.SetBlock(x, y, z, stateID)
	for _, cb := range m.onBlockUpdate {
		cb(x, y, z, stateID)
	}

	cx, cz := world.ChunkPos(x, z)
	cy := int32(y) / world.ChunkSize
	if y < 0 && y%world.ChunkSize != 0 {
		cy--
	}
	m.markDirty(cx, cy, cz)
	// A border cell also invalidates the neighbor sharing that face.
	lx, ly, lz := x&15, y-int(cy)*world.ChunkSize, z&15
	if lx == 0 {
		m.markDirty(cx-1, cy, cz)
	}
	if lx == 15 {
		m.markDirty(cx+1, cy, cz)
	}
	if lz == 0 {
		m.markDirty(cx, cy, cz-1)
	}
	if lz == 15 {
		m.markDirty(cx, cy, cz+1)
	}
	if ly == 0 {
		m.markDirty(cx, cy-1, cz)
	}
	if ly == world.ChunkSize-1 {
		m.markDirty(cx, cy+1, cz)
	}
}

// markColumnDirty queues every non-empty chunk of a freshly received
// column for meshing.
func (m *Module) markColumnDirty(col *world.ChunkSection) {
	minChunkY := col.MinChunkY
	for i, c := range col.Chunks {
		if c == nil {
			continue
		}
		m.markDirty(col.Info.WorldChunkX, minChunkY+int32(i), col.Info.WorldChunkZ)
	}
}

func (m *Module) markDirty(cx, cy, cz int32) {
	key := [3]int32{cx, cy, cz}
	if _, queued := m.dirtySet[key]; queued {
		return
	}
	m.dirtySet[key] = struct{}{}
	m.dirty = append(m.dirty, key)
}

// DrainDirty pops up to max queued chunk coordinates.
func (m *Module) DrainDirty(max int) [][3]int32 {
	n := len(m.dirty)
	if n > max {
		n = max
	}
	out := m.dirty[:n:n]
	m.dirty = m.dirty[n:]
	for _, key := range out {
		delete(m.dirtySet, key)
	}
	return out
}

// Mesh runs the block mesher for one section against the live cache.
func (m *Module) Mesh(ms *mesher.Mesher, cx, cy, cz int32) (mesher.VertexData, bool) {
	if m.cache == nil {
		return mesher.VertexData{}, false
	}
	data := ms.Mesh(m.cache, cx, cy, cz)
	for i := range data.Layers {
		if len(data.Layers[i].Vertices) > 0 {
			return data, true
		}
	}
	return data, false
}
