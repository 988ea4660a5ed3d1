package world

import "sync"

// CacheSize is the fixed edge length of the world cache grid: chunk
// sections are keyed by (chunk_x mod CacheSize, chunk_z mod CacheSize).
const CacheSize = 32

// Cache is the world cache: a fixed 32x32 modular ring of ChunkSection,
// single-writer (the packet interpreter), read-locked by the mesher.
// Receiving a column whose modular slot is already occupied implicitly
// evicts the previous resident, which bounds memory without any explicit
// eviction bookkeeping.
type Cache struct {
	mu    sync.RWMutex
	cells [CacheSize][CacheSize]*ChunkSection
	count int

	DimensionMinY int32
	DimensionTop  int32 // exclusive

	onChunkLoad   []func(x, z int32)
	onChunkUnload []func(x, z int32)
}

// NewCache creates a Cache for a dimension spanning world y in
// [minY, minY+height).
func NewCache(minY, height int32) *Cache {
	return &Cache{DimensionMinY: minY, DimensionTop: minY + height}
}

func slot(v int32) int32 {
	m := v % CacheSize
	if m < 0 {
		m += CacheSize
	}
	return m
}

func (c *Cache) sectionsPerColumn() int {
	return int((c.DimensionTop - c.DimensionMinY) / ChunkSize)
}

// OnChunkLoad/OnChunkUnload register load/unload observers.
func (c *Cache) OnChunkLoad(cb func(x, z int32))   { c.onChunkLoad = append(c.onChunkLoad, cb) }
func (c *Cache) OnChunkUnload(cb func(x, z int32)) { c.onChunkUnload = append(c.onChunkUnload, cb) }

// PutChunk installs column at its (ChunkX, ChunkZ), implicitly evicting
// whatever previously held that modular slot.
func (c *Cache) PutChunk(column *ChunkSection) {
	sx, sz := slot(column.Info.WorldChunkX), slot(column.Info.WorldChunkZ)

	c.mu.Lock()
	prev := c.cells[sx][sz]
	if prev == nil {
		c.count++
	}
	c.cells[sx][sz] = column
	c.mu.Unlock()

	for _, cb := range c.onChunkLoad {
		cb(column.Info.WorldChunkX, column.Info.WorldChunkZ)
	}
	if prev != nil && (prev.Info.WorldChunkX != column.Info.WorldChunkX || prev.Info.WorldChunkZ != column.Info.WorldChunkZ) {
		for _, cb := range c.onChunkUnload {
			cb(prev.Info.WorldChunkX, prev.Info.WorldChunkZ)
		}
	}
}

// UnloadChunk clears the column at (cx, cz), but only if that slot still
// holds that exact column (a stale UnloadChunk for an already-evicted slot
// is a no-op).
func (c *Cache) UnloadChunk(cx, cz int32) {
	sx, sz := slot(cx), slot(cz)

	c.mu.Lock()
	col := c.cells[sx][sz]
	removed := col != nil && col.Info.WorldChunkX == cx && col.Info.WorldChunkZ == cz
	if removed {
		c.cells[sx][sz] = nil
		c.count--
	}
	c.mu.Unlock()

	if removed {
		for _, cb := range c.onChunkUnload {
			cb(cx, cz)
		}
	}
}

// GetChunk returns the column at (cx, cz), or nil if that slot is empty or
// holds a different column (evicted).
func (c *Cache) GetChunk(cx, cz int32) *ChunkSection {
	sx, sz := slot(cx), slot(cz)
	c.mu.RLock()
	defer c.mu.RUnlock()
	col := c.cells[sx][sz]
	if col == nil || col.Info.WorldChunkX != cx || col.Info.WorldChunkZ != cz {
		return nil
	}
	return col
}

// IsChunkLoaded reports whether (cx, cz) currently occupies the cache.
func (c *Cache) IsChunkLoaded(cx, cz int32) bool {
	return c.GetChunk(cx, cz) != nil
}

// GetLoadedChunkCount returns the number of occupied cache slots.
func (c *Cache) GetLoadedChunkCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// GetBlock returns the block state id at world (x, y, z), or 0 if the
// owning chunk isn't loaded.
func (c *Cache) GetBlock(x, y, z int) int32 {
	cx, cz := ChunkPos(x, z)
	col := c.GetChunk(cx, cz)
	if col == nil {
		return 0
	}
	return col.GetBlockState(x, y, z)
}

// SetBlock overwrites the block state id at world (x, y, z) if the owning
// chunk is loaded (BlockUpdate/UpdateSectionBlocks handlers).
func (c *Cache) SetBlock(x, y, z int, stateID int32) {
	cx, cz := ChunkPos(x, z)
	col := c.GetChunk(cx, cz)
	if col == nil {
		return
	}
	c.mu.Lock()
	col.SetBlockState(x, y, z, stateID)
	c.mu.Unlock()
}

// Reset clears every slot (fired on dimension change).
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = [CacheSize][CacheSize]*ChunkSection{}
	c.count = 0
}
