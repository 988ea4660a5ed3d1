package world

// BorderedSize is the edge length of the mesher's scratch buffer: one
// chunk plus a one-cell halo on every side.
const BorderedSize = ChunkSize + 2

// BorderedChunk is the mesher's transient 18x18x18 input:
// Blocks/SkyLight/BlockLight indexed [x+1][y+1][z+1], so interior cell
// (x,y,z) in [0,16) of the copied chunk sits at index (x+1,y+1,z+1), with
// index 0 and 17 along every axis holding the one-cell halo.
type BorderedChunk struct {
	Blocks            [BorderedSize][BorderedSize][BorderedSize]uint32
	SkyLight          [BorderedSize][BorderedSize][BorderedSize]uint8
	BlockLight        [BorderedSize][BorderedSize][BorderedSize]uint8
}

// BuildBorderedChunk constructs the mesher scratch for chunk-y cy of the
// column at (cx, cz). ok is false if the section itself or any of the 8
// horizontal neighbor columns is unloaded; missing vertical neighbors
// instead contribute zero/air borders.
func BuildBorderedChunk(cache *Cache, cx, cy, cz int32) (*BorderedChunk, bool) {
	center := cache.GetChunk(cx, cz)
	if center == nil {
		return nil, false
	}
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if cache.GetChunk(cx+dx, cz+dz) == nil {
				return nil, false
			}
		}
	}

	bc := &BorderedChunk{}
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			col := cache.GetChunk(cx+dx, cz+dz)
			copyColumnSlab(bc, col, dx, dz, cy)
		}
	}
	return bc, true
}

// copyColumnSlab fills the portion of bc contributed by the neighbor
// column offset (dx, dz) from the center, sampling its chunk at chunk-y cy
// and reaching into the chunks above/below in the column for the top and
// bottom y slabs.
func copyColumnSlab(bc *BorderedChunk, col *ChunkSection, dx, dz int32, cy int32) {
	xRange, xOff := axisRange(dx)
	zRange, zOff := axisRange(dz)

	for _, lx := range xRange {
		bx := lx + xOff
		for _, lz := range zRange {
			bz := lz + zOff
			for by := -1; by <= ChunkSize; by++ {
				worldY := int(cy)*ChunkSize + by
				var id uint32
				var sky, block uint8
				if c := col.chunkAtWorldY(worldY); c != nil {
					cly := worldY - col.chunkYForWorldY(worldY)*ChunkSize
					id = c.blockAt(lx, cly, lz)
					sky, block = c.LightAt(lx, cly, lz)
				}
				bc.Blocks[bx+1][by+1][bz+1] = id
				bc.SkyLight[bx+1][by+1][bz+1] = sky
				bc.BlockLight[bx+1][by+1][bz+1] = block
			}
		}
	}
}

// axisRange returns the local coordinates a neighbor at relative position
// d (-1, 0, or 1) contributes along one axis, and the bordered-space offset
// to place them at.
func axisRange(d int32) ([]int, int) {
	switch d {
	case -1:
		return []int{ChunkSize - 1}, -ChunkSize
	case 1:
		return []int{0}, ChunkSize
	default:
		r := make([]int, ChunkSize)
		for i := range r {
			r[i] = i
		}
		return r, 0
	}
}

func (s *ChunkSection) chunkYForWorldY(worldY int) int {
	return int(floorDiv(int32(worldY), ChunkSize))
}

func (s *ChunkSection) chunkAtWorldY(worldY int) *Chunk {
	idx := s.chunkYIndex(int32(s.chunkYForWorldY(worldY)))
	if idx < 0 {
		return nil
	}
	return s.Chunks[idx]
}
