package world

import (
	"fmt"

	"github.com/go-mclib/polymer/pkg/errs"
	"github.com/go-mclib/polymer/pkg/nbt"
	"github.com/go-mclib/polymer/pkg/ringbuf"
)

const (
	blockCellCount     = ChunkSize * ChunkSize * ChunkSize
	blockMinIndirectBits = 4
	blockDirectBits      = 9

	biomeMinIndirectBits = 1
	biomeDirectBits       = 6

	lightArrayLen = lightBytes // 2048 bytes, one nibble per cell
)

// DecodeChunkColumn ingests one ChunkData payload, a single vertical
// column: heightmaps NBT (discarded), the palette-coded block
// (and analogous, discarded biome) data for sectionsPerColumn sections,
// block entities (discarded), and the four light bitsets plus their nibble
// arrays. rb must be positioned at the start of the packet body immediately
// following the wire ChunkX/ChunkZ fields.
func DecodeChunkColumn(rb *ringbuf.RingBuffer, chunkX, chunkZ, minChunkY int32, sectionsPerColumn int) (*ChunkSection, error) {
	if _, err := nbt.Decode(rb); err != nil {
		return nil, fmt.Errorf("chunk data heightmaps: %w", err)
	}

	dataSize, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return nil, fmt.Errorf("chunk data size: %w", err)
	}
	blockData, err := ringbuf.ReadBytes(rb, int(dataSize))
	if err != nil {
		return nil, fmt.Errorf("chunk block data: %w", err)
	}
	sub := ringbuf.FromBytes(blockData)

	col := NewChunkSection(chunkX, chunkZ, minChunkY, sectionsPerColumn)
	for i := 0; i < sectionsPerColumn; i++ {
		chunk, blockCount, err := readBlockSection(sub)
		if err != nil {
			return nil, fmt.Errorf("chunk section %d: %w", i, err)
		}
		if blockCount > 0 {
			col.Chunks[i] = chunk
			if !chunk.IsEmpty() {
				col.Info.NonEmptyMask |= 1 << uint(i)
			}
		}
		if err := skipBiomeSection(sub); err != nil {
			return nil, fmt.Errorf("chunk biome section %d: %w", i, err)
		}
	}

	numBlockEntities, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return nil, fmt.Errorf("block entity count: %w", err)
	}
	for i := int32(0); i < numBlockEntities; i++ {
		if _, err := ringbuf.ReadUint8(rb); err != nil { // packed_xz
			return nil, fmt.Errorf("block entity %d packed_xz: %w", i, err)
		}
		if _, err := ringbuf.ReadInt16(rb); err != nil { // y
			return nil, fmt.Errorf("block entity %d y: %w", i, err)
		}
		if _, err := ringbuf.ReadVarInt(rb); err != nil { // type
			return nil, fmt.Errorf("block entity %d type: %w", i, err)
		}
		if _, err := nbt.Decode(rb); err != nil {
			return nil, fmt.Errorf("block entity %d nbt: %w", i, err)
		}
	}

	skyMask, err := ringbuf.ReadBitSet(rb)
	if err != nil {
		return nil, fmt.Errorf("sky light mask: %w", err)
	}
	blockMask, err := ringbuf.ReadBitSet(rb)
	if err != nil {
		return nil, fmt.Errorf("block light mask: %w", err)
	}
	if _, err := ringbuf.ReadBitSet(rb); err != nil { // empty sky light mask
		return nil, fmt.Errorf("empty sky light mask: %w", err)
	}
	if _, err := ringbuf.ReadBitSet(rb); err != nil { // empty block light mask
		return nil, fmt.Errorf("empty block light mask: %w", err)
	}

	if err := readLightArrays(rb, skyMask, sectionsPerColumn, func(slabIdx int, data []byte) {
		applyLight(col, slabIdx, sectionsPerColumn, data, true)
	}); err != nil {
		return nil, fmt.Errorf("sky light arrays: %w", err)
	}
	if err := readLightArrays(rb, blockMask, sectionsPerColumn, func(slabIdx int, data []byte) {
		applyLight(col, slabIdx, sectionsPerColumn, data, false)
	}); err != nil {
		return nil, fmt.Errorf("block light arrays: %w", err)
	}

	col.Info.Loaded = true
	return col, nil
}

// readLightArrays consumes a VarInt array count followed by that many
// VarInt-length-prefixed 2048-byte nibble arrays, invoking apply for each
// bit set in mask, in ascending bit order. mask covers sectionsPerColumn+2
// slabs (one vertical skylight-padding slab below and above the column),
// so slab index 0 and sectionsPerColumn+1 are padding and ignored.
func readLightArrays(rb *ringbuf.RingBuffer, mask []uint64, sectionsPerColumn int, apply func(slabIdx int, data []byte)) error {
	count, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return err
	}
	bitIdx := 0
	for i := int32(0); i < count; i++ {
		length, err := ringbuf.ReadVarInt(rb)
		if err != nil {
			return err
		}
		data, err := ringbuf.ReadBytes(rb, int(length))
		if err != nil {
			return err
		}
		for !ringbuf.BitSetTest(mask, bitIdx) {
			bitIdx++
			if bitIdx > sectionsPerColumn+1 {
				return fmt.Errorf("light array count exceeds mask: %w", errs.MalformedPacket)
			}
		}
		if length == lightArrayLen {
			apply(bitIdx, data)
		}
		bitIdx++
	}
	return nil
}

func applyLight(col *ChunkSection, slabIdx, sectionsPerColumn int, data []byte, sky bool) {
	// slab 0 is the padding section below the column, slab
	// sectionsPerColumn+1 the padding above; only interior slabs map to a
	// real Chunk.
	if slabIdx < 1 || slabIdx > sectionsPerColumn {
		return
	}
	i := slabIdx - 1
	c := col.Chunks[i]
	if c == nil {
		c = NewChunk()
		col.Chunks[i] = c
	}
	if sky {
		copy(c.SkyLight[:], data)
	} else {
		copy(c.BlockLight[:], data)
	}
}

// readBlockSection decodes one section's block_count/bpb/palette/data
// block into a Chunk.
func readBlockSection(rb *ringbuf.RingBuffer) (*Chunk, uint16, error) {
	countU16, err := ringbuf.ReadUint16(rb)
	if err != nil {
		return nil, 0, err
	}
	ids, err := readPalettedIDs(rb, blockCellCount, blockMinIndirectBits, blockDirectBits)
	if err != nil {
		return nil, 0, err
	}
	chunk := NewChunk()
	for i, id := range ids {
		x := i % ChunkSize
		z := (i / ChunkSize) % ChunkSize
		y := i / (ChunkSize * ChunkSize)
		chunk.setBlockAt(x, y, z, id)
	}
	return chunk, countU16, nil
}

// skipBiomeSection decodes and discards the biome palette section that
// follows each block section. Biomes are paletted over a 4x4x4 grid (64
// entries); the exact indirect/direct thresholds don't matter for a
// discarded result beyond correctly walking past the bytes.
func skipBiomeSection(rb *ringbuf.RingBuffer) error {
	const biomeCellCount = 4 * 4 * 4
	_, err := readPalettedIDs(rb, biomeCellCount, biomeMinIndirectBits, biomeDirectBits)
	return err
}

// readPalettedIDs implements the bpb/palette/data_len/data wire format
// common to both the block and biome sections.
func readPalettedIDs(rb *ringbuf.RingBuffer, cellCount int, minIndirectBits, directBits int) ([]uint32, error) {
	bpbByte, err := ringbuf.ReadUint8(rb)
	if err != nil {
		return nil, err
	}
	bpb := int(bpbByte)

	var palette []uint32
	direct := false
	switch {
	case bpb == 0:
		v, err := ringbuf.ReadVarInt(rb)
		if err != nil {
			return nil, err
		}
		palette = []uint32{uint32(v)}
		bpb = minIndirectBits // single-valued, but bit width carries through as the clamp
	case bpb < directBits:
		if bpb < minIndirectBits {
			bpb = minIndirectBits
		}
		n, err := ringbuf.ReadVarInt(rb)
		if err != nil {
			return nil, err
		}
		palette = make([]uint32, n)
		for i := range palette {
			v, err := ringbuf.ReadVarInt(rb)
			if err != nil {
				return nil, err
			}
			palette[i] = uint32(v)
		}
	default:
		direct = true
	}

	dataLen, err := ringbuf.ReadVarInt(rb)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, dataLen)
	for i := range words {
		w, err := ringbuf.ReadUint64(rb)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}

	ids := make([]uint32, cellCount)
	if bpb == 0 {
		// single-valued section with no data words (data_len==0 is
		// legal): every cell is palette[0].
		for i := range ids {
			ids[i] = palette[0]
		}
		return ids, nil
	}

	perWord := 64 / bpb
	mask := uint64(1)<<uint(bpb) - 1
	cell := 0
	for _, w := range words {
		for s := 0; s < perWord && cell < cellCount; s++ {
			idx := uint32(w>>uint(s*bpb)) & uint32(mask)
			if direct {
				ids[cell] = idx
			} else if int(idx) < len(palette) {
				ids[cell] = palette[idx]
			}
			cell++
		}
	}
	for ; cell < cellCount; cell++ {
		if len(palette) > 0 {
			ids[cell] = palette[0]
		}
	}
	return ids, nil
}
