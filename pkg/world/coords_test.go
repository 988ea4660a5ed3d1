package world

import "testing"

func TestBlockPosRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z int32
	}{
		{"origin", 0, 0, 0},
		{"positive", 100, 64, -200},
		{"negative", -33554432, -2048, -1},
		{"max", 33554431, 2047, 33554431},
		{"mixed", -1, 255, 12345678},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackBlockPos(tt.x, tt.y, tt.z)
			x, y, z := UnpackBlockPos(packed)
			if x != tt.x || y != tt.y || z != tt.z {
				t.Errorf("UnpackBlockPos(PackBlockPos(%d,%d,%d)) = (%d,%d,%d)", tt.x, tt.y, tt.z, x, y, z)
			}
		})
	}
}

func TestUnpackBlockPosSpecSeed(t *testing.T) {
	// ((x & 0x3FFFFFF) << 38) | ((z & 0x3FFFFFF) << 12) | (y & 0xFFF) with
	// every field at its positive maximum packs to 0x7FFFFFFFFFFFFFFF.
	x, y, z := UnpackBlockPos(0x7FFFFFFFFFFFFFFF)
	if x != 33554431 || y != 2047 || z != 33554431 {
		t.Errorf("UnpackBlockPos(0x7FFFFFFFFFFFFFFF) = (%d,%d,%d), want (33554431,2047,33554431)", x, y, z)
	}
}

func TestSectionPosRoundTrip(t *testing.T) {
	coords := [][3]int32{
		{0, 0, 0},
		{1, -4, -1},
		{2097151, 524287, -2097152},
		{-100, 19, 100},
	}
	for _, c := range coords {
		packed := PackSectionPos(c[0], c[1], c[2])
		cx, cy, cz := DecodeSectionPosition(packed)
		if cx != c[0] || cy != c[1] || cz != c[2] {
			t.Errorf("DecodeSectionPosition(PackSectionPos(%v)) = (%d,%d,%d)", c, cx, cy, cz)
		}
	}
}

func TestBlockEntryRoundTrip(t *testing.T) {
	entry := EncodeBlockEntry(9470, 3, 15, 7)
	id, x, y, z := DecodeBlockEntry(entry)
	if id != 9470 || x != 3 || y != 15 || z != 7 {
		t.Errorf("DecodeBlockEntry = (%d, %d, %d, %d), want (9470, 3, 15, 7)", id, x, y, z)
	}
}

func TestChunkPosNegative(t *testing.T) {
	tests := []struct {
		x, z   int
		cx, cz int32
	}{
		{0, 0, 0, 0},
		{15, 15, 0, 0},
		{16, -1, 1, -1},
		{-16, -17, -1, -2},
	}
	for _, tt := range tests {
		cx, cz := ChunkPos(tt.x, tt.z)
		if cx != tt.cx || cz != tt.cz {
			t.Errorf("ChunkPos(%d, %d) = (%d, %d), want (%d, %d)", tt.x, tt.z, cx, cz, tt.cx, tt.cz)
		}
	}
}
