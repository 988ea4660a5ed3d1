package world

import "testing"

func TestCacheImplicitEviction(t *testing.T) {
	cache := NewCache(0, 16)

	first := NewChunkSection(0, 0, 0, 1)
	cache.PutChunk(first)
	if cache.GetChunk(0, 0) != first {
		t.Fatal("first column not retrievable")
	}

	// (32, 0) maps to the same modular slot as (0, 0).
	second := NewChunkSection(CacheSize, 0, 0, 1)
	cache.PutChunk(second)

	if cache.GetChunk(0, 0) != nil {
		t.Error("evicted column still retrievable")
	}
	if cache.GetChunk(CacheSize, 0) != second {
		t.Error("replacing column not retrievable")
	}
	if got := cache.GetLoadedChunkCount(); got != 1 {
		t.Errorf("GetLoadedChunkCount = %d, want 1", got)
	}
}

func TestCacheStaleUnloadIsNoop(t *testing.T) {
	cache := NewCache(0, 16)
	col := NewChunkSection(CacheSize, 0, 0, 1)
	cache.PutChunk(col)

	// Unload for the column that used to own this slot must not clear the
	// replacement.
	cache.UnloadChunk(0, 0)
	if cache.GetChunk(CacheSize, 0) != col {
		t.Error("stale UnloadChunk cleared the replacing column")
	}

	cache.UnloadChunk(CacheSize, 0)
	if cache.GetChunk(CacheSize, 0) != nil {
		t.Error("column still loaded after UnloadChunk")
	}
	if got := cache.GetLoadedChunkCount(); got != 0 {
		t.Errorf("GetLoadedChunkCount = %d, want 0", got)
	}
}

func TestCacheNegativeCoordinates(t *testing.T) {
	cache := NewCache(-64, 384)

	col := NewChunkSection(-1, -33, -4, 24)
	cache.PutChunk(col)
	if cache.GetChunk(-1, -33) != col {
		t.Fatal("negative-coordinate column not retrievable")
	}
	if !cache.IsChunkLoaded(-1, -33) {
		t.Error("IsChunkLoaded(-1, -33) = false")
	}
	// (-1, -1) shares a slot with (-1, -33); it holds a different column,
	// so lookups for it miss.
	if cache.GetChunk(-1, -1) != nil {
		t.Error("slot-sharing column returned for wrong coordinate")
	}
}

func TestCacheSetGetBlock(t *testing.T) {
	cache := NewCache(-64, 384)
	col := NewChunkSection(-1, 2, -4, 24)
	cache.PutChunk(col)

	// World (-5, 70, 40) falls in chunk (-1, 2), local (11, ?, 8).
	cache.SetBlock(-5, 70, 40, 77)
	if got := cache.GetBlock(-5, 70, 40); got != 77 {
		t.Errorf("GetBlock = %d, want 77", got)
	}
	if got := cache.GetBlock(-5, 71, 40); got != 0 {
		t.Errorf("adjacent GetBlock = %d, want 0", got)
	}
	// Unloaded chunk reads as air.
	if got := cache.GetBlock(500, 70, 500); got != 0 {
		t.Errorf("unloaded GetBlock = %d, want 0", got)
	}
}

func TestCacheReset(t *testing.T) {
	cache := NewCache(0, 16)
	cache.PutChunk(NewChunkSection(1, 2, 0, 1))
	cache.PutChunk(NewChunkSection(3, 4, 0, 1))
	cache.Reset()
	if got := cache.GetLoadedChunkCount(); got != 0 {
		t.Errorf("GetLoadedChunkCount after Reset = %d, want 0", got)
	}
	if cache.GetChunk(1, 2) != nil {
		t.Error("column survived Reset")
	}
}
