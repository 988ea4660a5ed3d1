package mesher

import (
	"reflect"
	"testing"

	"github.com/go-mclib/polymer/pkg/asset"
	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/world"
)

// solidModel builds a full-cube opaque model: six present faces, occluding,
// shaded, the shape stone resolves to.
func solidModel(randomFlip bool) *block.BlockModel {
	el := block.BlockElement{
		From:      [3]float32{0, 0, 0},
		To:        [3]float32{1, 1, 1},
		Occluding: true,
		Shade:     true,
	}
	for d := block.DirDown; d < block.DirCount; d++ {
		el.Faces[d] = block.RenderableFace{
			Present:    true,
			UV:         [4]float32{0, 0, 1, 1},
			Layer:      block.LayerStandard,
			TintIndex:  block.NoTint,
			RandomFlip: randomFlip,
		}
	}
	return &block.BlockModel{
		Elements:         []block.BlockElement{el},
		HasOccluding:     true,
		HasShaded:        true,
		AmbientOcclusion: true,
	}
}

func testRegistry(randomFlip bool) *block.Registry {
	reg := block.NewRegistry(2)
	info := &block.StateInfo{Name: "minecraft:stone"}
	reg.States[1].Info = info
	reg.States[1].Model = solidModel(randomFlip)
	reg.SetNameRange("minecraft:stone", 1, 1)
	return reg
}

// testCache builds a 3x3 grid of loaded single-chunk columns around the
// origin so the mesher's neighbor precondition holds.
func testCache(t *testing.T) *world.Cache {
	t.Helper()
	cache := world.NewCache(0, 16)
	for cx := int32(-1); cx <= 1; cx++ {
		for cz := int32(-1); cz <= 1; cz++ {
			cache.PutChunk(world.NewChunkSection(cx, cz, 0, 1))
		}
	}
	return cache
}

func quadCount(data VertexData) int {
	quads := 0
	for i := range data.Layers {
		quads += len(data.Layers[i].Indices) / 6
	}
	return quads
}

func vertexCount(data VertexData) int {
	verts := 0
	for i := range data.Layers {
		verts += len(data.Layers[i].Vertices)
	}
	return verts
}

func TestMeshSingleBlock(t *testing.T) {
	cache := testCache(t)
	cache.SetBlock(8, 8, 8, 1)

	m := New(testRegistry(false), asset.NewLoader(nil))
	data := m.Mesh(cache, 0, 0, 0)

	if got := quadCount(data); got != 6 {
		t.Errorf("quad count = %d, want 6 (one block alone in air)", got)
	}
	if got := vertexCount(data); got != 24 {
		t.Errorf("vertex count = %d, want 24", got)
	}
}

func TestMeshOcclusion3x3x3(t *testing.T) {
	cache := testCache(t)
	for x := 7; x <= 9; x++ {
		for y := 7; y <= 9; y++ {
			for z := 7; z <= 9; z++ {
				cache.SetBlock(x, y, z, 1)
			}
		}
	}

	m := New(testRegistry(false), asset.NewLoader(nil))
	data := m.Mesh(cache, 0, 0, 0)

	// Only the outer shell renders: 6 sides x 9 faces; every interior face
	// pair is culled.
	if got := quadCount(data); got != 54 {
		t.Errorf("quad count = %d, want 54", got)
	}
}

func TestMeshUnloadedNeighborsReturnsEmpty(t *testing.T) {
	cache := world.NewCache(0, 16)
	col := world.NewChunkSection(0, 0, 0, 1)
	cache.PutChunk(col)
	cache.SetBlock(8, 8, 8, 1)

	m := New(testRegistry(false), asset.NewLoader(nil))
	data := m.Mesh(cache, 0, 0, 0)
	if got := vertexCount(data); got != 0 {
		t.Errorf("vertex count = %d, want 0 when neighbors are unloaded", got)
	}
}

func TestMeshDeterministic(t *testing.T) {
	cache := testCache(t)
	cache.SetBlock(3, 5, 7, 1)
	cache.SetBlock(4, 5, 7, 1)
	cache.SetBlock(3, 6, 7, 1)

	m := New(testRegistry(false), asset.NewLoader(nil))
	a := m.Mesh(cache, 0, 0, 0)
	b := m.Mesh(cache, 0, 0, 0)
	if !reflect.DeepEqual(a, b) {
		t.Error("meshing the same snapshot twice differs")
	}
}

func TestMeshRandomFlipDeterministicByPosition(t *testing.T) {
	cache := testCache(t)
	cache.SetBlock(8, 8, 8, 1)

	m := New(testRegistry(true), asset.NewLoader(nil))
	a := m.Mesh(cache, 0, 0, 0)
	b := m.Mesh(cache, 0, 0, 0)
	if !reflect.DeepEqual(a, b) {
		t.Error("random_flip output not deterministic for a fixed world position")
	}
	if got := quadCount(a); got != 6 {
		t.Errorf("quad count = %d, want 6", got)
	}
}
