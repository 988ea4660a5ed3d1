// Package mesher turns one chunk section, given its loaded neighbors, into
// per-render-layer vertex/index buffers: occlusion test, element/variant
// rotation, UV computation via rotation-lookup tables, smooth lighting,
// ambient occlusion, xorshift texture randomization, and a separate
// double-sided fluid pass.
package mesher

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-mclib/polymer/pkg/asset"
	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/world"
)

// Vertex is one packed mesh vertex.
// PackedUV holds the UV coordinate in 1/16 units, truncated, as
// (u*16)<<5 | ((v*16) & 0x1F); PackedLight holds
// (anim_frame_count<<24 | tint_index<<16 | light16), where light16 is
// (averaged_light<<2 | ao) with the shaded-axis flag at bit 15.
type Vertex struct {
	Position    [3]float32
	PackedUV    uint16
	TextureID   uint32
	PackedLight uint32
}

// LayerMesh is one render layer's output.
type LayerMesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// VertexData is the mesher's result: one LayerMesh per block.RenderLayer.
type VertexData struct {
	Layers [block.LayerCount]LayerMesh
}

type pushContext struct {
	layers [block.LayerCount]*LayerMesh
}

func (c *pushContext) pushVertex(face *block.RenderableFace, pos mgl32.Vec3, uv [2]float32, light16 uint32, shadedAxis bool) uint16 {
	lm := c.layers[face.Layer]

	uvx := uint16(uv[0] * 16)
	uvy := uint16(uv[1]*16) & 0x1F
	packedUV := (uvx << 5) | uvy

	l := light16 & 0xFFFF
	if shadedAxis {
		l |= 1 << 15
	}
	anim := face.FrameCount & 0x7F
	tint := uint32(uint8(face.TintIndex))
	packedLight := (anim << 24) | (tint << 16) | l

	idx := len(lm.Vertices)
	if idx > 0xFFFF {
		// A single render layer's output is bounded by the uint16 index
		// space; a real chunk section never gets close, so this is a hard
		// invariant violation rather than a case to degrade.
		panic("mesher: vertex count overflowed uint16 index space")
	}
	lm.Vertices = append(lm.Vertices, Vertex{
		Position:    [3]float32{pos.X(), pos.Y(), pos.Z()},
		PackedUV:    packedUV,
		TextureID:   face.TextureID,
		PackedLight: packedLight,
	})
	return uint16(idx)
}

func (c *pushContext) pushQuad(layer block.RenderLayer, bl, br, tr, tl uint16) {
	lm := c.layers[layer]
	lm.Indices = append(lm.Indices, bl, br, tr, tr, tl, bl)
}

// pushDoubleQuad emits both winding orders of the quad, so the face renders
// without backface culling (fluids).
func (c *pushContext) pushDoubleQuad(layer block.RenderLayer, bl, br, tl, tr uint16) {
	c.pushQuad(layer, bl, br, tr, tl)
	lm := c.layers[layer]
	lm.Indices = append(lm.Indices, bl, tr, br, tr, bl, tl)
}

// Mesher meshes chunk sections against a shared block registry, with the
// fluid-specific texture ranges and name mapping resolved once at
// construction.
type Mesher struct {
	registry *block.Registry
	mapping  Mapping

	waterFace block.RenderableFace
	lavaFace  block.RenderableFace
}

// New builds a Mesher bound to reg. assets is the Loader reg was built
// from, queried here for the water_still/lava_still texture ranges, which
// aren't reachable through any blockstate.
func New(reg *block.Registry, assets *asset.Loader) *Mesher {
	m := &Mesher{registry: reg, mapping: NewMapping(reg)}

	if r, ok := assets.TextureRangeByStem("lava_still"); ok {
		m.lavaFace = block.RenderableFace{
			Present: true, UV: [4]float32{0, 0, 1, 1},
			TextureID: r.Base, FrameCount: r.Count,
			TintIndex: block.NoTint, Layer: block.LayerStandard,
		}
	}
	if r, ok := assets.TextureRangeByStem("water_still"); ok {
		m.waterFace = block.RenderableFace{
			Present: true, UV: [4]float32{0, 0, 1, 1},
			TextureID: r.Base, FrameCount: r.Count,
			TintIndex: 50, Layer: block.LayerAlpha,
		}
	}
	return m
}

var emptyModel = &block.BlockModel{}

func (m *Mesher) modelFor(id uint32) *block.BlockModel {
	st, err := m.registry.State(id)
	if err != nil || st.Model == nil {
		return emptyModel
	}
	return st.Model
}

// Mesh implements the mesher's contract: a pure function of
// (world cache, chunk coordinate) producing vertex/index data per render
// layer. Returns empty data if the section or any of its 8 horizontal
// neighbors is unloaded.
func (m *Mesher) Mesh(cache *world.Cache, chunkX, chunkY, chunkZ int32) VertexData {
	var out VertexData
	bc, ok := world.BuildBorderedChunk(cache, chunkX, chunkY, chunkZ)
	if !ok {
		return out
	}

	ctx := &pushContext{}
	for i := range ctx.layers {
		ctx.layers[i] = &out.Layers[i]
	}

	worldBase := mgl32.Vec3{float32(chunkX) * world.ChunkSize, float32(chunkY) * world.ChunkSize, float32(chunkZ) * world.ChunkSize}

	for y := 0; y < world.ChunkSize; y++ {
		for z := 0; z < world.ChunkSize; z++ {
			for x := 0; x < world.ChunkSize; x++ {
				bid := bc.Blocks[x+1][y+1][z+1]

				mat := m.mapping.describe(bid)
				if mat.fluid {
					face := m.lavaFace
					if mat.water {
						face = m.waterFace
					}
					if face.Present {
						m.meshFluid(ctx, bc, x, y, z, worldBase, face)
					}
				}

				// Always mesh the block's own model too, even when it's
				// also a fluid: plants like seagrass and kelp carry both.
				m.meshBlock(ctx, bc, bid, x, y, z, worldBase)
			}
		}
	}

	return out
}

type occlusionPass struct {
	dir   block.Direction
	other *block.BlockModel
}

func (m *Mesher) meshBlock(ctx *pushContext, bc *world.BorderedChunk, bid uint32, rx, ry, rz int, worldBase mgl32.Vec3) {
	model := m.modelFor(bid)
	if len(model.Elements) == 0 {
		return
	}

	neighbor := func(dx, dy, dz int) *block.BlockModel {
		return m.modelFor(bc.Blocks[rx+1+dx][ry+1+dy][rz+1+dz])
	}

	relative := mgl32.Vec3{float32(rx), float32(ry), float32(rz)}

	passes := [block.DirCount]occlusionPass{
		block.DirUp:    {block.DirUp, neighbor(0, 1, 0)},
		block.DirDown:  {block.DirDown, neighbor(0, -1, 0)},
		block.DirNorth: {block.DirNorth, neighbor(0, 0, -1)},
		block.DirSouth: {block.DirSouth, neighbor(0, 0, 1)},
		block.DirWest:  {block.DirWest, neighbor(-1, 0, 0)},
		block.DirEast:  {block.DirEast, neighbor(1, 0, 0)},
	}

	for _, p := range passes {
		if isOccluding(model, p.other, p.dir) {
			continue
		}
		tmpl := faceTemplates[p.dir]
		for i := range model.Elements {
			el := &model.Elements[i]
			fm := newFaceMesh(tmpl)
			fm.mesh(m, bc, ctx, model, el, worldBase, relative, p.dir)
		}
	}
}
