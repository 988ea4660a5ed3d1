package engine

import (
	"github.com/go-mclib/polymer/pkg/asset"
	"github.com/go-mclib/polymer/pkg/mesher"
)

// RenderMesh is an opaque handle to one GPU-resident vertex/index buffer
// pair, owned by the renderer.
type RenderMesh interface{}

// TextureConfig is the per-layer upload config. BrightenMipping disables a
// mip-generation hack; it is turned off for leaves.
type TextureConfig struct {
	BrightenMipping bool
}

// Renderer is the narrow interface the core drives. The actual
// Vulkan implementation lives outside this module; tests and headless runs
// use a no-op.
type Renderer interface {
	CreateTextureArray(width, height, layers int)
	PushArrayTexture(pixels []byte, layerIndex int, cfg TextureConfig)
	CommitTexturePush()
	AllocateMesh(vertices []mesher.Vertex, indices []uint16) RenderMesh
	FreeMesh(m RenderMesh)
}

// UploadTextures pushes the loader-built texture array through the
// renderer interface, layer by layer, then commits. The block
// texture array is built once at load and never mutated.
func UploadTextures(r Renderer, ta *asset.TextureArray) {
	if r == nil || ta == nil {
		return
	}
	r.CreateTextureArray(ta.Width, ta.Height, len(ta.Layers))
	for i, layer := range ta.Layers {
		r.PushArrayTexture(layer, i, TextureConfig{BrightenMipping: ta.BrightenMip[i]})
	}
	r.CommitTexturePush()
}
