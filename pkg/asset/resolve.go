package asset

import (
	"strings"

	"github.com/go-mclib/polymer/pkg/block"
)

// Leaf tint indices: spruce and birch leaves get their own biome-color
// column instead of the generic leaf tint.
const (
	tintLeavesGeneric = 1
	tintLeavesSpruce  = 2
	tintLeavesBirch   = 3
)

// kHorizontalOffsetNames lists the model stem-name substrings that
// trigger per-block random horizontal jitter for flora rendering.
var kHorizontalOffsetNames = []string{
	"mangrove_propagule", "grass", "fern", "dandelion", "poppy", "blue_orchid",
	"allium", "azure_bluet", "_tulip", "oxeye_daisy", "cornflower",
	"lily_of_the_valley", "bamboo_sapling", "bamboo1_age", "bamboo2_age",
	"bamboo3_age", "bamboo4_age", "wither_rose", "crimson_roots",
	"warped_roots", "nether_sprouts", "tall_grass_", "large_fern_",
	"sunflower_", "lilac_", "rose_bush_", "peony_",
}

func matchesAny(name string, substrs []string) bool {
	for _, s := range substrs {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// classifyFace implements AssignFaceRenderSettings: render-layer and
// random-flip assignment by texture filename substring.
func classifyFace(textureStem string) (layer block.RenderLayer, randomFlip bool) {
	switch {
	case strings.Contains(textureStem, "leaves"):
		return block.LayerLeaves, false
	case textureStem == "water_still":
		return block.LayerAlpha, false
	case textureStem == "nether_portal":
		return block.LayerAlpha, false
	case strings.Contains(textureStem, "stained_glass"):
		return block.LayerAlpha, false
	case textureStem == "grass":
		return block.LayerFlora, false
	case textureStem == "sugar_cane":
		return block.LayerFlora, false
	case strings.Contains(textureStem, "grass_bottom"):
		return block.LayerFlora, false
	case strings.Contains(textureStem, "grass_top"):
		return block.LayerFlora, false
	case textureStem == "fern":
		return block.LayerFlora, false
	case textureStem == "grass_block_top":
		return block.LayerStandard, true
	case textureStem == "stone":
		return block.LayerStandard, true
	case textureStem == "sand":
		return block.LayerStandard, true
	default:
		return block.LayerStandard, false
	}
}

// resolveTextureRef walks "#variable" indirection in a model's texture map
// until it reaches a concrete reference, bounded against
// cyclic texture maps.
func resolveTextureRef(textures map[string]string, ref string) (string, bool) {
	for i := 0; i < 16; i++ {
		if !strings.HasPrefix(ref, "#") {
			return ref, true
		}
		next, ok := textures[ref[1:]]
		if !ok {
			return "", false
		}
		ref = next
	}
	return "", false
}

// finalizeModel resolves every face's texture reference to a texture id
// and classifies its render layer, producing the per-model element list
// later cloned and rotated for each contributing blockstate application.
// Missing textures/models log a warning and leave a texture_id=0 stub
// rather than aborting the load.
func (l *Loader) finalizeModel(pm *parsedModel) []block.BlockElement {
	out := make([]block.BlockElement, len(pm.elements))
	for i, re := range pm.elements {
		el := block.BlockElement{
			From:      [3]float32{float32(re.from[0] / 16), float32(re.from[1] / 16), float32(re.from[2] / 16)},
			To:        [3]float32{float32(re.to[0] / 16), float32(re.to[1] / 16), float32(re.to[2] / 16)},
			Shade:     re.shade,
			Occluding: re.from == [3]float64{0, 0, 0} && re.to == [3]float64{16, 16, 16},
		}
		if re.rotation != nil {
			axis := block.AxisX
			switch re.rotation.Axis {
			case "y":
				axis = block.AxisY
			case "z":
				axis = block.AxisZ
			}
			el.Rotation = &block.ElementRotation{
				Axis:    axis,
				Origin:  [3]float32{float32(re.rotation.Origin[0] / 16), float32(re.rotation.Origin[1] / 16), float32(re.rotation.Origin[2] / 16)},
				Angle:   float32(re.rotation.Angle),
				Rescale: re.rotation.Rescale,
			}
		}

		for d := block.Direction(0); d < block.DirCount; d++ {
			rf := re.faces[d]
			if !rf.present {
				continue
			}
			face := block.RenderableFace{
				Present:     true,
				Rotation:    rf.rotation,
				Cullface:    rf.cullface,
				HasCullface: rf.hasCullface,
				TintIndex:   rf.tintIndex,
			}
			if rf.hasUV {
				face.UV = [4]float32{float32(rf.uv[0] / 16), float32(rf.uv[1] / 16), float32(rf.uv[2] / 16), float32(rf.uv[3] / 16)}
			} else {
				face.UV = defaultFaceUV(el, d)
			}

			ref, ok := resolveTextureRef(pm.textures, rf.textureRef)
			if !ok || ref == "" {
				l.warnf("model %s: unresolved texture ref %q on face %s", pm.name, rf.textureRef, d)
				el.Faces[d] = face
				continue
			}
			stem := stripModelPrefix(stripNamespace(ref))
			idx, ok := l.textureByName[stem]
			if !ok {
				l.warnf("model %s: missing texture %q", pm.name, stem)
				el.Faces[d] = face
				continue
			}
			t := l.textures[idx]
			face.TextureID = l.textureBaseID[idx]
			face.FrameCount = uint32(len(t.layers))
			face.Transparent = t.transparent
			face.Layer, face.RandomFlip = classifyFace(stem)

			// Leaf tint-index special case.
			if face.Layer == block.LayerLeaves {
				switch {
				case strings.Contains(pm.name, "spruce_leaves"):
					face.TintIndex = tintLeavesSpruce
				case strings.Contains(pm.name, "birch_leaves"):
					face.TintIndex = tintLeavesBirch
				default:
					face.TintIndex = tintLeavesGeneric
				}
			}

			// The prismarine animation strips render as a single frame;
			// .mcmeta animation metadata is not parsed.
			if strings.Contains(stem, "prismarine") {
				face.FrameCount = 1
			}

			el.Faces[d] = face
		}
		out[i] = el
	}
	return out
}

// defaultFaceUV derives a face's UV rectangle from the element's own extent
// projected onto the face plane.
func defaultFaceUV(el block.BlockElement, d block.Direction) [4]float32 {
	from, to := el.From, el.To
	switch d {
	case block.DirDown, block.DirUp:
		return [4]float32{from[0], from[2], to[0], to[2]}
	case block.DirNorth, block.DirSouth:
		return [4]float32{from[0], from[1], to[0], to[1]}
	case block.DirWest, block.DirEast:
		return [4]float32{from[2], from[1], to[2], to[1]}
	default:
		return [4]float32{0, 0, 1, 1}
	}
}

// cloneElementsWithRotation instantiates a model's finalized elements for
// one blockstate application, stamping the variant rotation onto each copy.
func cloneElementsWithRotation(elems []block.BlockElement, x, y int32, uvlock bool) []block.BlockElement {
	out := make([]block.BlockElement, len(elems))
	copy(out, elems)
	for i := range out {
		out[i].VariantRotation = [3]int32{normalizeAngle(x), normalizeAngle(y), 0}
		out[i].VariantUVLock = uvlock
	}
	return out
}

func normalizeAngle(deg int32) int32 {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// computeAggregates fills BlockModel's post-resolve flags from the
// finished element list and the contributing model stem names (used for
// the filename-substring flags, which are defined per model file rather
// than per block).
func computeAggregates(model *block.BlockModel, contributingModels []string) {
	for _, el := range model.Elements {
		if el.Occluding {
			model.HasOccluding = true
		}
		if el.Rotation != nil {
			model.HasRotation = true
		}
		if el.VariantRotation != [3]int32{0, 0, 0} {
			model.HasVariantRotation = true
		}
		if el.Shade {
			model.HasShaded = true
		}
		for _, f := range el.Faces {
			if f.Present && f.Transparent {
				model.HasTransparency = true
			}
		}
	}
	for _, name := range contributingModels {
		if name == "glass" || strings.HasSuffix(name, "stained_glass") {
			model.HasGlass = true
		}
		if strings.Contains(name, "leaves") {
			model.HasLeaves = true
		}
		if matchesAny(name, kHorizontalOffsetNames) {
			model.RandomHorizontalOffset = true
		}
		if strings.Contains(name, "grass") || strings.Contains(name, "fern") {
			model.RandomVerticalOffset = true
		}
	}
	// AmbientOcclusion is not derived here: it is the model-level
	// "ambientocclusion" JSON flag, set by the blockstate resolution from
	// the contributing models' inherited values.
}
