package asset

import (
	"encoding/json"
	"fmt"

	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/errs"
)

// resolvedFace is a model element's face before texture-id resolution
// (phase 5) - still holding a raw texture reference that may be a "#var"
// indirection.
type resolvedFace struct {
	present     bool
	uv          [4]float64
	hasUV       bool
	textureRef  string
	cullface    block.Direction
	hasCullface bool
	rotation    int32
	tintIndex   int32
}

// resolvedElement is a model element in 0..16 units (converted to [0,1]^3
// only at final build time, matching the jar's own coordinate convention).
type resolvedElement struct {
	from, to [3]float64
	rotation *rotationJSON
	shade    bool
	faces    [block.DirCount]resolvedFace
}

// parsedModel is phase 1/2's intermediate representation: one per
// assets/minecraft/models/block/*.json file, interned by stem name.
type parsedModel struct {
	name     string
	raw      modelJSON
	elements []resolvedElement
	textures map[string]string

	// ambientOcclusion is the model-level "ambientocclusion" JSON flag,
	// default true, inherited through the parent chain when unset.
	ambientOcclusion bool

	parsed   bool
	visiting bool // cycle guard for parent resolution
}

var faceNames = [block.DirCount]string{"down", "up", "north", "south", "west", "east"}

func directionFromName(s string) (block.Direction, bool) {
	for i, n := range faceNames {
		if n == s {
			return block.Direction(i), true
		}
	}
	return 0, false
}

func convertElement(e elementJSON) resolvedElement {
	out := resolvedElement{}
	for i := 0; i < 3; i++ {
		out.from[i] = e.From[i]
		out.to[i] = e.To[i]
	}
	out.rotation = e.Rotation
	out.shade = e.Shade == nil || *e.Shade // default true per vanilla schema
	for name, f := range e.Faces {
		dir, ok := directionFromName(name)
		if !ok {
			continue
		}
		rf := resolvedFace{present: true, textureRef: f.Texture, rotation: f.Rotation, tintIndex: block.NoTint}
		if f.TintIndex != nil {
			rf.tintIndex = *f.TintIndex
		}
		if f.UV != nil {
			rf.uv = *f.UV
			rf.hasUV = true
		}
		if cf, ok := directionFromName(f.Cullface); ok {
			rf.cullface = cf
			rf.hasCullface = true
		}
		out.faces[dir] = rf
	}
	return out
}

// stripNamespace removes a leading "minecraft:" (or any "namespace:")
// prefix.
func stripNamespace(name string) string {
	for i, r := range name {
		if r == ':' {
			return name[i+1:]
		}
	}
	return name
}

// stripModelPrefix removes a leading "block/" so a parent/texture reference
// lines up with the stem-name keys used for interning.
func stripModelPrefix(name string) string {
	const prefix = "block/"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}

const maxParentDepth = 64

// resolveModel merges a model's parent chain: inherits elements when the
// child declares none, merges textures with the child's own overriding.
// Cycles are detected via the visiting flag rather than a bare depth
// counter, though both are enforced.
func resolveModel(models map[string]*parsedModel, m *parsedModel, depth int) error {
	if m.parsed {
		return nil
	}
	if m.visiting {
		return fmt.Errorf("parent cycle at model %q: %w", m.name, errs.MalformedModel)
	}
	if depth > maxParentDepth {
		return fmt.Errorf("parent chain too deep at model %q: %w", m.name, errs.TooDeep)
	}
	m.visiting = true
	defer func() { m.visiting = false }()

	textures := make(map[string]string)
	var parentElements []resolvedElement
	ao := true

	if m.raw.Parent != "" {
		parentName := stripModelPrefix(stripNamespace(m.raw.Parent))
		if parent, ok := models[parentName]; ok {
			if err := resolveModel(models, parent, depth+1); err != nil {
				return err
			}
			for k, v := range parent.textures {
				textures[k] = v
			}
			parentElements = parent.elements
			ao = parent.ambientOcclusion
		}
		// A missing parent (e.g. a built-in "block/block" or "builtin/...")
		// is not fatal: the model still resolves with no inherited elements.
	}

	for k, v := range m.raw.Textures {
		textures[k] = v
	}
	m.textures = textures

	if m.raw.AmbientOcclusion != nil {
		ao = *m.raw.AmbientOcclusion
	}
	m.ambientOcclusion = ao

	if len(m.raw.Elements) > 0 {
		elems := make([]resolvedElement, len(m.raw.Elements))
		for i, e := range m.raw.Elements {
			elems[i] = convertElement(e)
		}
		m.elements = elems
	} else {
		m.elements = parentElements
	}

	m.parsed = true
	return nil
}

func parseModelJSON(data []byte) (modelJSON, error) {
	var m modelJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return modelJSON{}, fmt.Errorf("parse model json: %w", errs.MalformedModel)
	}
	return m, nil
}
