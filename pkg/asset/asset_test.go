package asset

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-mclib/polymer/pkg/block"
)

func TestResolveTextureRef(t *testing.T) {
	textures := map[string]string{
		"all":      "#particle",
		"particle": "block/stone",
	}
	got, ok := resolveTextureRef(textures, "#all")
	if !ok || got != "block/stone" {
		t.Errorf("resolveTextureRef = (%q, %v), want (\"block/stone\", true)", got, ok)
	}

	_, ok = resolveTextureRef(map[string]string{}, "#missing")
	if ok {
		t.Error("expected resolution failure for unresolved reference")
	}
}

func TestClassifyFace(t *testing.T) {
	tests := []struct {
		stem      string
		wantLayer block.RenderLayer
		wantFlip  bool
	}{
		{"oak_leaves", block.LayerLeaves, false},
		{"water_still", block.LayerAlpha, false},
		{"white_stained_glass", block.LayerAlpha, false},
		{"grass", block.LayerFlora, false},
		{"grass_block_top", block.LayerStandard, true},
		{"stone", block.LayerStandard, true},
		{"sand", block.LayerStandard, true},
		{"dirt", block.LayerStandard, false},
	}
	for _, tt := range tests {
		layer, flip := classifyFace(tt.stem)
		if layer != tt.wantLayer || flip != tt.wantFlip {
			t.Errorf("classifyFace(%q) = (%v,%v), want (%v,%v)", tt.stem, layer, flip, tt.wantLayer, tt.wantFlip)
		}
	}
}

func TestEvaluateWhen(t *testing.T) {
	props := "facing=north,waterlogged=true"

	if !evaluateWhen(map[string]interface{}{"facing": "north"}, props) {
		t.Error("flat AND-equivalent match should succeed")
	}
	if evaluateWhen(map[string]interface{}{"facing": "south"}, props) {
		t.Error("flat mismatch should fail")
	}
	if !evaluateWhen(map[string]interface{}{"facing": "east|north"}, props) {
		t.Error("alternation should match one of the values")
	}

	or := map[string]interface{}{"OR": []interface{}{
		map[string]interface{}{"facing": "south"},
		map[string]interface{}{"facing": "north"},
	}}
	if !evaluateWhen(or, props) {
		t.Error("OR clause should match when any branch matches")
	}

	and := map[string]interface{}{"AND": []interface{}{
		map[string]interface{}{"facing": "north"},
		map[string]interface{}{"waterlogged": "true"},
	}}
	if !evaluateWhen(and, props) {
		t.Error("AND clause should match when all branches match")
	}
	and[`AND`] = []interface{}{
		map[string]interface{}{"facing": "north"},
		map[string]interface{}{"waterlogged": "false"},
	}
	if evaluateWhen(and, props) {
		t.Error("AND clause should fail when one branch fails")
	}
}

func TestSerializeProperties(t *testing.T) {
	got := serializeProperties(map[string]string{"facing": "north", "waterlogged": "true", "half": "top"})
	want := "facing=north,half=top"
	if got != want {
		t.Errorf("serializeProperties = %q, want %q", got, want)
	}
}

// writePNG16 encodes a flat-colored 16x16 opaque RGBA PNG.
func writePNG16(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// buildFixtureJar assembles a minimal jar with one cube_all "stone" block:
// a model, a no-variants blockstate, and a 16x16 texture.
func buildFixtureJar(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "client.jar")

	f, err := os.Create(jarPath)
	if err != nil {
		t.Fatalf("create jar: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)

	writeEntry := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}

	writeEntry("assets/minecraft/models/block/cube_all.json", []byte(`{
		"elements": [{
			"from": [0,0,0], "to": [16,16,16],
			"faces": {
				"down":  {"texture": "#all", "cullface": "down"},
				"up":    {"texture": "#all", "cullface": "up"},
				"north": {"texture": "#all", "cullface": "north"},
				"south": {"texture": "#all", "cullface": "south"},
				"west":  {"texture": "#all", "cullface": "west"},
				"east":  {"texture": "#all", "cullface": "east"}
			}
		}]
	}`))
	writeEntry("assets/minecraft/models/block/stone.json", []byte(`{
		"parent": "block/cube_all",
		"textures": {"all": "block/stone"}
	}`))
	writeEntry("assets/minecraft/blockstates/stone.json", []byte(`{
		"variants": {"": {"model": "block/stone"}}
	}`))
	writeEntry("assets/minecraft/textures/block/stone.png", writePNG16(t, color.RGBA{120, 120, 120, 255}))

	// leaves disables model-level ambient occlusion; oak_leaves inherits
	// the flag through the parent chain without restating it.
	writeEntry("assets/minecraft/models/block/leaves.json", []byte(`{
		"parent": "block/cube_all",
		"ambientocclusion": false
	}`))
	writeEntry("assets/minecraft/models/block/oak_leaves.json", []byte(`{
		"parent": "block/leaves",
		"textures": {"all": "block/oak_leaves"}
	}`))
	writeEntry("assets/minecraft/blockstates/oak_leaves.json", []byte(`{
		"variants": {"": {"model": "block/oak_leaves"}}
	}`))
	writeEntry("assets/minecraft/textures/block/oak_leaves.png", writePNG16(t, color.RGBA{40, 110, 40, 255}))

	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	blocksPath := filepath.Join(dir, "blocks.json")
	blocksJSON := []byte(`{
		"minecraft:stone": {"states": [{"id": 1, "default": true}]},
		"minecraft:oak_leaves": {"states": [{"id": 2, "default": true}]}
	}`)
	if err := os.WriteFile(blocksPath, blocksJSON, 0644); err != nil {
		t.Fatalf("write blocks.json: %v", err)
	}

	return jarPath
}

func TestLoadEndToEnd(t *testing.T) {
	jarPath := buildFixtureJar(t)
	blocksPath := filepath.Join(filepath.Dir(jarPath), "blocks.json")

	loader := NewLoader(nil)
	reg, textures, err := loader.Load(jarPath, blocksPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Textures are id-assigned in sorted stem order: oak_leaves then stone.
	if len(textures.Layers) != 2 {
		t.Fatalf("len(textures.Layers) = %d, want 2", len(textures.Layers))
	}

	st, err := reg.State(1)
	if err != nil {
		t.Fatalf("State(1): %v", err)
	}
	if st.Model == nil || len(st.Model.Elements) != 1 {
		t.Fatalf("state 1 model = %+v, want one resolved element", st.Model)
	}
	el := st.Model.Elements[0]
	if !el.Occluding {
		t.Error("full cube element should occlude")
	}
	for d := block.Direction(0); d < block.DirCount; d++ {
		f := el.Faces[d]
		if !f.Present {
			t.Errorf("face %v missing", d)
			continue
		}
		if f.Layer != block.LayerStandard {
			t.Errorf("face %v layer = %v, want Standard", d, f.Layer)
		}
		if f.TextureID != 1 {
			t.Errorf("face %v texture id = %d, want 1", d, f.TextureID)
		}
	}
	if !st.Model.HasOccluding {
		t.Error("model.HasOccluding should be true")
	}
	if !st.Model.AmbientOcclusion {
		t.Error("stone model should keep ambient occlusion (default true)")
	}

	leaves, err := reg.State(2)
	if err != nil {
		t.Fatalf("State(2): %v", err)
	}
	if leaves.Model == nil || len(leaves.Model.Elements) != 1 {
		t.Fatalf("state 2 model = %+v, want one resolved element", leaves.Model)
	}
	if leaves.Model.AmbientOcclusion {
		t.Error("oak_leaves should inherit ambientocclusion=false from its parent")
	}
	if !leaves.Model.HasLeaves {
		t.Error("oak_leaves model should set HasLeaves")
	}
}
