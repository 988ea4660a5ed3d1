package asset

import (
	"archive/zip"
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"io"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// texture is one loaded assets/minecraft/textures/block/*.png, decoded into
// count 16x16 RGBA8 layers (an HxW sheet where H is a multiple of 16 is an
// animation strip).
type texture struct {
	name        string // stem, no path/extension, e.g. "stone"
	layers      [][]byte
	mips        [][]byte // half-resolution bilinear-scaled layer
	transparent bool     // any pixel alpha < 255
}

// TextureArray is the block texture array the renderer interface consumes
//, assembled here rather
// than on the GPU.
type TextureArray struct {
	Width, Height int
	Layers        [][]byte // RGBA8, index by global texture id
	Mips          [][]byte // parallel half-res layer, empty slice where mip generation was skipped
	BrightenMip   []bool   // per layer, config.brighten_mipping (false for leaves)
}

// loadTextures is phase 3: enumerate
// assets/minecraft/textures/block/*.png, decode, and build the name ->
// TextureIDRange map (keyed both with and without the asset path prefix).
func (l *Loader) loadTextures(zr *zip.Reader) error {
	const dir = "assets/minecraft/textures/block/"

	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, dir) && strings.HasSuffix(f.Name, ".png") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names) // deterministic texture id assignment

	var textures []texture
	for _, name := range names {
		f, err := zr.Open(name)
		if err != nil {
			l.warnf("open texture %s: %v", name, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			l.warnf("read texture %s: %v", name, err)
			continue
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			l.warnf("decode texture %s: %v", name, err)
			continue
		}
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w%16 != 0 || h%16 != 0 || w == 0 {
			l.warnf("texture %s has non-16-aligned dimensions %dx%d, skipping", name, w, h)
			continue
		}

		stem := strings.TrimSuffix(strings.TrimPrefix(name, dir), ".png")
		t := texture{name: stem}

		layerCount := h / 16
		for i := 0; i < layerCount; i++ {
			layer := extractRGBALayer(img, b.Min.X, b.Min.Y+i*16, w)
			t.layers = append(t.layers, layer)
			if pixelsHaveTransparency(layer) {
				t.transparent = true
			}
			if !strings.Contains(stem, "leaves") {
				t.mips = append(t.mips, buildMip(layer, w))
			} else {
				t.mips = append(t.mips, nil)
			}
		}
		textures = append(textures, t)
	}

	l.textures = textures
	l.textureByName = make(map[string]int, len(textures))
	for i, t := range textures {
		l.textureByName[t.name] = i
		l.textureByName[dir+t.name] = i
	}
	return nil
}

// extractRGBALayer copies one 16-wide (w may exceed 16 for some vanilla
// sheets with padding; vanilla block textures are always exactly 16 wide)
// 16-tall row out of img into a flat RGBA8 byte slice.
func extractRGBALayer(img image.Image, x0, y0, w int) []byte {
	rgba := image.NewRGBA(image.Rect(0, 0, w, 16))
	draw.Draw(rgba, rgba.Bounds(), img, image.Pt(x0, y0), draw.Src)
	return rgba.Pix
}

func pixelsHaveTransparency(rgba []byte) bool {
	for i := 3; i < len(rgba); i += 4 {
		if rgba[i] < 255 {
			return true
		}
	}
	return false
}

// buildMip produces a half-resolution copy of a 16x16 (or
// 16xN-wide, always 16 tall) layer using x/image/draw's bilinear scaler.
func buildMip(layer []byte, w int) []byte {
	src := &image.RGBA{Pix: layer, Stride: w * 4, Rect: image.Rect(0, 0, w, 16)}
	dstW, dstH := w/2, 8
	if dstW == 0 {
		dstW = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst.Pix
}

// buildTextureArray flattens every texture's layers (in texture-id order)
// into the TextureArray the renderer would upload via
// push_array_texture/commit_texture_push.
func (l *Loader) buildTextureArray() *TextureArray {
	out := &TextureArray{Width: 16, Height: 16}
	for _, t := range l.textures {
		for i, layer := range t.layers {
			out.Layers = append(out.Layers, layer)
			out.Mips = append(out.Mips, t.mips[i])
			out.BrightenMip = append(out.BrightenMip, !strings.Contains(t.name, "leaves"))
		}
	}
	return out
}

func (l *Loader) warnf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf("asset: "+format, args...)
	}
}
