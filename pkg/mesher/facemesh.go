package mesher

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/world"
)

// faceTemplate is one cube face's hardcoded geometry seed: the outward
// normal and, for each of the four corners, the three neighbor offsets
// ambient occlusion samples.
type faceTemplate struct {
	direction                        mgl32.Vec3
	blLookups, brLookups, tlLookups, trLookups [3]mgl32.Vec3
}

var faceTemplates = [block.DirCount]faceTemplate{
	block.DirUp: {
		direction: mgl32.Vec3{0, 1, 0},
		blLookups: [3]mgl32.Vec3{{-1, 1, 0}, {0, 1, -1}, {-1, 1, -1}},
		brLookups: [3]mgl32.Vec3{{-1, 1, 0}, {0, 1, 1}, {-1, 1, 1}},
		tlLookups: [3]mgl32.Vec3{{1, 1, 0}, {0, 1, -1}, {1, 1, -1}},
		trLookups: [3]mgl32.Vec3{{1, 1, 0}, {0, 1, 1}, {1, 1, 1}},
	},
	block.DirDown: {
		direction: mgl32.Vec3{0, -1, 0},
		blLookups: [3]mgl32.Vec3{{0, -1, -1}, {1, -1, 0}, {1, -1, -1}},
		brLookups: [3]mgl32.Vec3{{0, -1, 1}, {1, -1, 0}, {1, -1, 1}},
		tlLookups: [3]mgl32.Vec3{{0, -1, -1}, {-1, -1, 0}, {-1, -1, -1}},
		trLookups: [3]mgl32.Vec3{{0, -1, 1}, {-1, -1, 0}, {-1, -1, 1}},
	},
	block.DirNorth: {
		direction: mgl32.Vec3{0, 0, -1},
		blLookups: [3]mgl32.Vec3{{1, 0, -1}, {0, -1, -1}, {1, -1, -1}},
		brLookups: [3]mgl32.Vec3{{-1, 0, -1}, {0, -1, -1}, {-1, -1, -1}},
		tlLookups: [3]mgl32.Vec3{{1, 0, -1}, {0, 1, -1}, {1, 1, -1}},
		trLookups: [3]mgl32.Vec3{{-1, 0, -1}, {0, 1, -1}, {-1, 1, -1}},
	},
	block.DirSouth: {
		direction: mgl32.Vec3{0, 0, 1},
		blLookups: [3]mgl32.Vec3{{-1, 0, 1}, {0, -1, 1}, {-1, -1, 1}},
		brLookups: [3]mgl32.Vec3{{1, 0, 1}, {0, -1, 1}, {1, -1, 1}},
		tlLookups: [3]mgl32.Vec3{{-1, 0, 1}, {0, 1, 1}, {-1, 1, 1}},
		trLookups: [3]mgl32.Vec3{{1, 0, 1}, {0, 1, 1}, {1, 1, 1}},
	},
	block.DirWest: {
		direction: mgl32.Vec3{-1, 0, 0},
		blLookups: [3]mgl32.Vec3{{-1, -1, 0}, {-1, 0, -1}, {-1, -1, -1}},
		brLookups: [3]mgl32.Vec3{{-1, -1, 0}, {-1, 0, 1}, {-1, -1, 1}},
		tlLookups: [3]mgl32.Vec3{{-1, 1, 0}, {-1, 0, -1}, {-1, 1, -1}},
		trLookups: [3]mgl32.Vec3{{-1, 1, 0}, {-1, 0, 1}, {-1, 1, 1}},
	},
	block.DirEast: {
		direction: mgl32.Vec3{1, 0, 0},
		blLookups: [3]mgl32.Vec3{{1, 0, 1}, {1, -1, 0}, {1, -1, 1}},
		brLookups: [3]mgl32.Vec3{{1, -1, 0}, {1, 0, -1}, {1, -1, -1}},
		tlLookups: [3]mgl32.Vec3{{1, 1, 0}, {1, 0, 1}, {1, 1, 1}},
		trLookups: [3]mgl32.Vec3{{1, 1, 0}, {1, 0, -1}, {1, 1, -1}},
	},
}

// faceMesh is one element's face instance, carrying the corner positions
// and AO lookup offsets as they're rotated by the element's own and the
// blockstate variant's rotation.
type faceMesh struct {
	blLookups, brLookups, tlLookups, trLookups [3]mgl32.Vec3
	direction                                  mgl32.Vec3
	blPos, brPos, tlPos, trPos                 mgl32.Vec3
}

func newFaceMesh(t faceTemplate) *faceMesh {
	return &faceMesh{
		blLookups: t.blLookups, brLookups: t.brLookups,
		tlLookups: t.tlLookups, trLookups: t.trLookups,
		direction: t.direction,
	}
}

// setPositions seeds the four corners from the element's box for dir.
func (fm *faceMesh) setPositions(from, to [3]float32, dir block.Direction) {
	f := mgl32.Vec3{from[0], from[1], from[2]}
	t := mgl32.Vec3{to[0], to[1], to[2]}
	switch dir {
	case block.DirDown:
		fm.blPos = mgl32.Vec3{t.X(), f.Y(), f.Z()}
		fm.brPos = mgl32.Vec3{t.X(), f.Y(), t.Z()}
		fm.tlPos = mgl32.Vec3{f.X(), f.Y(), f.Z()}
		fm.trPos = mgl32.Vec3{f.X(), f.Y(), t.Z()}
	case block.DirUp:
		fm.blPos = mgl32.Vec3{f.X(), t.Y(), f.Z()}
		fm.brPos = mgl32.Vec3{f.X(), t.Y(), t.Z()}
		fm.tlPos = mgl32.Vec3{t.X(), t.Y(), f.Z()}
		fm.trPos = mgl32.Vec3{t.X(), t.Y(), t.Z()}
	case block.DirNorth:
		fm.blPos = mgl32.Vec3{t.X(), f.Y(), f.Z()}
		fm.brPos = mgl32.Vec3{f.X(), f.Y(), f.Z()}
		fm.tlPos = mgl32.Vec3{t.X(), t.Y(), f.Z()}
		fm.trPos = mgl32.Vec3{f.X(), t.Y(), f.Z()}
	case block.DirSouth:
		fm.blPos = mgl32.Vec3{f.X(), f.Y(), t.Z()}
		fm.brPos = mgl32.Vec3{t.X(), f.Y(), t.Z()}
		fm.tlPos = mgl32.Vec3{f.X(), t.Y(), t.Z()}
		fm.trPos = mgl32.Vec3{t.X(), t.Y(), t.Z()}
	case block.DirWest:
		fm.blPos = mgl32.Vec3{f.X(), f.Y(), f.Z()}
		fm.brPos = mgl32.Vec3{f.X(), f.Y(), t.Z()}
		fm.tlPos = mgl32.Vec3{f.X(), t.Y(), f.Z()}
		fm.trPos = mgl32.Vec3{f.X(), t.Y(), t.Z()}
	case block.DirEast:
		fm.blPos = mgl32.Vec3{t.X(), f.Y(), t.Z()}
		fm.brPos = mgl32.Vec3{t.X(), f.Y(), f.Z()}
		fm.tlPos = mgl32.Vec3{t.X(), t.Y(), t.Z()}
		fm.trPos = mgl32.Vec3{t.X(), t.Y(), f.Z()}
	}
}

func (fm *faceMesh) applyRotation(angle float32, ax, origin mgl32.Vec3) {
	fm.blPos = rotate(fm.blPos.Sub(origin), ax, angle).Add(origin)
	fm.brPos = rotate(fm.brPos.Sub(origin), ax, angle).Add(origin)
	fm.tlPos = rotate(fm.tlPos.Sub(origin), ax, angle).Add(origin)
	fm.trPos = rotate(fm.trPos.Sub(origin), ax, angle).Add(origin)
	fm.direction = rotate(fm.direction, ax, angle)
	for i := 0; i < 3; i++ {
		fm.blLookups[i] = rotate(fm.blLookups[i], ax, angle)
		fm.brLookups[i] = rotate(fm.brLookups[i], ax, angle)
		fm.tlLookups[i] = rotate(fm.tlLookups[i], ax, angle)
		fm.trLookups[i] = rotate(fm.trLookups[i], ax, angle)
	}
}

// rotateFace folds in the blockstate's variant rotation (x, then y, then z,
// each about the cube centre) followed by the element's own rotation (if
// any), then translates into world space.
func (fm *faceMesh) rotateFace(model *block.BlockModel, el *block.BlockElement, worldBase mgl32.Vec3) {
	var eleAxis, eleOrigin mgl32.Vec3
	if el.Rotation != nil {
		eleAxis = axisVector(el.Rotation.Axis)
		eleOrigin = mgl32.Vec3{el.Rotation.Origin[0], el.Rotation.Origin[1], el.Rotation.Origin[2]}
	}

	if model.HasVariantRotation {
		center := mgl32.Vec3{0.5, 0.5, 0.5}
		if el.VariantRotation[0] != 0 {
			angle := radians(float32(el.VariantRotation[0]))
			ax := mgl32.Vec3{1, 0, 0}
			fm.applyRotation(angle, ax, center)
			eleAxis = rotate(eleAxis, ax, angle)
			eleOrigin = rotate(eleOrigin.Sub(center), ax, angle).Add(center)
		}
		if el.VariantRotation[1] != 0 {
			angle := -radians(float32(el.VariantRotation[1]))
			ax := mgl32.Vec3{0, 1, 0}
			fm.applyRotation(angle, ax, center)
			eleAxis = rotate(eleAxis, ax, angle)
			eleOrigin = rotate(eleOrigin.Sub(center), ax, angle).Add(center)
		}
		if el.VariantRotation[2] != 0 {
			angle := radians(float32(el.VariantRotation[2]))
			ax := mgl32.Vec3{0, 0, 1}
			fm.applyRotation(angle, ax, center)
			eleAxis = rotate(eleAxis, ax, angle)
			eleOrigin = rotate(eleOrigin.Sub(center), ax, angle).Add(center)
		}
	}

	if el.Rotation != nil && el.Rotation.Angle != 0 {
		fm.applyRotation(radians(el.Rotation.Angle), eleAxis, eleOrigin)
	}

	fm.blPos = fm.blPos.Add(worldBase)
	fm.brPos = fm.brPos.Add(worldBase)
	fm.tlPos = fm.tlPos.Add(worldBase)
	fm.trPos = fm.trPos.Add(worldBase)
}

func calcVertexLight(bc *world.BorderedChunk, indices [4][3]int, current [3]int) uint32 {
	var sky, blk uint32
	cs := bc.SkyLight[current[0]][current[1]][current[2]]
	cb := bc.BlockLight[current[0]][current[1]][current[2]]
	for _, idx := range indices {
		s := bc.SkyLight[idx[0]][idx[1]][idx[2]]
		b := bc.BlockLight[idx[0]][idx[1]][idx[2]]
		if s == 0 {
			s = cs
		}
		if b == 0 {
			b = cb
		}
		sky += uint32(s)
		blk += uint32(b)
	}
	return (blk << 6) | sky
}

func (fm *faceMesh) vertexLight(bc *world.BorderedChunk, relative mgl32.Vec3, lookups [3]mgl32.Vec3) uint32 {
	cx, cy, cz := getIndex(relative.Add(mgl32.Vec3{0.5, 0.5, 0.5}).Add(fm.direction))
	current := [3]int{cx, cy, cz}
	var indices [4][3]int
	indices[0] = current
	for i := 0; i < 3; i++ {
		x, y, z := getIndex(relative.Add(lookups[i]))
		indices[i+1] = [3]int{x, y, z}
	}
	return calcVertexLight(bc, indices, current)
}

func (fm *faceMesh) sharedLight(bc *world.BorderedChunk, relative mgl32.Vec3) uint32 {
	x, y, z := getIndex(relative)
	sky := uint32(bc.SkyLight[x][y][z]) * 4
	blk := uint32(bc.BlockLight[x][y][z]) * 4
	return (blk << 6) | sky
}

func ambientOcclusion(m *Mesher, bc *world.BorderedChunk, relative mgl32.Vec3, lookups [3]mgl32.Vec3) uint32 {
	var models [3]*block.BlockModel
	for i := 0; i < 3; i++ {
		x, y, z := getIndex(relative.Add(mgl32.Vec3{0.5, 0.5, 0.5}).Add(lookups[i]))
		models[i] = m.modelFor(bc.Blocks[x][y][z])
	}
	return aoValue(models[0], models[1], models[2])
}

func aoValue(side1, side2, corner *block.BlockModel) uint32 {
	v1 := occludes(side1)
	v2 := occludes(side2)
	vc := occludes(corner)
	if v1 && v2 {
		return 0
	}
	return uint32(3 - b2i(v1) - b2i(v2) - b2i(vc))
}

func occludes(m *block.BlockModel) bool {
	return m.HasOccluding && !m.HasGlass && !m.HasVariantRotation
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// mesh emits one element's face in direction dir, if present, into ctx.
func (fm *faceMesh) mesh(m *Mesher, bc *world.BorderedChunk, ctx *pushContext, model *block.BlockModel, el *block.BlockElement, worldBase, relative mgl32.Vec3, dir block.Direction) {
	face := &el.Faces[dir]
	if !face.Present {
		return
	}

	uvlock := el.VariantUVLock || (el.Rotation != nil && el.Rotation.UVLock)

	fm.setPositions(el.From, el.To, dir)
	fm.rotateFace(model, el, worldBase)

	shadedAxis := fm.direction.Y() < -0.5 || (abs32(fm.direction.X()) > 0.5 && abs32(fm.direction.Z()) < 0.5)

	aoBL, aoBR, aoTL, aoTR := uint32(3), uint32(3), uint32(3), uint32(3)
	if model.AmbientOcclusion && el.Shade {
		aoBL = ambientOcclusion(m, bc, relative, fm.blLookups)
		aoBR = ambientOcclusion(m, bc, relative, fm.brLookups)
		aoTL = ambientOcclusion(m, bc, relative, fm.tlLookups)
		aoTR = ambientOcclusion(m, bc, relative, fm.trLookups)
	}

	var lBL, lBR, lTL, lTR uint32
	if el.Shade {
		lBL = fm.vertexLight(bc, relative, fm.blLookups)
		lBR = fm.vertexLight(bc, relative, fm.brLookups)
		lTL = fm.vertexLight(bc, relative, fm.tlLookups)
		lTR = fm.vertexLight(bc, relative, fm.trLookups)
	} else {
		shared := fm.sharedLight(bc, relative)
		lBL, lBR, lTL, lTR = shared, shared, shared, shared
		shadedAxis = false
	}

	normal := [3]float32{fm.direction.X(), fm.direction.Y(), fm.direction.Z()}
	bl, br, tl, tr := calculateUVs(el, face, dir, normal, uvlock)

	if face.RandomFlip {
		wx := uint32(worldBase.X() + relative.X())
		wy := uint32(worldBase.Y() + relative.Y())
		wz := uint32(worldBase.Z() + relative.Z())
		bl, br, tr, tl = randomizeFaceTexture(wx, wy, wz, bl, br, tr, tl)
	}

	blIdx := ctx.pushVertex(face, fm.blPos, bl, (lBL<<2)|aoBL, shadedAxis)
	brIdx := ctx.pushVertex(face, fm.brPos, br, (lBR<<2)|aoBR, shadedAxis)
	tlIdx := ctx.pushVertex(face, fm.tlPos, tl, (lTL<<2)|aoTL, shadedAxis)
	trIdx := ctx.pushVertex(face, fm.trPos, tr, (lTR<<2)|aoTR, shadedAxis)

	ctx.pushQuad(face.Layer, blIdx, brIdx, trIdx, tlIdx)
}
