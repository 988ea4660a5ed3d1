package mesher

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/world"
)

// meshFluid emits the double-sided quad mesh for a fluid cell: a top
// surface at y=0.9 when the cell above counts as empty, a flat bottom at
// y=0 when the cell below is air, and four side walls wherever the
// horizontal neighbor is air. Always run in addition to
// the ordinary block pass, since some blocks (kelp, seagrass) are fluid and
// solid at once.
func (m *Mesher) meshFluid(ctx *pushContext, bc *world.BorderedChunk, rx, ry, rz int, worldBase mgl32.Vec3, face block.RenderableFace) {
	ix := func(dx, dy, dz int) [3]int { return [3]int{rx + 1 + dx, ry + 1 + dy, rz + 1 + dz} }

	above := ix(0, 1, 0)
	below := ix(0, -1, 0)
	north, south, east, west := ix(0, 0, -1), ix(0, 0, 1), ix(1, 0, 0), ix(-1, 0, 0)
	aboveN, aboveS, aboveE, aboveW := ix(0, 1, -1), ix(0, 1, 1), ix(1, 1, 0), ix(-1, 1, 0)
	aboveNE, aboveNW, aboveSE, aboveSW := ix(1, 1, -1), ix(-1, 1, -1), ix(1, 1, 1), ix(-1, 1, 1)
	belowN, belowS, belowE, belowW := ix(0, -1, -1), ix(0, -1, 1), ix(1, -1, 0), ix(-1, -1, 0)
	belowNE, belowNW, belowSE, belowSW := ix(1, -1, -1), ix(-1, -1, -1), ix(1, -1, 1), ix(-1, -1, 1)
	northE, northW, southE, southW := ix(1, 0, -1), ix(-1, 0, -1), ix(1, 0, 1), ix(-1, 0, 1)
	current := ix(0, 0, 0)

	belowID := bc.Blocks[below[0]][below[1]][below[2]]
	fluidBelow := m.mapping.describe(belowID).fluid

	from := mgl32.Vec3{0, 0, 0}
	to := mgl32.Vec3{1, 1, 1}
	if fluidBelow {
		from = mgl32.Vec3{0, -0.1, 0}
	}
	top := mgl32.Vec3{1, 0.9, 1}

	pos := worldBase.Add(mgl32.Vec3{float32(rx), float32(ry), float32(rz)})

	quad := func(blPos, brPos, tlPos, trPos mgl32.Vec3, blUV, brUV, tlUV, trUV [2]float32, blIdx, brIdx, tlIdx, trIdx [4][3]int) {
		lBL := calcVertexLight(bc, blIdx, current)
		lBR := calcVertexLight(bc, brIdx, current)
		lTL := calcVertexLight(bc, tlIdx, current)
		lTR := calcVertexLight(bc, trIdx, current)

		bli := ctx.pushVertex(&face, pos.Add(blPos), blUV, (lBL<<2)|3, false)
		bri := ctx.pushVertex(&face, pos.Add(brPos), brUV, (lBR<<2)|3, false)
		tli := ctx.pushVertex(&face, pos.Add(tlPos), tlUV, (lTL<<2)|3, false)
		tri := ctx.pushVertex(&face, pos.Add(trPos), trUV, (lTR<<2)|3, false)
		ctx.pushDoubleQuad(face.Layer, bli, bri, tli, tri)
	}

	aboveID := bc.Blocks[above[0]][above[1]][above[2]]
	if m.mapping.isEmptyAbove(aboveID) {
		quad(
			mgl32.Vec3{0, 0.9, 0}, mgl32.Vec3{0, 0.9, 1}, mgl32.Vec3{1, 0.9, 0}, mgl32.Vec3{1, 0.9, 1},
			[2]float32{0, 0}, [2]float32{0, 1}, [2]float32{1, 0}, [2]float32{1, 1},
			[4][3]int{above, aboveN, aboveW, aboveNW},
			[4][3]int{above, aboveS, aboveW, aboveSW},
			[4][3]int{above, aboveN, aboveE, aboveNE},
			[4][3]int{above, aboveS, aboveE, aboveSE},
		)
	}

	if belowID == 0 {
		quad(
			mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 1}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1},
			[2]float32{1, 1}, [2]float32{1, 0}, [2]float32{0, 0}, [2]float32{0, 1},
			[4][3]int{below, belowN, belowE, belowNE},
			[4][3]int{below, belowS, belowE, belowSE},
			[4][3]int{below, belowN, belowW, belowNW},
			[4][3]int{below, belowS, belowW, belowSW},
		)
	}

	northID := bc.Blocks[north[0]][north[1]][north[2]]
	if northID == 0 {
		quad(
			mgl32.Vec3{to.X(), from.Y(), from.Z()}, mgl32.Vec3{from.X(), from.Y(), from.Z()},
			mgl32.Vec3{to.X(), top.Y(), from.Z()}, mgl32.Vec3{from.X(), top.Y(), from.Z()},
			[2]float32{0, 1}, [2]float32{1, 1}, [2]float32{0, 0}, [2]float32{1, 0},
			[4][3]int{north, northE, belowNE, belowN},
			[4][3]int{north, northW, belowNW, belowN},
			[4][3]int{north, northE, aboveNE, aboveN},
			[4][3]int{north, northW, aboveNW, aboveN},
		)
	}

	southID := bc.Blocks[south[0]][south[1]][south[2]]
	if southID == 0 {
		quad(
			mgl32.Vec3{from.X(), from.Y(), to.Z()}, mgl32.Vec3{to.X(), from.Y(), to.Z()},
			mgl32.Vec3{from.X(), top.Y(), to.Z()}, mgl32.Vec3{to.X(), top.Y(), to.Z()},
			[2]float32{0, 1}, [2]float32{1, 1}, [2]float32{0, 0}, [2]float32{1, 0},
			[4][3]int{south, southW, belowSW, belowS},
			[4][3]int{south, southE, belowSE, belowS},
			[4][3]int{south, southW, aboveSW, aboveS},
			[4][3]int{south, southE, aboveSE, aboveS},
		)
	}

	eastID := bc.Blocks[east[0]][east[1]][east[2]]
	if eastID == 0 {
		quad(
			mgl32.Vec3{to.X(), from.Y(), to.Z()}, mgl32.Vec3{to.X(), from.Y(), from.Z()},
			mgl32.Vec3{to.X(), top.Y(), to.Z()}, mgl32.Vec3{to.X(), top.Y(), from.Z()},
			[2]float32{0, 1}, [2]float32{1, 1}, [2]float32{0, 0}, [2]float32{1, 0},
			[4][3]int{east, belowE, belowSE, southE},
			[4][3]int{east, belowE, belowNE, northE},
			[4][3]int{east, aboveE, aboveSE, southE},
			[4][3]int{east, aboveE, aboveNE, northE},
		)
	}

	westID := bc.Blocks[west[0]][west[1]][west[2]]
	if westID == 0 {
		quad(
			mgl32.Vec3{from.X(), from.Y(), from.Z()}, mgl32.Vec3{from.X(), from.Y(), to.Z()},
			mgl32.Vec3{from.X(), top.Y(), from.Z()}, mgl32.Vec3{from.X(), top.Y(), to.Z()},
			[2]float32{0, 1}, [2]float32{1, 1}, [2]float32{0, 0}, [2]float32{1, 0},
			[4][3]int{west, belowW, belowNW, northW},
			[4][3]int{west, belowW, belowSW, southW},
			[4][3]int{west, aboveW, aboveNW, northW},
			[4][3]int{west, aboveW, aboveSW, southW},
		)
	}
}
