package mesher

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-mclib/polymer/pkg/block"
)

// rotate turns v by angle radians around unit axis, via Rodrigues' formula.
// The original hand-rolled Rotate(vector, angle, axis) helper it stands in
// for wasn't present anywhere in the retrieved source tree (math.h/vector.h
// weren't part of the pack); every caller here only ever rotates around an
// axis-aligned unit vector, but the formula is general regardless.
func rotate(v, axis mgl32.Vec3, angle float32) mgl32.Vec3 {
	cos := float32(math.Cos(float64(angle)))
	sin := float32(math.Sin(float64(angle)))
	return v.Mul(cos).
		Add(axis.Cross(v).Mul(sin)).
		Add(axis.Mul(axis.Dot(v) * (1 - cos)))
}

func radians(deg float32) float32 {
	return deg * math.Pi / 180
}

func axisVector(a block.Axis) mgl32.Vec3 {
	switch a {
	case block.AxisX:
		return mgl32.Vec3{1, 0, 0}
	case block.AxisY:
		return mgl32.Vec3{0, 1, 0}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}

func getIndex(v mgl32.Vec3) (x, y, z int) {
	fx := int(math.Floor(float64(v.X())))
	fy := int(math.Floor(float64(v.Y())))
	fz := int(math.Floor(float64(v.Z())))
	if fx < -1 {
		fx++
	}
	if fy < -1 {
		fy++
	}
	if fz < -1 {
		fz++
	}
	if fx > 17 {
		fx--
	}
	if fy > 17 {
		fy--
	}
	if fz > 17 {
		fz--
	}
	// The source's own bound only asserts [-1,17] here (a C array overrun
	// would just corrupt an adjacent slab); clamp into [0,17] post-offset so
	// a Go array access can't panic on the rare geometry that grazes it.
	return clampIdx(fx+1), clampIdx(fy+1), clampIdx(fz+1)
}

func clampIdx(v int) int {
	if v < 0 {
		return 0
	}
	if v > 17 {
		return 17
	}
	return v
}
