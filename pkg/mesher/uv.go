package mesher

import "github.com/go-mclib/polymer/pkg/block"

// rotatorFunc rotates a face's UV assignment by a fixed multiple of 90
// degrees: given the face direction, the element's raw UV rect (from/to,
// mutated in place when setUV), and the face's four corner UVs (mutated
// in place).
type rotatorFunc func(dir block.Direction, from, to *vec2, bl, br, tl, tr *vec2, setUV bool)

type vec2 struct{ x, y float32 }

// setUVs assigns the four corner UVs from the (from,to) rect for the given
// direction. Down and Up each use their own corner pattern; every
// horizontal direction shares a third.
func setUVs(from, to vec2, dir block.Direction, bl, br, tl, tr *vec2) {
	switch dir {
	case block.DirDown:
		*bl = vec2{to.x, to.y}
		*br = vec2{to.x, from.y}
		*tr = vec2{from.x, from.y}
		*tl = vec2{from.x, to.y}
	case block.DirUp:
		*bl = vec2{from.x, from.y}
		*br = vec2{from.x, to.y}
		*tr = vec2{to.x, to.y}
		*tl = vec2{to.x, from.y}
	default:
		*bl = vec2{from.x, to.y}
		*br = vec2{to.x, to.y}
		*tr = vec2{to.x, from.y}
		*tl = vec2{from.x, from.y}
	}
}

func rotate0(dir block.Direction, from, to *vec2, bl, br, tl, tr *vec2, setUV bool) {
	if setUV {
		setUVs(*from, *to, dir, bl, br, tl, tr)
	}
}

func rotate90(dir block.Direction, from, to *vec2, bl, br, tl, tr *vec2, setUV bool) {
	if setUV {
		nFrom := vec2{x: 1 - from.y, y: to.x}
		nTo := vec2{x: 1 - to.y, y: from.x}
		*from, *to = nTo, nFrom
		setUVs(*from, *to, dir, bl, br, tl, tr)
	}
	obl := *bl
	*bl = *tl
	*tl = *tr
	*tr = *br
	*br = obl
}

func rotate180(dir block.Direction, from, to *vec2, bl, br, tl, tr *vec2, setUV bool) {
	if setUV {
		from.x, from.y = 1-from.x, 1-from.y
		to.x, to.y = 1-to.x, 1-to.y
		setUVs(*from, *to, dir, bl, br, tl, tr)
	}
}

func rotate270(dir block.Direction, from, to *vec2, bl, br, tl, tr *vec2, setUV bool) {
	if setUV {
		from.x, from.y = 1-from.x, 1-from.y
		to.x, to.y = 1-to.x, 1-to.y
	}
	rotate90(dir, from, to, bl, br, tl, tr, setUV)
}

func rotate270f(dir block.Direction, from, to *vec2, bl, br, tl, tr *vec2, setUV bool) {
	if setUV {
		nFrom := vec2{x: 1 - from.y, y: to.x}
		nTo := vec2{x: 1 - to.y, y: from.x}
		*from, *to = nTo, nFrom
		setUVs(*from, *to, dir, bl, br, tl, tr)
	}
	obl := *bl
	*bl = *br
	*br = *tr
	*tr = *tl
	*tl = obl
}

// kLockedRotators and kRotators are indexed x_index*6*4 + y_index*6 +
// direction, where x_index/y_index are the element's combined rotation
// angle (element rotation folded in on its own axis, plus the blockstate
// variant rotation) divided by 90. kLockedRotators is keyed by the
// pre-rotation direction and used when uvlock holds the texture to world
// axes; kRotators is keyed by the face's direction after rotation (the
// rendered face moves with the block).
var kLockedRotators = [96]rotatorFunc{
	// Down      Up         North      South      West       East
	rotate0, rotate0, rotate0, rotate0, rotate0, rotate0, // X0   Y0
	rotate270, rotate90, rotate0, rotate0, rotate0, rotate0, // X0   Y90
	rotate180, rotate180, rotate0, rotate0, rotate0, rotate0, // X0   Y180
	rotate90, rotate270, rotate0, rotate0, rotate0, rotate0, // X0   Y270

	rotate90, rotate180, rotate90, rotate270, rotate180, rotate180, // X90  Y0
	rotate90, rotate180, rotate90, rotate270, rotate180, rotate180, // X90  Y90
	rotate0, rotate90, rotate0, rotate180, rotate270, rotate90, // X90  Y180
	rotate0, rotate90, rotate270, rotate270, rotate270, rotate90, // X90  Y270

	rotate0, rotate0, rotate180, rotate180, rotate180, rotate180, // X180 Y0
	rotate90, rotate270, rotate180, rotate180, rotate180, rotate180, // X180 Y90
	rotate180, rotate180, rotate180, rotate180, rotate180, rotate180, // X180 Y180
	rotate270, rotate90, rotate180, rotate180, rotate180, rotate180, // X180 Y270

	rotate180, rotate0, rotate180, rotate0, rotate90, rotate270, // X270 Y0
	rotate180, rotate0, rotate270, rotate270, rotate90, rotate270, // X270 Y90
	rotate180, rotate0, rotate0, rotate180, rotate90, rotate270, // X270 Y180
	rotate180, rotate0, rotate90, rotate90, rotate90, rotate270, // X270 Y270
}

var kRotators = [96]rotatorFunc{
	// Down      Up         North      South      West       East
	rotate0, rotate0, rotate0, rotate0, rotate0, rotate0, // X0   Y0
	rotate0, rotate0, rotate0, rotate0, rotate0, rotate0, // X0   Y90
	rotate0, rotate0, rotate0, rotate0, rotate0, rotate0, // X0   Y180
	rotate0, rotate0, rotate0, rotate0, rotate0, rotate0, // X0   Y270

	rotate90, rotate90, rotate90, rotate270, rotate180, rotate180, // X90  Y0
	rotate90, rotate90, rotate90, rotate270, rotate180, rotate180, // X90  Y90
	rotate0, rotate90, rotate0, rotate180, rotate270, rotate90, // X90  Y180
	rotate0, rotate90, rotate270, rotate270, rotate270, rotate90, // X90  Y270

	rotate0, rotate0, rotate180, rotate180, rotate180, rotate180, // X180 Y0
	rotate90, rotate270, rotate180, rotate180, rotate180, rotate180, // X180 Y90
	rotate180, rotate180, rotate180, rotate180, rotate180, rotate180, // X180 Y180
	rotate270, rotate90, rotate180, rotate180, rotate180, rotate180, // X180 Y270

	rotate180, rotate0, rotate180, rotate0, rotate90, rotate270, // X270 Y0
	rotate180, rotate0, rotate270, rotate270, rotate90, rotate270, // X270 Y90
	rotate180, rotate0, rotate0, rotate180, rotate90, rotate270, // X270 Y180
	rotate180, rotate0, rotate90, rotate90, rotate90, rotate270, // X270 Y270
}

// kFaceRotators applies the face's own JSON "rotation" property (a
// further 0/90/180/270 turn independent of the element/variant rotation),
// indexed rotation/90*6 + direction.
var kFaceRotators = [24]rotatorFunc{
	// Down      Up         North      South      West       East
	rotate0, rotate0, rotate0, rotate0, rotate0, rotate0, // 0
	rotate90, rotate90, rotate270f, rotate270f, rotate270f, rotate270f, // 90
	rotate180, rotate180, rotate180, rotate180, rotate180, rotate180, // 180
	rotate270, rotate270, rotate90, rotate90, rotate90, rotate90, // 270
}

func normalizeAngle360(deg int32) int32 {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// directionFromVector maps a (possibly rotated) face normal back to the
// nearest cube direction, the Go stand-in for GetDirectionFace.
func directionFromVector(v [3]float32) block.Direction {
	ax, ay, az := abs32(v[0]), abs32(v[1]), abs32(v[2])
	switch {
	case ay >= ax && ay >= az:
		if v[1] < 0 {
			return block.DirDown
		}
		return block.DirUp
	case ax >= ay && ax >= az:
		if v[0] < 0 {
			return block.DirWest
		}
		return block.DirEast
	default:
		if v[2] < 0 {
			return block.DirNorth
		}
		return block.DirSouth
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// calculateUVs implements FaceMesh::CalculateUVs: folds
// the element's own rotation (if on the X or Y axis) and the blockstate's
// variant rotation into a combined angle, selects the locked or unlocked
// rotator by that angle and direction, then applies the face's own
// "rotation" property on top.
func calculateUVs(el *block.BlockElement, face *block.RenderableFace, dir block.Direction, faceNormal [3]float32, uvlock bool) (bl, br, tl, tr [2]float32) {
	angleX := el.VariantRotation[0]
	angleY := el.VariantRotation[1]
	if el.Rotation != nil {
		switch el.Rotation.Axis {
		case block.AxisX:
			angleX += int32(el.Rotation.Angle)
		case block.AxisY:
			angleY += int32(el.Rotation.Angle)
		}
	}
	xIdx := normalizeAngle360(angleX) / 90
	yIdx := normalizeAngle360(angleY) / 90
	index := xIdx*24 + yIdx*6

	from := vec2{face.UV[0], face.UV[1]}
	to := vec2{face.UV[2], face.UV[3]}
	var vbl, vbr, vtl, vtr vec2

	rotated := dir
	if uvlock {
		kLockedRotators[int(index)+int(dir)](dir, &from, &to, &vbl, &vbr, &vtl, &vtr, true)
	} else {
		rotated = directionFromVector(faceNormal)
		kRotators[int(index)+int(rotated)](rotated, &from, &to, &vbl, &vbr, &vtl, &vtr, true)
	}

	if face.Rotation != 0 {
		idx := (face.Rotation/90)*6 + int32(rotated)
		kFaceRotators[idx](rotated, &from, &to, &vbl, &vbr, &vtl, &vtr, false)
	}

	return [2]float32{vbl.x, vbl.y}, [2]float32{vbr.x, vbr.y}, [2]float32{vtl.x, vtl.y}, [2]float32{vtr.x, vtr.y}
}
