package mesher

import "github.com/go-mclib/polymer/pkg/block"

// hasOccludableFace reports whether model presents an opaque (non-
// transparent) face in direction dir.
func hasOccludableFace(model *block.BlockModel, dir block.Direction) bool {
	for i := range model.Elements {
		f := &model.Elements[i].Faces[dir]
		if f.Present && !f.Transparent {
			return true
		}
	}
	return false
}

// isOccluding reports whether to (the neighbor across direction dir) fully
// covers from's face in direction dir, so that face of from can be culled. Glass
// and leaves models never occlude (glass-on-glass keeps its inner panes
// visible), and an element carrying a rescale rotation is skipped entirely
// rather than considered for occlusion.
func isOccluding(from, to *block.BlockModel, dir block.Direction) bool {
	if len(to.Elements) == 0 {
		return false
	}
	if from.HasGlass || from.HasLeaves || to.HasGlass || to.HasLeaves {
		return false
	}
	if from.HasRotation || to.HasRotation || from.HasVariantRotation || to.HasVariantRotation {
		return false
	}
	if !to.HasShaded {
		return false
	}

	opposite := dir.Opposite()
	fromTransparent := !hasOccludableFace(from, dir)
	toTransparent := !hasOccludableFace(to, opposite)

	for i := range from.Elements {
		fe := &from.Elements[i]
		if fe.Rotation != nil && fe.Rotation.Rescale {
			continue
		}
		ff := &fe.Faces[dir]
		if !ff.Present {
			continue
		}

		for j := range to.Elements {
			te := &to.Elements[j]
			tf := &te.Faces[opposite]
			if !tf.Present {
				continue
			}

			if te.From[0] <= fe.From[0] && te.From[1] <= fe.From[1] && te.From[2] <= fe.From[2] &&
				te.To[0] >= fe.To[0] && te.To[1] >= fe.To[1] && te.To[2] >= fe.To[2] {
				if toTransparent {
					return fromTransparent
				}
				if fromTransparent {
					return false
				}
				return true
			}
		}
	}
	return false
}
