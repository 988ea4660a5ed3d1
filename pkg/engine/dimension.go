package engine

import "github.com/go-mclib/polymer/pkg/nbt"

// Dimension is one entry of the server's minecraft:dimension_type registry,
// reduced to the fields the world model needs. World y spans
// [MinY, MinY+Height).
type Dimension struct {
	Name   string
	MinY   int32
	Height int32
}

// DimensionFromTag extracts MinY/Height from a dimension-type compound.
// Servers that omit either field get the overworld's span, so a sparse
// registry entry still yields a usable dimension.
func DimensionFromTag(name string, tag nbt.Tag) Dimension {
	d := Dimension{Name: name, MinY: -64, Height: 384}
	if t, ok := tag.Find("min_y"); ok && t.Type == nbt.TagInt {
		d.MinY = t.Int
	}
	if t, ok := tag.Find("height"); ok && t.Type == nbt.TagInt {
		d.Height = t.Int
	}
	return d
}
