package mesher

import "github.com/go-mclib/polymer/pkg/block"

// idRange is an inclusive [first,last] state id span, the same
// shape block.Registry.RangeForName returns.
type idRange struct {
	first, last uint32
	ok          bool
}

func (r idRange) contains(id uint32) bool {
	return r.ok && id >= r.first && id <= r.last
}

func rangeFor(reg *block.Registry, name string) idRange {
	rng, ok := reg.RangeForName(name)
	if !ok {
		return idRange{}
	}
	return idRange{first: rng[0], last: rng[1], ok: true}
}

// Mapping resolves the handful of block names the mesher treats specially:
// fluids (meshed by meshFluid in addition to their ordinary block model,
// since e.g. seagrass has both) and the blocks that count as "empty above"
// a fluid for the purposes of its top face.
type Mapping struct {
	water, lava, kelp, seagrass, tallSeagrass idRange
	lilyPad, voidAir, caveAir                 idRange
}

// NewMapping resolves Mapping's ranges against a loaded registry. Any name
// absent from the registry (e.g. a stripped-down test fixture) simply never
// matches.
func NewMapping(reg *block.Registry) Mapping {
	return Mapping{
		water:        rangeFor(reg, "minecraft:water"),
		lava:         rangeFor(reg, "minecraft:lava"),
		kelp:         rangeFor(reg, "minecraft:kelp"),
		seagrass:     rangeFor(reg, "minecraft:seagrass"),
		tallSeagrass: rangeFor(reg, "minecraft:tall_seagrass"),
		lilyPad:      rangeFor(reg, "minecraft:lily_pad"),
		voidAir:      rangeFor(reg, "minecraft:void_air"),
		caveAir:      rangeFor(reg, "minecraft:cave_air"),
	}
}

// material describes how Mesh treats a cell's state id
// for the purposes of the separate fluid pass.
type material struct {
	fluid, water bool
}

func (m Mapping) describe(id uint32) material {
	water := m.water.contains(id) || m.kelp.contains(id) || m.seagrass.contains(id) || m.tallSeagrass.contains(id)
	return material{fluid: water || m.lava.contains(id), water: water}
}

// isEmptyAbove reports whether id counts as "nothing" for a fluid's top
// face: true air plus the handful of non-solid overlays a fluid surface can
// sit under without being occluded.
func (m Mapping) isEmptyAbove(id uint32) bool {
	return id == 0 || m.lilyPad.contains(id) || m.voidAir.contains(id) || m.caveAir.contains(id)
}
