package block

import "fmt"

// Registry is the contiguous array of State indexed by state id,
// plus an auxiliary name -> id-range map for lookup by namespaced name.
type Registry struct {
	States     []State // dense, 0..StateCount
	nameRanges map[string][2]uint32
}

// NewRegistry allocates a registry with stateCount empty slots, one per
// numeric state id.
func NewRegistry(stateCount int) *Registry {
	states := make([]State, stateCount)
	for i := range states {
		states[i].ID = uint32(i)
	}
	return &Registry{
		States:     states,
		nameRanges: make(map[string][2]uint32),
	}
}

// SetNameRange records the [first,last] state id range owned by a
// namespaced block name, for RangeForName lookups.
func (r *Registry) SetNameRange(name string, first, last uint32) {
	r.nameRanges[name] = [2]uint32{first, last}
}

// RangeForName returns the state id range for a namespaced block name.
func (r *Registry) RangeForName(name string) ([2]uint32, bool) {
	rng, ok := r.nameRanges[name]
	return rng, ok
}

// State returns the state at id, or an error if id is out of range.
func (r *Registry) State(id uint32) (*State, error) {
	if int(id) >= len(r.States) {
		return nil, fmt.Errorf("block state id %d out of range [0,%d)", id, len(r.States))
	}
	return &r.States[id], nil
}
