package asset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/errs"
)

func parseBlockstateJSON(data []byte) (blockstateJSON, error) {
	var bs blockstateJSON
	if err := json.Unmarshal(data, &bs); err != nil {
		return blockstateJSON{}, fmt.Errorf("parse blockstate json: %w", errs.MalformedModel)
	}
	return bs, nil
}

// modelElementsByRef resolves a blockstate "model" reference (e.g.
// "minecraft:block/furnace" or "block/furnace") to that model's finalized
// element list.
func (l *Loader) modelElementsByRef(ref string) ([]block.BlockElement, string, bool) {
	stem := stripModelPrefix(stripNamespace(ref))
	elems, ok := l.finalElements[stem]
	return elems, stem, ok
}

// resolveVariants implements the blockstate "variants" format: match
// a state by confirming every k=v pair in the selector appears in the
// state's property string, choosing the empty selector if the state has no
// properties.
func (l *Loader) resolveVariants(reg *block.Registry, ids [2]uint32, bs blockstateJSON) bool {
	if len(bs.Variants) == 0 {
		return false
	}
	selectors := make([]string, 0, len(bs.Variants))
	for k := range bs.Variants {
		selectors = append(selectors, k)
	}
	sort.Strings(selectors)

	for id := ids[0]; id <= ids[1]; id++ {
		st, err := reg.State(id)
		if err != nil {
			continue
		}
		for _, sel := range selectors {
			if !block.HasPropertySet(st.Properties, sel) {
				continue
			}
			apply := bs.Variants[sel].first
			elems, stem, ok := l.modelElementsByRef(apply.Model)
			if !ok {
				l.warnf("blockstate variant %q: missing model %q", sel, apply.Model)
				break
			}
			model := &block.BlockModel{
				Elements:         cloneElementsWithRotation(elems, apply.X, apply.Y, apply.UVLock),
				AmbientOcclusion: l.finalAO[stem],
			}
			computeAggregates(model, []string{stem})
			st.Model = model
			break
		}
	}
	return true
}

// resolveMultiparts implements the blockstate "multipart" format: for
// each state, evaluate every {when?, apply} entry and append matching
// models' elements, so a state can accumulate elements from several apply
// entries. States are iterated once, with all entries evaluated per state.
func (l *Loader) resolveMultiparts(reg *block.Registry, ids [2]uint32, bs blockstateJSON) bool {
	if len(bs.Multipart) == 0 {
		return false
	}

	for id := ids[0]; id <= ids[1]; id++ {
		st, err := reg.State(id)
		if err != nil {
			continue
		}
		// Ambient occlusion ANDs across the contributing models: one
		// contributor with it disabled disables it for the whole state.
		model := &block.BlockModel{AmbientOcclusion: true}
		var contributing []string
		for _, entry := range bs.Multipart {
			if entry.When != nil && !evaluateWhen(entry.When, st.Properties) {
				continue
			}
			elems, stem, ok := l.modelElementsByRef(entry.Apply.Model)
			if !ok {
				l.warnf("multipart entry: missing model %q", entry.Apply.Model)
				continue
			}
			model.Elements = append(model.Elements, cloneElementsWithRotation(elems, entry.Apply.X, entry.Apply.Y, entry.Apply.UVLock)...)
			if !l.finalAO[stem] {
				model.AmbientOcclusion = false
			}
			contributing = append(contributing, stem)
		}
		computeAggregates(model, contributing)
		st.Model = model
	}
	return true
}

// evaluateWhen evaluates a multipart "when" clause: a flat property map is
// an AND of equalities, or a single "AND"/"OR" key holds a list of such
// maps.
func evaluateWhen(when map[string]interface{}, properties string) bool {
	if list, ok := when["OR"]; ok {
		for _, cond := range toMapSlice(list) {
			if evaluateFlatMap(cond, properties) {
				return true
			}
		}
		return false
	}
	if list, ok := when["AND"]; ok {
		for _, cond := range toMapSlice(list) {
			if !evaluateFlatMap(cond, properties) {
				return false
			}
		}
		return true
	}
	return evaluateFlatMap(when, properties)
}

func toMapSlice(v interface{}) []map[string]interface{} {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// evaluateFlatMap ANDs a flat {property: "value"} (or "a|b" alternation)
// map against a state's serialized properties.
func evaluateFlatMap(cond map[string]interface{}, properties string) bool {
	for k, v := range cond {
		var sv string
		switch tv := v.(type) {
		case string:
			sv = tv
		case bool:
			sv = strconv.FormatBool(tv)
		case float64:
			sv = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			continue
		}
		matched := false
		for _, alt := range splitAlternation(sv) {
			if block.HasPropertySet(properties, k+"="+alt) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func splitAlternation(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
