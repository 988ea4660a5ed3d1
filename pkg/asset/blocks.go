package asset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/errs"
)

// parseBlocksIndex is phase 4: parse blocks.json, determine
// state_count = max(id)+1, allocate the dense registry, and record each
// state's info/id/properties. Mirrors the vanilla data generator's
// reports/blocks.json shape.
func (l *Loader) parseBlocksIndex(data []byte) (*block.Registry, error) {
	var index map[string]blocksIndexJSON
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse blocks.json: %w", errs.MalformedModel)
	}

	maxID := uint32(0)
	names := make([]string, 0, len(index))
	for name, entry := range index {
		names = append(names, name)
		for _, s := range entry.States {
			if s.ID > maxID {
				maxID = s.ID
			}
		}
	}
	sort.Strings(names) // deterministic info ordering

	reg := block.NewRegistry(int(maxID) + 1)

	for _, name := range names {
		entry := index[name]
		info := &block.StateInfo{Name: name}
		firstID, lastID := ^uint32(0), uint32(0)
		for _, s := range entry.States {
			st, err := reg.State(s.ID)
			if err != nil {
				return nil, fmt.Errorf("blocks.json: %s id %d: %w", name, s.ID, errs.MalformedModel)
			}
			st.Info = info
			st.Properties = serializeProperties(s.Properties)
			// Fluid level is the only runtime state property retained.
			if lvl, ok := s.Properties["level"]; ok {
				if n, err := strconv.Atoi(lvl); err == nil && n >= 0 && n <= 15 {
					st.Leveled = true
					st.Level = uint8(n)
				}
			}
			if s.ID < firstID {
				firstID = s.ID
			}
			if s.ID > lastID {
				lastID = s.ID
			}
		}
		if len(entry.States) > 0 {
			reg.SetNameRange(name, firstID, lastID)
		}
	}

	return reg, nil
}

// serializeProperties renders a property map as a sorted "k=v,k=v"
// string, omitting waterlogged (which never affects model selection
// here).
func serializeProperties(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		if k == "waterlogged" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return strings.Join(parts, ",")
}
