package asset

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/errs"
)

// Loader is the one-shot block-asset builder: it reads the jar's
// model/blockstate/texture hierarchy and produces the block registry and
// the block texture array.
type Loader struct {
	Logger *log.Logger

	models map[string]*parsedModel

	// finalElements holds each model's fully texture-resolved element list,
	// keyed by stem name, ready to be cloned+rotated per blockstate
	// application (phase 5 output, phase 6 input). finalAO is the parallel
	// model-level ambient-occlusion flag, inherited through the parent
	// chain during resolve.
	finalElements map[string][]block.BlockElement
	finalAO       map[string]bool

	textures      []texture
	textureByName map[string]int
	textureBaseID []uint32
}

// NewLoader creates an asset Loader. logger may be nil to suppress
// warnings.
func NewLoader(logger *log.Logger) *Loader {
	return &Loader{
		Logger:        logger,
		models:        make(map[string]*parsedModel),
		finalElements: make(map[string][]block.BlockElement),
		finalAO:       make(map[string]bool),
	}
}

// Load reads jarPath (a Minecraft client jar, zip) and blocksJSONPath (the
// sibling state-id index), and returns the resolved block registry and
// texture array.
func (l *Loader) Load(jarPath, blocksJSONPath string) (*block.Registry, *TextureArray, error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open jar %s: %w", jarPath, errs.MissingAsset)
	}
	defer zr.Close()

	if err := l.parseBlockModels(&zr.Reader); err != nil {
		return nil, nil, err
	}
	for _, m := range l.models {
		if err := resolveModel(l.models, m, 0); err != nil {
			return nil, nil, err
		}
	}

	if err := l.loadTextures(&zr.Reader); err != nil {
		return nil, nil, err
	}
	l.assignTextureBaseIDs()

	for name, pm := range l.models {
		l.finalElements[name] = l.finalizeModel(pm)
		l.finalAO[name] = pm.ambientOcclusion
	}

	blocksData, err := os.ReadFile(blocksJSONPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read blocks index %s: %w", blocksJSONPath, errs.MissingAsset)
	}
	reg, err := l.parseBlocksIndex(blocksData)
	if err != nil {
		return nil, nil, err
	}

	if err := l.resolveBlockstates(&zr.Reader, reg); err != nil {
		return nil, nil, err
	}

	return reg, l.buildTextureArray(), nil
}

// TextureRangeByStem looks up a loaded texture's id range by its bare stem
// name (e.g. "water_still", "lava_still"), the same name space finalizeModel
// resolves model texture references against. Used by pkg/mesher to find the
// fluid textures, which aren't reachable through any blockstate.
func (l *Loader) TextureRangeByStem(stem string) (block.TextureIDRange, bool) {
	idx, ok := l.textureByName[stem]
	if !ok {
		return block.TextureIDRange{}, false
	}
	return block.TextureIDRange{Base: l.textureBaseID[idx], Count: uint32(len(l.textures[idx].layers))}, true
}

// parseBlockModels is phase 1: enumerate
// assets/minecraft/models/block/*.json, parse each into the intermediate
// representation, interned by stem name.
func (l *Loader) parseBlockModels(zr *zip.Reader) error {
	const dir = "assets/minecraft/models/block/"
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, dir) || !strings.HasSuffix(f.Name, ".json") {
			continue
		}
		stem := strings.TrimSuffix(strings.TrimPrefix(f.Name, dir), ".json")

		rc, err := f.Open()
		if err != nil {
			l.warnf("open model %s: %v", f.Name, err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			l.warnf("read model %s: %v", f.Name, err)
			continue
		}
		raw, err := parseModelJSON(data)
		if err != nil {
			l.warnf("parse model %s: %v", f.Name, err)
			continue
		}
		l.models[stem] = &parsedModel{name: stem, raw: raw}
	}
	return nil
}

func (l *Loader) assignTextureBaseIDs() {
	l.textureBaseID = make([]uint32, len(l.textures))
	base := uint32(0)
	for i, t := range l.textures {
		l.textureBaseID[i] = base
		base += uint32(len(t.layers))
	}
}

// resolveBlockstates is phase 6: for each
// assets/minecraft/blockstates/*.json, match against every state of the
// corresponding block name and resolve its model.
func (l *Loader) resolveBlockstates(zr *zip.Reader, reg *block.Registry) error {
	const dir = "assets/minecraft/blockstates/"
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, dir) && strings.HasSuffix(f.Name, ".json") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)

	for _, fname := range names {
		stem := strings.TrimSuffix(strings.TrimPrefix(fname, dir), ".json")

		f, err := zr.Open(fname)
		if err != nil {
			l.warnf("open blockstate %s: %v", fname, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			l.warnf("read blockstate %s: %v", fname, err)
			continue
		}
		bs, err := parseBlockstateJSON(data)
		if err != nil {
			l.warnf("parse blockstate %s: %v", fname, err)
			continue
		}

		ids, ok := reg.RangeForName("minecraft:" + stem)
		if !ok {
			continue // block not present in blocks.json (e.g. air, or a non-block entry)
		}

		if l.resolveMultiparts(reg, ids, bs) {
			continue
		}
		l.resolveVariants(reg, ids, bs)
	}
	return nil
}
