// Package engine drives the core pipeline: it polls the connection,
// drains complete packets through registered modules, and meshes dirty
// chunks into renderer-owned buffers, all on one cooperative main loop.
// Dispatch by (protocol state, packet id) lives in the modules under
// modules/.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-mclib/polymer/pkg/asset"
	"github.com/go-mclib/polymer/pkg/block"
	"github.com/go-mclib/polymer/pkg/errs"
	"github.com/go-mclib/polymer/pkg/mesher"
	"github.com/go-mclib/polymer/pkg/protocol"
)

// Config carries the handful of knobs the core needs; flag/env parsing is
// the application harness's problem.
type Config struct {
	Host     string
	Port     int
	Username string
	Brand    string

	// JarPath/BlocksJSONPath feed the asset loader; empty disables asset
	// loading (headless/protocol-only runs).
	JarPath        string
	BlocksJSONPath string

	ViewDistance int
}

// maxMeshesPerTick bounds the dirty-chunk build loop so a burst of chunk
// packets cannot starve the frame.
const maxMeshesPerTick = 8

// Engine owns the connection, the registered modules, and the mesh build
// loop.
type Engine struct {
	Config Config
	Conn   *protocol.Connection
	Logger *log.Logger

	// MaxReconnectAttempts: 0 disables reconnecting, -1 retries forever.
	MaxReconnectAttempts int

	// Populated by LoadAssets.
	Registry *block.Registry
	Textures *asset.TextureArray
	Mesher   *mesher.Mesher

	// Dimensions is the minecraft:dimension_type registry received during
	// configuration, indexed by registry id.
	Dimensions []Dimension

	Renderer Renderer

	modules         []Module
	modulesByName   map[string]Module
	handlers        []Handler
	shouldReconnect bool
	closed          bool

	meshes map[[3]int32][]RenderMesh
}

// New creates an engine with no modules registered. Register modules, then
// call Run.
func New(cfg Config) *Engine {
	if cfg.Brand == "" {
		cfg.Brand = "vanilla"
	}
	if cfg.ViewDistance == 0 {
		cfg.ViewDistance = 10
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)
	return &Engine{
		Config:               cfg,
		Conn:                 protocol.New(logger),
		Logger:               logger,
		MaxReconnectAttempts: 5,
		modulesByName:        make(map[string]Module),
		meshes:               make(map[[3]int32][]RenderMesh),
	}
}

// Register adds a module to the engine. Panics on duplicate name.
func (e *Engine) Register(m Module) {
	if _, exists := e.modulesByName[m.Name()]; exists {
		panic("module already registered: " + m.Name())
	}
	e.modules = append(e.modules, m)
	e.modulesByName[m.Name()] = m
	m.Init(e)
}

// Module returns a registered module by name, or nil.
func (e *Engine) Module(name string) Module {
	return e.modulesByName[name]
}

// RegisterHandler appends a lightweight packet callback (escape hatch).
func (e *Engine) RegisterHandler(h Handler) {
	e.handlers = append(e.handlers, h)
}

// WritePacket frames and sends one outbound packet on the connection.
func (e *Engine) WritePacket(id int32, payload []byte) error {
	return e.Conn.WritePacket(id, payload)
}

// Disconnect closes the connection. If force is true, no reconnect is
// attempted.
func (e *Engine) Disconnect(force bool) error {
	e.shouldReconnect = !force
	e.closed = true
	return e.Conn.Close()
}

// LoadAssets runs the one-shot block-asset loader and builds
// the mesher. Call before Run when Config names a jar; the texture array is
// pushed through the renderer immediately (it is built once and never
// mutated).
func (e *Engine) LoadAssets() error {
	if e.Config.JarPath == "" {
		return nil
	}
	loader := asset.NewLoader(e.Logger)
	reg, textures, err := loader.Load(e.Config.JarPath, e.Config.BlocksJSONPath)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	e.Registry = reg
	e.Textures = textures
	e.Mesher = mesher.New(reg, loader)
	UploadTextures(e.Renderer, textures)
	return nil
}

// Run connects and drives the main loop until ctx is cancelled or the
// session ends, reconnecting per MaxReconnectAttempts on recoverable
// failures.
func (e *Engine) Run(ctx context.Context) error {
	attempts := 0
	maxAttempts := e.MaxReconnectAttempts

	for {
		e.shouldReconnect = false
		err := e.runOnce(ctx)
		if err == nil {
			return nil
		}

		e.Logger.Printf("connection error: %v", err)

		if !e.shouldReconnect || maxAttempts == 0 {
			return err
		}
		attempts++
		if maxAttempts > 0 && attempts > maxAttempts {
			e.Logger.Printf("max reconnect attempts (%d) reached, giving up", maxAttempts)
			return err
		}
		e.Logger.Printf("reconnecting in 3 seconds... (attempt %d/%d)", attempts, maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}

func (e *Engine) runOnce(ctx context.Context) error {
	for _, m := range e.modules {
		m.Reset()
	}
	e.closed = false

	if err := e.Conn.Connect(e.Config.Host, e.Config.Port); err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer e.Conn.Close()

	for _, m := range e.modules {
		if ch, ok := m.(ConnectHandler); ok {
			ch.OnConnect()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := e.Conn.Poll(); err != nil {
			if e.closed {
				return nil
			}
			e.shouldReconnect = true
			return err
		}

		if _, err := e.Interpret(); err != nil {
			if e.closed {
				return nil
			}
			e.shouldReconnect = true
			return err
		}
		if e.closed {
			return nil
		}

		e.buildDirtyMeshes()
	}
}

// Interpret drains complete packets from the connection and dispatches
// each through the registered modules, returning the processed count. A
// partial frame (IncompleteFrame) ends the pass cleanly; a malformed
// packet is logged and skipped without corrupting connection state; a
// socket-level error is returned as fatal.
func (e *Engine) Interpret() (int, error) {
	processed := 0
	for {
		pkt, err := e.Conn.DrainPacket()
		if err != nil {
			if errors.Is(err, errs.IncompleteFrame) {
				return processed, nil
			}
			if errors.Is(err, errs.MalformedPacket) || errors.Is(err, errs.MalformedNbt) || errors.Is(err, errs.TooDeep) {
				e.Logger.Printf("dropping packet: %v", err)
				continue
			}
			return processed, err
		}

		for _, m := range e.modules {
			m.HandlePacket(pkt)
			if e.closed {
				return processed + 1, nil
			}
		}
		for _, h := range e.handlers {
			h(e, pkt)
		}
		processed++
	}
}

// meshSource is what buildDirtyMeshes needs from the world module; kept
// as a locally-defined interface so engine does not import its own modules
// package (modules know the engine, not vice versa).
type meshSource interface {
	DrainDirty(max int) [][3]int32
	Mesh(m *mesher.Mesher, cx, cy, cz int32) (mesher.VertexData, bool)
}

func (e *Engine) buildDirtyMeshes() {
	if e.Mesher == nil || e.Renderer == nil {
		return
	}
	src, ok := e.Module("world").(meshSource)
	if !ok {
		return
	}
	for _, c := range src.DrainDirty(maxMeshesPerTick) {
		data, ok := src.Mesh(e.Mesher, c[0], c[1], c[2])
		if !ok {
			continue
		}
		key := [3]int32{c[0], c[1], c[2]}
		for _, old := range e.meshes[key] {
			e.Renderer.FreeMesh(old)
		}
		var fresh []RenderMesh
		for i := range data.Layers {
			lm := &data.Layers[i]
			if len(lm.Vertices) == 0 {
				continue
			}
			fresh = append(fresh, e.Renderer.AllocateMesh(lm.Vertices, lm.Indices))
		}
		e.meshes[key] = fresh
	}
}

// DimensionByIndex returns the dimension-type registry entry at idx, or
// false if the registry has not been received or idx is out of range.
func (e *Engine) DimensionByIndex(idx int32) (Dimension, bool) {
	if idx < 0 || int(idx) >= len(e.Dimensions) {
		return Dimension{}, false
	}
	return e.Dimensions[idx], true
}
