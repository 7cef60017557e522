// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package config loads the JSON build configuration used by the voxmesh
// command. Fields omitted from the file fall back to defaults through the
// Get* accessors, so partial configs are safe.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/2dChan/voxmesh"
	"github.com/2dChan/voxmesh/voxel"
)

// Reconstruction methods.
const (
	MethodGrow   = "grow"
	MethodConvex = "convex"
	MethodRadial = "radial"
)

const (
	DefaultVoxelSize = 1.0
	DefaultMaxFaces  = 0
	DefaultMaxEdge   = 0.0
	DefaultExtrusion = "outward"
	DefaultMethod    = MethodGrow

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// BuildConfig is the root of the configuration file.
type BuildConfig struct {
	VoxelSize *float64 `json:"voxel_size,omitempty"`
	MaxLayers *int     `json:"max_layers,omitempty"`
	// MaxFaces caps growth; 0 means no limit.
	MaxFaces  *int `json:"max_faces,omitempty"`
	// MaxEdge bounds grown edges; 0 derives it from the point spacing.
	MaxEdge   *float64 `json:"max_edge,omitempty"`
	Extrusion *string  `json:"extrusion,omitempty"` // "outward" or "inward"
	Method    *string  `json:"method,omitempty"`    // "grow", "convex" or "radial"

	// Output params
	WriteColors  *bool `json:"write_colors,omitempty"`
	WriteNormals *bool `json:"write_normals,omitempty"`

	// Workers bounds the number of clouds built at once.
	Workers *int `json:"workers,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Default returns a BuildConfig with every field set to its default.
func Default() *BuildConfig {
	return &BuildConfig{
		VoxelSize:    ptrFloat64(DefaultVoxelSize),
		MaxLayers:    ptrInt(voxel.DefaultMaxLayers),
		MaxFaces:     ptrInt(DefaultMaxFaces),
		MaxEdge:      ptrFloat64(DefaultMaxEdge),
		Extrusion:    ptrString(DefaultExtrusion),
		Method:       ptrString(DefaultMethod),
		WriteColors:  ptrBool(false),
		WriteNormals: ptrBool(false),
		Workers:      ptrInt(runtime.GOMAXPROCS(0)),
	}
}

// Load loads a BuildConfig from a JSON file. The file must have a .json
// extension and be under 1MB.
func Load(path string) (*BuildConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &BuildConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *BuildConfig) Validate() error {
	if c.VoxelSize != nil && !(*c.VoxelSize > 0) {
		return fmt.Errorf("voxel_size must be positive, got %v", *c.VoxelSize)
	}
	if c.MaxLayers != nil && *c.MaxLayers <= 0 {
		return fmt.Errorf("max_layers must be positive, got %d", *c.MaxLayers)
	}
	if c.MaxFaces != nil && *c.MaxFaces < 0 {
		return fmt.Errorf("max_faces must be non-negative, got %d", *c.MaxFaces)
	}
	if c.MaxEdge != nil && !(*c.MaxEdge >= 0) {
		return fmt.Errorf("max_edge must be non-negative, got %v", *c.MaxEdge)
	}
	if c.Extrusion != nil {
		if _, err := voxmesh.ParseExtrusion(*c.Extrusion); err != nil {
			return fmt.Errorf("invalid extrusion: %w", err)
		}
	}
	if c.Method != nil {
		switch *c.Method {
		case MethodGrow, MethodConvex, MethodRadial:
		default:
			return fmt.Errorf("method must be %q, %q or %q, got %q", MethodGrow, MethodConvex, MethodRadial, *c.Method)
		}
	}
	if c.Workers != nil && *c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", *c.Workers)
	}
	return nil
}

func (c *BuildConfig) GetVoxelSize() float64 {
	if c.VoxelSize == nil {
		return DefaultVoxelSize
	}
	return *c.VoxelSize
}

func (c *BuildConfig) GetMaxLayers() int {
	if c.MaxLayers == nil {
		return voxel.DefaultMaxLayers
	}
	return *c.MaxLayers
}

func (c *BuildConfig) GetMaxFaces() int {
	if c.MaxFaces == nil {
		return DefaultMaxFaces
	}
	return *c.MaxFaces
}

func (c *BuildConfig) GetMaxEdge() float64 {
	if c.MaxEdge == nil {
		return DefaultMaxEdge
	}
	return *c.MaxEdge
}

// GetExtrusion returns the parsed extrusion side. An invalid value, which
// Validate rejects, falls back to the default.
func (c *BuildConfig) GetExtrusion() voxmesh.Extrusion {
	if c.Extrusion == nil {
		return voxmesh.ExtrudeOutward
	}
	e, err := voxmesh.ParseExtrusion(*c.Extrusion)
	if err != nil {
		return voxmesh.ExtrudeOutward
	}
	return e
}

func (c *BuildConfig) GetMethod() string {
	if c.Method == nil {
		return DefaultMethod
	}
	return *c.Method
}

func (c *BuildConfig) GetWriteColors() bool {
	return c.WriteColors != nil && *c.WriteColors
}

func (c *BuildConfig) GetWriteNormals() bool {
	return c.WriteNormals != nil && *c.WriteNormals
}

func (c *BuildConfig) GetWorkers() int {
	if c.Workers == nil {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Workers
}

// MesherOptions returns the growth options described by c.
func (c *BuildConfig) MesherOptions() []voxmesh.Option {
	return []voxmesh.Option{
		voxmesh.WithMaxLayers(c.GetMaxLayers()),
		voxmesh.WithMaxFaces(c.GetMaxFaces()),
		voxmesh.WithMaxEdge(c.GetMaxEdge()),
		voxmesh.WithExtrusion(c.GetExtrusion()),
	}
}
