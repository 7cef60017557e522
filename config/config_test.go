// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/2dChan/voxmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, cfg.GetVoxelSize())
	assert.Equal(t, 10, cfg.GetMaxLayers())
	assert.Equal(t, 0, cfg.GetMaxFaces())
	assert.Equal(t, 0.0, cfg.GetMaxEdge())
	assert.Equal(t, voxmesh.ExtrudeOutward, cfg.GetExtrusion())
	assert.Equal(t, MethodGrow, cfg.GetMethod())
	assert.False(t, cfg.GetWriteColors())
	assert.False(t, cfg.GetWriteNormals())
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.GetWorkers())
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := &BuildConfig{}
	def := Default()

	assert.Equal(t, def.GetVoxelSize(), cfg.GetVoxelSize())
	assert.Equal(t, def.GetMaxLayers(), cfg.GetMaxLayers())
	assert.Equal(t, def.GetMaxFaces(), cfg.GetMaxFaces())
	assert.Equal(t, def.GetMaxEdge(), cfg.GetMaxEdge())
	assert.Equal(t, def.GetExtrusion(), cfg.GetExtrusion())
	assert.Equal(t, def.GetMethod(), cfg.GetMethod())
	assert.Equal(t, def.GetWorkers(), cfg.GetWorkers())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "build.json", `{
  "voxel_size": 2.5,
  "max_faces": 1000,
  "max_edge": 3.5,
  "extrusion": "inward",
  "method": "radial",
  "write_normals": true
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.GetVoxelSize())
	assert.Equal(t, 10, cfg.GetMaxLayers())
	assert.Equal(t, 1000, cfg.GetMaxFaces())
	assert.Equal(t, 3.5, cfg.GetMaxEdge())
	assert.Equal(t, voxmesh.ExtrudeInward, cfg.GetExtrusion())
	assert.Equal(t, MethodRadial, cfg.GetMethod())
	assert.False(t, cfg.GetWriteColors())
	assert.True(t, cfg.GetWriteNormals())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"wrong extension", "build.yaml", `{}`, ".json extension"},
		{"bad json", "build.json", `{"voxel_size": }`, "failed to parse"},
		{"zero voxel size", "build.json", `{"voxel_size": 0}`, "voxel_size"},
		{"negative layers", "build.json", `{"max_layers": -1}`, "max_layers"},
		{"negative faces", "build.json", `{"max_faces": -3}`, "max_faces"},
		{"negative max edge", "build.json", `{"max_edge": -0.5}`, "max_edge"},
		{"bad extrusion", "build.json", `{"extrusion": "up"}`, "extrusion"},
		{"bad method", "build.json", `{"method": "poisson"}`, "method"},
		{"zero workers", "build.json", `{"workers": 0}`, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat")
}

func TestLoad_TooLarge(t *testing.T) {
	big := `{"method": "grow"` + strings.Repeat(" ", maxFileSize) + `}`
	_, err := Load(writeConfig(t, "big.json", big))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestMesherOptions(t *testing.T) {
	cfg := &BuildConfig{MaxLayers: ptrInt(4), MaxFaces: ptrInt(7), MaxEdge: ptrFloat64(2), Extrusion: ptrString("inward")}

	var opts voxmesh.Options
	for _, set := range cfg.MesherOptions() {
		require.NoError(t, set(&opts))
	}
	assert.Equal(t, voxmesh.Options{MaxLayers: 4, MaxFaces: 7, MaxEdge: 2, Extrusion: voxmesh.ExtrudeInward}, opts)
}

// Helpers

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
