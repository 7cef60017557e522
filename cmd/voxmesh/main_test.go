// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2dChan/voxmesh/config"
	"github.com/2dChan/voxmesh/objio"
	"github.com/2dChan/voxmesh/utils"
	"github.com/google/go-cmp/cmp"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, outDir, want string
	}{
		{"scans/bunny.xyz", "", filepath.Join("scans", "bunny.mesh.obj")},
		{"scans/bunny.xyz", "out", filepath.Join("out", "bunny.mesh.obj")},
		{"cloud.obj", "", "cloud.mesh.obj"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.in, tt.outDir); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.in, tt.outDir, got, tt.want)
		}
	}
}

func TestBuildFile(t *testing.T) {
	methods := []string{config.MethodGrow, config.MethodConvex, config.MethodRadial}
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			dir := t.TempDir()
			in := writeXYZ(t, dir, "tetra.xyz")

			cfg := config.Default()
			cfg.Method = &method
			out, err := buildFile(cfg, in, "")
			if err != nil {
				t.Fatalf("buildFile(...) error = %v, want nil", err)
			}
			if want := filepath.Join(dir, "tetra.mesh.obj"); out != want {
				t.Errorf("buildFile(...) = %q, want %q", out, want)
			}

			got := countRecords(t, out)
			if diff := cmp.Diff(map[string]int{"v": 4, "f": 4}, got); diff != "" {
				t.Errorf("%s records mismatch (-want +got):\n%s", out, diff)
			}
		})
	}
}

func TestBuildFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := buildFile(config.Default(), filepath.Join(dir, "cloud.ply"), ""); !errors.Is(err, errUnsupportedInput) {
		t.Errorf("buildFile(cloud.ply) error = %v, want %v", err, errUnsupportedInput)
	}
	if _, err := buildFile(config.Default(), filepath.Join(dir, "missing.xyz"), ""); err == nil {
		t.Errorf("buildFile(missing.xyz) error = nil, want non-nil")
	}
}

func TestRun(t *testing.T) {
	dir, outDir := t.TempDir(), t.TempDir()
	inputs := []string{writeXYZ(t, dir, "a.xyz"), writeXYZ(t, dir, "b.xyz"), writeXYZ(t, dir, "c.xyz")}

	workers := 2
	cfg := config.Default()
	cfg.Workers = &workers
	if err := run(cfg, outDir, inputs); err != nil {
		t.Fatalf("run(...) error = %v, want nil", err)
	}
	for _, name := range []string{"a.mesh.obj", "b.mesh.obj", "c.mesh.obj"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("os.Stat(%s) error = %v, want nil", name, err)
		}
	}

	if err := run(cfg, outDir, append(inputs, filepath.Join(dir, "bad.ply"))); err == nil {
		t.Errorf("run(... bad.ply) error = nil, want non-nil")
	}
}

// Helpers

func writeXYZ(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create(%s) error = %v, want nil", path, err)
	}
	defer file.Close()
	if err := objio.WriteXYZ(file, utils.Tetrahedron(2)); err != nil {
		t.Fatalf("objio.WriteXYZ(...) error = %v, want nil", err)
	}
	return path
}

func countRecords(t *testing.T, path string) map[string]int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile(%s) error = %v, want nil", path, err)
	}
	res := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		res[strings.Fields(line)[0]]++
	}
	return res
}
