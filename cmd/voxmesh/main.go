// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Command voxmesh reconstructs triangle meshes from point cloud files.
//
// Usage:
//
//	voxmesh [flags] cloud.xyz [cloud.obj ...]
//
// Each input is meshed independently and written next to it, or to -o, as
// <name>.mesh.obj.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/2dChan/voxmesh"
	"github.com/2dChan/voxmesh/config"
	"github.com/2dChan/voxmesh/hull"
	"github.com/2dChan/voxmesh/objio"
	"github.com/2dChan/voxmesh/voxel"
	"golang.org/x/sync/errgroup"
)

var errUnsupportedInput = errors.New("unsupported input format")

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON build config")
		voxelSize  = flag.Float64("voxel", config.DefaultVoxelSize, "voxel edge length")
		maxLayers  = flag.Int("max-layers", voxel.DefaultMaxLayers, "layer cap for neighbor searches")
		maxFaces   = flag.Int("max-faces", config.DefaultMaxFaces, "stop growth after this many faces (0: no limit)")
		maxEdge    = flag.Float64("max-edge", config.DefaultMaxEdge, "longest edge growth may create (0: from point spacing)")
		extrusion  = flag.String("extrusion", config.DefaultExtrusion, "influence region side: outward or inward")
		method     = flag.String("method", config.DefaultMethod, "reconstruction: grow, convex or radial")
		outDir     = flag.String("o", "", "output directory (default: next to each input)")
		workers    = flag.Int("workers", 0, "clouds built at once (default: GOMAXPROCS)")
		colors     = flag.Bool("colors", false, "write vertex colors")
		normals    = flag.Bool("normals", false, "write vertex normals")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.{xyz,obj} ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "voxel":
			cfg.VoxelSize = voxelSize
		case "max-layers":
			cfg.MaxLayers = maxLayers
		case "max-faces":
			cfg.MaxFaces = maxFaces
		case "max-edge":
			cfg.MaxEdge = maxEdge
		case "extrusion":
			cfg.Extrusion = extrusion
		case "method":
			cfg.Method = method
		case "workers":
			cfg.Workers = workers
		case "colors":
			cfg.WriteColors = colors
		case "normals":
			cfg.WriteNormals = normals
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, *outDir, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

// run builds every input with at most cfg.GetWorkers() builds at once. Each
// build owns its Space and Mesher.
func run(cfg *config.BuildConfig, outDir string, inputs []string) error {
	var g errgroup.Group
	g.SetLimit(cfg.GetWorkers())
	for _, in := range inputs {
		g.Go(func() error {
			out, err := buildFile(cfg, in, outDir)
			if err != nil {
				log.Printf("%s: %v", in, err)
				return fmt.Errorf("%s: %w", in, err)
			}
			log.Printf("%s: wrote %s", in, out)
			return nil
		})
	}
	return g.Wait()
}

// buildFile meshes one input file and returns the path of the written mesh.
// A growth that was aborted still writes the faces built so far.
func buildFile(cfg *config.BuildConfig, in, outDir string) (string, error) {
	points, err := readPoints(in)
	if err != nil {
		return "", err
	}

	space, err := voxel.NewSpace(cfg.GetVoxelSize(), voxel.WithMaxLayers(cfg.GetMaxLayers()))
	if err != nil {
		return "", err
	}
	if err := space.AddPoints(points); err != nil {
		return "", err
	}

	logger := log.New(log.Writer(), filepath.Base(in)+": ", log.Flags())
	logger.Print(space)

	var mesh *voxmesh.Mesh
	switch cfg.GetMethod() {
	case config.MethodConvex:
		mesh, err = hull.Convex(space)
	case config.MethodRadial:
		mesh, err = hull.Radial(space)
	default:
		mesh, err = grow(space, cfg, logger)
	}
	if err != nil {
		return "", err
	}
	logger.Printf("%s: %d faces, %d boundary edges, %d isolated points",
		cfg.GetMethod(), mesh.NumFaces(), mesh.BoundaryEdges(), voxmesh.NewTopology(mesh).Isolated())

	out := outputPath(in, outDir)
	if err := writeMesh(out, mesh, cfg); err != nil {
		return "", err
	}
	return out, nil
}

func grow(space *voxel.Space, cfg *config.BuildConfig, logger *log.Logger) (*voxmesh.Mesh, error) {
	m, err := voxmesh.NewMesher(space, append(cfg.MesherOptions(), voxmesh.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}
	if err := m.Seed(); err != nil {
		return nil, err
	}
	if res := m.Grow(); res.Termination == voxmesh.Aborted {
		logger.Printf("writing partial mesh: %v", res.Err)
	}
	return m.Mesh(), nil
}

func readPoints(path string) ([]*voxel.Point, error) {
	var read func(*os.File) ([]*voxel.Point, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		read = func(f *os.File) ([]*voxel.Point, error) { return objio.Read(f) }
	case ".xyz", ".txt":
		read = func(f *os.File) ([]*voxel.Point, error) { return objio.ReadXYZ(f) }
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedInput, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return read(file)
}

func outputPath(in, outDir string) string {
	base := filepath.Base(in)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".mesh.obj"
	if outDir == "" {
		outDir = filepath.Dir(in)
	}
	return filepath.Join(outDir, name)
}

func writeMesh(path string, mesh *voxmesh.Mesh, cfg *config.BuildConfig) (err error) {
	var opts []objio.Option
	if cfg.GetWriteColors() {
		opts = append(opts, objio.WithColors())
	}
	if cfg.GetWriteNormals() {
		opts = append(opts, objio.WithNormals())
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return objio.Write(file, mesh, opts...)
}
