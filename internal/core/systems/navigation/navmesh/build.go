package navmesh

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Grid adds a flat, fully walkable floor of cols x rows square cells whose
// minimum corner is origin.
func (m *Mesh) Grid(name string, origin mgl64.Vec3, cols, rows int, cell float64) error {
	if cols <= 0 || rows <= 0 || cell <= 0 {
		return fmt.Errorf("grid %q: invalid dimensions %dx%d cell %.3f", name, cols, rows, cell)
	}
	vertices := make([]mgl64.Vec3, 0, (cols+1)*(rows+1))
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			vertices = append(vertices, origin.Add(mgl64.Vec3{float64(c) * cell, 0, float64(r) * cell}))
		}
	}
	index := func(c, r int) int { return r*(cols+1) + c }

	triangles := make([]Triangle, 0, cols*rows*2)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a, b := index(c, r), index(c+1, r)
			d, e := index(c, r+1), index(c+1, r+1)
			triangles = append(triangles,
				Triangle{V: [3]int{a, d, b}},
				Triangle{V: [3]int{b, d, e}},
			)
		}
	}
	return m.AddZone(name, vertices, triangles)
}

type fileFormat struct {
	Zones map[string]zoneFile `yaml:"zones"`
}

type zoneFile struct {
	Vertices  [][3]float64   `yaml:"vertices"`
	Triangles []triangleFile `yaml:"triangles"`
	Grid      *gridFile      `yaml:"grid"`
}

type triangleFile struct {
	V       [3]int `yaml:"v"`
	Blocked bool   `yaml:"blocked"`
}

type gridFile struct {
	Origin [3]float64 `yaml:"origin"`
	Cols   int        `yaml:"cols"`
	Rows   int        `yaml:"rows"`
	Cell   float64    `yaml:"cell"`
}

// LoadYAMLFile reads a mesh description from disk.
func LoadYAMLFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nav mesh: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// LoadYAML decodes zones given either as explicit triangles or as a grid:
//
//	zones:
//	  character:
//	    vertices: [[0,0,0], [1,0,0], [0,0,1]]
//	    triangles:
//	      - v: [0, 2, 1]
//	  lobby:
//	    grid: {origin: [-5, 0, -5], cols: 10, rows: 10, cell: 1}
func LoadYAML(r io.Reader) (*Mesh, error) {
	var doc fileFormat
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode nav mesh: %w", err)
	}
	m := New()
	for name, zf := range doc.Zones {
		if zf.Grid != nil {
			g := zf.Grid
			if err := m.Grid(name, mgl64.Vec3(g.Origin), g.Cols, g.Rows, g.Cell); err != nil {
				return nil, err
			}
			continue
		}
		vertices := make([]mgl64.Vec3, len(zf.Vertices))
		for i, v := range zf.Vertices {
			vertices[i] = mgl64.Vec3(v)
		}
		triangles := make([]Triangle, len(zf.Triangles))
		for i, t := range zf.Triangles {
			triangles[i] = Triangle{V: t.V, Blocked: t.Blocked}
		}
		if err := m.AddZone(name, vertices, triangles); err != nil {
			return nil, err
		}
	}
	return m, nil
}
