// Package mesh provides the triangulated surface mesh representation used
// throughout this module, together with topology operations on it:
// adjacency construction, neighborhood expansion, per-vertex data
// smoothing and induced submesh extraction.
//
// A mesh stores its geometry in two flat arrays: 3 coordinates per vertex
// and 3 vertex indices per triangular face. This mirrors the on-disk
// layout of FreeSurfer surface files, so codecs can hand their decoded
// arrays over without reshaping.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Mesh is a triangulated surface mesh. Vertices holds x,y,z triples, so
// len(Vertices) is 3 times the vertex count; Faces holds vertex index
// triples, so len(Faces) is 3 times the face count.
//
// A Mesh is read-mostly after construction. Topology operations never
// mutate their receiver; they return fresh structures.
type Mesh struct {
	Vertices []float32
	Faces    []int32
}

// New creates a mesh from flat vertex and face arrays. Both array lengths
// must be multiples of 3 and every face index must be a valid vertex
// index.
func New(vertices []float32, faces []int32) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("vertex array length %d is not a multiple of 3", len(vertices))
	}
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face array length %d is not a multiple of 3", len(faces))
	}
	m := &Mesh{Vertices: vertices, Faces: faces}
	if err := m.checkFaces(); err != nil {
		return nil, err
	}
	return m, nil
}

// checkFaces verifies that every face index references an existing
// vertex. Meshes decoded from binary surface files are not validated by
// the codec, so consumers that index through Faces must run this check
// first.
func (m *Mesh) checkFaces() error {
	numVerts := int32(m.NumVertices())
	for i, v := range m.Faces {
		if v < 0 || v >= numVerts {
			return fmt.Errorf("face entry %d references vertex %d, valid range is [0, %d)", i, v, numVerts)
		}
	}
	return nil
}

// NumVertices returns the number of vertices in the mesh.
func (m *Mesh) NumVertices() int { return len(m.Vertices) / 3 }

// NumFaces returns the number of triangles in the mesh.
func (m *Mesh) NumFaces() int { return len(m.Faces) / 3 }

// VertexAt returns coordinate column col (0..2) of vertex row. It fails
// for out-of-range indices instead of silently reading a neighbor's
// coordinate.
func (m *Mesh) VertexAt(row, col int) (float32, error) {
	if row < 0 || row >= m.NumVertices() || col < 0 || col > 2 {
		return 0, fmt.Errorf("vertex coordinate index (%d,%d) out of range for mesh with %d vertices", row, col, m.NumVertices())
	}
	return m.Vertices[row*3+col], nil
}

// FaceAt returns vertex index column col (0..2) of face row.
func (m *Mesh) FaceAt(row, col int) (int32, error) {
	if row < 0 || row >= m.NumFaces() || col < 0 || col > 2 {
		return 0, fmt.Errorf("face index (%d,%d) out of range for mesh with %d faces", row, col, m.NumFaces())
	}
	return m.Faces[row*3+col], nil
}

// Replace swaps in a new geometry. Vertices and faces are always replaced
// together; there is no way to change one without the other, which keeps
// the face-index invariant checkable in one place.
func (m *Mesh) Replace(vertices []float32, faces []int32) error {
	nm, err := New(vertices, faces)
	if err != nil {
		return err
	}
	m.Vertices = nm.Vertices
	m.Faces = nm.Faces
	return nil
}

// CoordRange returns the minimum and maximum coordinate value over all
// vertex coordinates, useful as a quick sanity check on decoded surfaces.
func (m *Mesh) CoordRange() (min, max float64) {
	if len(m.Vertices) == 0 {
		return 0, 0
	}
	coords := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		coords[i] = float64(v)
	}
	return floats.Min(coords), floats.Max(coords)
}

// Cube constructs a unit cube mesh with 8 vertices and 12 triangular
// faces. Mainly used for tests and demos.
func Cube() *Mesh {
	return &Mesh{
		Vertices: []float32{
			1.0, 1.0, 1.0,
			1.0, 1.0, -1.0,
			1.0, -1.0, 1.0,
			1.0, -1.0, -1.0,
			-1.0, 1.0, 1.0,
			-1.0, 1.0, -1.0,
			-1.0, -1.0, 1.0,
			-1.0, -1.0, -1.0,
		},
		Faces: []int32{
			0, 2, 3,
			3, 1, 0,
			4, 6, 7,
			7, 5, 4,
			0, 4, 5,
			5, 1, 0,
			2, 6, 7,
			7, 3, 2,
			0, 4, 6,
			6, 2, 0,
			1, 5, 7,
			7, 3, 1,
		},
	}
}

// Pyramid constructs a square pyramid mesh with 5 vertices and 6
// triangular faces (4 sides, 2 for the base).
func Pyramid() *Mesh {
	return &Mesh{
		Vertices: []float32{
			0.0, 0.0, 0.0,
			1.0, 0.0, 0.0,
			1.0, 1.0, 0.0,
			0.0, 1.0, 0.0,
			0.5, 0.5, 1.0,
		},
		Faces: []int32{
			0, 1, 2, // base
			2, 3, 0, // base
			0, 1, 4,
			1, 2, 4,
			2, 3, 4,
			3, 0, 4,
		},
	}
}

// Grid constructs a flat 2D grid mesh in the z=0 plane with nx*ny
// vertices spaced dx and dy apart. Each grid cell is split into two
// triangles, giving 2*(nx-1)*(ny-1) faces.
func Grid(nx, ny int, dx, dy float32) (*Mesh, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("grid requires at least 2 vertices per dimension, got %dx%d", nx, ny)
	}
	vertices := make([]float32, 0, nx*ny*3)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			vertices = append(vertices, float32(ix)*dx, float32(iy)*dy, 0.0)
		}
	}
	faces := make([]int32, 0, (nx-1)*(ny-1)*6)
	for ix := 0; ix < nx-1; ix++ {
		for iy := 0; iy < ny-1; iy++ {
			// Vertex indices of the current cell's corners.
			v00 := int32(ix*ny + iy)
			v01 := v00 + 1
			v10 := int32((ix+1)*ny + iy)
			v11 := v10 + 1
			faces = append(faces, v00, v10, v11)
			faces = append(faces, v11, v01, v00)
		}
	}
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}

// DefaultGrid constructs a 4x5 grid with unit spacing, matching the
// reference mesh used in tests (20 vertices, 24 faces).
func DefaultGrid() *Mesh {
	m, _ := Grid(4, 5, 1.0, 1.0)
	return m
}
