package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConstructors checks the element counts and index ranges of the
// built-in geometric constructors.
func TestConstructors(t *testing.T) {
	cube := Cube()
	assert.Equal(t, 8, cube.NumVertices())
	assert.Equal(t, 12, cube.NumFaces())
	assertFaceIndexRange(t, cube, 0, 7)

	pyramid := Pyramid()
	assert.Equal(t, 5, pyramid.NumVertices())
	assert.Equal(t, 6, pyramid.NumFaces())
	assertFaceIndexRange(t, pyramid, 0, 4)

	grid, err := Grid(3, 5, 1.0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 15, grid.NumVertices())
	assert.Equal(t, 16, grid.NumFaces())
	assertFaceIndexRange(t, grid, 0, 14)

	// Swapping the dimensions changes the layout but not the counts.
	grid, err = Grid(5, 3, 1.0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 15, grid.NumVertices())
	assert.Equal(t, 16, grid.NumFaces())

	dflt := DefaultGrid()
	assert.Equal(t, 20, dflt.NumVertices())
	assert.Equal(t, 24, dflt.NumFaces())
	assertFaceIndexRange(t, dflt, 0, 19)

	_, err = Grid(1, 5, 1.0, 1.0)
	assert.Error(t, err)
}

func assertFaceIndexRange(t *testing.T, m *Mesh, wantMin, wantMax int32) {
	t.Helper()
	min, max := m.Faces[0], m.Faces[0]
	for _, v := range m.Faces {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	assert.Equal(t, wantMin, min)
	assert.Equal(t, wantMax, max)
}

// TestNewValidation verifies the structural invariants: array lengths
// must be multiples of 3 and face indices must be in range.
func TestNewValidation(t *testing.T) {
	_, err := New([]float32{0, 0}, nil)
	assert.Error(t, err)

	_, err = New([]float32{0, 0, 0}, []int32{0, 0})
	assert.Error(t, err)

	_, err = New([]float32{0, 0, 0, 1, 1, 1, 2, 2, 2}, []int32{0, 1, 3})
	assert.Error(t, err)

	m, err := New([]float32{0, 0, 0, 1, 1, 1, 2, 2, 2}, []int32{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumVertices())
	assert.Equal(t, 1, m.NumFaces())
}

// TestMatrixAccessors verifies the row/column views into the flat
// vertex and face arrays, including the out-of-range failures.
func TestMatrixAccessors(t *testing.T) {
	cube := Cube()

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			v, err := cube.VertexAt(row, col)
			require.NoError(t, err)
			assert.Equal(t, cube.Vertices[row*3+col], v)

			f, err := cube.FaceAt(row, col)
			require.NoError(t, err)
			assert.Equal(t, cube.Faces[row*3+col], f)
		}
	}

	last := cube.NumVertices() - 1
	v, err := cube.VertexAt(last, 2)
	require.NoError(t, err)
	assert.Equal(t, cube.Vertices[len(cube.Vertices)-1], v)

	_, err = cube.VertexAt(cube.NumVertices(), 0)
	assert.Error(t, err)
	_, err = cube.FaceAt(cube.NumFaces(), 0)
	assert.Error(t, err)
}

// TestReplace verifies that geometry is swapped atomically and rejected
// when invalid.
func TestReplace(t *testing.T) {
	m := Cube()
	pyramid := Pyramid()

	require.NoError(t, m.Replace(pyramid.Vertices, pyramid.Faces))
	assert.Equal(t, 5, m.NumVertices())

	err := m.Replace([]float32{0, 0, 0}, []int32{0, 0, 5})
	assert.Error(t, err)
	// The failed replace must not have touched the mesh.
	assert.Equal(t, 5, m.NumVertices())
}

// TestCoordRange checks the coordinate extrema helper.
func TestCoordRange(t *testing.T) {
	min, max := Cube().CoordRange()
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 1.0, max)

	min, max = (&Mesh{}).CoordRange()
	assert.Zero(t, min)
	assert.Zero(t, max)
}
