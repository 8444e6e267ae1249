package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSubmeshVertex verifies induced submesh extraction on the cube:
// faces survive only when all three of their vertices are kept, and
// indices are rewritten through the mapping in keep order.
func TestSubmeshVertex(t *testing.T) {
	cube := Cube()

	// Keep one quadratic side of the cube: vertices 0,2,3,1 span the
	// x=1 face, which is triangulated as (0,2,3) and (3,1,0).
	keep := []int32{0, 2, 3, 1}
	mapping, sub, err := cube.SubmeshVertex(keep)
	require.NoError(t, err)

	require.Len(t, mapping, 4)
	for i, orig := range keep {
		assert.Equal(t, int32(i), mapping[orig], "mapping must follow keep order")
	}

	assert.Equal(t, 4, sub.NumVertices())
	assert.Equal(t, 2, sub.NumFaces())
	assert.Less(t, sub.NumFaces(), cube.NumFaces())

	// Gathered coordinates follow keep order.
	for i, orig := range keep {
		assert.Equal(t, cube.Vertices[orig*3:orig*3+3], sub.Vertices[i*3:i*3+3])
	}

	// The surviving faces are the two triangles of the kept side with
	// rewritten indices: (0,2,3) -> (0,1,2) and (3,1,0) -> (2,3,0).
	assert.Equal(t, []int32{0, 1, 2, 2, 3, 0}, sub.Faces)
}

// TestSubmeshVertexValidation verifies the failure modes: out-of-range
// and duplicate kept indices.
func TestSubmeshVertexValidation(t *testing.T) {
	cube := Cube()

	_, _, err := cube.SubmeshVertex([]int32{0, 8})
	assert.Error(t, err)

	_, _, err = cube.SubmeshVertex([]int32{0, 1, 0})
	assert.Error(t, err)

	// An empty keep set yields an empty submesh.
	mapping, sub, err := cube.SubmeshVertex(nil)
	require.NoError(t, err)
	assert.Empty(t, mapping)
	assert.Equal(t, 0, sub.NumVertices())
	assert.Equal(t, 0, sub.NumFaces())
}

// TestCurvDataForOrigMesh verifies field restoration: mapped positions
// get the submesh value, everything else NaN.
func TestCurvDataForOrigMesh(t *testing.T) {
	cube := Cube()
	keep := []int32{1, 5, 7}
	mapping, _, err := cube.SubmeshVertex(keep)
	require.NoError(t, err)

	subData := []float32{10.5, 20.5, 30.5}
	full, err := CurvDataForOrigMesh(subData, mapping, cube.NumVertices())
	require.NoError(t, err)
	require.Len(t, full, cube.NumVertices())

	assert.Equal(t, float32(10.5), full[1])
	assert.Equal(t, float32(20.5), full[5])
	assert.Equal(t, float32(30.5), full[7])
	for _, v := range []int{0, 2, 3, 4, 6} {
		assert.True(t, math.IsNaN(float64(full[v])), "unmapped vertex %d must be NaN", v)
	}
}

// TestCurvDataForOrigMeshValidation verifies the failure modes for
// inconsistent mappings.
func TestCurvDataForOrigMeshValidation(t *testing.T) {
	_, err := CurvDataForOrigMesh([]float32{1}, map[int32]int32{9: 0}, 4)
	assert.Error(t, err, "mapping outside the original mesh must fail")

	_, err = CurvDataForOrigMesh([]float32{1}, map[int32]int32{0: 3}, 4)
	assert.Error(t, err, "mapping outside the submesh data must fail")
}

// TestSubmeshWithRestoration runs the extraction/restoration pair on a
// grid with a strict vertex subset, the way a cortex label restricts a
// full surface.
func TestSubmeshWithRestoration(t *testing.T) {
	grid := DefaultGrid()

	// Keep all but the last column of vertices.
	var keep []int32
	for v := int32(0); v < int32(grid.NumVertices()-5); v++ {
		keep = append(keep, v)
	}
	mapping, sub, err := grid.SubmeshVertex(keep)
	require.NoError(t, err)
	assert.Less(t, sub.NumFaces(), grid.NumFaces())
	assert.Positive(t, sub.NumFaces())

	data := make([]float32, sub.NumVertices())
	for i := range data {
		data[i] = float32(i) * 0.5
	}
	full, err := CurvDataForOrigMesh(data, mapping, grid.NumVertices())
	require.NoError(t, err)

	for orig, subIdx := range mapping {
		assert.Equal(t, data[subIdx], full[orig])
	}
	for v := grid.NumVertices() - 5; v < grid.NumVertices(); v++ {
		assert.True(t, math.IsNaN(float64(full[v])))
	}
}
