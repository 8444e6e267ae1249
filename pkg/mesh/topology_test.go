package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCubeAdjacencyMatrix verifies the dense adjacency representation
// on the unit cube: every vertex has between 4 and 6 neighbors and no
// vertex is adjacent to itself.
func TestCubeAdjacencyMatrix(t *testing.T) {
	cube := Cube()
	adjm, err := cube.AdjacencyMatrix()
	require.NoError(t, err)
	require.Len(t, adjm, cube.NumVertices())
	for _, row := range adjm {
		require.Len(t, row, cube.NumVertices())
	}

	minN, maxN := cube.NumVertices(), 0
	for i, row := range adjm {
		assert.False(t, row[i], "vertex %d must not be its own neighbor", i)
		n := 0
		for _, adjacent := range row {
			if adjacent {
				n++
			}
		}
		if n < minN {
			minN = n
		}
		if n > maxN {
			maxN = n
		}
	}
	assert.Equal(t, 4, minN)
	assert.Equal(t, 6, maxN)

	// Symmetry.
	for i := range adjm {
		for j := range adjm {
			assert.Equal(t, adjm[i][j], adjm[j][i])
		}
	}
}

// TestCubeEdgeSet verifies that every undirected edge appears in both
// directions, giving 36 directed edges for the cube's 18 edges.
func TestCubeEdgeSet(t *testing.T) {
	edges, err := Cube().EdgeSet()
	require.NoError(t, err)
	assert.Len(t, edges, 36)

	_, ok := edges[Edge{0, 1}]
	assert.True(t, ok)
	for e := range edges {
		_, reverse := edges[Edge{e.J, e.I}]
		assert.True(t, reverse, "edge (%d,%d) has no reverse", e.I, e.J)
	}
}

// TestAdjacencyListPathsAgree verifies that the matrix-based and the
// edge-set-based adjacency list construction produce identical results.
func TestAdjacencyListPathsAgree(t *testing.T) {
	for _, m := range []*Mesh{Cube(), Pyramid(), DefaultGrid()} {
		viaMatrix, err := m.AdjacencyList(true)
		require.NoError(t, err)
		viaEdges, err := m.AdjacencyList(false)
		require.NoError(t, err)
		assert.Equal(t, viaMatrix, viaEdges)

		for v, neighbors := range viaMatrix {
			assert.NotContains(t, neighbors, v, "vertex %d lists itself", v)
		}
	}

	adjl, err := Cube().AdjacencyList(true)
	require.NoError(t, err)
	minN, maxN := len(adjl[0]), len(adjl[0])
	for _, neighbors := range adjl {
		if len(neighbors) < minN {
			minN = len(neighbors)
		}
		if len(neighbors) > maxN {
			maxN = len(neighbors)
		}
	}
	assert.Equal(t, 4, minN)
	assert.Equal(t, 6, maxN)
}

// TestAdjacencyRejectsOutOfRangeFace verifies that a mesh with a face
// referencing a nonexistent vertex fails adjacency construction instead
// of panicking. Binary surface decoding does not validate face bounds,
// so this is where a corrupt file must surface.
func TestAdjacencyRejectsOutOfRangeFace(t *testing.T) {
	corrupt := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:    []int32{0, 1, 99},
	}

	_, err := corrupt.AdjacencyMatrix()
	assert.Error(t, err)
	_, err = corrupt.EdgeSet()
	assert.Error(t, err)
	_, err = corrupt.AdjacencyList(true)
	assert.Error(t, err)
	_, err = corrupt.AdjacencyList(false)
	assert.Error(t, err)

	negative := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:    []int32{0, 1, -1},
	}
	_, err = negative.AdjacencyList(true)
	assert.Error(t, err)
}

// TestExpandNeighborhood verifies k-hop expansion on the cube. With at
// most 2 hops every vertex reaches every other vertex of the cube.
func TestExpandNeighborhood(t *testing.T) {
	adj, err := Cube().AdjacencyList(true)
	require.NoError(t, err)

	same, err := ExpandNeighborhood(adj, 0)
	require.NoError(t, err)
	assert.Equal(t, adj, same)

	one, err := ExpandNeighborhood(adj, 1)
	require.NoError(t, err)
	assert.Equal(t, adj, one)

	two, err := ExpandNeighborhood(adj, 2)
	require.NoError(t, err)
	for v, neighbors := range two {
		assert.Len(t, neighbors, 7, "vertex %d should reach all other cube vertices in 2 hops", v)
		assert.NotContains(t, neighbors, v)
	}

	_, err = ExpandNeighborhood(adj, -1)
	assert.Error(t, err)
}

// TestSmoothData verifies the exact unnormalized update formula on a
// two-vertex mesh and the output size on the cube.
func TestSmoothData(t *testing.T) {
	// Two mutually adjacent vertices, one iteration:
	// new[v] = old[v] + old[u]/2.
	adj := [][]int{{1}, {0}}
	got, err := SmoothData(adj, []float32{2.0, 4.0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.0 + 4.0/2, 4.0 + 2.0/2}, got)

	// Second iteration runs on the first iteration's snapshot.
	got, err = SmoothData(adj, []float32{2.0, 4.0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{4.0 + 5.0/2, 5.0 + 4.0/2}, got)

	cubeAdj, err := Cube().AdjacencyList(true)
	require.NoError(t, err)
	pvd := []float32{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7}
	smoothed, err := SmoothData(cubeAdj, pvd, 2)
	require.NoError(t, err)
	assert.Len(t, smoothed, len(pvd))

	// Zero iterations return a copy of the input.
	same, err := SmoothData(cubeAdj, pvd, 0)
	require.NoError(t, err)
	assert.Equal(t, pvd, same)

	_, err = SmoothData(cubeAdj, pvd[:4], 1)
	assert.Error(t, err, "data length must match adjacency list length")
}

// TestSmoothDataNaNPropagation verifies that a NaN input value spreads
// to all neighbors over iterations, per IEEE-754 arithmetic.
func TestSmoothDataNaNPropagation(t *testing.T) {
	cubeAdj, err := Cube().AdjacencyList(true)
	require.NoError(t, err)
	pvd := []float32{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7}
	pvd[0] = float32(math.NaN())

	smoothed, err := SmoothData(cubeAdj, pvd, 1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(smoothed[0])))
	for _, u := range cubeAdj[0] {
		assert.True(t, math.IsNaN(float64(smoothed[u])), "neighbor %d of the NaN vertex must be NaN after one iteration", u)
	}

	// After two iterations the whole cube is reached: vertex 0 has 6
	// neighbors and every remaining vertex neighbors one of them.
	smoothed, err = SmoothData(cubeAdj, pvd, 2)
	require.NoError(t, err)
	for v := range smoothed {
		assert.True(t, math.IsNaN(float64(smoothed[v])), "vertex %d should be NaN after two iterations", v)
	}

	// The input must not have been modified.
	assert.Equal(t, float32(1.1), pvd[1])
}

// BenchmarkSmoothData benchmarks smoothing on a larger grid mesh.
func BenchmarkSmoothData(b *testing.B) {
	grid, err := Grid(100, 100, 1.0, 1.0)
	if err != nil {
		b.Fatal(err)
	}
	adj, err := grid.AdjacencyList(false)
	if err != nil {
		b.Fatal(err)
	}
	pvd := make([]float32, grid.NumVertices())
	for i := range pvd {
		pvd[i] = float32(i % 17)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SmoothData(adj, pvd, 5); err != nil {
			b.Fatal(err)
		}
	}
}
