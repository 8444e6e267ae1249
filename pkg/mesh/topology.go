package mesh

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// Edge is a directed vertex index pair. Every undirected mesh edge
// appears twice in an edge set, once per direction.
type Edge struct {
	I, J int
}

// AdjacencyMatrix computes the dense symmetric vertex adjacency matrix
// of the mesh. Two vertices are adjacent when they share a triangle
// edge. The matrix costs O(n^2) memory, which is fine for modest meshes
// and fast to query; use EdgeSet for very large surfaces. A face index
// outside the vertex range fails the call; surface codecs do not
// validate faces, so a corrupt file surfaces here instead of panicking.
func (m *Mesh) AdjacencyMatrix() ([][]bool, error) {
	if err := m.checkFaces(); err != nil {
		return nil, err
	}
	n := m.NumVertices()
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for f := 0; f < m.NumFaces(); f++ {
		a, b, c := m.Faces[f*3], m.Faces[f*3+1], m.Faces[f*3+2]
		adj[a][b], adj[b][a] = true, true
		adj[b][c], adj[c][b] = true, true
		adj[c][a], adj[a][c] = true, true
	}
	return adj, nil
}

// EdgeSet computes the set of directed edges of the mesh. For every
// triangle edge between vertices i and j, both (i,j) and (j,i) are
// present. Memory scales with the edge count rather than the square of
// the vertex count. Like AdjacencyMatrix, out-of-range face indices
// fail the call.
func (m *Mesh) EdgeSet() (map[Edge]struct{}, error) {
	if err := m.checkFaces(); err != nil {
		return nil, err
	}
	edges := make(map[Edge]struct{}, m.NumFaces()*6)
	for f := 0; f < m.NumFaces(); f++ {
		a, b, c := int(m.Faces[f*3]), int(m.Faces[f*3+1]), int(m.Faces[f*3+2])
		edges[Edge{a, b}] = struct{}{}
		edges[Edge{b, a}] = struct{}{}
		edges[Edge{b, c}] = struct{}{}
		edges[Edge{c, b}] = struct{}{}
		edges[Edge{c, a}] = struct{}{}
		edges[Edge{a, c}] = struct{}{}
	}
	return edges, nil
}

// AdjacencyList computes the neighbor list for every vertex. Neighbor
// lists contain no self entries and no duplicates, and are sorted in
// ascending order. When viaMatrix is true the list is derived from the
// dense adjacency matrix (default, fast for modest meshes); otherwise it
// is derived from the edge set, trading speed for memory on large
// meshes. Both paths produce identical results.
func (m *Mesh) AdjacencyList(viaMatrix bool) ([][]int, error) {
	n := m.NumVertices()
	adj := make([][]int, n)
	if viaMatrix {
		matrix, err := m.AdjacencyMatrix()
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if matrix[i][j] && i != j {
					adj[i] = append(adj[i], j)
				}
			}
		}
		return adj, nil
	}
	edges, err := m.EdgeSet()
	if err != nil {
		return nil, err
	}
	for e := range edges {
		if e.I != e.J {
			adj[e.I] = append(adj[e.I], e.J)
		}
	}
	for i := range adj {
		sort.Ints(adj[i])
	}
	return adj, nil
}

// ExpandNeighborhood returns a new adjacency list in which each vertex's
// neighbor set is the union of all vertices reachable within k hops,
// excluding the vertex itself. k=0 returns the input unchanged.
func ExpandNeighborhood(adj [][]int, k int) ([][]int, error) {
	if k < 0 {
		return nil, fmt.Errorf("neighborhood expansion requires k >= 0, got %d", k)
	}
	if k == 0 {
		return adj, nil
	}
	expanded := make([][]int, len(adj))
	for v := range adj {
		// Breadth-first expansion bounded by k hops.
		visited := map[int]int{v: 0}
		frontier := []int{v}
		for hop := 1; hop <= k && len(frontier) > 0; hop++ {
			var next []int
			for _, u := range frontier {
				for _, w := range adj[u] {
					if _, seen := visited[w]; !seen {
						visited[w] = hop
						next = append(next, w)
					}
				}
			}
			frontier = next
		}
		delete(visited, v)
		neighbors := make([]int, 0, len(visited))
		for u := range visited {
			neighbors = append(neighbors, u)
		}
		sort.Ints(neighbors)
		expanded[v] = neighbors
	}
	return expanded, nil
}

// SmoothData smooths a per-vertex scalar field over the given adjacency
// list for the requested number of iterations. Each iteration updates
// all vertices in lock-step from a read-only snapshot of the previous
// iteration:
//
//	new[v] = old[v] + (sum of old[u] over neighbors u) / (len(adj[v])+1)
//
// The weights deliberately do not sum to 1; this reproduces the exact
// historical formula, so smoothed magnitudes grow with iteration count.
// NaN values propagate to neighboring vertices per IEEE-754 arithmetic.
//
// Per-vertex updates within an iteration are independent and are spread
// across all CPU cores; iterations themselves run strictly in sequence.
func SmoothData(adj [][]int, data []float32, iterations int) ([]float32, error) {
	if len(adj) != len(data) {
		return nil, fmt.Errorf("adjacency list has %d vertices but data has %d values", len(adj), len(data))
	}
	if iterations < 0 {
		return nil, fmt.Errorf("smoothing requires a non-negative iteration count, got %d", iterations)
	}
	old := make([]float32, len(data))
	copy(old, data)
	if iterations == 0 || len(data) == 0 {
		return old, nil
	}
	next := make([]float32, len(data))

	workers := runtime.NumCPU()
	if workers > len(data) {
		workers = len(data)
	}
	chunk := (len(data) + workers - 1) / workers

	for it := 0; it < iterations; it++ {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if hi > len(data) {
				hi = len(data)
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for v := lo; v < hi; v++ {
					var sum float32
					for _, u := range adj[v] {
						sum += old[u]
					}
					next[v] = old[v] + sum/float32(len(adj[v])+1)
				}
			}(lo, hi)
		}
		wg.Wait()
		old, next = next, old
	}
	return old, nil
}
