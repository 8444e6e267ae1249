package mesh

import (
	"fmt"
	"math"
)

// SubmeshVertex extracts the submesh induced by the given vertex
// indices. The returned mapping translates original vertex indices to
// new 0-based indices in the order keep was given, and the returned mesh
// contains the gathered coordinates of the kept vertices plus only those
// original faces whose three vertices are all members of the kept set,
// with their indices rewritten through the mapping. Faces with one or
// two kept vertices are dropped entirely.
func (m *Mesh) SubmeshVertex(keep []int32) (map[int32]int32, *Mesh, error) {
	numVerts := int32(m.NumVertices())
	mapping := make(map[int32]int32, len(keep))
	vertices := make([]float32, 0, len(keep)*3)
	for i, orig := range keep {
		if orig < 0 || orig >= numVerts {
			return nil, nil, fmt.Errorf("kept vertex index %d out of range for mesh with %d vertices", orig, numVerts)
		}
		if _, dup := mapping[orig]; dup {
			return nil, nil, fmt.Errorf("kept vertex index %d appears more than once", orig)
		}
		mapping[orig] = int32(i)
		vertices = append(vertices, m.Vertices[orig*3], m.Vertices[orig*3+1], m.Vertices[orig*3+2])
	}

	var faces []int32
	for f := 0; f < m.NumFaces(); f++ {
		a, aok := mapping[m.Faces[f*3]]
		b, bok := mapping[m.Faces[f*3+1]]
		c, cok := mapping[m.Faces[f*3+2]]
		if aok && bok && cok {
			faces = append(faces, a, b, c)
		}
	}
	return mapping, &Mesh{Vertices: vertices, Faces: faces}, nil
}

// CurvDataForOrigMesh restores a per-vertex field defined over a submesh
// to the full vertex count of the original mesh. Positions present in
// the original-to-submesh mapping receive the submesh value; all other
// positions are NaN, marking them as not covered by the submesh.
func CurvDataForOrigMesh(submeshData []float32, mapping map[int32]int32, origNumVertices int) ([]float32, error) {
	nan := float32(math.NaN())
	full := make([]float32, origNumVertices)
	for i := range full {
		full[i] = nan
	}
	for orig, sub := range mapping {
		if orig < 0 || int(orig) >= origNumVertices {
			return nil, fmt.Errorf("mapping references original vertex %d, but the original mesh has %d vertices", orig, origNumVertices)
		}
		if sub < 0 || int(sub) >= len(submeshData) {
			return nil, fmt.Errorf("mapping references submesh vertex %d, but the submesh data has %d values", sub, len(submeshData))
		}
		full[orig] = submeshData[sub]
	}
	return full, nil
}
