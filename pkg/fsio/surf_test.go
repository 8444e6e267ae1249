package fsio

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfsp-spirit/libfs/pkg/mesh"
)

// TestSurfRoundTrip verifies that a mesh written as a binary surface
// file decodes to identical vertex and face arrays.
func TestSurfRoundTrip(t *testing.T) {
	cube := mesh.Cube()
	var buf bytes.Buffer
	require.NoError(t, EncodeSurf(&buf, cube))

	got, err := DecodeSurf(&buf)
	require.NoError(t, err)
	assert.Equal(t, cube.Vertices, got.Vertices)
	assert.Equal(t, cube.Faces, got.Faces)
}

// TestSurfMagicMismatchIsFatal verifies that an altered magic byte
// rejects the file. Unlike curv, surf files have no known producers
// with broken magic numbers.
func TestSurfMagicMismatchIsFatal(t *testing.T) {
	cube := mesh.Cube()
	var buf bytes.Buffer
	require.NoError(t, EncodeSurf(&buf, cube))

	corrupted := buf.Bytes()
	corrupted[2] ^= 0x01

	_, err := DecodeSurf(bytes.NewReader(corrupted))
	assert.ErrorIs(t, err, ErrMagicMismatch)
}

// TestSurfTruncatedFaces verifies that a surface with missing face data
// fails instead of returning a partial mesh.
func TestSurfTruncatedFaces(t *testing.T) {
	cube := mesh.Cube()
	var buf bytes.Buffer
	require.NoError(t, EncodeSurf(&buf, cube))
	truncated := buf.Bytes()[:buf.Len()-10]

	_, err := DecodeSurf(bytes.NewReader(truncated))
	assert.Error(t, err)
}

// TestSurfCorruptFaceIndexFailsAdjacency verifies the division of
// labor for face-index bounds: the codec decodes a surface with an
// out-of-range face index without complaint, keeping broken files
// inspectable, and the topology layer then rejects it cleanly.
func TestSurfCorruptFaceIndexFailsAdjacency(t *testing.T) {
	bad := &mesh.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:    []int32{0, 1, 99},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeSurf(&buf, bad))

	got, err := DecodeSurf(&buf)
	require.NoError(t, err)
	assert.Equal(t, bad.Faces, got.Faces)

	_, err = got.AdjacencyList(true)
	assert.Error(t, err)
}

// TestSurfFileRoundTrip exercises the path-based entry points together
// with the mesh format dispatch.
func TestSurfFileRoundTrip(t *testing.T) {
	pyramid := mesh.Pyramid()
	path := filepath.Join(t.TempDir(), "lh.white")
	require.NoError(t, WriteSurf(path, pyramid))

	got, err := ReadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, pyramid.Vertices, got.Vertices)
	assert.Equal(t, pyramid.Faces, got.Faces)
	assert.Equal(t, 5, got.NumVertices())
	assert.Equal(t, 6, got.NumFaces())
}
