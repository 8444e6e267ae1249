package fsio

import (
	"fmt"
	"io"
	"os"

	"github.com/dfsp-spirit/libfs/pkg/endian"
	"github.com/dfsp-spirit/libfs/pkg/mesh"
)

// SurfMagic is the 24-bit magic number of binary surface files.
const SurfMagic int32 = 0xFFFFFE

// surfCreatorLine is the creator line written by EncodeSurf. Readers
// discard the line content, only its newline termination matters.
const surfCreatorLine = "Created by libfs"

// DecodeSurf reads a binary triangulated surface from a sequential byte
// source. Unlike curv, a magic mismatch here is fatal. Face-index bounds
// are deliberately not validated at this layer, so broken files remain
// inspectable; the mesh adjacency builders reject out-of-range indices
// before touching them.
func DecodeSurf(r io.Reader) (*mesh.Mesh, error) {
	er := endian.NewReader(r)

	var magic int32
	er.ReadUint24(&magic)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading surf magic: %w", err)
	}
	if magic != SurfMagic {
		return nil, fmt.Errorf("%w: got %#x, expected %#x", ErrMagicMismatch, magic, SurfMagic)
	}

	// Creator and comment lines. Contents are discarded.
	er.ReadLine()
	er.ReadLine()

	var numVerts, numFaces int32
	er.ReadInt32(&numVerts)
	er.ReadInt32(&numFaces)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading surf header: %w", err)
	}
	if numVerts < 0 || numFaces < 0 {
		return nil, fmt.Errorf("surf header declares negative counts: %d vertices, %d faces", numVerts, numFaces)
	}

	vertices := endian.ReadScalars[float32](er, int(numVerts)*3)
	faces := endian.ReadScalars[int32](er, int(numFaces)*3)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading surf geometry: %w", err)
	}
	return &mesh.Mesh{Vertices: vertices, Faces: faces}, nil
}

// EncodeSurf writes a mesh as a binary surface file.
func EncodeSurf(w io.Writer, m *mesh.Mesh) error {
	ew := endian.NewWriter(w)
	ew.WriteUint24(SurfMagic)
	ew.WriteString(surfCreatorLine + "\n")
	ew.WriteString("\n")
	ew.WriteInt32(int32(m.NumVertices()))
	ew.WriteInt32(int32(m.NumFaces()))
	endian.WriteScalars(ew, m.Vertices)
	endian.WriteScalars(ew, m.Faces)
	if err := ew.Err(); err != nil {
		return fmt.Errorf("writing surf data: %w", err)
	}
	return nil
}

// ReadSurf reads a binary surface file from disk.
func ReadSurf(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening surf file: %w", err)
	}
	defer f.Close()
	m, err := DecodeSurf(f)
	if err != nil {
		return nil, fmt.Errorf("reading surf file %s: %w", path, err)
	}
	return m, nil
}

// WriteSurf writes a mesh to a binary surface file.
func WriteSurf(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating surf file: %w", err)
	}
	defer f.Close()
	if err := EncodeSurf(f, m); err != nil {
		return fmt.Errorf("writing surf file %s: %w", path, err)
	}
	return f.Close()
}
