package fsio

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dfsp-spirit/libfs/pkg/endian"
)

// CurvMagic is the 24-bit magic number of curv files.
const CurvMagic int32 = 0xFFFFFF

// curvDefaultNumFaces is the cosmetic face count written when the caller
// does not supply one. The field is informational only; readers ignore
// it.
const curvDefaultNumFaces int32 = 100000

// Curv holds per-vertex scalar data, e.g. cortical thickness. The vertex
// and face counts from the file header are kept for reference but the
// authoritative value count is len(Data).
type Curv struct {
	NumVertices        int32
	NumFaces           int32
	NumValuesPerVertex int32
	Data               []float32
}

// DecodeCurv reads curv data from a sequential byte source.
//
// A magic number mismatch is logged but not fatal, since some producers
// are known to omit or alter it. A value-per-vertex count other than 1
// rejects the file.
func DecodeCurv(r io.Reader) (*Curv, error) {
	er := endian.NewReader(r)

	var magic int32
	er.ReadUint24(&magic)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading curv magic: %w", err)
	}
	if magic != CurvMagic {
		log.Printf("curv: magic number is %#x, expected %#x; continuing anyway", magic, CurvMagic)
	}

	c := &Curv{}
	er.ReadInt32(&c.NumVertices)
	er.ReadInt32(&c.NumFaces)
	er.ReadInt32(&c.NumValuesPerVertex)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading curv header: %w", err)
	}
	if c.NumValuesPerVertex != 1 {
		return nil, fmt.Errorf("%w: got %d values per vertex", ErrUnsupportedCurvVariant, c.NumValuesPerVertex)
	}
	if c.NumVertices < 0 {
		return nil, fmt.Errorf("curv header declares negative vertex count %d", c.NumVertices)
	}

	c.Data = endian.ReadScalars[float32](er, int(c.NumVertices))
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading curv data: %w", err)
	}
	return c, nil
}

// EncodeCurv writes curv data to w. The vertex count is taken from
// len(c.Data); c.NumFaces is written as-is unless zero, in which case a
// cosmetic default is used. The values-per-vertex field is always
// written as 1.
func EncodeCurv(w io.Writer, c *Curv) error {
	numFaces := c.NumFaces
	if numFaces == 0 {
		numFaces = curvDefaultNumFaces
	}
	ew := endian.NewWriter(w)
	ew.WriteUint24(CurvMagic)
	ew.WriteInt32(int32(len(c.Data)))
	ew.WriteInt32(numFaces)
	ew.WriteInt32(1)
	endian.WriteScalars(ew, c.Data)
	if err := ew.Err(); err != nil {
		return fmt.Errorf("writing curv data: %w", err)
	}
	return nil
}

// ReadCurv reads a curv file from disk.
func ReadCurv(path string) (*Curv, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening curv file: %w", err)
	}
	defer f.Close()
	c, err := DecodeCurv(f)
	if err != nil {
		return nil, fmt.Errorf("reading curv file %s: %w", path, err)
	}
	return c, nil
}

// ReadCurvData reads a curv file and returns only the per-vertex values.
func ReadCurvData(path string) ([]float32, error) {
	c, err := ReadCurv(path)
	if err != nil {
		return nil, err
	}
	return c.Data, nil
}

// WriteCurv writes curv data to a file.
func WriteCurv(path string, c *Curv) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating curv file: %w", err)
	}
	defer f.Close()
	if err := EncodeCurv(f, c); err != nil {
		return fmt.Errorf("writing curv file %s: %w", path, err)
	}
	return f.Close()
}
