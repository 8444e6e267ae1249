package fsio

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/dfsp-spirit/libfs/pkg/endian"
)

// MGH data types. Only these four scalar kinds are supported.
const (
	MriUchar int32 = 0
	MriInt   int32 = 1
	MriFloat int32 = 3
	MriShort int32 = 4
)

// mghHeaderSize is the fixed size of the header region preceding the
// payload. The space after the last written header field is zero
// padding.
const mghHeaderSize = 284

// mghVersion is the only supported MGH format version.
const mghVersion int32 = 1

// MghHeader describes the dimensions, data type and spatial orientation
// of an MGH volume. The RAS fields (voxel sizes, direction cosines Mdc
// and center Pxyz_c) are only meaningful when RasGoodFlag is 1.
type MghHeader struct {
	Dim1, Dim2, Dim3, Dim4 int32
	Dtype                  int32
	Dof                    int32
	RasGoodFlag            int16

	XSize, YSize, ZSize float32
	Mdc                 [9]float32 // column-major direction cosines
	PxyzC               [3]float32
}

// NumValues returns the number of payload values implied by the header
// dimensions.
func (h *MghHeader) NumValues() int {
	return int(h.Dim1) * int(h.Dim2) * int(h.Dim3) * int(h.Dim4)
}

// Vox2Ras assembles the 4x4 voxel-to-RAS transformation matrix from the
// direction cosines, voxel sizes and volume center. It fails when the
// header's RAS block is not marked valid.
func (h *MghHeader) Vox2Ras() (*mat.Dense, error) {
	if h.RasGoodFlag != 1 {
		return nil, fmt.Errorf("MGH header has ras_good_flag %d, RAS block is not valid", h.RasGoodFlag)
	}
	// Scale the direction cosine columns by the voxel sizes.
	sizes := [3]float32{h.XSize, h.YSize, h.ZSize}
	m := mat.NewDense(4, 4, nil)
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m.Set(row, col, float64(h.Mdc[col*3+row])*float64(sizes[col]))
		}
	}
	// Translation puts the volume center at Pxyz_c.
	half := []float64{float64(h.Dim1) / 2, float64(h.Dim2) / 2, float64(h.Dim3) / 2}
	for row := 0; row < 3; row++ {
		t := float64(h.PxyzC[row])
		for col := 0; col < 3; col++ {
			t -= m.At(row, col) * half[col]
		}
		m.Set(row, 3, t)
	}
	m.Set(3, 3, 1)
	return m, nil
}

// MghData is the typed payload of an MGH volume, a tagged union keyed by
// Dtype. Exactly one of the slices is populated; which one is a
// structural property of the value, not a runtime convention.
type MghData struct {
	Dtype int32

	Uchar []uint8
	Int   []int32
	Float []float32
	Short []int16
}

// NumValues returns the length of the populated payload slice.
func (d *MghData) NumValues() (int, error) {
	switch d.Dtype {
	case MriUchar:
		return len(d.Uchar), nil
	case MriInt:
		return len(d.Int), nil
	case MriFloat:
		return len(d.Float), nil
	case MriShort:
		return len(d.Short), nil
	default:
		return 0, fmt.Errorf("%w: dtype %d", ErrUnsupportedMghDtype, d.Dtype)
	}
}

// Mgh is a decoded MGH volume.
type Mgh struct {
	Header MghHeader
	Data   MghData
}

// decodeMghHeaderFields reads the header fields up to and including the
// optional RAS block, returning the number of header bytes consumed so
// far. Padding handling is left to the caller, since it differs between
// the sequential and the random-access entry points.
func decodeMghHeaderFields(er *endian.Reader) (MghHeader, int64, error) {
	var h MghHeader

	var version int32
	er.ReadInt32(&version)
	if err := er.Err(); err != nil {
		return h, er.Count(), fmt.Errorf("reading MGH version: %w", err)
	}
	if version != mghVersion {
		return h, er.Count(), fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedMghVersion, version, mghVersion)
	}

	er.ReadInt32(&h.Dim1)
	er.ReadInt32(&h.Dim2)
	er.ReadInt32(&h.Dim3)
	er.ReadInt32(&h.Dim4)
	er.ReadInt32(&h.Dtype)
	er.ReadInt32(&h.Dof)
	er.ReadInt16(&h.RasGoodFlag)
	if err := er.Err(); err != nil {
		return h, er.Count(), fmt.Errorf("reading MGH header: %w", err)
	}

	if h.RasGoodFlag == 1 {
		er.ReadFloat32(&h.XSize)
		er.ReadFloat32(&h.YSize)
		er.ReadFloat32(&h.ZSize)
		for i := range h.Mdc {
			er.ReadFloat32(&h.Mdc[i])
		}
		for i := range h.PxyzC {
			er.ReadFloat32(&h.PxyzC[i])
		}
		if err := er.Err(); err != nil {
			return h, er.Count(), fmt.Errorf("reading MGH RAS block: %w", err)
		}
	}

	switch h.Dtype {
	case MriUchar, MriInt, MriFloat, MriShort:
	default:
		return h, er.Count(), fmt.Errorf("%w: dtype %d", ErrUnsupportedMghDtype, h.Dtype)
	}
	return h, er.Count(), nil
}

func decodeMghPayload(er *endian.Reader, h MghHeader) (MghData, error) {
	d := MghData{Dtype: h.Dtype}
	n := h.NumValues()
	switch h.Dtype {
	case MriUchar:
		d.Uchar = endian.ReadScalars[uint8](er, n)
	case MriInt:
		d.Int = endian.ReadScalars[int32](er, n)
	case MriFloat:
		d.Float = endian.ReadScalars[float32](er, n)
	case MriShort:
		d.Short = endian.ReadScalars[int16](er, n)
	}
	if err := er.Err(); err != nil {
		return d, fmt.Errorf("reading MGH payload of %d values: %w", n, err)
	}
	return d, nil
}

// DecodeMgh reads an MGH volume from a purely sequential byte source.
// The header padding is consumed byte by byte rather than seeked over,
// so this entry point also works when r is a decompressing filter that
// cannot skip ahead.
func DecodeMgh(r io.Reader) (*Mgh, error) {
	er := endian.NewReader(r)
	h, consumed, err := decodeMghHeaderFields(er)
	if err != nil {
		return nil, err
	}
	er.Discard(mghHeaderSize - consumed)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("consuming MGH header padding: %w", err)
	}
	d, err := decodeMghPayload(er, h)
	if err != nil {
		return nil, err
	}
	return &Mgh{Header: h, Data: d}, nil
}

// DecodeMghAt reads an MGH volume from a random-access byte source,
// seeking directly past the header padding. For identical bytes it
// produces exactly the same result as DecodeMgh.
func DecodeMghAt(rs io.ReadSeeker) (*Mgh, error) {
	er := endian.NewReader(rs)
	h, _, err := decodeMghHeaderFields(er)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(mghHeaderSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking past MGH header padding: %w", err)
	}
	// A fresh reader, since the seek invalidated the old one's position
	// accounting.
	d, err := decodeMghPayload(endian.NewReader(rs), h)
	if err != nil {
		return nil, err
	}
	return &Mgh{Header: h, Data: d}, nil
}

// EncodeMgh writes an MGH volume to w. A payload whose length does not
// match the header dimensions is a logic error; the check runs before
// any byte is emitted so a failed write never leaves a partial payload.
func EncodeMgh(w io.Writer, m *Mgh) error {
	if m.Data.Dtype != m.Header.Dtype {
		return fmt.Errorf("%w: header dtype %d, data dtype %d", ErrUnsupportedMghDtype, m.Header.Dtype, m.Data.Dtype)
	}
	n, err := m.Data.NumValues()
	if err != nil {
		return err
	}
	if n != m.Header.NumValues() {
		return fmt.Errorf("%w: payload has %d values, dimensions imply %d", ErrPayloadSizeMismatch, n, m.Header.NumValues())
	}

	ew := endian.NewWriter(w)
	ew.WriteInt32(mghVersion)
	ew.WriteInt32(m.Header.Dim1)
	ew.WriteInt32(m.Header.Dim2)
	ew.WriteInt32(m.Header.Dim3)
	ew.WriteInt32(m.Header.Dim4)
	ew.WriteInt32(m.Header.Dtype)
	ew.WriteInt32(m.Header.Dof)
	ew.WriteInt16(m.Header.RasGoodFlag)
	if m.Header.RasGoodFlag == 1 {
		ew.WriteFloat32(m.Header.XSize)
		ew.WriteFloat32(m.Header.YSize)
		ew.WriteFloat32(m.Header.ZSize)
		for _, v := range m.Header.Mdc {
			ew.WriteFloat32(v)
		}
		for _, v := range m.Header.PxyzC {
			ew.WriteFloat32(v)
		}
	}
	ew.WriteZeros(mghHeaderSize - ew.Count())

	switch m.Data.Dtype {
	case MriUchar:
		endian.WriteScalars(ew, m.Data.Uchar)
	case MriInt:
		endian.WriteScalars(ew, m.Data.Int)
	case MriFloat:
		endian.WriteScalars(ew, m.Data.Float)
	case MriShort:
		endian.WriteScalars(ew, m.Data.Short)
	}
	if err := ew.Err(); err != nil {
		return fmt.Errorf("writing MGH data: %w", err)
	}
	return nil
}

// ReadMgh reads an MGH file from disk using the random-access decoder.
func ReadMgh(path string) (*Mgh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MGH file: %w", err)
	}
	defer f.Close()
	m, err := DecodeMghAt(f)
	if err != nil {
		return nil, fmt.Errorf("reading MGH file %s: %w", path, err)
	}
	return m, nil
}

// WriteMgh writes an MGH volume to a file.
func WriteMgh(path string, m *Mgh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating MGH file: %w", err)
	}
	defer f.Close()
	if err := EncodeMgh(f, m); err != nil {
		return fmt.Errorf("writing MGH file %s: %w", path, err)
	}
	return f.Close()
}
