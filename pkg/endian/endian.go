// Package endian provides big-endian read/write primitives over byte streams.
// All FreeSurfer binary formats store their scalars big-endian regardless of
// the host byte order, so every codec in this module is built on top of this
// package.
package endian

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

// NativeIsBig reports whether the host stores multi-byte integers in
// big-endian order. It is computed once at process start; callers never
// need to re-detect.
var NativeIsBig = binary.NativeEndian.Uint16([]byte{0x12, 0x34}) == 0x1234

// Order is the byte order used by all FreeSurfer binary formats.
var Order = binary.BigEndian

const discardChunk = 4096

// Reader wraps an io.Reader and decodes big-endian scalars from it.
// It tracks the first error encountered; after an error, all subsequent
// read operations become no-ops. This allows codecs to issue a linear
// sequence of reads and check the error state once at the end of each
// logical step.
type Reader struct {
	r     io.Reader
	count int64 // total bytes consumed
	err   error // first error encountered
}

// NewReader creates a Reader decoding big-endian values from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Count returns the total number of bytes consumed so far.
func (r *Reader) Count() int64 { return r.count }

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		if err == io.EOF {
			// A scalar read that hits EOF mid-value is a truncated file,
			// not a clean end of stream.
			err = io.ErrUnexpectedEOF
		}
		r.err = err
	}
}

// readFull reads exactly len(buf) bytes into buf.
func (r *Reader) readFull(buf []byte) bool {
	if r.err != nil {
		return false
	}
	n, err := io.ReadFull(r.r, buf)
	r.count += int64(n)
	r.setError(err)
	return r.err == nil
}

// ReadUint8 reads a single unsigned byte.
func (r *Reader) ReadUint8(dest *uint8) {
	var buf [1]byte
	if r.readFull(buf[:]) {
		*dest = buf[0]
	}
}

// ReadInt16 reads a big-endian signed 16-bit integer.
func (r *Reader) ReadInt16(dest *int16) {
	var buf [2]byte
	if r.readFull(buf[:]) {
		*dest = int16(Order.Uint16(buf[:]))
	}
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadInt32(dest *int32) {
	var buf [4]byte
	if r.readFull(buf[:]) {
		*dest = int32(Order.Uint32(buf[:]))
	}
}

// ReadUint24 reads three bytes and unpacks them into a 32-bit integer
// with the high byte zero. FreeSurfer uses 24-bit values as file magic
// numbers.
func (r *Reader) ReadUint24(dest *int32) {
	var buf [3]byte
	if r.readFull(buf[:]) {
		*dest = int32(buf[0])<<16 | int32(buf[1])<<8 | int32(buf[2])
	}
}

// ReadFloat32 reads a big-endian IEEE-754 32-bit float.
func (r *Reader) ReadFloat32(dest *float32) {
	var buf [4]byte
	if r.readFull(buf[:]) {
		*dest = math.Float32frombits(Order.Uint32(buf[:]))
	}
}

// ReadBytes reads exactly n bytes and returns them as a fresh slice.
func (r *Reader) ReadBytes(n int) []byte {
	if r.err != nil || n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	if !r.readFull(buf) {
		return nil
	}
	return buf
}

// ReadLine consumes bytes up to and including the next '\n' and returns
// the line without the terminator. Bytes are consumed one at a time so
// the reader never over-reads past the line, which matters when the
// underlying source cannot seek back.
func (r *Reader) ReadLine() string {
	if r.err != nil {
		return ""
	}
	var line []byte
	var buf [1]byte
	for {
		if !r.readFull(buf[:]) {
			return ""
		}
		if buf[0] == '\n' {
			return string(line)
		}
		line = append(line, buf[0])
	}
}

// Discard consumes exactly n bytes sequentially without seeking. This is
// a hard requirement for sources backed by a decompressing filter, which
// cannot skip ahead.
func (r *Reader) Discard(n int64) {
	if r.err != nil || n <= 0 {
		return
	}
	var buf [discardChunk]byte
	for n > 0 {
		chunk := n
		if chunk > discardChunk {
			chunk = discardChunk
		}
		if !r.readFull(buf[:chunk]) {
			return
		}
		n -= chunk
	}
}

// Writer wraps an io.Writer and encodes big-endian scalars to it.
// Like Reader, it latches the first error and turns later writes into
// no-ops.
type Writer struct {
	w     io.Writer
	count int64
	err   error
}

// NewWriter creates a Writer encoding big-endian values to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Count returns the total number of bytes written so far.
func (w *Writer) Count() int64 { return w.count }

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error { return w.err }

func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *Writer) write(buf []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
}

// WriteUint8 writes a single unsigned byte.
func (w *Writer) WriteUint8(v uint8) {
	w.write([]byte{v})
}

// WriteInt16 writes a big-endian signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) {
	var buf [2]byte
	Order.PutUint16(buf[:], uint16(v))
	w.write(buf[:])
}

// WriteInt32 writes a big-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	var buf [4]byte
	Order.PutUint32(buf[:], uint32(v))
	w.write(buf[:])
}

// WriteUint24 packs the low three bytes of v in big-endian order. The
// high byte of v is ignored.
func (w *Writer) WriteUint24(v int32) {
	w.write([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
}

// WriteFloat32 writes a big-endian IEEE-754 32-bit float.
func (w *Writer) WriteFloat32(v float32) {
	var buf [4]byte
	Order.PutUint32(buf[:], math.Float32bits(v))
	w.write(buf[:])
}

// WriteBytes writes buf verbatim.
func (w *Writer) WriteBytes(buf []byte) {
	w.write(buf)
}

// WriteString writes s verbatim, without any terminator.
func (w *Writer) WriteString(s string) {
	w.write([]byte(s))
}

// WriteZeros writes n zero bytes, used for header padding.
func (w *Writer) WriteZeros(n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	var buf [discardChunk]byte
	for n > 0 {
		chunk := n
		if chunk > discardChunk {
			chunk = discardChunk
		}
		w.write(buf[:chunk])
		if w.err != nil {
			return
		}
		n -= chunk
	}
}

// Scalar covers the fixed-width numeric kinds that appear in FreeSurfer
// payloads.
type Scalar interface {
	constraints.Integer | constraints.Float
}

// ReadScalars decodes n big-endian values of type T from r. On failure
// the reader's error state is set and nil is returned.
func ReadScalars[T Scalar](r *Reader, n int) []T {
	if r.err != nil || n < 0 {
		return nil
	}
	out := make([]T, n)
	if n == 0 {
		return out
	}
	if err := binary.Read(r.r, Order, out); err != nil {
		r.setError(fmt.Errorf("reading %d scalar values: %w", n, err))
		return nil
	}
	r.count += int64(n) * int64(binary.Size(out[0]))
	return out
}

// WriteScalars encodes all values of src to w in big-endian order.
func WriteScalars[T Scalar](w *Writer, src []T) {
	if w.err != nil || len(src) == 0 {
		return
	}
	if err := binary.Write(w.w, Order, src); err != nil {
		w.setError(fmt.Errorf("writing %d scalar values: %w", len(src), err))
		return
	}
	w.count += int64(len(src)) * int64(binary.Size(src[0]))
}
