package fsio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// labelCommentLine is the comment written as the first line of a label
// file. The format reserves the first line for free-form commentary.
const labelCommentLine = "#!ascii label, written by libfs"

// Label is a list of vertices or voxels defining a region or mask. The
// five sequences are parallel and equally long. For surface labels the
// vertex indices are meaningful; for volume labels the coordinates are.
// Value often holds a cosmetic 0.0 but may carry a continuous statistic.
type Label struct {
	Vertex []int32
	CoordX []float32
	CoordY []float32
	CoordZ []float32
	Value  []float32
}

// NumEntries returns the number of entries in the label.
func (l *Label) NumEntries() int { return len(l.Vertex) }

// VertInLabel returns a boolean slice of length totalVertexCount that is
// true exactly at the vertex indices present in the label. If
// totalVertexCount is not larger than the largest referenced vertex
// index the request is inconsistent and fails cleanly instead of
// indexing past the declared size.
func (l *Label) VertInLabel(totalVertexCount int) ([]bool, error) {
	maxIdx := int32(-1)
	for _, v := range l.Vertex {
		if v > maxIdx {
			maxIdx = v
		}
	}
	if int(maxIdx) >= totalVertexCount {
		return nil, fmt.Errorf("%w: label references vertex %d but only %d vertices were requested",
			ErrVertexCountTooSmall, maxIdx, totalVertexCount)
	}
	in := make([]bool, totalVertexCount)
	for _, v := range l.Vertex {
		in[v] = true
	}
	return in, nil
}

// DecodeLabel parses ASCII label data. The first line is a free-form
// comment, the second the decimal entry count, followed by one line per
// entry: vertex index, x, y, z coordinates and a value. A line that does
// not parse, or a line count that differs from the declared count, fails
// the whole read.
func DecodeLabel(r io.Reader) (*Label, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("label data is missing the comment line")
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("label data is missing the entry count line")
	}
	declared, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("parsing label entry count %q: %w", scanner.Text(), err)
	}

	l := &Label{
		Vertex: make([]int32, 0, declared),
		CoordX: make([]float32, 0, declared),
		CoordY: make([]float32, 0, declared),
		CoordZ: make([]float32, 0, declared),
		Value:  make([]float32, 0, declared),
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("label entry %d has %d fields, expected 5", l.NumEntries(), len(fields))
		}
		vertex, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing label vertex index %q: %w", fields[0], err)
		}
		var coords [4]float32
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing label entry field %q: %w", f, err)
			}
			coords[i] = float32(v)
		}
		l.Vertex = append(l.Vertex, int32(vertex))
		l.CoordX = append(l.CoordX, coords[0])
		l.CoordY = append(l.CoordY, coords[1])
		l.CoordZ = append(l.CoordZ, coords[2])
		l.Value = append(l.Value, coords[3])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading label data: %w", err)
	}
	if l.NumEntries() != declared {
		return nil, fmt.Errorf("%w: declared %d entries, parsed %d", ErrLabelCountMismatch, declared, l.NumEntries())
	}
	return l, nil
}

// labelFloat formats a float column value in the shortest form that
// parses back to the identical float32. A fixed decimal count would
// flush small magnitudes (legitimate in the value column) to zero.
func labelFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// EncodeLabel writes the label in ASCII format, one entry per line in
// the original order.
func EncodeLabel(w io.Writer, l *Label) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, labelCommentLine)
	fmt.Fprintln(bw, l.NumEntries())
	for i := range l.Vertex {
		fmt.Fprintf(bw, "%d %s %s %s %s\n", l.Vertex[i],
			labelFloat(l.CoordX[i]), labelFloat(l.CoordY[i]), labelFloat(l.CoordZ[i]), labelFloat(l.Value[i]))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing label data: %w", err)
	}
	return nil
}

// ReadLabel reads an ASCII label file from disk.
func ReadLabel(path string) (*Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label file: %w", err)
	}
	defer f.Close()
	l, err := DecodeLabel(f)
	if err != nil {
		return nil, fmt.Errorf("reading label file %s: %w", path, err)
	}
	return l, nil
}

// WriteLabel writes a label to a file.
func WriteLabel(path string, l *Label) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating label file: %w", err)
	}
	defer f.Close()
	if err := EncodeLabel(f, l); err != nil {
		return fmt.Errorf("writing label file %s: %w", path, err)
	}
	return f.Close()
}
