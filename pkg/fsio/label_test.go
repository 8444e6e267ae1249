package fsio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labelFixture mirrors the layout of FreeSurfer ASCII label files,
// including the free-form comment line.
const labelFixture = `#!ascii label  , from subject  vox2ras=TkReg
2
0  -1.852  -107.983  22.770 0.0000000000
1  -2.139  -108.102  22.826 0.0000000000
`

// TestLabelDecode parses a small label and checks all five parallel
// sequences.
func TestLabelDecode(t *testing.T) {
	l, err := DecodeLabel(strings.NewReader(labelFixture))
	require.NoError(t, err)

	assert.Equal(t, 2, l.NumEntries())
	assert.Equal(t, []int32{0, 1}, l.Vertex)
	assert.Equal(t, []float32{-1.852, -2.139}, l.CoordX)
	assert.Equal(t, []float32{-107.983, -108.102}, l.CoordY)
	assert.Equal(t, []float32{22.770, 22.826}, l.CoordZ)
	assert.Equal(t, []float32{0, 0}, l.Value)
}

// TestLabelRoundTrip verifies that writing and re-reading a label
// preserves all entries in order, bit-exact. The value column includes
// magnitudes far below any fixed decimal precision, since it may carry
// a continuous statistic rather than the cosmetic 0.0.
func TestLabelRoundTrip(t *testing.T) {
	orig := &Label{
		Vertex: []int32{7, 3, 12, 9},
		CoordX: []float32{1.5, -2.25, 0, -107.983},
		CoordY: []float32{0.5, 1.25, -3, 22.77},
		CoordZ: []float32{-1, 2, 3.5, 1e-20},
		Value:  []float32{0, 0.25, 1.5e-8, -3.2e-7},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeLabel(&buf, orig))

	got, err := DecodeLabel(&buf)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

// TestLabelCountMismatch verifies that a declared count disagreeing with
// the number of data lines fails the read.
func TestLabelCountMismatch(t *testing.T) {
	short := `# comment
3
0 1.0 2.0 3.0 0.0
1 1.0 2.0 3.0 0.0
`
	_, err := DecodeLabel(strings.NewReader(short))
	assert.ErrorIs(t, err, ErrLabelCountMismatch)
}

// TestLabelMalformedLine verifies that unparseable data lines fail the
// read instead of being skipped.
func TestLabelMalformedLine(t *testing.T) {
	bad := `# comment
1
0 1.0 two 3.0 0.0
`
	_, err := DecodeLabel(strings.NewReader(bad))
	assert.Error(t, err)

	missing := `# comment
1
0 1.0 2.0 3.0
`
	_, err = DecodeLabel(strings.NewReader(missing))
	assert.Error(t, err)
}

// TestVertInLabel verifies the membership computation and the explicit
// failure when the requested vertex count is too small for the label.
func TestVertInLabel(t *testing.T) {
	l := &Label{Vertex: []int32{0, 2, 5}}

	in, err := l.VertInLabel(7)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false, false, true, false}, in)

	count := 0
	for _, b := range in {
		if b {
			count++
		}
	}
	assert.Equal(t, l.NumEntries(), count)

	// Vertex 5 does not fit into a 5-vertex surface.
	_, err = l.VertInLabel(5)
	assert.ErrorIs(t, err, ErrVertexCountTooSmall)
}

// TestLabelFileRoundTrip exercises the path-based entry points.
func TestLabelFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lh.cortex.label")
	orig := &Label{
		Vertex: []int32{1, 4},
		CoordX: []float32{0, 1}, CoordY: []float32{2, 3}, CoordZ: []float32{4, 5},
		Value: []float32{0, 0},
	}
	require.NoError(t, WriteLabel(path, orig))

	got, err := ReadLabel(path)
	require.NoError(t, err)
	assert.Equal(t, orig, got)

	res, err := Read(path)
	require.NoError(t, err)
	require.NotNil(t, res.Label)
	assert.Equal(t, orig, res.Label)
}
