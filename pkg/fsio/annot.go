package fsio

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/dfsp-spirit/libfs/pkg/endian"
)

// annotColortableVersion is the only supported colortable layout
// version. The value is stored negated in the file; a positive value
// there denotes the legacy layout.
const annotColortableVersion int32 = 2

// Colortable maps anatomical region metadata: id, name, RGBA color and
// the derived label code used in the per-vertex annotation. All
// sequences are parallel; label codes are unique within a table.
type Colortable struct {
	ID    []int32
	Name  []string
	R     []int32
	G     []int32
	B     []int32
	A     []int32
	Label []int32
}

// NumEntries returns the number of regions in the colortable.
func (ct *Colortable) NumEntries() int { return len(ct.ID) }

// IndexByName returns the region index of the region with the given
// name.
func (ct *Colortable) IndexByName(name string) (int, error) {
	for i, n := range ct.Name {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: name %q", ErrUnknownRegion, name)
}

// IndexByLabel returns the region index of the region with the given
// derived label code.
func (ct *Colortable) IndexByLabel(label int32) (int, error) {
	for i, l := range ct.Label {
		if l == label {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: label code %d", ErrUnknownRegion, label)
}

// Annot is a per-vertex parcellation: a region label code for every
// vertex of a surface, plus the colortable describing the regions.
type Annot struct {
	// VertexIndices holds the vertex index column of the file. It is
	// informational; entries are 0..n-1 in well-formed files.
	VertexIndices []int32
	// VertexLabels holds one colortable label code per vertex.
	VertexLabels []int32
	Colortable   Colortable

	// regionIdx memoizes name lookups; an Annot is read-mostly and often
	// queried for the same region names from multiple goroutines.
	// DecodeAnnot initializes it; on hand-built values it is nil and
	// lookups fall through to the uncached linear scan.
	regionIdx *xsync.Map[string, int]
}

// NumVertices returns the number of annotated vertices.
func (a *Annot) NumVertices() int { return len(a.VertexLabels) }

// RegionIndexByName returns the colortable index for a region name,
// caching results across calls on decoded annotations.
func (a *Annot) RegionIndexByName(name string) (int, error) {
	if a.regionIdx == nil {
		return a.Colortable.IndexByName(name)
	}
	if idx, ok := a.regionIdx.Load(name); ok {
		return idx, nil
	}
	idx, err := a.Colortable.IndexByName(name)
	if err != nil {
		return -1, err
	}
	a.regionIdx.Store(name, idx)
	return idx, nil
}

// RegionVertices returns the indices of all vertices assigned to the
// named region.
func (a *Annot) RegionVertices(name string) ([]int32, error) {
	idx, err := a.RegionIndexByName(name)
	if err != nil {
		return nil, err
	}
	label := a.Colortable.Label[idx]
	var verts []int32
	for v, l := range a.VertexLabels {
		if l == label {
			verts = append(verts, int32(v))
		}
	}
	return verts, nil
}

// VertexRegionNames returns the region name for every vertex. Vertices
// whose label code is missing from the colortable get an empty string.
func (a *Annot) VertexRegionNames() []string {
	byLabel := make(map[int32]string, a.Colortable.NumEntries())
	for i, l := range a.Colortable.Label {
		byLabel[l] = a.Colortable.Name[i]
	}
	names := make([]string, len(a.VertexLabels))
	for v, l := range a.VertexLabels {
		names[v] = byLabel[l]
	}
	return names
}

// VertexColors returns the region color for every vertex as interleaved
// channel bytes: r,g,b per vertex, or r,g,b,a when alpha is true.
func (a *Annot) VertexColors(alpha bool) []uint8 {
	type rgba struct{ r, g, b, a uint8 }
	byLabel := make(map[int32]rgba, a.Colortable.NumEntries())
	for i, l := range a.Colortable.Label {
		byLabel[l] = rgba{
			r: uint8(a.Colortable.R[i]),
			g: uint8(a.Colortable.G[i]),
			b: uint8(a.Colortable.B[i]),
			a: uint8(a.Colortable.A[i]),
		}
	}
	channels := 3
	if alpha {
		channels = 4
	}
	colors := make([]uint8, 0, len(a.VertexLabels)*channels)
	for _, l := range a.VertexLabels {
		c := byLabel[l]
		colors = append(colors, c.r, c.g, c.b)
		if alpha {
			colors = append(colors, c.a)
		}
	}
	return colors
}

// DecodeAnnot reads an annotation from a sequential byte source. The
// format is a strict linear sequence of sections, and every step has its
// own distinguishable failure: truncated vertex data, missing
// colortable, the unsupported legacy colortable layout, an unsupported
// colortable version, and malformed colortable entries.
func DecodeAnnot(r io.Reader) (*Annot, error) {
	er := endian.NewReader(r)

	var numVerts int32
	er.ReadInt32(&numVerts)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading annotation vertex count: %w", err)
	}
	if numVerts < 0 {
		return nil, fmt.Errorf("annotation declares negative vertex count %d", numVerts)
	}

	// Interleaved (vertex index, label code) pairs.
	pairs := endian.ReadScalars[int32](er, int(numVerts)*2)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading annotation vertex labels: %w", err)
	}
	a := &Annot{
		VertexIndices: make([]int32, numVerts),
		VertexLabels:  make([]int32, numVerts),
		regionIdx:     xsync.NewMap[string, int](),
	}
	for i := 0; i < int(numVerts); i++ {
		a.VertexIndices[i] = pairs[i*2]
		a.VertexLabels[i] = pairs[i*2+1]
	}

	var hasColortable int32
	er.ReadInt32(&hasColortable)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading annotation colortable flag: %w", err)
	}
	if hasColortable != 1 {
		return nil, fmt.Errorf("%w: colortable flag is %d", ErrNoColortable, hasColortable)
	}

	var negVersion int32
	er.ReadInt32(&negVersion)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading colortable version: %w", err)
	}
	if negVersion > 0 {
		return nil, ErrOldColortableFormat
	}
	if -negVersion != annotColortableVersion {
		return nil, fmt.Errorf("%w: got version %d, expected %d", ErrUnsupportedColortableVersion, -negVersion, annotColortableVersion)
	}

	var numEntries int32
	er.ReadInt32(&numEntries)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading colortable entry count: %w", err)
	}
	if numEntries < 0 {
		return nil, fmt.Errorf("colortable declares negative entry count %d", numEntries)
	}

	ct, err := decodeColortable(er, int(numEntries))
	if err != nil {
		return nil, err
	}
	a.Colortable = *ct
	return a, nil
}

// decodeColortable reads the embedded version-2 colortable block.
func decodeColortable(er *endian.Reader, numEntries int) (*Colortable, error) {
	// Embedded source filename, metadata only.
	var filenameLen int32
	er.ReadInt32(&filenameLen)
	if filenameLen > 0 {
		er.Discard(int64(filenameLen))
	}
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading colortable filename: %w", err)
	}

	// The entry count appears a second time inside the block. A
	// disagreement is suspicious but not fatal.
	var dupEntries int32
	er.ReadInt32(&dupEntries)
	if err := er.Err(); err != nil {
		return nil, fmt.Errorf("reading duplicate colortable entry count: %w", err)
	}
	if int(dupEntries) != numEntries {
		log.Printf("annot: colortable entry counts disagree (%d vs %d), using %d", numEntries, dupEntries, numEntries)
	}

	ct := &Colortable{
		ID:    make([]int32, 0, numEntries),
		Name:  make([]string, 0, numEntries),
		R:     make([]int32, 0, numEntries),
		G:     make([]int32, 0, numEntries),
		B:     make([]int32, 0, numEntries),
		A:     make([]int32, 0, numEntries),
		Label: make([]int32, 0, numEntries),
	}
	for i := 0; i < numEntries; i++ {
		var id, nameLen int32
		er.ReadInt32(&id)
		er.ReadInt32(&nameLen)
		if err := er.Err(); err != nil {
			return nil, fmt.Errorf("reading colortable entry %d: %w", i, err)
		}
		if nameLen < 1 {
			return nil, fmt.Errorf("colortable entry %d has invalid name length %d", i, nameLen)
		}
		nameBytes := er.ReadBytes(int(nameLen))
		if err := er.Err(); err != nil {
			return nil, fmt.Errorf("reading colortable entry %d name: %w", i, err)
		}
		// The name is stored with a trailing null terminator.
		name := string(nameBytes[:nameLen-1])

		var red, green, blue, transp int32
		er.ReadInt32(&red)
		er.ReadInt32(&green)
		er.ReadInt32(&blue)
		er.ReadInt32(&transp)
		if err := er.Err(); err != nil {
			return nil, fmt.Errorf("reading colortable entry %d color: %w", i, err)
		}

		ct.ID = append(ct.ID, id)
		ct.Name = append(ct.Name, name)
		ct.R = append(ct.R, red)
		ct.G = append(ct.G, green)
		ct.B = append(ct.B, blue)
		ct.A = append(ct.A, transp)
		ct.Label = append(ct.Label, red+green*256+blue*65536+transp*16777216)
	}
	return ct, nil
}

// ReadAnnot reads an annotation file from disk.
func ReadAnnot(path string) (*Annot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening annot file: %w", err)
	}
	defer f.Close()
	a, err := DecodeAnnot(f)
	if err != nil {
		return nil, fmt.Errorf("reading annot file %s: %w", path, err)
	}
	return a, nil
}
