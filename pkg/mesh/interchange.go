package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Text-based mesh interchange: Wavefront OBJ, Stanford PLY (ASCII) and
// OFF. These are simple line-oriented formats used to move surfaces in
// and out of general mesh tools like Blender or MeshLab.

// WriteObj writes the mesh in Wavefront OBJ format. OBJ uses 1-based
// vertex indices.
func (m *Mesh) WriteObj(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "o mesh")
	for v := 0; v < m.NumVertices(); v++ {
		fmt.Fprintf(bw, "v %f %f %f\n", m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2])
	}
	for f := 0; f < m.NumFaces(); f++ {
		fmt.Fprintf(bw, "f %d %d %d\n", m.Faces[f*3]+1, m.Faces[f*3+1]+1, m.Faces[f*3+2]+1)
	}
	return bw.Flush()
}

// ReadObj parses a Wavefront OBJ mesh. Only vertex and triangular face
// statements are interpreted; normals, texture coordinates and object
// metadata are skipped. Face entries of the form "v/vt/vn" (as written
// by Blender) are reduced to their vertex index.
func ReadObj(r io.Reader) (*Mesh, error) {
	var vertices []float32
	var faces []int32
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: vertex statement needs 3 coordinates", lineNo)
			}
			for _, f := range fields[1:4] {
				coord, err := strconv.ParseFloat(f, 32)
				if err != nil {
					return nil, fmt.Errorf("obj line %d: parsing vertex coordinate %q: %w", lineNo, f, err)
				}
				vertices = append(vertices, float32(coord))
			}
		case "f":
			if len(fields) != 4 {
				return nil, fmt.Errorf("obj line %d: only triangular faces are supported", lineNo)
			}
			for _, f := range fields[1:4] {
				// Keep only the vertex index of "v/vt/vn" references.
				idxStr, _, _ := strings.Cut(f, "/")
				idx, err := strconv.ParseInt(idxStr, 10, 32)
				if err != nil {
					return nil, fmt.Errorf("obj line %d: parsing face index %q: %w", lineNo, f, err)
				}
				faces = append(faces, int32(idx)-1)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj data: %w", err)
	}
	return New(vertices, faces)
}

// WritePly writes the mesh in ASCII PLY format. If vertexColors is
// non-nil it must hold exactly 3 bytes (r,g,b) per vertex; a mismatched
// length is a caller-contract error and nothing is written.
func (m *Mesh) WritePly(w io.Writer, vertexColors []uint8) error {
	withColors := vertexColors != nil
	if withColors && len(vertexColors) != m.NumVertices()*3 {
		return fmt.Errorf("vertex color array has %d bytes, expected %d (3 per vertex)", len(vertexColors), m.NumVertices()*3)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment Created by libfs")
	fmt.Fprintf(bw, "element vertex %d\n", m.NumVertices())
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	if withColors {
		fmt.Fprintln(bw, "property uchar red")
		fmt.Fprintln(bw, "property uchar green")
		fmt.Fprintln(bw, "property uchar blue")
	}
	fmt.Fprintf(bw, "element face %d\n", m.NumFaces())
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")
	for v := 0; v < m.NumVertices(); v++ {
		if withColors {
			fmt.Fprintf(bw, "%f %f %f %d %d %d\n",
				m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2],
				vertexColors[v*3], vertexColors[v*3+1], vertexColors[v*3+2])
		} else {
			fmt.Fprintf(bw, "%f %f %f\n", m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2])
		}
	}
	for f := 0; f < m.NumFaces(); f++ {
		fmt.Fprintf(bw, "3 %d %d %d\n", m.Faces[f*3], m.Faces[f*3+1], m.Faces[f*3+2])
	}
	return bw.Flush()
}

// ReadPly parses an ASCII PLY mesh. Vertex properties beyond the x,y,z
// coordinates (colors, normals) are ignored on read.
func ReadPly(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	nextLine := func() (string, bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				return line, true
			}
		}
		return "", false
	}

	line, ok := nextLine()
	if !ok || line != "ply" {
		return nil, fmt.Errorf("not a PLY file: missing 'ply' signature")
	}

	numVerts, numFaces := -1, -1
	for {
		line, ok = nextLine()
		if !ok {
			return nil, fmt.Errorf("unexpected end of PLY header")
		}
		fields := strings.Fields(line)
		switch {
		case fields[0] == "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("only ASCII PLY is supported, got format %q", line)
			}
		case fields[0] == "element" && len(fields) == 3:
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("parsing PLY element count %q: %w", fields[2], err)
			}
			switch fields[1] {
			case "vertex":
				numVerts = n
			case "face":
				numFaces = n
			}
		case fields[0] == "end_header":
		}
		if line == "end_header" {
			break
		}
	}
	if numVerts < 0 || numFaces < 0 {
		return nil, fmt.Errorf("PLY header is missing vertex or face element declaration")
	}

	vertices := make([]float32, 0, numVerts*3)
	for v := 0; v < numVerts; v++ {
		line, ok = nextLine()
		if !ok {
			return nil, fmt.Errorf("PLY data ends after %d of %d vertices", v, numVerts)
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("PLY vertex line %d has %d fields, need at least 3", v, len(fields))
		}
		for _, f := range fields[:3] {
			coord, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing PLY vertex coordinate %q: %w", f, err)
			}
			vertices = append(vertices, float32(coord))
		}
	}

	faces := make([]int32, 0, numFaces*3)
	for f := 0; f < numFaces; f++ {
		line, ok = nextLine()
		if !ok {
			return nil, fmt.Errorf("PLY data ends after %d of %d faces", f, numFaces)
		}
		fields := strings.Fields(line)
		if len(fields) != 4 || fields[0] != "3" {
			return nil, fmt.Errorf("PLY face line %d: only triangular faces are supported", f)
		}
		for _, s := range fields[1:] {
			idx, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing PLY face index %q: %w", s, err)
			}
			faces = append(faces, int32(idx))
		}
	}
	return New(vertices, faces)
}

// WriteOff writes the mesh in OFF format.
func (m *Mesh) WriteOff(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OFF")
	fmt.Fprintf(bw, "%d %d 0\n", m.NumVertices(), m.NumFaces())
	for v := 0; v < m.NumVertices(); v++ {
		fmt.Fprintf(bw, "%f %f %f\n", m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2])
	}
	for f := 0; f < m.NumFaces(); f++ {
		fmt.Fprintf(bw, "3 %d %d %d\n", m.Faces[f*3], m.Faces[f*3+1], m.Faces[f*3+2])
	}
	return bw.Flush()
}

// ReadOff parses an OFF mesh, as exported by tools like MeshLab.
func ReadOff(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	nextLine := func() (string, bool) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				return line, true
			}
		}
		return "", false
	}

	line, ok := nextLine()
	if !ok || line != "OFF" {
		return nil, fmt.Errorf("not an OFF file: missing 'OFF' signature")
	}
	line, ok = nextLine()
	if !ok {
		return nil, fmt.Errorf("OFF file is missing the counts line")
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("OFF counts line %q needs at least vertex and face counts", line)
	}
	numVerts, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("parsing OFF vertex count %q: %w", fields[0], err)
	}
	numFaces, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("parsing OFF face count %q: %w", fields[1], err)
	}

	vertices := make([]float32, 0, numVerts*3)
	for v := 0; v < numVerts; v++ {
		line, ok = nextLine()
		if !ok {
			return nil, fmt.Errorf("OFF data ends after %d of %d vertices", v, numVerts)
		}
		fields = strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("OFF vertex line %d has %d fields, need 3", v, len(fields))
		}
		for _, f := range fields[:3] {
			coord, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing OFF vertex coordinate %q: %w", f, err)
			}
			vertices = append(vertices, float32(coord))
		}
	}
	faces := make([]int32, 0, numFaces*3)
	for f := 0; f < numFaces; f++ {
		line, ok = nextLine()
		if !ok {
			return nil, fmt.Errorf("OFF data ends after %d of %d faces", f, numFaces)
		}
		fields = strings.Fields(line)
		if len(fields) != 4 || fields[0] != "3" {
			return nil, fmt.Errorf("OFF face line %d: only triangular faces are supported", f)
		}
		for _, s := range fields[1:] {
			idx, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing OFF face index %q: %w", s, err)
			}
			faces = append(faces, int32(idx))
		}
	}
	return New(vertices, faces)
}
