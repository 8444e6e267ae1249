// Package fsio implements codecs for the FreeSurfer file formats
// produced by a cortical-surface analysis pipeline: per-vertex scalar
// data (curv), volumetric data (MGH/MGZ), triangulated surfaces (surf),
// region membership lists (label) and vertex parcellations with region
// metadata (annot).
//
// All binary formats are big-endian; decoding works over plain files as
// well as non-seekable sources such as decompressing filters. Every
// decode call returns either a complete structure or an error, never a
// partially populated value.
package fsio

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfsp-spirit/libfs/pkg/mesh"
)

// File is the result of a dispatch read: exactly one field is non-nil,
// matching the format selected by the file extension.
type File struct {
	Curv  *Curv
	Mgh   *Mgh
	Mesh  *mesh.Mesh
	Label *Label
	Annot *Annot
}

// surfSuffixes lists the conventional FreeSurfer surface file suffixes.
var surfSuffixes = []string{".white", ".pial", ".inflated", ".sphere", ".orig", ".smoothwm", ".surf"}

// curvSuffixes lists the conventional per-vertex data file suffixes.
var curvSuffixes = []string{".thickness", ".area", ".volume", ".sulc", ".curv"}

// Read reads any supported FreeSurfer file, selecting the codec by file
// extension. Unknown extensions fail with ErrUnknownFormat.
func Read(path string) (*File, error) {
	ext := filepath.Ext(path)
	switch ext {
	case ".mgh":
		m, err := ReadMgh(path)
		if err != nil {
			return nil, err
		}
		return &File{Mgh: m}, nil
	case ".mgz":
		m, err := ReadMgz(path)
		if err != nil {
			return nil, err
		}
		return &File{Mgh: m}, nil
	case ".label":
		l, err := ReadLabel(path)
		if err != nil {
			return nil, err
		}
		return &File{Label: l}, nil
	case ".annot":
		a, err := ReadAnnot(path)
		if err != nil {
			return nil, err
		}
		return &File{Annot: a}, nil
	}
	for _, s := range surfSuffixes {
		if ext == s {
			m, err := ReadSurf(path)
			if err != nil {
				return nil, err
			}
			return &File{Mesh: m}, nil
		}
	}
	for _, s := range curvSuffixes {
		if ext == s {
			c, err := ReadCurv(path)
			if err != nil {
				return nil, err
			}
			return &File{Curv: c}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ReadMgz reads a gzip-compressed MGH file. The decompressing stream
// cannot seek, so the sequential decoder is used; it consumes the header
// padding byte by byte.
func ReadMgz(path string) (*Mgh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MGZ file: %w", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening MGZ decompression stream for %s: %w", path, err)
	}
	defer gz.Close()
	m, err := DecodeMgh(gz)
	if err != nil {
		return nil, fmt.Errorf("reading MGZ file %s: %w", path, err)
	}
	return m, nil
}

// ReadMesh reads a surface mesh from any of the supported mesh formats:
// FreeSurfer surf (the default), Wavefront OBJ, ASCII PLY or OFF,
// selected by file extension.
func ReadMesh(path string) (*mesh.Mesh, error) {
	open := func() (*os.File, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening mesh file: %w", err)
		}
		return f, nil
	}
	switch filepath.Ext(path) {
	case ".obj":
		f, err := open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return mesh.ReadObj(f)
	case ".ply":
		f, err := open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return mesh.ReadPly(f)
	case ".off":
		f, err := open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return mesh.ReadOff(f)
	default:
		return ReadSurf(path)
	}
}

// ReadSubjectsFile reads a subjects file: one subject identifier per
// line, empty lines ignored.
func ReadSubjectsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading subjects file: %w", err)
	}
	var subjects []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}
