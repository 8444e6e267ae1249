package fsio

import "errors"

var (
	// ErrMagicMismatch indicates that a binary file does not start with
	// the magic number required for its format.
	ErrMagicMismatch = errors.New("fsio: file magic number mismatch")

	// ErrUnsupportedCurvVariant indicates a curv file with a number of
	// values per vertex other than 1.
	ErrUnsupportedCurvVariant = errors.New("fsio: curv files with more than one value per vertex are not supported")

	// ErrUnsupportedMghVersion indicates an MGH file whose format version
	// is not 1.
	ErrUnsupportedMghVersion = errors.New("fsio: unsupported MGH format version")

	// ErrUnsupportedMghDtype indicates an MGH data type outside the four
	// supported kinds (UCHAR, INT, FLOAT, SHORT).
	ErrUnsupportedMghDtype = errors.New("fsio: unsupported MGH data type")

	// ErrPayloadSizeMismatch indicates that an MGH payload array length
	// does not match the product of the header dimensions. Writes fail
	// with this error before emitting any payload bytes.
	ErrPayloadSizeMismatch = errors.New("fsio: MGH payload length does not match header dimensions")

	// ErrNoColortable indicates an annotation file without an embedded
	// colortable, which this module does not support.
	ErrNoColortable = errors.New("fsio: annotation has no colortable")

	// ErrOldColortableFormat indicates the legacy annotation colortable
	// layout, which is not supported.
	ErrOldColortableFormat = errors.New("fsio: old colortable format is not supported")

	// ErrUnsupportedColortableVersion indicates a colortable format
	// version other than 2.
	ErrUnsupportedColortableVersion = errors.New("fsio: unsupported colortable format version")

	// ErrLabelCountMismatch indicates that the number of parseable data
	// lines in a label file differs from its declared entry count.
	ErrLabelCountMismatch = errors.New("fsio: label entry count does not match declared count")

	// ErrVertexCountTooSmall indicates that a requested total vertex
	// count is smaller than the largest vertex index referenced by a
	// label.
	ErrVertexCountTooSmall = errors.New("fsio: total vertex count is smaller than the largest vertex index in the label")

	// ErrUnknownRegion indicates a region lookup for a name or label code
	// not present in the colortable.
	ErrUnknownRegion = errors.New("fsio: region not found in colortable")

	// ErrUnknownFormat indicates a file whose extension maps to no
	// supported codec.
	ErrUnknownFormat = errors.New("fsio: file extension does not match any supported format")
)
