package models

// VolumeSummary is the CLI-facing view of a decoded MGH volume: the data
// converted to float64 plus the dimensions and voxel sizes needed to
// describe it.
type VolumeSummary struct {
	// Data is the volume data as a 1D array in the file's value order
	Data []float64

	// Width, Height, Depth, Frames are the four volume dimensions
	Width  int
	Height int
	Depth  int
	Frames int

	// VoxelSize is the physical size of each voxel in mm; only valid
	// when the source header carried a valid RAS block
	VoxelSize struct {
		X, Y, Z float64
	}
}

// SurfaceSummary describes a decoded surface mesh for reporting.
type SurfaceSummary struct {
	// NumVertices and NumFaces are the mesh element counts
	NumVertices int
	NumFaces    int

	// CoordMin and CoordMax span the range of all vertex coordinates
	CoordMin float64
	CoordMax float64
}
