package models

import "math"

// Axis names one of the three orthogonal viewing planes of a volume.
type Axis string

const (
	// Sagittal cuts along x (YZ plane).
	Sagittal Axis = "x"
	// Coronal cuts along y (XZ plane).
	Coronal Axis = "y"
	// Axial cuts along z (XY plane).
	Axial Axis = "z"
)

// Volume is a 3D (optionally 4D) voxel grid loaded from an image file.
type Volume struct {
	// Data holds the voxels of Frames frames, x varying fastest, then y, z and t
	Data []float64

	// Width is the number of voxels along x
	Width int

	// Height is the number of voxels along y
	Height int

	// Depth is the number of voxels along z
	Depth int

	// Frames is the number of time points (1 for a plain 3D image)
	Frames int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize struct {
		X, Y, Z float64
	}
}

// NewVolume allocates a zeroed volume with a single frame.
func NewVolume(width, height, depth int) *Volume {
	return &Volume{
		Data:   make([]float64, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
		Frames: 1,
	}
}

// Index returns the offset of voxel (x, y, z) of frame t in Data.
func (v *Volume) Index(x, y, z, t int) int {
	return ((t*v.Depth+z)*v.Height+y)*v.Width + x
}

// At returns the voxel value at (x, y, z) of the first frame.
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Index(x, y, z, 0)]
}

// Set stores a voxel value at (x, y, z) of the first frame.
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[v.Index(x, y, z, 0)] = value
}

// Center returns the voxel coordinates of the middle of the volume.
func (v *Volume) Center() (x, y, z int) {
	return v.Width / 2, v.Height / 2, v.Depth / 2
}

// Spacing returns the voxel size in mm along x, y and z. Sizes missing from
// the image header (zero, negative or NaN) count as 1mm.
func (v *Volume) Spacing() (x, y, z float64) {
	return spacing(v.VoxelSize.X), spacing(v.VoxelSize.Y), spacing(v.VoxelSize.Z)
}

func spacing(size float64) float64 {
	if size > 0 && !math.IsInf(size, 0) {
		return size
	}
	return 1
}
