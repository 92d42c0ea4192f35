package plot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"mmutils/internal/models"
)

// niftiFile describes a single-file NIfTI-1 image written by writeNiftiFile.
type niftiFile struct {
	dims     []int16 // dim[1..]
	datatype int16
	bitpix   int16
	pixdim   [3]float32
	slope    float32
	inter    float32
	voxels   []byte
	gzip     bool
}

// writeNiftiFile writes f to path, gzipped when f.gzip is set.
func writeNiftiFile(t *testing.T, path string, f niftiFile) {
	t.Helper()

	header := make([]byte, 352)
	le := binary.LittleEndian
	le.PutUint32(header[0:], 348)
	le.PutUint16(header[40:], uint16(len(f.dims)))
	for i, d := range f.dims {
		le.PutUint16(header[42+2*i:], uint16(d))
	}
	le.PutUint16(header[70:], uint16(f.datatype))
	le.PutUint16(header[72:], uint16(f.bitpix))
	le.PutUint32(header[76:], math.Float32bits(1))
	for i, p := range f.pixdim {
		le.PutUint32(header[80+4*i:], math.Float32bits(p))
	}
	le.PutUint32(header[108:], math.Float32bits(352))
	le.PutUint32(header[112:], math.Float32bits(f.slope))
	le.PutUint32(header[116:], math.Float32bits(f.inter))
	copy(header[344:], "n+1\x00")

	var buf bytes.Buffer
	var w io.Writer = &buf
	var gz *gzip.Writer
	if f.gzip {
		gz = gzip.NewWriter(&buf)
		w = gz
	}
	_, err := w.Write(append(header, f.voxels...))
	require.NoError(t, err)
	if gz != nil {
		require.NoError(t, gz.Close())
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// encodeVoxels packs values little-endian.
func encodeVoxels[T int8 | uint8 | int16 | uint16 | int32 | float32 | float64](t *testing.T, values ...T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, values))
	return buf.Bytes()
}

// writeNifti writes a single-file NIfTI-1 image of float32 voxels, x varying
// fastest.
func writeNifti(t *testing.T, path string, width, height, depth int, voxel func(x, y, z int) float32) {
	t.Helper()
	writeNiftiFile(t, path, niftiFile{
		dims:     []int16{int16(width), int16(height), int16(depth)},
		datatype: 16,
		bitpix:   32,
		pixdim:   [3]float32{1, 1, 1},
		slope:    1,
		voxels:   encodeVoxels(t, gridValues(width, height, depth, voxel)...),
	})
}

// gridValues evaluates voxel over a width x height x depth grid, x fastest.
func gridValues[T any](width, height, depth int, voxel func(x, y, z int) T) []T {
	values := make([]T, 0, width*height*depth)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				values = append(values, voxel(x, y, z))
			}
		}
	}
	return values
}

// sphere returns a voxel function with value inside a ball of radius r
// around the centre of a size^3 grid, and zero elsewhere.
func sphere(size int, r, value float32) func(x, y, z int) float32 {
	c := float32(size) / 2
	return func(x, y, z int) float32 {
		dx, dy, dz := float32(x)-c, float32(y)-c, float32(z)-c
		if dx*dx+dy*dy+dz*dz <= r*r {
			return value
		}
		return 0
	}
}

// rampVolume builds a volume where each voxel holds x + 10*y + 100*z.
func rampVolume(width, height, depth int) *models.Volume {
	vol := models.NewVolume(width, height, depth)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				vol.Set(x, y, z, float64(x+10*y+100*z))
			}
		}
	}
	return vol
}
