package plot

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"mmutils/internal/models"
)

// Plane is a 2D cut through a volume. Columns run along the first in-plane
// axis and rows along the second, with row 0 at the low end of that axis
// (inferior or posterior), so images built from it need a vertical flip.
type Plane struct {
	Width  int
	Height int
	Data   []float64

	// ColumnSize and RowSize are the pixel spacing in mm
	ColumnSize float64
	RowSize    float64
}

// At returns the value at column x, row y.
func (p Plane) At(x, y int) float64 {
	return p.Data[y*p.Width+x]
}

// Max returns the largest value in the plane.
func (p Plane) Max() float64 {
	maxVal := math.Inf(-1)
	for _, v := range p.Data {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// MaxAbs returns the largest absolute value in the plane.
func (p Plane) MaxAbs() float64 {
	maxVal := 0.0
	for _, v := range p.Data {
		if a := math.Abs(v); a > maxVal {
			maxVal = a
		}
	}
	return maxVal
}

// Viewer cuts orthogonal planes out of the first frame of a volume.
type Viewer struct {
	volume *models.Volume
}

// NewViewer creates a viewer over volume.
func NewViewer(volume *models.Volume) *Viewer {
	return &Viewer{volume: volume}
}

// CenterCuts returns the sagittal, coronal and axial planes through the
// centre of the volume, in that order.
func (v *Viewer) CenterCuts() ([]Plane, error) {
	cx, cy, cz := v.volume.Center()
	cuts := []struct {
		axis models.Axis
		pos  int
	}{
		{models.Sagittal, cx},
		{models.Coronal, cy},
		{models.Axial, cz},
	}

	planes := make([]Plane, 0, len(cuts))
	for _, c := range cuts {
		p, err := v.ExtractPlane(c.axis, c.pos)
		if err != nil {
			return nil, err
		}
		planes = append(planes, p)
	}
	return planes, nil
}

// ExtractPlane cuts the plane at position along axis.
//   - x: columns along y, rows along z
//   - y: columns along x, rows along z
//   - z: columns along x, rows along y
func (v *Viewer) ExtractPlane(axis models.Axis, position int) (Plane, error) {
	if position < 0 {
		return Plane{}, fmt.Errorf("position must be non-negative")
	}

	vol := v.volume
	sx, sy, sz := vol.Spacing()
	var p Plane

	switch axis {
	case models.Sagittal:
		if position >= vol.Width {
			return Plane{}, fmt.Errorf("position %d exceeds width %d", position, vol.Width)
		}
		p = newPlane(vol.Height, vol.Depth)
		p.ColumnSize, p.RowSize = sy, sz
		for z := 0; z < vol.Depth; z++ {
			for y := 0; y < vol.Height; y++ {
				p.Data[z*p.Width+y] = vol.At(position, y, z)
			}
		}

	case models.Coronal:
		if position >= vol.Height {
			return Plane{}, fmt.Errorf("position %d exceeds height %d", position, vol.Height)
		}
		p = newPlane(vol.Width, vol.Depth)
		p.ColumnSize, p.RowSize = sx, sz
		for z := 0; z < vol.Depth; z++ {
			for x := 0; x < vol.Width; x++ {
				p.Data[z*p.Width+x] = vol.At(x, position, z)
			}
		}

	case models.Axial:
		if position >= vol.Depth {
			return Plane{}, fmt.Errorf("position %d exceeds depth %d", position, vol.Depth)
		}
		p = newPlane(vol.Width, vol.Height)
		p.ColumnSize, p.RowSize = sx, sy
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				p.Data[y*p.Width+x] = vol.At(x, y, position)
			}
		}

	default:
		return Plane{}, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return p, nil
}

func newPlane(width, height int) Plane {
	return Plane{Width: width, Height: height, Data: make([]float64, width*height), ColumnSize: 1, RowSize: 1}
}

// Grayscale windows the plane to [0, max] and returns it as an image.
// Negative values are clipped to black.
func (p Plane) Grayscale() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, p.Width, p.Height))
	maxVal := p.Max()
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: windowScale(p.At(x, y), maxVal)})
		}
	}
	return img
}

func windowScale(intensity, maxIntensity float64) uint16 {
	if intensity <= 0 || maxIntensity <= 0 || math.IsNaN(intensity) {
		return 0
	}
	if intensity >= maxIntensity {
		return math.MaxUint16
	}
	return uint16(float64(math.MaxUint16) * intensity / maxIntensity)
}
