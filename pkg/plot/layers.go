package plot

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Colormap maps a value normalized to [-1, 1] to a color.
type Colormap func(v float64) color.NRGBA

var colormaps = map[string]Colormap{
	"cold_hot": coldHot,
	"blue_red": blueRed,
}

// LookupColormap returns the named colormap. Unknown or empty names fall back
// to a yellow map whose opacity follows the value.
func LookupColormap(name string) Colormap {
	if cmap, ok := colormaps[name]; ok {
		return cmap
	}
	return yellowAlpha
}

// coldHot runs black-blue-cyan-white for negative values and
// black-red-yellow-white for positive ones.
func coldHot(v float64) color.NRGBA {
	t := math.Abs(v)
	lo, mid, hi := ramp(3*t), ramp(3*t-1), ramp(3*t-2)
	if v < 0 {
		return color.NRGBA{R: hi, G: mid, B: lo, A: 255}
	}
	return color.NRGBA{R: lo, G: mid, B: hi, A: 255}
}

// blueRed fades from white to blue for negative values and to red for
// positive ones.
func blueRed(v float64) color.NRGBA {
	fade := ramp(1 - math.Abs(v))
	if v < 0 {
		return color.NRGBA{R: fade, G: fade, B: 255, A: 255}
	}
	return color.NRGBA{R: 255, G: fade, B: fade, A: 255}
}

func yellowAlpha(v float64) color.NRGBA {
	return color.NRGBA{R: 255, G: 255, B: 0, A: ramp(math.Abs(v))}
}

// ramp clamps t to [0, 1] and scales it to a color channel.
func ramp(t float64) uint8 {
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	if t >= 1 {
		return 255
	}
	return uint8(math.Round(255 * t))
}

// EdgeMap returns the gradient magnitude of the plane, normalized by its
// maximum. A flat plane has no edges.
func EdgeMap(p Plane) Plane {
	edges := newPlane(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			gx := p.At(clamp(x+1, p.Width), y) - p.At(clamp(x-1, p.Width), y)
			gy := p.At(x, clamp(y+1, p.Height)) - p.At(x, clamp(y-1, p.Height))
			edges.Data[y*p.Width+x] = math.Hypot(gx, gy)
		}
	}

	maxEdge := edges.Max()
	if maxEdge > 0 {
		for i := range edges.Data {
			edges.Data[i] /= maxEdge
		}
	}
	return edges
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// edgeLayer paints pixels whose normalized edge strength reaches threshold in red.
func edgeLayer(p Plane, threshold float64) *image.NRGBA {
	edges := EdgeMap(p)
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	red := color.NRGBA{R: 255, A: 255}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if e := edges.At(x, y); e > 0 && e >= threshold {
				img.SetNRGBA(x, y, red)
			}
		}
	}
	return img
}

// overlayLayer colors the non-zero pixels of the plane with cmap.
func overlayLayer(p Plane, cmap Colormap) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	maxAbs := p.MaxAbs()
	if maxAbs == 0 {
		return img
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if v := p.At(x, y); v != 0 && !math.IsNaN(v) {
				img.SetNRGBA(x, y, cmap(v/maxAbs))
			}
		}
	}
	return img
}

// contourPalette colors labels 1, 2, 3... of a label image.
var contourPalette = []color.NRGBA{
	{R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 200, B: 0, A: 255},
	{R: 0, G: 110, B: 255, A: 255},
	{R: 255, G: 200, B: 0, A: 255},
	{R: 200, G: 0, B: 255, A: 255},
	{R: 0, G: 220, B: 220, A: 255},
}

// contourLayer fills every labelled region of the plane with its palette
// color. Values are rounded to the nearest integer label.
func contourLayer(p Plane) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := p.At(x, y)
			if math.IsNaN(v) {
				continue
			}
			label := int(math.Abs(math.Round(v)))
			if label == 0 {
				continue
			}
			img.SetNRGBA(x, y, contourPalette[(label-1)%len(contourPalette)])
		}
	}
	return img
}

// fitPlane resamples p to width x height when the layer volume was sampled
// on a different grid than the base image.
func fitPlane(p Plane, width, height int) Plane {
	if p.Width == width && p.Height == height {
		return p
	}

	out := newPlane(width, height)
	for y := 0; y < height; y++ {
		sy := y * p.Height / height
		for x := 0; x < width; x++ {
			sx := x * p.Width / width
			out.Data[y*width+x] = p.At(sx, sy)
		}
	}
	return out
}

// compose draws the layers over the base image, in order, each at its opacity.
func compose(base image.Image, layers []layer) *image.NRGBA {
	out := imaging.Clone(base)
	for _, l := range layers {
		out = imaging.Overlay(out, l.img, image.Point{}, l.opacity)
	}
	return out
}

type layer struct {
	img     image.Image
	opacity float64
}
