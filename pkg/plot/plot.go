// Package plot renders diagnostic snapshots of anatomical images: three
// orthogonal cuts through the volume centre with optional edge, overlay and
// contour layers on top, written to a single-page PDF. The snapshots are
// used to check registrations and segmentations by eye.
package plot

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"

	"mmutils/pkg/adapters"
	"mmutils/pkg/config"
)

var (
	// ErrNoInput is returned when no base image is given.
	ErrNoInput = errors.New("no input image")

	ErrFileNotFound     = adapters.ErrFileNotFound
	ErrInvalidDirectory = adapters.ErrInvalidDirectory
)

const (
	// imageDPMM is the resolution the raster is embedded at, in dots per mm.
	imageDPMM = 4.0

	// viewGap is the spacing between the tiled views, in pixels.
	viewGap = 4

	// titleBand is the height reserved above the views for the title.
	titleBand = 18
)

type plotOptions struct {
	edgeFile    string
	overlayFile string
	contourFile string
	title       string
	cmapName    string
	cmapSet     bool
	cfg         config.Plot
}

// Option configures PlotImage.
type Option func(*plotOptions)

// WithEdges draws the edges of the image at path in red.
func WithEdges(path string) Option {
	return func(o *plotOptions) { o.edgeFile = path }
}

// WithOverlay colors the non-zero voxels of the image at path.
func WithOverlay(path string) Option {
	return func(o *plotOptions) { o.overlayFile = path }
}

// WithContour fills the labelled regions of the image at path.
func WithContour(path string) Option {
	return func(o *plotOptions) { o.contourFile = path }
}

// WithTitle writes name above the views.
func WithTitle(name string) Option {
	return func(o *plotOptions) { o.title = name }
}

// WithOverlayColormap selects the overlay colormap: "cold_hot", "blue_red",
// or anything else for a yellow map.
func WithOverlayColormap(name string) Option {
	return func(o *plotOptions) {
		o.cmapName = name
		o.cmapSet = true
	}
}

// WithConfig replaces the default rendering parameters.
func WithConfig(cfg config.Plot) Option {
	return func(o *plotOptions) { o.cfg = cfg }
}

// PlotImage renders the first of inputFiles with the requested layers and
// writes <outputDirectory>/<image name up to the first dot>.pdf. It returns
// the path of the PDF.
func PlotImage(inputFiles []string, outputDirectory string, opts ...Option) (string, error) {
	o := plotOptions{cfg: config.DefaultConfig().Plot}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.cmapSet {
		o.cmapName = o.cfg.OverlayColormap
	}

	if len(inputFiles) == 0 {
		return "", ErrNoInput
	}
	inputFile, err := adapters.Unwrap(inputFiles, true)
	if err != nil {
		return "", err
	}

	for _, f := range []string{inputFile, o.edgeFile, o.overlayFile, o.contourFile} {
		if f == "" {
			continue
		}
		if info, err := os.Stat(f); err != nil || !info.Mode().IsRegular() {
			return "", fmt.Errorf("%q: %w", f, ErrFileNotFound)
		}
	}
	if info, err := os.Stat(outputDirectory); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%q: %w", outputDirectory, ErrInvalidDirectory)
	}

	snapFile := filepath.Join(outputDirectory, strings.SplitN(filepath.Base(inputFile), ".", 2)[0]+".pdf")

	views, err := renderViews(inputFile, o)
	if err != nil {
		return "", err
	}
	sheet := tile(views, o.title)

	if err := writePDF(snapFile, sheet); err != nil {
		return "", fmt.Errorf("error writing %s: %w", snapFile, err)
	}

	return snapFile, nil
}

// renderViews returns the composited sagittal, coronal and axial views,
// flipped upright and upsampled to their physical proportions.
func renderViews(inputFile string, o plotOptions) ([]image.Image, error) {
	base, err := centerCuts(inputFile)
	if err != nil {
		return nil, err
	}

	layers := make([][]layer, len(base))
	addLayer := func(file string, build func(Plane) layer) error {
		if file == "" {
			return nil
		}
		cuts, err := centerCuts(file)
		if err != nil {
			return err
		}
		for i, p := range cuts {
			layers[i] = append(layers[i], build(fitPlane(p, base[i].Width, base[i].Height)))
		}
		return nil
	}

	threshold := o.cfg.EdgeThreshold
	if err := addLayer(o.edgeFile, func(p Plane) layer {
		return layer{img: edgeLayer(p, threshold), opacity: 1}
	}); err != nil {
		return nil, err
	}

	cmap := LookupColormap(o.cmapName)
	if err := addLayer(o.overlayFile, func(p Plane) layer {
		return layer{img: overlayLayer(p, cmap), opacity: 1}
	}); err != nil {
		return nil, err
	}

	alpha := o.cfg.ContourAlpha
	if err := addLayer(o.contourFile, func(p Plane) layer {
		return layer{img: contourLayer(p), opacity: alpha}
	}); err != nil {
		return nil, err
	}

	scale := o.cfg.Scale
	if scale < 1 {
		scale = 1
	}

	unit := math.Inf(1)
	for _, p := range base {
		unit = math.Min(unit, math.Min(p.ColumnSize, p.RowSize))
	}

	views := make([]image.Image, len(base))
	for i, p := range base {
		view := imaging.FlipV(compose(p.Grayscale(), layers[i]))
		width, height := displaySize(p, unit, scale)
		views[i] = imaging.Resize(view, width, height, imaging.NearestNeighbor)
	}
	return views, nil
}

// displaySize returns the pixel size of the view of p, so that one pixel
// covers unit/scale mm along both axes.
func displaySize(p Plane, unit float64, scale int) (width, height int) {
	width = int(math.Round(float64(p.Width*scale) * p.ColumnSize / unit))
	height = int(math.Round(float64(p.Height*scale) * p.RowSize / unit))
	return max(width, 1), max(height, 1)
}

func centerCuts(file string) ([]Plane, error) {
	vol, err := LoadVolume(file)
	if err != nil {
		return nil, err
	}
	return NewViewer(vol).CenterCuts()
}

// tile lays the views out left to right on a black sheet, with the title
// above them.
func tile(views []image.Image, title string) image.Image {
	width, height := viewGap, 0
	for _, v := range views {
		b := v.Bounds()
		width += b.Dx() + viewGap
		if b.Dy() > height {
			height = b.Dy()
		}
	}
	top := viewGap
	if title != "" {
		top = titleBand
	}

	dc := gg.NewContext(width, top+height+viewGap)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	x := viewGap
	for _, v := range views {
		dc.DrawImage(v, x, top)
		x += v.Bounds().Dx() + viewGap
	}

	if title != "" {
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(title, float64(viewGap), float64(titleBand)/2, 0, 0.5)
	}

	return dc.Image()
}

// writePDF embeds the sheet in a page of the same size.
func writePDF(path string, sheet image.Image) error {
	b := sheet.Bounds()
	c := canvas.New(float64(b.Dx())/imageDPMM, float64(b.Dy())/imageDPMM)
	ctx := canvas.NewContext(c)
	ctx.DrawImage(0, 0, sheet, imageDPMM)

	return c.WriteFile(path, renderers.PDF())
}
