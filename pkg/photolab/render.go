package photolab

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/math/f64"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// colorShift is how far a temperature or tint of 1.0 moves a channel.
const colorShift = 48

// ThumbOpts are preview options. A zero X or Y keeps the aspect ratio.
type ThumbOpts struct {
	X       int
	Y       int
	Quality int
}

// Render returns img with e applied. Default edits return img unchanged.
func Render(img image.Image, e Edits) image.Image {
	if !e.Dirty() {
		return img
	}
	klog.V(1).Infof("rendering %+v onto %v", e, img.Bounds())

	out := img
	if !equal(e.Exposure, 0) || !equal(e.Temperature, 0) || !equal(e.Tint, 0) {
		out = adjust.Apply(out, colorFn(e))
	}
	if !equal(e.Contrast, 0) {
		out = adjust.Contrast(out, e.Contrast)
	}
	if !equal(e.Saturation, 1) {
		out = adjust.Saturation(out, e.Saturation-1)
	}
	if e.Blur > 0 {
		out = blur.Gaussian(out, e.Blur)
	}
	return out
}

// colorFn scales by 2^exposure, then shifts red/blue for temperature and green for tint.
func colorFn(e Edits) func(color.RGBA) color.RGBA {
	gain := math.Pow(2, e.Exposure)
	warm := e.Temperature * colorShift
	magenta := e.Tint * colorShift

	ch := func(v uint8, shift float64) uint8 {
		return uint8(f64.Clamp(float64(v)*gain+shift, 0, 255))
	}

	return func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: ch(c.R, warm),
			G: ch(c.G, -magenta),
			B: ch(c.B, -warm),
			A: c.A,
		}
	}
}

// Preview scales img to fit t.
func Preview(img image.Image, t ThumbOpts) (image.Image, error) {
	x := t.X
	y := t.Y

	if img.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("no Y for %v", img.Bounds())
	}

	if img.Bounds().Dx() == 0 {
		return nil, fmt.Errorf("no X for %v", img.Bounds())
	}

	if t.X == 0 && t.Y == 0 {
		return img, nil
	}

	if t.X == 0 {
		scale := float64(img.Bounds().Dy()) / float64(t.Y)
		x = int(float64(img.Bounds().Dx()) / scale)
	}

	if t.Y == 0 {
		scale := float64(img.Bounds().Dx()) / float64(t.X)
		y = int(float64(img.Bounds().Dy()) / scale)
	}

	klog.V(1).Infof("creating %dx%d preview of %v", x, y, img.Bounds())
	return transform.Resize(img, max(x, 1), max(y, 1), transform.Lanczos), nil
}

// SaveJPEG writes img to path.
func SaveJPEG(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := imgio.Save(path, img, imgio.JPEGEncoder(quality)); err != nil {
		klog.Errorf("save failed: %s", err)
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Export renders the edits of r onto its image source and writes a JPEG to path.
func Export(r *Record, path string, t ThumbOpts) error {
	src := r.ImageSource()
	if src == nil || src.Image == nil {
		return fmt.Errorf("%s has no image source", r.Name())
	}

	img, err := Preview(Render(src.Image, r.Edits()), t)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	quality := t.Quality
	if quality == 0 {
		quality = 85
	}

	klog.Infof("exporting %s (%s) to %s", r.Name(), r.Dimensions(), path)
	return SaveJPEG(path, img, quality)
}
