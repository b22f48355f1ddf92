package photolab

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"k8s.io/klog/v2"
)

// Bitmap is a decoded image used as the source of a Record.
type Bitmap struct {
	Image       image.Image
	PixelWidth  int
	PixelHeight int
}

// NewBitmap wraps a decoded image.
func NewBitmap(img image.Image) *Bitmap {
	b := img.Bounds()
	return &Bitmap{Image: img, PixelWidth: b.Dx(), PixelHeight: b.Dy()}
}

// LoadBitmap decodes the image at path.
func LoadBitmap(path string) (*Bitmap, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imgio.Open: %w", err)
	}
	bm := NewBitmap(img)
	klog.V(1).Infof("decoded %s: %dx%d", path, bm.PixelWidth, bm.PixelHeight)
	return bm, nil
}
