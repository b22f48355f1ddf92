package photolab

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func grayImage(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestRenderDefaultsUnchanged(t *testing.T) {
	img := grayImage(4, 4, 100)
	if got := Render(img, DefaultEdits()); got != image.Image(img) {
		t.Errorf("Render with default edits returned a copy")
	}
}

func TestRenderColor(t *testing.T) {
	tests := []struct {
		name  string
		edits func(*Edits)
		check func(c color.RGBA) bool
	}{
		{"exposure brightens", func(e *Edits) { e.Exposure = 1 }, func(c color.RGBA) bool { return c.R == 200 && c.G == 200 && c.B == 200 }},
		{"exposure darkens", func(e *Edits) { e.Exposure = -1 }, func(c color.RGBA) bool { return c.R == 50 }},
		{"warm", func(e *Edits) { e.Temperature = 1 }, func(c color.RGBA) bool { return c.R > 100 && c.B < 100 && c.G == 100 }},
		{"cool", func(e *Edits) { e.Temperature = -1 }, func(c color.RGBA) bool { return c.R < 100 && c.B > 100 }},
		{"magenta", func(e *Edits) { e.Tint = 1 }, func(c color.RGBA) bool { return c.G < 100 && c.R == 100 }},
		{"contrast", func(e *Edits) { e.Contrast = 0.5 }, func(c color.RGBA) bool { return c.R < 100 }},
		{"blur keeps flat color", func(e *Edits) { e.Blur = 2 }, func(c color.RGBA) bool { return c.R >= 99 && c.R <= 101 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := DefaultEdits()
			tc.edits(&e)
			out := Render(grayImage(8, 8, 100), e)
			c := color.RGBAModel.Convert(out.At(4, 4)).(color.RGBA)
			if !tc.check(c) {
				t.Errorf("unexpected color %+v", c)
			}
			if out.Bounds() != image.Rect(0, 0, 8, 8) {
				t.Errorf("bounds = %v", out.Bounds())
			}
		})
	}
}

func TestRenderSaturation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 100, 100, 255})
		}
	}

	e := DefaultEdits()
	e.Saturation = 0
	c := color.RGBAModel.Convert(Render(img, e).At(0, 0)).(color.RGBA)
	if c.R != c.G || c.G != c.B {
		t.Errorf("saturation 0 left color %+v", c)
	}
}

func TestPreview(t *testing.T) {
	img := grayImage(400, 200, 50)

	tests := []struct {
		name  string
		opts  ThumbOpts
		wantX int
		wantY int
	}{
		{"by width", ThumbOpts{X: 100}, 100, 50},
		{"by height", ThumbOpts{Y: 50}, 100, 50},
		{"both", ThumbOpts{X: 40, Y: 40}, 40, 40},
		{"none", ThumbOpts{}, 400, 200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Preview(img, tc.opts)
			if err != nil {
				t.Fatalf("Preview: %v", err)
			}
			if got.Bounds().Dx() != tc.wantX || got.Bounds().Dy() != tc.wantY {
				t.Errorf("Preview = %v, want %dx%d", got.Bounds(), tc.wantX, tc.wantY)
			}
		})
	}

	if _, err := Preview(image.NewRGBA(image.Rect(0, 0, 0, 0)), ThumbOpts{X: 10}); err == nil {
		t.Errorf("Preview of an empty image succeeded")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	r := New(&Properties{Rating: 2}, File{Path: "x.jpg"}, NewBitmap(grayImage(64, 32, 80)), "x", "JPG File")
	r.SetExposure(0.5)

	out := filepath.Join(dir, "out", "x.jpg")
	if err := Export(r, out, ThumbOpts{X: 32}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	bm, err := LoadBitmap(out)
	if err != nil {
		t.Fatalf("LoadBitmap: %v", err)
	}
	if bm.PixelWidth != 32 || bm.PixelHeight != 16 {
		t.Errorf("exported %dx%d, want 32x16", bm.PixelWidth, bm.PixelHeight)
	}

	r.SetImageSource(nil)
	if err := Export(r, out, ThumbOpts{}); err == nil {
		t.Errorf("Export without an image source succeeded")
	}
}
