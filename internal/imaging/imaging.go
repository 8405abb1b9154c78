// Package imaging handles bitmap validation and the face-crop normalization
// step that runs between detection and embedding extraction.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Normalized face crops are square so embedding models see a consistent input.
const (
	NormalizedSize = 160
	jpegQuality    = 90
)

// ValidateBitmap checks that data holds a decodable JPEG or PNG with non-zero
// dimensions. It only reads the header, not the full pixel data.
func ValidateBitmap(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image payload")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid %s dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	return nil
}

// BoundingBox is a face region in relative coordinates, each component within
// [0, 1] of the source image dimensions.
type BoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// PixelBox converts an absolute pixel rectangle into a relative bounding box
// for the dimensions of the image held in data.
func PixelBox(data []byte, x, y, w, h int) (BoundingBox, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return BoundingBox{}, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return BoundingBox{}, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return BoundingBox{
		Left:   float64(x) / float64(cfg.Width),
		Top:    float64(y) / float64(cfg.Height),
		Width:  float64(w) / float64(cfg.Width),
		Height: float64(h) / float64(cfg.Height),
	}, nil
}

// CropFace cuts the bounding box out of the source image and re-encodes it as
// JPEG. Boxes that overflow the image edge are clamped rather than rejected,
// since detectors routinely return boxes that touch the frame border.
func CropFace(data []byte, box BoundingBox) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	x0 := bounds.Min.X + int(box.Left*w)
	y0 := bounds.Min.Y + int(box.Top*h)
	x1 := x0 + int(box.Width*w)
	y1 := y0 + int(box.Height*h)

	x0 = clamp(x0, bounds.Min.X, bounds.Max.X)
	y0 = clamp(y0, bounds.Min.Y, bounds.Max.Y)
	x1 = clamp(x1, bounds.Min.X, bounds.Max.X)
	y1 = clamp(y1, bounds.Min.Y, bounds.Max.Y)

	if x1 <= x0 || y1 <= y0 {
		return nil, fmt.Errorf("bounding box %+v produces empty crop", box)
	}

	cropped := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cropped.Set(x-x0, y-y0, src.At(x, y))
		}
	}

	return encodeJPEG(cropped)
}

// Normalize resizes an image to the square side length expected by the
// embedding and emotion models.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := resize.Resize(NormalizedSize, NormalizedSize, src, resize.Lanczos3)
	return encodeJPEG(resized)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
