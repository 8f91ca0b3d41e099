package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
)

const (
	// maxImageEdge bounds the longest edge of an uploaded image in pixels.
	maxImageEdge = 1200

	// jpegQuality is the initial JPEG encode quality.
	jpegQuality = 80

	// minJPEGQuality is the floor for the quality step-down loop.
	minJPEGQuality = 40

	// targetImageBytes is the soft size target (~0.7 MB) after re-encoding.
	targetImageBytes = 700 * 1024

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// CompressJPEG re-encodes an uploaded image (JPEG or PNG) as JPEG, scaled
// so its longest edge is at most maxImageEdge pixels. If the result is
// still above the size target, quality steps down until it fits or hits
// the floor. The output is always JPEG regardless of the input format.
func CompressJPEG(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = boundEdge(img, maxImageEdge)

	for quality := jpegQuality; ; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= targetImageBytes || quality <= minJPEGQuality {
			return buf.Bytes(), nil
		}
	}
}

// boundEdge scales an image down so its longest edge is at most maxEdge,
// preserving aspect ratio. Images already within bounds pass through.
func boundEdge(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	edge := w
	if h > edge {
		edge = h
	}
	if edge <= maxEdge {
		return img
	}

	ratio := float64(maxEdge) / float64(edge)
	newW := int(float64(w) * ratio)
	newH := int(float64(h) * ratio)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	// CatmullRom for quality; this runs once per admin upload, not per view.
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
