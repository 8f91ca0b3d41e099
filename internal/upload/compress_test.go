package upload

import (
	"bytes"
	"image"
	"testing"
)

func decodeDims(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode compressed output: %v", err)
	}
	return cfg.Width, cfg.Height, format
}

func TestCompressJPEGBoundsLongestEdge(t *testing.T) {
	out, err := CompressJPEG(testJPEG(t, 2400, 1200))
	if err != nil {
		t.Fatalf("CompressJPEG: %v", err)
	}

	w, h, format := decodeDims(t, out)
	if format != "jpeg" {
		t.Errorf("output format: got %q, want jpeg", format)
	}
	if w != maxImageEdge {
		t.Errorf("width: got %d, want %d", w, maxImageEdge)
	}
	if h != maxImageEdge/2 {
		t.Errorf("height: got %d, want %d (aspect preserved)", h, maxImageEdge/2)
	}
}

func TestCompressJPEGKeepsSmallImages(t *testing.T) {
	out, err := CompressJPEG(testJPEG(t, 320, 240))
	if err != nil {
		t.Fatalf("CompressJPEG: %v", err)
	}

	w, h, _ := decodeDims(t, out)
	if w != 320 || h != 240 {
		t.Errorf("small image resized: got %dx%d, want 320x240", w, h)
	}
}

func TestCompressJPEGConvertsPNG(t *testing.T) {
	out, err := CompressJPEG(pngBytes(t, 50, 50))
	if err != nil {
		t.Fatalf("CompressJPEG: %v", err)
	}
	if _, _, format := decodeDims(t, out); format != "jpeg" {
		t.Errorf("PNG input must come out as JPEG, got %q", format)
	}
}

func TestCompressJPEGRejectsGarbage(t *testing.T) {
	if _, err := CompressJPEG([]byte("definitely not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCompressJPEGRejectsPixelBomb(t *testing.T) {
	// A valid PNG header declaring 20000x20000 pixels; DecodeConfig reads
	// only the header, so no giant allocation happens.
	header := []byte{
		0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
		0x00, 0x00, 0x4e, 0x20, // width 20000
		0x00, 0x00, 0x4e, 0x20, // height 20000
		0x08, 0x02, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // crc (unchecked by DecodeConfig)
	}
	if _, err := CompressJPEG(header); err == nil {
		t.Fatal("expected pixel-count rejection")
	}
}
