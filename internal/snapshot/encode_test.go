package snapshot

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/screengrab/snapshot-mcp/internal/capture"
)

// testFrame builds a w x h RGBA frame with a simple gradient so encoders
// have real data to work on.
func testFrame(w, h int) *capture.RawFrame {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pix[i] = byte(x * 255 / w)
			pix[i+1] = byte(y * 255 / h)
			pix[i+2] = 0x40
			pix[i+3] = 0xFF
		}
	}
	return &capture.RawFrame{Pix: pix, Size: capture.Size{Width: w, Height: h}}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	for _, format := range []string{"gif", "bmp", "JPEG", ""} {
		t.Run("format "+format, func(t *testing.T) {
			_, err := Encode(testFrame(4, 4), format, 80, false)
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}

func TestEncode_JPEG(t *testing.T) {
	encoded, err := Encode(testFrame(100, 100), FormatJPEG, 60, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(encoded.Data) == 0 {
		t.Fatal("encoded image is empty")
	}
	if encoded.Format != FormatJPEG {
		t.Errorf("format: got %s, want jpeg", encoded.Format)
	}
	if encoded.MIMEType() != "image/jpeg" {
		t.Errorf("mime type: got %s", encoded.MIMEType())
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(encoded.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("decoded format: got %s, want jpeg", format)
	}
	if cfg.Width != 100 || cfg.Height != 100 {
		t.Errorf("decoded size: got %dx%d, want 100x100", cfg.Width, cfg.Height)
	}
}

func TestEncode_RoundTripUsesActualSize(t *testing.T) {
	// The frame's declared size is what matters, not whatever was
	// requested from the backend.
	frame := testFrame(64, 36)

	encoded, err := Encode(frame, FormatPNG, 100, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(encoded.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" {
		t.Errorf("decoded format: got %s, want png", format)
	}
	bounds := img.Bounds()
	if bounds.Dx() != frame.Size.Width || bounds.Dy() != frame.Size.Height {
		t.Errorf("decoded size: got %dx%d, want %s", bounds.Dx(), bounds.Dy(), frame.Size)
	}
}

func TestEncode_QualityAffectsJPEGSize(t *testing.T) {
	frame := testFrame(200, 200)

	low, err := Encode(frame, FormatJPEG, 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := Encode(frame, FormatJPEG, 95, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(low.Data) >= len(high.Data) {
		t.Errorf("quality 10 (%d bytes) should be smaller than quality 95 (%d bytes)",
			len(low.Data), len(high.Data))
	}
}

func TestEncodeToFile_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.png")

	if err := EncodeToFile(testFrame(32, 32), FormatPNG, 100, true, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("written file is empty")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format: got %s, want png", format)
	}
}

func TestEncodeToFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.webp")

	err := EncodeToFile(testFrame(8, 8), "webp", 80, false, path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written for an unsupported format")
	}
}
