// Package snapshot turns raw captured frames into encoded images and
// implements the snapshot tool operations on top of the capture engine.
package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/screengrab/snapshot-mcp/internal/capture"
)

// Supported output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// EncodedImage is a compressed image payload.
type EncodedImage struct {
	Data   []byte
	Format string
}

// MIMEType returns the payload's media type.
func (e *EncodedImage) MIMEType() string {
	return "image/" + e.Format
}

// Encode compresses a raw RGBA frame into the given format.
//
// Captured frames are 4-channel RGBA. JPEG has no alpha support, so the
// alpha channel is dropped during encoding; PNG preserves it. quality only
// affects JPEG. optimize requests maximal compression effort for the chosen
// codec: best-compression for PNG, intent-only for JPEG (Go's encoder has no
// effort knob).
func Encode(frame *capture.RawFrame, format string, quality int, optimize bool) (*EncodedImage, error) {
	codec, err := codecFor(format)
	if err != nil {
		return nil, err
	}

	img := &image.RGBA{
		Pix:    frame.Pix,
		Stride: frame.Size.Width * 4,
		Rect:   image.Rect(0, 0, frame.Size.Width, frame.Size.Height),
	}

	opts := []imaging.EncodeOption{imaging.JPEGQuality(quality)}
	if optimize && codec == imaging.PNG {
		opts = append(opts, imaging.PNGCompressionLevel(png.BestCompression))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, codec, opts...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return &EncodedImage{Data: buf.Bytes(), Format: format}, nil
}

// EncodeToFile encodes a frame and writes it to path, creating parent
// directories as needed.
func EncodeToFile(frame *capture.RawFrame, format string, quality int, optimize bool, path string) error {
	encoded, err := Encode(frame, format, quality, optimize)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrIOFailure, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("%w: create directories for %s: %v", ErrIOFailure, path, err)
	}
	if err := os.WriteFile(abs, encoded.Data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIOFailure, path, err)
	}
	return nil
}

func codecFor(format string) (imaging.Format, error) {
	switch format {
	case FormatJPEG:
		return imaging.JPEG, nil
	case FormatPNG:
		return imaging.PNG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
