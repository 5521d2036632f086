package capture

import (
	"fmt"

	"github.com/anthonynsimon/bild/transform"
	"github.com/kbinani/screenshot"
)

// DisplayBackend captures whole displays through the OS screenshot facility.
// Each active display is exposed as one non-window source whose ID is the
// display index at enumeration time.
type DisplayBackend struct{}

// NewDisplayBackend returns the default native backend.
func NewDisplayBackend() *DisplayBackend {
	return &DisplayBackend{}
}

func (b *DisplayBackend) Sources() ([]ScreenSource, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("no active displays")
	}
	sources := make([]ScreenSource, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		sources = append(sources, ScreenSource{
			ID:       i,
			Title:    fmt.Sprintf("Display %d", i),
			IsWindow: false,
			Rect: Rect{
				Left:   bounds.Min.X,
				Top:    bounds.Min.Y,
				Right:  bounds.Max.X,
				Bottom: bounds.Max.Y,
			},
		})
	}
	return sources, nil
}

func (b *DisplayBackend) Grab(sourceID int, size Size) (*RawFrame, error) {
	if sourceID >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("unknown source %d", sourceID)
	}
	bounds := screenshot.GetDisplayBounds(sourceID)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", sourceID, err)
	}

	// Fit inside the requested box preserving aspect ratio, so the actual
	// frame size may differ from the request.
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), size)
	resized := transform.Resize(img, w, h, transform.Linear)

	return &RawFrame{
		Pix:  resized.Pix,
		Size: Size{Width: w, Height: h},
	}, nil
}

// fitWithin scales (srcW, srcH) down or up to the largest size that fits
// inside box while preserving aspect ratio. Both dimensions stay >= 1.
func fitWithin(srcW, srcH int, box Size) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return box.Width, box.Height
	}
	scaleW := float64(box.Width) / float64(srcW)
	scaleH := float64(box.Height) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(srcW)*scale + 0.5)
	h := int(float64(srcH)*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
