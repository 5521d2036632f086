// Package capture wraps the native screen capture capability: enumerating
// capturable sources and grabbing a single raw frame for a source at a
// requested size.
//
// The native backend is treated as a black box behind the Backend interface.
// Engine adds the argument validation and failure classification that tool
// handlers rely on, so backends stay free of protocol concerns.
package capture

import "fmt"

// Rect is a source's bounding rectangle in virtual-screen coordinates.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Size is a frame size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// ScreenSource describes one capturable screen or window. Sources are
// produced fresh on every enumeration; IDs carry no identity guarantee
// across calls, the OS may reuse them between enumerations.
type ScreenSource struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	IsWindow bool   `json:"is_window"`
	Rect     Rect   `json:"rect"`
}

// RawFrame is an uncompressed RGBA pixel buffer together with the size the
// backend actually produced. The actual size may differ from the requested
// size; consumers must encode against Size, never against the request.
type RawFrame struct {
	// Pix holds 4-byte RGBA pixels in row-major order,
	// len == Size.Width * Size.Height * 4.
	Pix  []byte
	Size Size
}

// Backend is the native capture capability.
type Backend interface {
	// Sources enumerates the capturable screens and windows.
	Sources() ([]ScreenSource, error)

	// Grab captures one frame of the given source, sized to fit the
	// requested size. The returned frame reports its actual size.
	Grab(sourceID int, size Size) (*RawFrame, error)
}
