package snapshot

import "errors"

// ErrUnsupportedFormat indicates a format outside the supported set
// (jpeg, png), rejected before any capture or encoding work.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrEncodingFailed indicates the codec rejected the pixel buffer.
var ErrEncodingFailed = errors.New("image encoding failed")

// ErrIOFailure indicates a file write or directory creation error.
var ErrIOFailure = errors.New("i/o failure")
