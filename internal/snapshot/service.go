package snapshot

import (
	"fmt"

	"github.com/screengrab/snapshot-mcp/internal/capture"
)

// In-memory snapshots use JPEG at quality 60 with optimization. Payloads
// over ~1MB tend to be rejected by consumers, so the quick variant favors
// small size. This is a policy constant, not a cap the encoder enforces.
const (
	snapshotFormat  = FormatJPEG
	snapshotQuality = 60
)

// DefaultSaveQuality is the file-persisted quality when the caller does not
// specify one.
const DefaultSaveQuality = 80

// Service implements the snapshot tool operations.
type Service struct {
	engine *capture.Engine
}

// NewService builds a service over the given capture engine.
func NewService(engine *capture.Engine) *Service {
	return &Service{engine: engine}
}

// EnumSources lists the capturable screen and window sources.
func (s *Service) EnumSources() ([]capture.ScreenSource, error) {
	return s.engine.EnumerateSources()
}

// CreateSnapshot captures a frame of the source and returns it as an
// in-memory JPEG sized for transport.
func (s *Service) CreateSnapshot(sourceID int, size capture.Size) (*EncodedImage, error) {
	frame, err := s.engine.Capture(sourceID, size)
	if err != nil {
		return nil, err
	}
	return Encode(frame, snapshotFormat, snapshotQuality, true)
}

// SaveSnapshot captures a frame of the source and writes it to filePath in
// the given format, creating parent directories as needed. The format is
// validated before the backend is touched.
func (s *Service) SaveSnapshot(sourceID int, size capture.Size, filePath string, quality int, format string) error {
	if _, err := codecFor(format); err != nil {
		return err
	}
	if filePath == "" {
		return fmt.Errorf("%w: file path must not be empty", capture.ErrInvalidArgument)
	}
	frame, err := s.engine.Capture(sourceID, size)
	if err != nil {
		return err
	}
	return EncodeToFile(frame, format, quality, true, filePath)
}
