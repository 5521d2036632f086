package capture

import "fmt"

// defaultWorkers bounds concurrent native capture calls. Native capture is
// blocking; the semaphore keeps a slow grab on one session from monopolizing
// the backend while still letting other sessions queue fairly.
const defaultWorkers = 2

// Engine validates capture requests, classifies backend failures, and
// serializes access to the native backend. It is safe for concurrent use by
// multiple sessions.
type Engine struct {
	backend Backend
	sem     chan struct{}
}

// NewEngine wraps a backend with the default worker limit.
func NewEngine(backend Backend) *Engine {
	return NewEngineWithWorkers(backend, defaultWorkers)
}

// NewEngineWithWorkers wraps a backend allowing up to workers concurrent
// native capture calls.
func NewEngineWithWorkers(backend Backend, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{backend: backend, sem: make(chan struct{}, workers)}
}

// EnumerateSources lists the capturable sources.
func (e *Engine) EnumerateSources() ([]ScreenSource, error) {
	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	sources, err := e.backend.Sources()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumerationFailed, err)
	}
	return sources, nil
}

// Capture grabs one frame of the given source sized to fit size.
//
// Preconditions are checked before the backend is touched: sourceID must be
// non-negative and both dimensions strictly positive, otherwise
// ErrInvalidArgument. Backend errors surface as ErrCaptureFailed; a nil or
// malformed frame surfaces as ErrInvalidBackendResult.
func (e *Engine) Capture(sourceID int, size Size) (*RawFrame, error) {
	if sourceID < 0 {
		return nil, fmt.Errorf("%w: source ID must be non-negative, got %d", ErrInvalidArgument, sourceID)
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %s", ErrInvalidArgument, size)
	}

	e.sem <- struct{}{}
	defer func() { <-e.sem }()

	frame, err := e.backend.Grab(sourceID, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: backend returned nil frame", ErrInvalidBackendResult)
	}
	if want := frame.Size.Width * frame.Size.Height * 4; frame.Size.Width <= 0 || frame.Size.Height <= 0 || len(frame.Pix) != want {
		return nil, fmt.Errorf("%w: pixel buffer does not match declared size %s", ErrInvalidBackendResult, frame.Size)
	}
	return frame, nil
}
