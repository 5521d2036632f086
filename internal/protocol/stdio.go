package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// maxFrameSize bounds a single newline-delimited frame. Snapshot responses
// carry base64 image data, so the limit is generous.
const maxFrameSize = 8 * 1024 * 1024

// StdioTransport frames messages as newline-delimited JSON over a reader and
// writer pair. The server uses it over the process's own stdin/stdout; the
// client-side pipe transport reuses it over a subprocess's pipes.
type StdioTransport struct {
	scanner *bufio.Scanner
	out     io.Writer
	closer  func() error

	mu     sync.Mutex
	closed bool
}

// NewStdioTransport wraps a reader/writer pair. closer, if non-nil, is
// invoked once on Close to release the underlying streams.
func NewStdioTransport(in io.Reader, out io.Writer, closer func() error) *StdioTransport {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxFrameSize)
	return &StdioTransport{scanner: scanner, out: out, closer: closer}
}

// Stdio returns a transport over the current process's stdin and stdout.
func Stdio() *StdioTransport {
	return NewStdioTransport(os.Stdin, os.Stdout, nil)
}

func (t *StdioTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	if _, err := t.out.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if _, err := t.out.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("write frame delimiter: %w", err)
	}
	return nil
}

func (t *StdioTransport) Receive() ([]byte, error) {
	for {
		if !t.scanner.Scan() {
			if err := t.scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
				return nil, fmt.Errorf("%w: %v", ErrTransportClosed, err)
			}
			return nil, ErrTransportClosed
		}
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// The scanner reuses its buffer between calls.
		frame := make([]byte, len(line))
		copy(frame, line)
		return frame, nil
	}
}

func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		return t.closer()
	}
	return nil
}
