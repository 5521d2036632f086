package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStdioTransport_Receive(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	transport := NewStdioTransport(in, &bytes.Buffer{}, nil)

	first, err := transport.Receive()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(first, []byte(`"ping"`)) {
		t.Errorf("first frame: %s", first)
	}

	// Blank lines are skipped, not surfaced as empty frames.
	second, err := transport.Receive()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(second, []byte(`"tools/list"`)) {
		t.Errorf("second frame: %s", second)
	}

	if _, err := transport.Receive(); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("expected ErrTransportClosed at EOF, got %v", err)
	}
}

func TestStdioTransport_SendFramesWithNewline(t *testing.T) {
	var out bytes.Buffer
	transport := NewStdioTransport(strings.NewReader(""), &out, nil)

	if err := transport.Send([]byte(`{"jsonrpc":"2.0","id":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := transport.Send([]byte(`{"jsonrpc":"2.0","id":2}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out.String())
	}
}

func TestStdioTransport_SendAfterClose(t *testing.T) {
	closed := false
	transport := NewStdioTransport(strings.NewReader(""), &bytes.Buffer{}, func() error {
		closed = true
		return nil
	})

	if err := transport.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !closed {
		t.Error("closer was not invoked")
	}
	// Idempotent: the closer runs once.
	closed = false
	if err := transport.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if closed {
		t.Error("closer ran twice")
	}

	if err := transport.Send([]byte("{}")); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("expected ErrTransportClosed after close, got %v", err)
	}
}

func TestStdioTransport_ReceiveCopiesFrame(t *testing.T) {
	in := strings.NewReader("{\"id\":1}\n{\"id\":2}\n")
	transport := NewStdioTransport(in, &bytes.Buffer{}, nil)

	first, err := transport.Receive()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot := string(first)

	if _, err := transport.Receive(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != snapshot {
		t.Error("earlier frame was clobbered by a later Receive")
	}
}
