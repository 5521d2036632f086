package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/screengrab/snapshot-mcp/internal/protocol"
)

// fakeServer is a scripted transport: every request frame sent through it is
// answered by handle. A nil response from handle leaves the call hanging,
// which is how the timeout path is exercised.
type fakeServer struct {
	handle func(method string, id interface{}, params json.RawMessage) *protocol.Response

	mu            sync.Mutex
	closed        bool
	notifications []string
	recv          chan []byte
}

func newFakeServer(handle func(method string, id interface{}, params json.RawMessage) *protocol.Response) *fakeServer {
	return &fakeServer{handle: handle, recv: make(chan []byte, 16)}
}

func (f *fakeServer) Send(frame []byte) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return protocol.ErrTransportClosed
	}
	f.mu.Unlock()

	var req struct {
		ID     interface{}     `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(frame, &req); err != nil {
		return err
	}
	if req.ID == nil {
		f.mu.Lock()
		f.notifications = append(f.notifications, req.Method)
		f.mu.Unlock()
		return nil
	}
	resp := f.handle(req.Method, req.ID, req.Params)
	if resp == nil {
		return nil
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	f.recv <- payload
	return nil
}

func (f *fakeServer) Receive() ([]byte, error) {
	frame, ok := <-f.recv
	if !ok {
		return nil, protocol.ErrTransportClosed
	}
	return frame, nil
}

func (f *fakeServer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.recv)
	return nil
}

func handshakeResult() map[string]interface{} {
	return map[string]interface{}{
		"protocolVersion": protocol.Version,
		"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
		"serverInfo":      map[string]interface{}{"name": "snapshot-mcp", "version": "0.1.0"},
	}
}

// wellBehaved answers like the real server: handshake, one tool, text
// results for every call.
func wellBehaved(method string, id interface{}, params json.RawMessage) *protocol.Response {
	switch method {
	case protocol.MethodInitialize:
		return protocol.NewResponse(id, handshakeResult())
	case protocol.MethodToolsList:
		return protocol.NewResponse(id, map[string]interface{}{
			"tools": []map[string]interface{}{
				{
					"name":        "enum_screen_sources",
					"description": "Enumerate sources",
					"inputSchema": map[string]interface{}{
						"type":       "object",
						"properties": map[string]interface{}{},
						"required":   []string{},
					},
				},
			},
		})
	case protocol.MethodToolsCall:
		return protocol.NewResponse(id, map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": "[]"}},
		})
	default:
		return protocol.NewErrorResponse(id, protocol.CodeMethodNotFound, "Method not found", "")
	}
}

func readySession(t *testing.T, server *fakeServer) *Session {
	t.Helper()
	sess := NewSession(server)
	if err := sess.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return sess
}

func TestSession_Initialize(t *testing.T) {
	server := newFakeServer(wellBehaved)
	sess := readySession(t, server)

	if sess.State() != StateReady {
		t.Errorf("state: got %d, want ready", sess.State())
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if len(server.notifications) != 1 || server.notifications[0] != protocol.MethodInitialized {
		t.Errorf("expected initialized notification, got %v", server.notifications)
	}
}

func TestSession_InitializeMalformedHandshake(t *testing.T) {
	server := newFakeServer(func(method string, id interface{}, params json.RawMessage) *protocol.Response {
		return protocol.NewResponse(id, map[string]interface{}{})
	})
	sess := NewSession(server)

	err := sess.Initialize()
	if !errors.Is(err, ErrInitializationFailed) {
		t.Fatalf("expected ErrInitializationFailed, got %v", err)
	}
	if sess.State() != StateClosed {
		t.Errorf("state after failed handshake: got %d, want closed", sess.State())
	}
}

func TestSession_InitializeTransportFailure(t *testing.T) {
	server := newFakeServer(wellBehaved)
	server.Close()
	sess := NewSession(server)

	if err := sess.Initialize(); !errors.Is(err, ErrInitializationFailed) {
		t.Fatalf("expected ErrInitializationFailed, got %v", err)
	}
}

func TestSession_NotReady(t *testing.T) {
	sess := NewSession(newFakeServer(wellBehaved))

	if _, err := sess.ListTools(); !errors.Is(err, ErrNotReady) {
		t.Errorf("ListTools: expected ErrNotReady, got %v", err)
	}
	if _, err := sess.CallTool(context.Background(), "x", nil); !errors.Is(err, ErrNotReady) {
		t.Errorf("CallTool: expected ErrNotReady, got %v", err)
	}
}

func TestSession_OperationsAfterClose(t *testing.T) {
	sess := readySession(t, newFakeServer(wellBehaved))

	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close must be idempotent: %v", err)
	}

	if _, err := sess.ListTools(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("ListTools: expected ErrSessionClosed, got %v", err)
	}
	if _, err := sess.CallTool(context.Background(), "x", nil); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("CallTool: expected ErrSessionClosed, got %v", err)
	}
	if err := sess.Initialize(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Initialize: expected ErrSessionClosed, got %v", err)
	}
}

func TestSession_ListTools(t *testing.T) {
	sess := readySession(t, newFakeServer(wellBehaved))

	tools, err := sess.ListTools()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "enum_screen_sources" {
		t.Errorf("unexpected tools: %+v", tools)
	}
}

func TestSession_CallTool(t *testing.T) {
	sess := readySession(t, newFakeServer(wellBehaved))

	result, err := sess.CallTool(context.Background(), "enum_screen_sources", map[string]interface{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Errorf("unexpected result: %+v", result)
	}
	if sess.State() != StateReady {
		t.Errorf("state after call: got %d, want ready", sess.State())
	}
}

func TestSession_CallToolServerError(t *testing.T) {
	server := newFakeServer(func(method string, id interface{}, params json.RawMessage) *protocol.Response {
		if method == protocol.MethodToolsCall {
			return protocol.NewErrorResponse(id, protocol.CodeToolFailed, "Tool execution failed", "capture broke")
		}
		return wellBehaved(method, id, params)
	})
	sess := readySession(t, server)

	_, err := sess.CallTool(context.Background(), "create_snapshot", map[string]interface{}{})
	if err == nil {
		t.Fatal("expected error")
	}
	// Tool failures are data; the session stays usable.
	if sess.State() != StateReady {
		t.Errorf("state after tool failure: got %d, want ready", sess.State())
	}
	if _, err := sess.ListTools(); err != nil {
		t.Errorf("ListTools after tool failure: %v", err)
	}
}

func TestSession_CallToolTimeoutClosesSession(t *testing.T) {
	server := newFakeServer(func(method string, id interface{}, params json.RawMessage) *protocol.Response {
		if method == protocol.MethodToolsCall {
			return nil // never answer; the call hangs
		}
		return wellBehaved(method, id, params)
	})
	sess := readySession(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sess.CallTool(ctx, "create_snapshot", map[string]interface{}{})
	if !errors.Is(err, ErrCallTimeout) {
		t.Fatalf("expected ErrCallTimeout, got %v", err)
	}
	if sess.State() != StateClosed {
		t.Errorf("state after timeout: got %d, want closed", sess.State())
	}
	if _, err := sess.CallTool(context.Background(), "x", nil); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after timeout, got %v", err)
	}
}

// Session state is owned by the calling goroutine: the receive goroutine
// spawned for a call must never write it. Concurrent State reads while a
// call times out must stay race-free.
func TestSession_StateReadsDuringTimeoutAreRaceFree(t *testing.T) {
	server := newFakeServer(func(method string, id interface{}, params json.RawMessage) *protocol.Response {
		if method == protocol.MethodToolsCall {
			return nil // never answer; the call hangs until the timeout
		}
		return wellBehaved(method, id, params)
	})
	sess := readySession(t, server)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				sess.State()
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := sess.CallTool(ctx, "create_snapshot", map[string]interface{}{}); !errors.Is(err, ErrCallTimeout) {
		t.Fatalf("expected ErrCallTimeout, got %v", err)
	}

	close(stop)
	wg.Wait()
	if sess.State() != StateClosed {
		t.Errorf("state after timeout: got %d, want closed", sess.State())
	}
}

func TestSession_TransportFailureDuringCallClosesSession(t *testing.T) {
	server := newFakeServer(func(method string, id interface{}, params json.RawMessage) *protocol.Response {
		if method == protocol.MethodToolsCall {
			return nil
		}
		return wellBehaved(method, id, params)
	})
	sess := readySession(t, server)

	// Peer hangs up mid-call; the caller, not the receive goroutine, must
	// apply the Closed transition before the error is returned.
	go func() {
		time.Sleep(10 * time.Millisecond)
		server.Close()
	}()
	_, err := sess.CallTool(context.Background(), "create_snapshot", map[string]interface{}{})
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if sess.State() != StateClosed {
		t.Errorf("state after transport failure: got %d, want closed", sess.State())
	}
}
