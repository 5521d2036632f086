// Package client implements the consuming side of the protocol: a session
// state machine over a transport and an interactive loop that drives it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/screengrab/snapshot-mcp/internal/protocol"
	"github.com/screengrab/snapshot-mcp/internal/schema"
)

// Session lifecycle errors.
var (
	ErrNotReady             = errors.New("session not ready")
	ErrSessionClosed        = errors.New("session closed")
	ErrInitializationFailed = errors.New("initialization failed")

	// ErrCallTimeout reports a call abandoned by its context. The protocol
	// has no mid-call cancellation, so the session is forced Closed: the
	// pending response can never be matched to a later call.
	ErrCallTimeout = errors.New("tool call timed out")
)

// State is the client session's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateClosed
)

// ToolInfo is a tool descriptor as advertised by the server.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema schema.InputSchema `json:"inputSchema"`
}

// Content is one item of a tool call result.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ToolResult is the payload of a successful tools/call response.
type ToolResult struct {
	Content []Content `json:"content"`
}

// rpcResponse mirrors protocol.Response with the result left raw so callers
// can decode it into method-specific shapes.
type rpcResponse struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      interface{}        `json:"id"`
	Result  json.RawMessage    `json:"result"`
	Error   *protocol.RPCError `json:"error"`
}

// Session owns exactly one transport and negotiates the protocol over it.
// It issues one request at a time; the interactive loop never overlaps
// calls, and programmatic callers must not either. State is guarded so it
// can be observed while a call is in flight.
type Session struct {
	transport protocol.Transport
	nextID    int

	mu    sync.Mutex
	state State
}

// NewSession wraps a transport. The session starts Uninitialized; call
// Initialize before anything else.
func NewSession(transport protocol.Transport) *Session {
	return &Session{transport: transport}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Initialize performs the handshake. On any failure the session transitions
// to Closed and the transport is released.
func (s *Session) Initialize() error {
	switch s.State() {
	case StateClosed:
		return ErrSessionClosed
	case StateUninitialized:
	default:
		return fmt.Errorf("%w: already initialized", ErrInitializationFailed)
	}
	s.setState(StateInitializing)

	result, err := s.roundTrip(protocol.MethodInitialize, map[string]interface{}{
		"protocolVersion": protocol.Version,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name": "snapshot-client",
		},
	})
	if err != nil {
		s.Close()
		return fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	var handshake struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(result, &handshake); err != nil || handshake.ProtocolVersion == "" {
		s.Close()
		return fmt.Errorf("%w: malformed handshake result", ErrInitializationFailed)
	}

	ack, err := json.Marshal(protocol.Notification{JSONRPC: "2.0", Method: protocol.MethodInitialized})
	if err == nil {
		err = s.transport.Send(ack)
	}
	if err != nil {
		s.Close()
		return fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	s.setState(StateReady)
	return nil
}

// ListTools returns the server's current tool descriptors. Pure; callable
// any number of times while Ready.
func (s *Session) ListTools() ([]ToolInfo, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}
	result, err := s.roundTrip(protocol.MethodToolsList, nil)
	if err != nil {
		return nil, err
	}
	var listing struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.Unmarshal(result, &listing); err != nil {
		return nil, fmt.Errorf("decode tool list: %w", err)
	}
	return listing.Tools, nil
}

// CallTool invokes one tool and waits for its result. A context expiry is
// reported as ErrCallTimeout and forces the session Closed; callers must
// re-establish a session afterwards. Tool failures reported by the server
// are returned as errors but leave the session Ready.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}

	id := s.next()
	if err := s.send(id, protocol.MethodToolsCall, map[string]interface{}{
		"name":      name,
		"arguments": args,
	}); err != nil {
		return nil, err
	}

	// The receive goroutine only delivers over the channel; all state
	// transitions happen on this goroutine.
	type received struct {
		resp *rpcResponse
		err  error
	}
	ch := make(chan received, 1)
	go func() {
		resp, err := s.receive(id)
		ch <- received{resp, err}
	}()

	select {
	case <-ctx.Done():
		s.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCallTimeout, name, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			s.setState(StateClosed)
			return nil, r.err
		}
		if r.resp.Error != nil {
			return nil, fmt.Errorf("tool call %s failed: %s (code %d)", name, rpcErrorText(r.resp.Error), r.resp.Error.Code)
		}
		var result ToolResult
		if err := json.Unmarshal(r.resp.Result, &result); err != nil {
			return nil, fmt.Errorf("decode tool result: %w", err)
		}
		return &result, nil
	}
}

// Close releases the transport and moves the session to Closed. Idempotent;
// callable from any state.
func (s *Session) Close() error {
	s.setState(StateClosed)
	return s.transport.Close()
}

func (s *Session) requireReady() error {
	switch state := s.State(); state {
	case StateReady:
		return nil
	case StateClosed:
		return ErrSessionClosed
	default:
		return fmt.Errorf("%w: state %d", ErrNotReady, int(state))
	}
}

func (s *Session) next() int {
	s.nextID++
	return s.nextID
}

func (s *Session) send(id int, method string, params interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := s.transport.Send(payload); err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}
	return nil
}

// receive reads frames until the response matching id arrives. Frames
// without a matching ID (notifications, stale responses) are skipped.
// receive never touches session state: CallTool runs it on a separate
// goroutine, so the caller applies the Closed transition itself.
func (s *Session) receive(id int) (*rpcResponse, error) {
	for {
		frame, err := s.transport.Receive()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionClosed, err)
		}
		var resp rpcResponse
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if matchID(resp.ID, id) {
			return &resp, nil
		}
	}
}

// roundTrip sends one request and blocks for its response, failing on
// protocol-level errors.
func (s *Session) roundTrip(method string, params interface{}) (json.RawMessage, error) {
	id := s.next()
	if err := s.send(id, method, params); err != nil {
		return nil, err
	}
	resp, err := s.receive(id)
	if err != nil {
		s.setState(StateClosed)
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s failed: %s (code %d)", method, rpcErrorText(resp.Error), resp.Error.Code)
	}
	return resp.Result, nil
}

// matchID compares a decoded response ID against a request ID. JSON numbers
// decode as float64.
func matchID(got interface{}, want int) bool {
	switch v := got.(type) {
	case float64:
		return int(v) == want
	case int:
		return v == want
	default:
		return false
	}
}

func rpcErrorText(e *protocol.RPCError) string {
	if data, ok := e.Data.(string); ok && data != "" {
		return fmt.Sprintf("%s: %s", e.Message, data)
	}
	return e.Message
}
