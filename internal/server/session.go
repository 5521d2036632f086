package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/screengrab/snapshot-mcp/internal/protocol"
	"github.com/screengrab/snapshot-mcp/internal/snapshot"
)

const (
	serverName    = "snapshot-mcp"
	serverVersion = "0.1.0"
)

// State is a session's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session serves the protocol over one transport. It owns the transport and
// shares the registry read-only with other sessions. A session is driven by
// a single goroutine; it is not safe for concurrent use.
type Session struct {
	registry  *Registry
	transport protocol.Transport
	state     State
}

// NewSession binds a registry to a transport. The session starts
// Uninitialized and becomes Ready through the initialize handshake.
func NewSession(registry *Registry, transport protocol.Transport) *Session {
	return &Session{registry: registry, transport: transport}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Run serves requests until the peer closes the transport. A peer-initiated
// close is a normal exit; any other transport fault is returned. The
// transport is released on every exit path.
func (s *Session) Run() error {
	defer s.Close()

	for {
		frame, err := s.transport.Receive()
		if err != nil {
			s.state = StateClosed
			if errors.Is(err, protocol.ErrTransportClosed) {
				return nil
			}
			return err
		}

		resp := s.handleFrame(frame)
		if resp == nil {
			continue
		}
		payload, err := json.Marshal(resp)
		if err != nil {
			log.Printf("Failed to encode response: %v", err)
			continue
		}
		if err := s.transport.Send(payload); err != nil {
			s.state = StateClosed
			if errors.Is(err, protocol.ErrTransportClosed) {
				return nil
			}
			return err
		}
	}
}

// Close releases the transport and moves the session to Closed. Idempotent.
func (s *Session) Close() error {
	s.state = StateClosed
	return s.transport.Close()
}

// handleFrame parses one frame and routes it. A nil return means no response
// is owed (notifications).
func (s *Session) handleFrame(frame []byte) *protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(frame, &req); err != nil {
		log.Printf("Failed to parse request: %v", err)
		return protocol.NewErrorResponse(nil, protocol.CodeParseError, "Parse error", err.Error())
	}
	return s.handleRequest(&req)
}

func (s *Session) handleRequest(req *protocol.Request) *protocol.Response {
	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(req)
	case protocol.MethodInitialized:
		// Client acknowledgment, no response needed.
		return nil
	case protocol.MethodToolsList:
		return s.handleToolsList(req)
	case protocol.MethodToolsCall:
		return s.handleToolsCall(req)
	case protocol.MethodPing:
		return protocol.NewResponse(req.ID, map[string]interface{}{})
	default:
		return protocol.NewErrorResponse(req.ID, protocol.CodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

func (s *Session) handleInitialize(req *protocol.Request) *protocol.Response {
	if s.state != StateUninitialized {
		return protocol.NewErrorResponse(req.ID, protocol.CodeNotReady,
			fmt.Sprintf("initialize called in state %s", s.state), "")
	}
	s.state = StateInitializing

	resp := protocol.NewResponse(req.ID, map[string]interface{}{
		"protocolVersion": protocol.Version,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": serverVersion,
		},
	})
	s.state = StateReady
	return resp
}

func (s *Session) handleToolsList(req *protocol.Request) *protocol.Response {
	if s.state != StateReady {
		return s.notReady(req)
	}
	return protocol.NewResponse(req.ID, map[string]interface{}{
		"tools": s.registry.Tools(),
	})
}

// ToolCallParams represents the parameters for a tools/call request.
type ToolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// handleToolsCall dispatches a tools/call request. Dispatch faults and tool
// failures become error responses; the session stays Ready either way.
func (s *Session) handleToolsCall(req *protocol.Request) *protocol.Response {
	if s.state != StateReady {
		return s.notReady(req)
	}

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.registry.Dispatch(params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, ErrToolExecution) {
			return protocol.NewErrorResponse(req.ID, protocol.CodeToolFailed, "Tool execution failed", err.Error())
		}
		return protocol.NewErrorResponse(req.ID, protocol.CodeInvalidParams, "Invalid params", err.Error())
	}

	return protocol.NewResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{toolContent(result)},
	})
}

func (s *Session) notReady(req *protocol.Request) *protocol.Response {
	return protocol.NewErrorResponse(req.ID, protocol.CodeNotReady,
		fmt.Sprintf("session not ready: state %s", s.state), "")
}

// toolContent wraps a tool result in MCP content form: encoded images become
// inline image content, everything else is rendered as JSON text.
func toolContent(result interface{}) map[string]interface{} {
	if img, ok := result.(*snapshot.EncodedImage); ok {
		return map[string]interface{}{
			"type":     "image",
			"data":     base64.StdEncoding.EncodeToString(img.Data),
			"mimeType": img.MIMEType(),
		}
	}
	return map[string]interface{}{
		"type": "text",
		"text": mustMarshalJSON(result),
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, logs the error and returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to encode tool result: %v", err)
		return ""
	}
	return string(b)
}
