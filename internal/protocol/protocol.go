package protocol

import "encoding/json"

// Protocol version advertised during the initialize handshake.
const Version = "2024-11-05"

// JSON-RPC method names used by the protocol.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
	MethodPing        = "ping"
)

// JSON-RPC error codes. -32700, -32601 and -32602 are defined by JSON-RPC
// 2.0; -32000 and -32002 are server-defined.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeToolFailed     = -32000
	CodeNotReady       = -32002
)

// Request represents an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Notification represents a message without an ID; it expects no response.
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// NewResponse builds a success response for the given request ID.
func NewResponse(id, result interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

// NewErrorResponse builds an error response for the given request ID.
func NewErrorResponse(id interface{}, code int, message, data string) *Response {
	rpcErr := &RPCError{Code: code, Message: message}
	if data != "" {
		rpcErr.Data = data
	}
	return &Response{JSONRPC: "2.0", ID: id, Error: rpcErr}
}
