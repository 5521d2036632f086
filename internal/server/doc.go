// Package server implements the MCP (Model Context Protocol) server for
// screen snapshot tools.
//
// This package provides a JSON-RPC 2.0 server that exposes screen and window
// capture through the MCP protocol. It's designed to work with Claude and
// other MCP-compatible clients, enabling AI systems to look at what is on
// screen.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over a framed transport, either the
// process's stdin/stdout (one message per line) or a websocket connection
// (one message per websocket frame). Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - enum_screen_sources: List capturable screens and windows
//   - create_snapshot: Capture a source and return it as an inline JPEG
//   - save_snapshot: Capture a source and write it to a file
//
// # Sessions
//
// Each transport carries exactly one session, with its own state machine:
// Uninitialized -> Initializing -> Ready -> Closed. tools/list and
// tools/call are only served in Ready. Tool failures are returned as error
// responses and leave the session Ready; only transport faults close it.
// Sessions share nothing but the read-only tool registry, so any number can
// run in parallel.
//
// # Error Handling
//
// Dispatch faults (unknown tool, missing or mistyped parameters) are
// detected before the handler runs and returned with code -32602. Handler
// failures (capture, encoding, file I/O) are wrapped as tool execution
// failures with code -32000. Calls outside Ready get code -32002.
package server
