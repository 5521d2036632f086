package protocol

import "errors"

// ErrTransportClosed is returned by Receive when the peer has closed the
// channel or the transport itself has been closed.
var ErrTransportClosed = errors.New("transport closed")

// Transport carries framed protocol messages between two peers. One frame is
// one complete JSON-RPC message. Implementations must be usable by a single
// session goroutine; they do not need to support concurrent Receive calls.
type Transport interface {
	// Send writes one frame to the peer.
	Send(frame []byte) error

	// Receive blocks until the next frame arrives. It returns
	// ErrTransportClosed once the peer closes the channel.
	Receive() ([]byte, error)

	// Close releases the underlying channel. Close is idempotent.
	Close() error
}
