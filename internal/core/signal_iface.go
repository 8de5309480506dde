package core

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw encoded payload for one connection write.
type Frame []byte

// ConnID identifies one persistent connection for its whole lifetime.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// Connection abstracts the messaging transport.
// Owned by the adapter; the hub only calls TrySend and Close.
//
//go:generate mockgen -source=signal_iface.go -destination=mocks/mock_connection.go -package=mocks
type Connection interface {
	// TrySend queues a frame without blocking. It fails when the
	// connection is closed or its buffer is full.
	TrySend(Frame) error
	// Close flushes queued frames and releases the transport.
	Close()
}
