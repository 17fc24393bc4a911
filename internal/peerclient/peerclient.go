// Package peerclient defines the capability a Chord node uses to talk
// to any other node on the ring, independent of the transport that
// actually carries the bytes.
package peerclient

import (
	"context"
	"errors"

	"chorddht/internal/domain"
)

// Kind classifies why a peer RPC failed, so the node service can
// react uniformly regardless of which transport produced the error.
type Kind int

const (
	// ConnectionFailed means the peer was unreachable or the call
	// timed out: the caller should treat the peer as dead.
	ConnectionFailed Kind = iota
	// InvalidRequest means the peer rejected the request as malformed;
	// retrying the same request will not help.
	InvalidRequest
	// Unexpected covers any other failure.
	Unexpected
)

// Error wraps a transport-level failure with its Kind, so callers can
// branch on Kind without inspecting transport-specific error types.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error of the given kind wrapping err.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// IsConnectionFailed reports whether err (or any error it wraps)
// signals that the peer is unreachable. There is no separate kind for
// a client that could not be created; the node service reports a
// failed pool dial as ConnectionFailed, so it is matched here too.
func IsConnectionFailed(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == ConnectionFailed
	}
	return false
}

// Client is the capability surface a Chord node needs from a peer. A
// concrete transport (e.g. gRPC) implements this interface; the node
// service and the pool never depend on a transport directly.
type Client interface {
	// Ping checks liveness.
	Ping(ctx context.Context) error
	// FindSuccessor asks the peer to resolve id to its ring successor.
	FindSuccessor(ctx context.Context, id domain.ID) (domain.Peer, error)
	// Successor returns the peer's own immediate successor.
	Successor(ctx context.Context) (domain.Peer, error)
	// SuccessorList returns the peer's full successor list.
	SuccessorList(ctx context.Context) ([]domain.Peer, error)
	// Predecessor returns the peer's current predecessor, which may
	// be the zero Peer if it has none.
	Predecessor(ctx context.Context) (domain.Peer, error)
	// Notify tells the peer that self claims to be its predecessor.
	Notify(ctx context.Context, self domain.Peer) error
	// Close releases any transport resources held for this peer.
	Close() error
}

// Dialer constructs a Client for a given peer address. Concrete
// transports supply a Dialer to the pool.
type Dialer func(addr string) (Client, error)
