// Package bootstrap discovers existing ring members for a joining node
// and, for discovery backends that need it, advertises this node's own
// presence.
package bootstrap

import (
	"context"

	"chorddht/internal/domain"
)

// Bootstrap is how a node finds a peer to join through, and, for
// backends that support it, announces or withdraws its own presence.
type Bootstrap interface {
	// Discover returns a list of known peer addresses.
	Discover(ctx context.Context) ([]string, error)
	// Register advertises self (only meaningful for backends like Route53;
	// a no-op for a static peer list).
	Register(ctx context.Context, self domain.Peer) error
	// Deregister withdraws the advertisement made by Register.
	Deregister(ctx context.Context, self domain.Peer) error
}
