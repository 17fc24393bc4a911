package bootstrap

import (
	"context"

	"chorddht/internal/domain"
)

// StaticBootstrap discovers peers from a fixed, operator-supplied list.
type StaticBootstrap struct {
	peers []string
}

// NewStaticBootstrap builds a StaticBootstrap over peers.
func NewStaticBootstrap(peers []string) *StaticBootstrap {
	return &StaticBootstrap{peers: peers}
}

// Discover returns the static list of peers.
func (s *StaticBootstrap) Discover(ctx context.Context) ([]string, error) {
	return s.peers, nil
}

// Register does nothing in static mode.
func (s *StaticBootstrap) Register(ctx context.Context, self domain.Peer) error {
	return nil
}

// Deregister does nothing in static mode.
func (s *StaticBootstrap) Deregister(ctx context.Context, self domain.Peer) error {
	return nil
}
