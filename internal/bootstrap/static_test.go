package bootstrap

import (
	"context"
	"testing"

	"chorddht/internal/domain"
)

func TestStaticBootstrapDiscover(t *testing.T) {
	peers := []string{"10.0.0.1:4000", "10.0.0.2:4000"}
	b := NewStaticBootstrap(peers)

	got, err := b.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(got) != len(peers) {
		t.Fatalf("got %d peers, want %d", len(got), len(peers))
	}
	for i, addr := range peers {
		if got[i] != addr {
			t.Errorf("peer %d = %q, want %q", i, got[i], addr)
		}
	}
}

func TestStaticBootstrapDiscoverEmpty(t *testing.T) {
	b := NewStaticBootstrap(nil)
	got, err := b.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d peers, want 0", len(got))
	}
}

func TestStaticBootstrapRegisterDeregisterNoop(t *testing.T) {
	b := NewStaticBootstrap([]string{"10.0.0.1:4000"})
	self := domain.Peer{ID: domain.HashString("10.0.0.1:4000"), Addr: "10.0.0.1:4000"}

	if err := b.Register(context.Background(), self); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := b.Deregister(context.Background(), self); err != nil {
		t.Fatalf("Deregister returned error: %v", err)
	}
}

var _ Bootstrap = (*StaticBootstrap)(nil)
