package peerclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"chorddht/internal/domain"
)

type fakeClient struct {
	addr   string
	closed bool
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) FindSuccessor(ctx context.Context, id domain.ID) (domain.Peer, error) {
	return domain.Peer{}, nil
}
func (f *fakeClient) Successor(ctx context.Context) (domain.Peer, error)     { return domain.Peer{}, nil }
func (f *fakeClient) SuccessorList(ctx context.Context) ([]domain.Peer, error) { return nil, nil }
func (f *fakeClient) Predecessor(ctx context.Context) (domain.Peer, error)   { return domain.Peer{}, nil }
func (f *fakeClient) Notify(ctx context.Context, self domain.Peer) error     { return nil }
func (f *fakeClient) Close() error                                          { f.closed = true; return nil }

func TestPoolGetOrInitDeduplicates(t *testing.T) {
	var dials int32
	dial := func(addr string) (Client, error) {
		atomic.AddInt32(&dials, 1)
		return &fakeClient{addr: addr}, nil
	}
	p := New(dial, nil)

	peer := domain.Peer{ID: 42, Addr: "10.0.0.1:7000"}
	c1, err := p.GetOrInit(peer)
	if err != nil {
		t.Fatalf("GetOrInit: %v", err)
	}
	c2, err := p.GetOrInit(peer)
	if err != nil {
		t.Fatalf("GetOrInit: %v", err)
	}
	if c1 != c2 {
		t.Error("expected the same client instance to be returned for the same peer id")
	}
	if dials != 1 {
		t.Errorf("expected exactly 1 dial, got %d", dials)
	}
}

func TestPoolGetOrInitConcurrentRaceKeepsOneWinner(t *testing.T) {
	dial := func(addr string) (Client, error) {
		return &fakeClient{addr: addr}, nil
	}
	p := New(dial, nil)
	peer := domain.Peer{ID: 7, Addr: "10.0.0.2:7000"}

	const n = 20
	results := make([]Client, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := p.GetOrInit(peer)
			if err != nil {
				t.Errorf("GetOrInit: %v", err)
				return
			}
			results[i] = c
		}(i)
	}
	wg.Wait()

	if p.Size() != 1 {
		t.Errorf("expected pool to settle on exactly 1 client, got %d", p.Size())
	}
	first := results[0]
	for _, c := range results {
		if c != first {
			t.Error("all callers should observe the same winning client")
			break
		}
	}
}

func TestPoolDrop(t *testing.T) {
	dialed := &fakeClient{}
	dial := func(addr string) (Client, error) { return dialed, nil }
	p := New(dial, nil)

	peer := domain.Peer{ID: 1, Addr: "a"}
	if _, err := p.GetOrInit(peer); err != nil {
		t.Fatalf("GetOrInit: %v", err)
	}
	p.Drop(peer.ID)
	if !dialed.closed {
		t.Error("expected dropped client to be closed")
	}
	if p.Size() != 0 {
		t.Errorf("expected pool to be empty after drop, got size %d", p.Size())
	}
}
