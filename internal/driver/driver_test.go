package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"chorddht/internal/chord"
	"chorddht/internal/domain"
	"chorddht/internal/peerclient"
	"chorddht/internal/store"
)

type stubClient struct {
	findSuccessorErr error
	findSuccessorRes domain.Peer
}

func (c *stubClient) Ping(ctx context.Context) error { return nil }
func (c *stubClient) FindSuccessor(ctx context.Context, id domain.ID) (domain.Peer, error) {
	return c.findSuccessorRes, c.findSuccessorErr
}
func (c *stubClient) Successor(ctx context.Context) (domain.Peer, error)          { return domain.Peer{}, nil }
func (c *stubClient) SuccessorList(ctx context.Context) ([]domain.Peer, error)    { return nil, nil }
func (c *stubClient) Predecessor(ctx context.Context) (domain.Peer, error)        { return domain.Peer{}, nil }
func (c *stubClient) Notify(ctx context.Context, self domain.Peer) error          { return nil }
func (c *stubClient) Close() error                                               { return nil }

func TestJoinWithRetrySucceedsEventually(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	bootstrap := domain.Peer{ID: 2, Addr: "bootstrap"}
	st := store.New(self, 3)

	var attempts int32
	dial := func(addr string) (peerclient.Client, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return nil, errors.New("dial refused")
		}
		return &stubClient{findSuccessorRes: bootstrap}, nil
	}
	svc := chord.New(self, st, peerclient.New(dial, nil))
	d := New(svc, time.Hour, time.Millisecond, 5, time.Second)

	if err := d.JoinWithRetry(context.Background(), bootstrap); err != nil {
		t.Fatalf("JoinWithRetry returned error: %v", err)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Fatalf("expected 3 dial attempts, got %d", attempts)
	}
	if got := st.Successor(); got != bootstrap {
		t.Fatalf("successor after join = %v, want %v", got, bootstrap)
	}
}

func TestJoinWithRetryExhausted(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	bootstrap := domain.Peer{ID: 2, Addr: "bootstrap"}
	st := store.New(self, 3)

	dial := func(addr string) (peerclient.Client, error) {
		return nil, errors.New("always refused")
	}
	svc := chord.New(self, st, peerclient.New(dial, nil))
	d := New(svc, time.Hour, time.Millisecond, 3, time.Second)

	err := d.JoinWithRetry(context.Background(), bootstrap)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestJoinWithRetryAbortsOnContextCancel(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	bootstrap := domain.Peer{ID: 2, Addr: "bootstrap"}
	st := store.New(self, 3)

	dial := func(addr string) (peerclient.Client, error) {
		return nil, errors.New("always refused")
	}
	svc := chord.New(self, st, peerclient.New(dial, nil))
	d := New(svc, time.Hour, time.Hour, 5, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.JoinWithRetry(ctx, bootstrap)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	st := store.New(self, 3)
	st.InitSingleNode()
	dial := func(addr string) (peerclient.Client, error) {
		return &stubClient{findSuccessorRes: self}, nil
	}
	svc := chord.New(self, st, peerclient.New(dial, nil))
	d := New(svc, time.Millisecond, time.Millisecond, 1, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
