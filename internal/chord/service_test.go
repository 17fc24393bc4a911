package chord

import (
	"context"
	"testing"

	"chorddht/internal/domain"
	"chorddht/internal/peerclient"
	"chorddht/internal/store"
)

// mockClient is a fully scriptable peerclient.Client used to drive the
// node service through scenarios without any real network I/O.
type mockClient struct {
	pingErr          error
	findSuccessorFn  func(id domain.ID) (domain.Peer, error)
	successorFn      func() (domain.Peer, error)
	successorListFn  func() ([]domain.Peer, error)
	predecessorFn    func() (domain.Peer, error)
	notifyFn         func(self domain.Peer) error
}

func (m *mockClient) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockClient) FindSuccessor(ctx context.Context, id domain.ID) (domain.Peer, error) {
	if m.findSuccessorFn != nil {
		return m.findSuccessorFn(id)
	}
	return domain.Peer{}, nil
}

func (m *mockClient) Successor(ctx context.Context) (domain.Peer, error) {
	if m.successorFn != nil {
		return m.successorFn()
	}
	return domain.Peer{}, nil
}

func (m *mockClient) SuccessorList(ctx context.Context) ([]domain.Peer, error) {
	if m.successorListFn != nil {
		return m.successorListFn()
	}
	return nil, nil
}

func (m *mockClient) Predecessor(ctx context.Context) (domain.Peer, error) {
	if m.predecessorFn != nil {
		return m.predecessorFn()
	}
	return domain.Peer{}, nil
}

func (m *mockClient) Notify(ctx context.Context, self domain.Peer) error {
	if m.notifyFn != nil {
		return m.notifyFn(self)
	}
	return nil
}

func (m *mockClient) Close() error { return nil }

// network is a fake dialer backed by a fixed address->client map, so
// tests can wire up exactly the peers a scenario needs.
type network map[string]*mockClient

func (n network) dial(addr string) (peerclient.Client, error) {
	c, ok := n[addr]
	if !ok {
		return nil, peerclient.NewError(peerclient.ConnectionFailed, errAddrUnknown(addr))
	}
	return c, nil
}

type errAddrUnknown string

func (e errAddrUnknown) Error() string { return "no peer registered for address " + string(e) }

func newPool(n network) *peerclient.Pool {
	return peerclient.New(n.dial, nil)
}

func connFailed() error {
	return peerclient.NewError(peerclient.ConnectionFailed, errAddrUnknown("unreachable"))
}

// --- scenario 1: single-node ring ---------------------------------------

func TestSingleNodeRing(t *testing.T) {
	a := domain.Peer{ID: 8, Addr: "a"}
	st := store.New(a, 3)
	st.InitSingleNode()
	svc := New(a, st, newPool(nil))

	got, err := svc.FindSuccessor(context.Background(), 10)
	if err != nil || got != a {
		t.Fatalf("find_successor(10) = %v, %v; want %v, nil", got, err, a)
	}

	got, err = svc.FindSuccessor(context.Background(), 8)
	if err != nil || got != a {
		t.Fatalf("find_successor(8) = %v, %v; want %v, nil", got, err, a)
	}
}

// --- scenario 2: two-node ring -------------------------------------------

func TestTwoNodeRingImmediateSuccessor(t *testing.T) {
	a := domain.Peer{ID: 8, Addr: "a"}
	b := domain.Peer{ID: 16, Addr: "b"}
	st := store.New(a, 3)
	st.SetSuccessors([]domain.Peer{b})
	svc := New(a, st, newPool(nil))

	got, err := svc.FindSuccessor(context.Background(), 10)
	if err != nil || got != b {
		t.Fatalf("find_successor(10) = %v, %v; want %v, nil", got, err, b)
	}
}

func TestTwoNodeRingFingerFallback(t *testing.T) {
	a := domain.Peer{ID: 8, Addr: "a"}
	b := domain.Peer{ID: 16, Addr: "b"}
	st := store.New(a, 3)
	st.SetSuccessors([]domain.Peer{b})
	// Point every finger at b, the only other peer in the ring.
	for i := 0; i < domain.IDBits; i++ {
		st.SetFinger(i, b)
	}

	net := network{
		"b": {findSuccessorFn: func(id domain.ID) (domain.Peer, error) {
			return b, nil
		}},
	}
	svc := New(a, st, newPool(net))

	got, err := svc.FindSuccessor(context.Background(), 2)
	if err != nil || got != b {
		t.Fatalf("find_successor(2) = %v, %v; want %v, nil", got, err, b)
	}
}

// --- scenario 3: notify raises predecessor --------------------------------

func TestNotifyMonotonicity(t *testing.T) {
	a := domain.Peer{ID: 8, Addr: "a"}
	st := store.New(a, 3)
	st.SetPredecessor(domain.Peer{ID: 4, Addr: "p4"})
	st.SetSuccessors([]domain.Peer{{ID: 16, Addr: "s"}})
	svc := New(a, st, newPool(nil))

	// candidate with the node's own id must never become predecessor.
	svc.Notify(domain.Peer{ID: 8, Addr: "a"})
	if got := st.Predecessor().ID; got != 4 {
		t.Fatalf("predecessor changed on self-notify: %v", got)
	}

	svc.Notify(domain.Peer{ID: 6, Addr: "p6"})
	if got := st.Predecessor().ID; got != 6 {
		t.Fatalf("predecessor = %v, want 6", got)
	}
}

// --- scenario 4: check_predecessor drops dead peer ------------------------

func TestCheckPredecessorDropsDeadPeer(t *testing.T) {
	a := domain.Peer{ID: 8, Addr: "a"}
	pred := domain.Peer{ID: 10, Addr: "pred"}
	succ := domain.Peer{ID: 10, Addr: "pred"}

	st := store.New(a, 3)
	st.SetPredecessor(pred)
	st.SetSuccessor(succ)

	net := network{
		"pred": {pingErr: connFailed()},
	}
	svc := New(a, st, newPool(net))

	svc.CheckPredecessor(context.Background())

	if p := st.Predecessor(); !p.Empty() {
		t.Errorf("expected predecessor cleared, got %v", p)
	}
	if s := st.Successor(); s != succ {
		t.Errorf("successor must be unaffected by check_predecessor, got %v", s)
	}
}

// --- scenario 5: reconcile cascades on dead successor ---------------------

func TestReconcileSuccessorsCascades(t *testing.T) {
	a := domain.Peer{ID: 90, Addr: "a"}
	n16 := domain.Peer{ID: 16, Addr: "n16"}
	n32 := domain.Peer{ID: 32, Addr: "n32"}
	n64 := domain.Peer{ID: 64, Addr: "n64"}

	st := store.New(a, 3)
	st.SetSuccessors([]domain.Peer{n16, n32})

	net := network{
		"n16": {successorListFn: func() ([]domain.Peer, error) {
			return nil, connFailed()
		}},
		"n32": {successorListFn: func() ([]domain.Peer, error) {
			return []domain.Peer{n64}, nil
		}},
	}
	svc := New(a, st, newPool(net))

	svc.ReconcileSuccessors(context.Background())
	got := st.Successors()
	if len(got) != 1 || got[0] != n32 {
		t.Fatalf("after first reconcile, successors = %+v, want [n32]", got)
	}

	svc.ReconcileSuccessors(context.Background())
	got = st.Successors()
	if len(got) != 2 || got[0] != n32 || got[1] != n64 {
		t.Fatalf("after second reconcile, successors = %+v, want [n32 n64]", got)
	}
}

// --- scenario 6: find_successor retries via finger fallback ---------------

func TestFindSuccessorRetriesViaFallback(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	dead := domain.Peer{ID: 129, Addr: "dead"}
	n35 := domain.Peer{ID: 35, Addr: "n35"}
	n178 := domain.Peer{ID: 178, Addr: "n178"}

	st := store.New(self, 3)
	st.SetSuccessors([]domain.Peer{{ID: 2, Addr: "near"}}) // doesn't cover target 150
	// finger pointing at the dead node is the closest preceding finger for 150
	st.SetFinger(10, dead) // arbitrary index, just needs to be "between self and 150"
	// finger pointing at n35 is the closest preceding finger for 129 (the failing id)
	st.SetFinger(3, n35)

	net := network{
		"dead": {findSuccessorFn: func(id domain.ID) (domain.Peer, error) {
			return domain.Peer{}, connFailed()
		}},
		"n35": {findSuccessorFn: func(id domain.ID) (domain.Peer, error) {
			return n178, nil
		}},
	}
	svc := New(self, st, newPool(net))

	got, err := svc.FindSuccessor(context.Background(), 150)
	if err != nil {
		t.Fatalf("find_successor(150) returned error: %v", err)
	}
	if got != n178 {
		t.Fatalf("find_successor(150) = %v, want %v", got, n178)
	}
}

// --- stabilize -------------------------------------------------------------

func TestStabilizeAdoptsCloserSuccessor(t *testing.T) {
	a := domain.Peer{ID: 8, Addr: "a"}
	b := domain.Peer{ID: 32, Addr: "b"}
	x := domain.Peer{ID: 16, Addr: "x"} // b's predecessor, between a and b

	st := store.New(a, 3)
	st.SetSuccessors([]domain.Peer{b})

	notified := make(chan domain.Peer, 1)
	net := network{
		"b": {predecessorFn: func() (domain.Peer, error) { return x, nil }},
		"x": {notifyFn: func(self domain.Peer) error { notified <- self; return nil }},
	}
	svc := New(a, st, newPool(net))

	svc.Stabilize(context.Background())

	if got := st.Successor(); got != x {
		t.Fatalf("successor after stabilize = %v, want %v", got, x)
	}
	select {
	case got := <-notified:
		if got != a {
			t.Errorf("notify called with %v, want %v", got, a)
		}
	default:
		t.Error("expected stabilize to notify the new successor")
	}
}

func TestFixFingersPopulatesAllEntries(t *testing.T) {
	self := domain.Peer{ID: 0, Addr: "self"}
	st := store.New(self, 3)
	st.InitSingleNode() // every finger resolves to self without any network calls
	svc := New(self, st, newPool(nil))

	svc.FixFingers(context.Background())

	for i := 0; i < domain.IDBits; i++ {
		if got := st.Finger(i); got != self {
			t.Fatalf("finger[%d] = %v, want self", i, got)
		}
	}
}
