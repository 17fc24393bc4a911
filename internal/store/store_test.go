package store

import (
	"testing"

	"chorddht/internal/domain"
)

func TestInitSingleNode(t *testing.T) {
	self := domain.Peer{ID: 100, Addr: "self:7000"}
	s := New(self, 3)
	s.InitSingleNode()

	if got := s.Successor(); got != self {
		t.Errorf("successor = %v, want self %v", got, self)
	}
	for i := 0; i < domain.IDBits; i++ {
		if got := s.Finger(i); got != self {
			t.Errorf("finger[%d] = %v, want self", i, got)
		}
	}
	if pred := s.Predecessor(); !pred.Empty() {
		t.Errorf("expected no predecessor on a fresh single-node ring, got %v", pred)
	}
}

func TestSetSuccessorsTruncatesToR(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	s := New(self, 2)

	s.SetSuccessors([]domain.Peer{
		{ID: 2, Addr: "b"},
		{ID: 3, Addr: "c"},
		{ID: 4, Addr: "d"},
	})
	got := s.Successors()
	if len(got) != 2 {
		t.Fatalf("expected successor list truncated to R=2, got %d entries", len(got))
	}
	if got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("unexpected successor list contents: %+v", got)
	}
}

func TestDropFirstSuccessor(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	s := New(self, 3)
	s.SetSuccessors([]domain.Peer{{ID: 2}, {ID: 3}})

	s.DropFirstSuccessor()
	got := s.Successors()
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("expected only id=3 to remain, got %+v", got)
	}
}

func TestClosestPrecedingFingerFallsBackToSelf(t *testing.T) {
	self := domain.Peer{ID: 10, Addr: "self"}
	s := New(self, 3)
	// no fingers populated
	if got := s.ClosestPrecedingFinger(20); got != self {
		t.Errorf("expected fallback to self, got %v", got)
	}
}

func TestClosestPrecedingFingerPicksFarthestQualifying(t *testing.T) {
	self := domain.Peer{ID: 0, Addr: "self"}
	s := New(self, 3)
	near := domain.Peer{ID: 5, Addr: "near"}
	far := domain.Peer{ID: 100, Addr: "far"}
	s.SetFinger(0, near)
	s.SetFinger(6, far) // 2^6 = 64, still < 200

	got := s.ClosestPrecedingFinger(200)
	if got != far {
		t.Errorf("expected farthest qualifying finger %v, got %v", far, got)
	}
}

func TestPredecessorLifecycle(t *testing.T) {
	self := domain.Peer{ID: 1, Addr: "self"}
	s := New(self, 3)
	if p := s.Predecessor(); !p.Empty() {
		t.Fatalf("expected empty predecessor initially, got %v", p)
	}
	other := domain.Peer{ID: 2, Addr: "other"}
	s.SetPredecessor(other)
	if got := s.Predecessor(); got != other {
		t.Errorf("predecessor = %v, want %v", got, other)
	}
	s.ClearPredecessor()
	if p := s.Predecessor(); !p.Empty() {
		t.Errorf("expected predecessor cleared, got %v", p)
	}
}
