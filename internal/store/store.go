// Package store holds the local routing state of a single Chord node:
// its predecessor, finger table, and successor list. All access goes
// through a single mutex; the store never touches the network.
package store

import (
	"fmt"
	"sync"

	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// Store is the routing state owned by one node in the ring.
//
// Invariants:
//   - len(fingers) is always domain.IDBits.
//   - len(successors) never exceeds the configured replication factor R.
//   - successors[0], when present, is the node's immediate ring successor.
//   - predecessor is the zero-value domain.Peer when unknown.
type Store struct {
	mu sync.Mutex

	self domain.Peer
	r    int // replication factor: max successor list length

	predecessor domain.Peer
	fingers     [domain.IDBits]domain.Peer
	successors  []domain.Peer

	logger logger.Logger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger attaches a structured logger to the store.
func WithLogger(lgr logger.Logger) Option {
	return func(s *Store) { s.logger = lgr }
}

// New creates a Store for self with the given replication factor R.
// The store starts with no predecessor, an empty finger table, and an
// empty successor list; callers typically follow New with either
// InitSingleNode (bootstrapping a fresh ring) or a Join handshake.
func New(self domain.Peer, r int, opts ...Option) *Store {
	s := &Store{
		self:   self,
		r:      r,
		logger: &logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Debug("store initialized", logger.F("r", r))
	return s
}

// InitSingleNode configures the store to represent a ring containing
// only this node: every finger and the sole successor-list entry point
// back to self, and the predecessor stays unknown.
func (s *Store) InitSingleNode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fingers {
		s.fingers[i] = s.self
	}
	s.successors = []domain.Peer{s.self}
	s.logger.Debug("store set to single-node ring")
}

// Self returns the local peer reference this store belongs to.
func (s *Store) Self() domain.Peer {
	return s.self
}

// R returns the configured replication factor.
func (s *Store) R() int {
	return s.r
}

// Predecessor returns the current predecessor. The zero value
// (domain.Peer{}) means no predecessor is known.
func (s *Store) Predecessor() domain.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predecessor
}

// SetPredecessor updates the predecessor pointer.
func (s *Store) SetPredecessor(p domain.Peer) {
	s.mu.Lock()
	s.predecessor = p
	s.mu.Unlock()
	s.logger.Debug("predecessor updated", logger.F("predecessor", p.Field()))
}

// ClearPredecessor resets the predecessor to unknown, used when
// check_predecessor finds it unreachable.
func (s *Store) ClearPredecessor() {
	s.mu.Lock()
	s.predecessor = domain.Peer{}
	s.mu.Unlock()
	s.logger.Debug("predecessor cleared")
}

// Finger returns the i-th finger table entry.
func (s *Store) Finger(i int) domain.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingers[i]
}

// SetFinger updates the i-th finger table entry.
func (s *Store) SetFinger(i int, p domain.Peer) {
	s.mu.Lock()
	s.fingers[i] = p
	s.mu.Unlock()
}

// Successors returns a snapshot of the successor list, closest first.
// Callers may freely mutate the returned slice.
func (s *Store) Successors() []domain.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Peer, len(s.successors))
	copy(out, s.successors)
	return out
}

// Successor returns the immediate successor, or the zero Peer if the
// successor list is empty.
func (s *Store) Successor() domain.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.successors) == 0 {
		return domain.Peer{}
	}
	return s.successors[0]
}

// SetSuccessors replaces the successor list, truncating to R entries.
func (s *Store) SetSuccessors(list []domain.Peer) {
	if len(list) > s.r {
		list = list[:s.r]
	}
	cp := make([]domain.Peer, len(list))
	copy(cp, list)

	s.mu.Lock()
	s.successors = cp
	if len(cp) > 0 {
		s.fingers[0] = cp[0]
	}
	s.mu.Unlock()
	s.logger.Debug("successor list updated", logger.F("size", len(cp)))
}

// SetSuccessor replaces the entire successor list with the single
// peer p, also updating finger[0] to match. This is what stabilize
// uses when it adopts a new immediate successor; the richer
// successor list is rebuilt afterward by reconcile_successors.
func (s *Store) SetSuccessor(p domain.Peer) {
	s.mu.Lock()
	s.successors = []domain.Peer{p}
	s.fingers[0] = p
	s.mu.Unlock()
	s.logger.Debug("successor updated", logger.F("successor", p.Field()))
}

// DropFirstSuccessor removes the first (presumed dead) successor, used
// by reconcile_successors when the successor cannot be reached.
func (s *Store) DropFirstSuccessor() {
	s.mu.Lock()
	if len(s.successors) > 0 {
		s.successors = s.successors[1:]
	}
	if len(s.successors) > 0 {
		s.fingers[0] = s.successors[0]
	}
	s.mu.Unlock()
}

// ClosestPrecedingFinger scans the finger table from the farthest (63)
// to the nearest (0) entry and returns the first one that is a known
// peer strictly between self and id (exclusive of both). If none
// qualifies, it returns self.
func (s *Store) ClosestPrecedingFinger(id domain.ID) domain.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := domain.IDBits - 1; i >= 0; i-- {
		f := s.fingers[i]
		if f.Empty() {
			continue
		}
		if domain.BetweenExclusive(f.ID, s.self.ID, id) {
			return f
		}
	}
	return s.self
}

// DebugLog emits a full snapshot of the store's state at debug level,
// useful when diagnosing stabilization convergence.
func (s *Store) DebugLog() {
	s.mu.Lock()
	pred := s.predecessor
	succs := make([]domain.Peer, len(s.successors))
	copy(succs, s.successors)
	s.mu.Unlock()

	s.logger.Debug("store snapshot",
		logger.F("self", s.self.Field()),
		logger.F("predecessor", fmt.Sprintf("%v", pred)),
		logger.F("successors", succs),
	)
}
