// Package chord implements the Chord node service: the recursive
// find_successor algorithm, join, notify, and the four periodic
// maintenance procedures. The service consults and mutates a
// store.Store directly and reaches other peers exclusively through a
// peerclient.Pool; it never depends on a concrete transport.
package chord

import (
	"context"
	"fmt"

	"chorddht/internal/domain"
	"chorddht/internal/logger"
	"chorddht/internal/peerclient"
	"chorddht/internal/store"
)

// Service is the local node's view of the ring: its own identity, its
// routing state, and the pool used to reach everyone else.
type Service struct {
	self   domain.Peer
	store  *store.Store
	pool   *peerclient.Pool
	logger logger.Logger
}

// New constructs a Service for self backed by st and pool.
func New(self domain.Peer, st *store.Store, pool *peerclient.Pool, opts ...Option) *Service {
	s := &Service{
		self:   self,
		store:  st,
		pool:   pool,
		logger: &logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Self returns the local peer reference.
func (s *Service) Self() domain.Peer { return s.self }

// Store exposes the underlying store, e.g. for debug snapshots.
func (s *Service) Store() *store.Store { return s.store }

// CreateRing initializes a brand-new, single-node ring: every finger
// and the successor list point back to self.
func (s *Service) CreateRing() {
	s.store.InitSingleNode()
	s.logger.Info("ring created", logger.FPeer("self", s.self))
}

// --- transport-facing surface (§6) -----------------------------------

// Ping always succeeds locally: reaching this method at all proves
// liveness.
func (s *Service) Ping(ctx context.Context) error {
	return nil
}

// GetSuccessor returns the node's immediate successor.
func (s *Service) GetSuccessor() domain.Peer {
	return s.store.Successor()
}

// GetSuccessorList returns the node's full successor list.
func (s *Service) GetSuccessorList() []domain.Peer {
	return s.store.Successors()
}

// GetPredecessor returns the node's current predecessor, or the zero
// Peer if none is known.
func (s *Service) GetPredecessor() domain.Peer {
	return s.store.Predecessor()
}

// --- join --------------------------------------------------------------

// Join contacts bootstrap and installs the peer it returns for
// find_successor(self.id) as this node's sole successor. The
// predecessor is left unset; it is learned through later notify
// calls. Callers retry on error (§4.8).
func (s *Service) Join(ctx context.Context, bootstrap domain.Peer) error {
	client, err := s.pool.GetOrInit(bootstrap)
	if err != nil {
		return peerclient.NewError(peerclient.ConnectionFailed, err)
	}
	succ, err := client.FindSuccessor(ctx, s.self.ID)
	if err != nil {
		return err
	}
	s.store.SetSuccessors([]domain.Peer{succ})
	s.logger.Info("joined ring", logger.FPeer("bootstrap", bootstrap), logger.FPeer("successor", succ))
	return nil
}

// --- notify --------------------------------------------------------------

// Notify accepts candidate as the new predecessor iff there currently
// is none, or candidate lies strictly between the current predecessor
// and self on the ring. It never contacts the network: this is a
// purely local decision driven by an incoming call from candidate.
func (s *Service) Notify(candidate domain.Peer) {
	if candidate.ID == s.self.ID {
		return
	}
	pred := s.store.Predecessor()
	if pred.Empty() || domain.BetweenExclusive(candidate.ID, pred.ID, s.self.ID) {
		s.store.SetPredecessor(candidate)
		s.logger.Debug("predecessor updated via notify", logger.FPeer("candidate", candidate))
	}
}

// --- find_successor ------------------------------------------------------

// FindSuccessor resolves id to the peer responsible for it. Stage A
// checks the local successor list for a direct hit; stage B falls
// back to recursive finger-table routing with failure-driven retry.
func (s *Service) FindSuccessor(ctx context.Context, id domain.ID) (domain.Peer, error) {
	if id == s.self.ID {
		// A node is always responsible for its own id, including the
		// degenerate single-node ring where self is its own successor.
		return s.self, nil
	}
	for _, succ := range s.store.Successors() {
		if domain.Between(id, s.self.ID, succ.ID) {
			return succ, nil
		}
	}
	return s.findViaFinger(ctx, id, nil)
}

// findViaFinger implements stage B of find_successor. failing, when
// non-nil, is the id of a finger-table target that was just found
// unreachable; the search then steps one peer further back on the
// ring instead of retrying the original id. Each such step strictly
// shrinks the set of fingers that can qualify, so the recursion
// terminates in at most domain.IDBits steps.
func (s *Service) findViaFinger(ctx context.Context, id domain.ID, failing *domain.ID) (domain.Peer, error) {
	searchID := id
	if failing != nil {
		searchID = *failing
	}

	n := s.store.ClosestPrecedingFinger(searchID)
	if n.ID == s.self.ID {
		return domain.Peer{}, peerclient.NewError(peerclient.Unexpected,
			fmt.Errorf("cannot locate a peer via the finger table for id %s", id))
	}

	resp, err := s.callFindSuccessor(ctx, n, id)
	if err == nil {
		return resp, nil
	}
	if peerclient.IsConnectionFailed(err) {
		failingID := n.ID
		s.logger.Debug("find_successor: finger unreachable, stepping back",
			logger.FPeer("finger", n), logger.F("err", err))
		return s.findViaFinger(ctx, id, &failingID)
	}
	return domain.Peer{}, err
}

func (s *Service) callFindSuccessor(ctx context.Context, n domain.Peer, id domain.ID) (domain.Peer, error) {
	client, err := s.pool.GetOrInit(n)
	if err != nil {
		return domain.Peer{}, peerclient.NewError(peerclient.ConnectionFailed, err)
	}
	return client.FindSuccessor(ctx, id)
}

// --- maintenance procedures (§4.7) --------------------------------------

// Stabilize asks the current successor for its predecessor; if that
// predecessor has moved strictly between self and the successor, it
// is adopted as the new successor. The (possibly new) successor is
// then notified of self. Connection failures are logged, never fatal.
func (s *Service) Stabilize(ctx context.Context) {
	succ := s.store.Successor()
	if succ.Empty() {
		return
	}

	client, err := s.pool.GetOrInit(succ)
	if err != nil {
		s.logger.Warn("stabilize: could not reach successor", logger.FPeer("successor", succ), logger.F("err", err))
		return
	}

	x, err := client.Predecessor(ctx)
	if err != nil {
		s.logger.Warn("stabilize: get_predecessor failed", logger.FPeer("successor", succ), logger.F("err", err))
		return
	}

	if !x.Empty() && domain.BetweenExclusive(x.ID, s.self.ID, succ.ID) {
		s.store.SetSuccessor(x)
		succ = x
		client, err = s.pool.GetOrInit(succ)
		if err != nil {
			s.logger.Warn("stabilize: could not reach new successor", logger.FPeer("successor", succ), logger.F("err", err))
			return
		}
	}

	if err := client.Notify(ctx, s.self); err != nil {
		s.logger.Warn("stabilize: notify failed", logger.FPeer("successor", succ), logger.F("err", err))
	}
}

// ReconcileSuccessors asks the current successor for its successor
// list and prepends it with the successor itself to build a fresh,
// R-long prefix of the ring. On connection failure, the current
// successor is assumed dead and is dropped from the head of the list.
func (s *Service) ReconcileSuccessors(ctx context.Context) {
	succ := s.store.Successor()
	if succ.Empty() {
		return
	}

	client, err := s.pool.GetOrInit(succ)
	if err != nil {
		s.logger.Warn("reconcile_successors: could not reach successor, dropping it",
			logger.FPeer("successor", succ), logger.F("err", err))
		s.store.DropFirstSuccessor()
		return
	}

	list, err := client.SuccessorList(ctx)
	if err != nil {
		if peerclient.IsConnectionFailed(err) {
			s.logger.Warn("reconcile_successors: successor unreachable, dropping it",
				logger.FPeer("successor", succ), logger.F("err", err))
			s.store.DropFirstSuccessor()
			return
		}
		s.logger.Warn("reconcile_successors: successor_list failed", logger.FPeer("successor", succ), logger.F("err", err))
		return
	}

	newList := append([]domain.Peer{succ}, list...)
	s.store.SetSuccessors(newList)
}

// CheckPredecessor pings the current predecessor. A connection
// failure unsets the predecessor; any other outcome leaves it alone.
func (s *Service) CheckPredecessor(ctx context.Context) {
	pred := s.store.Predecessor()
	if pred.Empty() {
		return
	}

	client, err := s.pool.GetOrInit(pred)
	if err != nil {
		s.logger.Warn("check_predecessor: could not reach predecessor, clearing it",
			logger.FPeer("predecessor", pred), logger.F("err", err))
		s.store.ClearPredecessor()
		s.pool.Drop(pred.ID)
		return
	}

	if err := client.Ping(ctx); err != nil {
		if peerclient.IsConnectionFailed(err) {
			s.logger.Warn("check_predecessor: ping failed, clearing predecessor",
				logger.FPeer("predecessor", pred), logger.F("err", err))
			s.store.ClearPredecessor()
			s.pool.Drop(pred.ID)
			return
		}
		s.logger.Warn("check_predecessor: non-fatal ping error", logger.FPeer("predecessor", pred), logger.F("err", err))
	}
}

// FixFingers re-resolves every finger-table entry by running
// find_successor against its start id. Failures leave the previous
// entry in place and are logged, not propagated.
func (s *Service) FixFingers(ctx context.Context) {
	for i := 0; i < domain.IDBits; i++ {
		start := s.self.ID.FingerStart(i)
		p, err := s.FindSuccessor(ctx, start)
		if err != nil {
			s.logger.Debug("fix_fingers: lookup failed, leaving previous entry",
				logger.F("index", i), logger.F("err", err))
			continue
		}
		s.store.SetFinger(i, p)
	}
}
