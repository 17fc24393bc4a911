package peerclient

import (
	"sync"

	"chorddht/internal/domain"
	"chorddht/internal/logger"
)

// Pool lazily builds and shares one Client per peer id. Dialing a
// transport connection can be slow, so the lock is held only around
// the map lookup/insert, never across the dial itself: two goroutines
// racing to connect to the same peer both dial, and whichever finishes
// first wins the slot (the later one's connection is closed, not
// leaked, and it returns the winner's client instead).
type Pool struct {
	mu     sync.Mutex
	dial   Dialer
	logger logger.Logger
	byID   map[domain.ID]Client
}

// New creates a Pool that dials new connections with dial.
func New(dial Dialer, lgr logger.Logger) *Pool {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Pool{
		dial:   dial,
		logger: lgr,
		byID:   make(map[domain.ID]Client),
	}
}

// GetOrInit returns the shared Client for peer, dialing a new
// connection if none exists yet.
func (p *Pool) GetOrInit(peer domain.Peer) (Client, error) {
	p.mu.Lock()
	if c, ok := p.byID[peer.ID]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, err := p.dial(peer.Addr)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if existing, ok := p.byID[peer.ID]; ok {
		// Someone else won the race while we were dialing. Keep their
		// client, discard ours.
		p.mu.Unlock()
		_ = c.Close()
		return existing, nil
	}
	p.byID[peer.ID] = c
	p.mu.Unlock()

	p.logger.Debug("peer client initialized", logger.FPeer("peer", peer))
	return c, nil
}

// Drop closes and forgets the client for id, if any. Used once a peer
// has been confirmed dead (e.g. by check_predecessor).
func (p *Pool) Drop(id domain.ID) {
	p.mu.Lock()
	c, ok := p.byID[id]
	if ok {
		delete(p.byID, id)
	}
	p.mu.Unlock()

	if ok {
		_ = c.Close()
		p.logger.Debug("peer client dropped", logger.F("id", id.String()))
	}
}

// Size returns the number of clients currently pooled, for metrics
// and debug logging.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byID)
}
