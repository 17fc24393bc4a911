package domain

// Peer is a reference to a node on the ring: its identifier and the
// network address other nodes use to reach it. Peers carry no other
// state; the ring never builds an object graph of live connections,
// only these lightweight references.
type Peer struct {
	ID   ID     `json:"id"`
	Addr string `json:"addr"`
}

// Empty reports whether p is the zero-value peer reference, used to
// represent "no predecessor known yet".
func (p Peer) Empty() bool {
	return p.Addr == ""
}

// Field serializes the peer into a structured logging map.
func (p Peer) Field() map[string]any {
	return map[string]any{
		"id":   p.ID.String(),
		"addr": p.Addr,
	}
}
