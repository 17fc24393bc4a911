package grpcpeer

import (
	"chorddht/internal/domain"

	"google.golang.org/protobuf/types/known/emptypb"
)

// peerMsg is the wire representation of a domain.Peer.
type peerMsg struct {
	ID   uint64 `json:"id"`
	Addr string `json:"addr"`
}

func toPeerMsg(p domain.Peer) peerMsg {
	return peerMsg{ID: uint64(p.ID), Addr: p.Addr}
}

func fromPeerMsg(m peerMsg) domain.Peer {
	if m.Addr == "" {
		return domain.Peer{}
	}
	return domain.Peer{ID: domain.ID(m.ID), Addr: m.Addr}
}

// emptyMsg is the wire message for void RPCs (Ping, Notify's response,
// the request side of Successor/SuccessorList/Predecessor). It is an
// alias for the real protobuf Empty type rather than a local struct: the
// jsonCodec marshals it like any other Go value (protobuf's generated
// fields are all unexported, so it serializes as "{}"), but callers get
// the standard type instead of a one-off stand-in.
type emptyMsg = emptypb.Empty

type findSuccessorRequest struct {
	ID uint64 `json:"id"`
}

type findSuccessorResponse struct {
	Successor peerMsg `json:"successor"`
}

type successorResponse struct {
	Successor peerMsg `json:"successor"`
}

type successorListResponse struct {
	Successors []peerMsg `json:"successors"`
}

type predecessorResponse struct {
	// Known is false when the peer currently has no predecessor; Predecessor
	// is meaningless in that case. A nested message can't use Go's zero
	// value to mean "absent" over JSON the way domain.Peer.Empty() does
	// locally, so the wire format says so explicitly.
	Known       bool    `json:"known"`
	Predecessor peerMsg `json:"predecessor"`
}

type notifyRequest struct {
	Candidate peerMsg `json:"candidate"`
}
