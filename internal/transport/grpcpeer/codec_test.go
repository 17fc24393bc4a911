package grpcpeer

import (
	"testing"

	"chorddht/internal/domain"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	c := jsonCodec{}

	req := &findSuccessorRequest{ID: 42}
	data, err := c.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got := &findSuccessorRequest{}
	if err := c.Unmarshal(data, got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != req.ID {
		t.Errorf("round trip ID = %d, want %d", got.ID, req.ID)
	}
}

func TestPeerMsgConversion(t *testing.T) {
	p := domain.Peer{ID: 7, Addr: "10.0.0.1:7000"}
	m := toPeerMsg(p)
	back := fromPeerMsg(m)
	if back != p {
		t.Errorf("round trip peer = %+v, want %+v", back, p)
	}

	empty := fromPeerMsg(peerMsg{})
	if !empty.Empty() {
		t.Errorf("expected zero peerMsg to round-trip to an empty Peer, got %+v", empty)
	}
}

func TestCodecName(t *testing.T) {
	if jsonCodec{}.Name() != codecName {
		t.Errorf("codec name mismatch")
	}
}
