package grpcpeer

import (
	"context"
	"fmt"

	"chorddht/internal/domain"
	"chorddht/internal/peerclient"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/stats"
	"google.golang.org/grpc/status"
)

// client implements peerclient.Client over a single gRPC connection
// using the chord-json codec instead of protoc-generated stubs.
type client struct {
	conn *grpc.ClientConn
}

// Dial is a peerclient.Dialer that connects to addr over plain-text
// gRPC. It is the Dialer passed to peerclient.New when wiring a real
// node, as opposed to the in-memory fakes used in tests.
func Dial(addr string) (peerclient.Client, error) {
	return dial(addr)
}

// DialWithInterceptor returns a peerclient.Dialer that chains interceptor
// (e.g. lookuptrace.ClientInterceptor) onto every outbound call, and
// installs statsHandler (e.g. otelgrpc.NewClientHandler) for ambient
// per-RPC spans covering every method, not just find_successor. Used
// when tracing is enabled in configuration; Dial is used otherwise.
func DialWithInterceptor(interceptor grpc.UnaryClientInterceptor, statsHandler stats.Handler) peerclient.Dialer {
	return func(addr string) (peerclient.Client, error) {
		return dial(addr, grpc.WithChainUnaryInterceptor(interceptor), grpc.WithStatsHandler(statsHandler))
	}
}

func dial(addr string, extra ...grpc.DialOption) (peerclient.Client, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, extra...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcpeer: dial %s: %w", addr, err)
	}
	return &client{conn: conn}, nil
}

func (c *client) invoke(ctx context.Context, method string, in, out any) error {
	err := c.conn.Invoke(ctx, method, in, out)
	return classify(err)
}

// classify maps a gRPC status error onto the taxonomy the node
// service reasons about, so callers never need to inspect
// transport-specific error types.
func classify(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return peerclient.NewError(peerclient.ConnectionFailed, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return peerclient.NewError(peerclient.ConnectionFailed, err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return peerclient.NewError(peerclient.InvalidRequest, err)
	default:
		return peerclient.NewError(peerclient.Unexpected, err)
	}
}

func (c *client) Ping(ctx context.Context) error {
	return c.invoke(ctx, "/chord.Peer/Ping", &emptyMsg{}, &emptyMsg{})
}

func (c *client) FindSuccessor(ctx context.Context, id domain.ID) (domain.Peer, error) {
	req := &findSuccessorRequest{ID: uint64(id)}
	resp := &findSuccessorResponse{}
	if err := c.invoke(ctx, "/chord.Peer/FindSuccessor", req, resp); err != nil {
		return domain.Peer{}, err
	}
	return fromPeerMsg(resp.Successor), nil
}

func (c *client) Successor(ctx context.Context) (domain.Peer, error) {
	resp := &successorResponse{}
	if err := c.invoke(ctx, "/chord.Peer/Successor", &emptyMsg{}, resp); err != nil {
		return domain.Peer{}, err
	}
	return fromPeerMsg(resp.Successor), nil
}

func (c *client) SuccessorList(ctx context.Context) ([]domain.Peer, error) {
	resp := &successorListResponse{}
	if err := c.invoke(ctx, "/chord.Peer/SuccessorList", &emptyMsg{}, resp); err != nil {
		return nil, err
	}
	out := make([]domain.Peer, len(resp.Successors))
	for i, m := range resp.Successors {
		out[i] = fromPeerMsg(m)
	}
	return out, nil
}

func (c *client) Predecessor(ctx context.Context) (domain.Peer, error) {
	resp := &predecessorResponse{}
	if err := c.invoke(ctx, "/chord.Peer/Predecessor", &emptyMsg{}, resp); err != nil {
		return domain.Peer{}, err
	}
	if !resp.Known {
		return domain.Peer{}, nil
	}
	return fromPeerMsg(resp.Predecessor), nil
}

func (c *client) Notify(ctx context.Context, self domain.Peer) error {
	req := &notifyRequest{Candidate: toPeerMsg(self)}
	return c.invoke(ctx, "/chord.Peer/Notify", req, &emptyMsg{})
}

func (c *client) Close() error {
	return c.conn.Close()
}
