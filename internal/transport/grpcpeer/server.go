package grpcpeer

import (
	"context"

	"chorddht/internal/chord"
	"chorddht/internal/ctxutil"
	"chorddht/internal/domain"
	"chorddht/internal/logger"

	"google.golang.org/grpc"
)

// peerServer is the gRPC-facing adapter around a chord.Service. Every
// method mirrors the transport-facing surface a Chord node exposes to
// its peers: ping, find_successor, get_successor, get_successor_list,
// get_predecessor and notify.
type peerServer struct {
	svc    *chord.Service
	logger logger.Logger
}

// RegisterServer wires svc's transport-facing surface into grpcServer.
func RegisterServer(grpcServer *grpc.Server, svc *chord.Service, lgr logger.Logger) {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	grpcServer.RegisterService(&serviceDesc, &peerServer{svc: svc, logger: lgr})
}

func (s *peerServer) ping(ctx context.Context, _ *emptyMsg) (*emptyMsg, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return &emptyMsg{}, s.svc.Ping(ctx)
}

func (s *peerServer) findSuccessor(ctx context.Context, req *findSuccessorRequest) (*findSuccessorResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	succ, err := s.svc.FindSuccessor(ctx, domain.ID(req.ID))
	if err != nil {
		return nil, err
	}
	return &findSuccessorResponse{Successor: toPeerMsg(succ)}, nil
}

func (s *peerServer) successor(ctx context.Context, _ *emptyMsg) (*successorResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return &successorResponse{Successor: toPeerMsg(s.svc.GetSuccessor())}, nil
}

func (s *peerServer) successorList(ctx context.Context, _ *emptyMsg) (*successorListResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	list := s.svc.GetSuccessorList()
	out := make([]peerMsg, len(list))
	for i, p := range list {
		out[i] = toPeerMsg(p)
	}
	return &successorListResponse{Successors: out}, nil
}

func (s *peerServer) predecessor(ctx context.Context, _ *emptyMsg) (*predecessorResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	pred := s.svc.GetPredecessor()
	if pred.Empty() {
		return &predecessorResponse{Known: false}, nil
	}
	return &predecessorResponse{Known: true, Predecessor: toPeerMsg(pred)}, nil
}

func (s *peerServer) notify(ctx context.Context, req *notifyRequest) (*emptyMsg, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	s.svc.Notify(fromPeerMsg(req.Candidate))
	return &emptyMsg{}, nil
}

// serviceDesc hand-describes the service that a .proto file plus protoc
// would normally generate. Each MethodDesc's Handler decodes the
// request with the registered jsonCodec, invokes the matching
// peerServer method, and hands the response back to gRPC.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "chord.Peer",
	HandlerType: (*peerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(emptyMsg)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*peerServer).ping(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.Peer/Ping"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(*peerServer).ping(ctx, req.(*emptyMsg))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "FindSuccessor",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(findSuccessorRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*peerServer).findSuccessor(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.Peer/FindSuccessor"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(*peerServer).findSuccessor(ctx, req.(*findSuccessorRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "Successor",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(emptyMsg)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*peerServer).successor(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.Peer/Successor"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(*peerServer).successor(ctx, req.(*emptyMsg))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "SuccessorList",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(emptyMsg)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*peerServer).successorList(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.Peer/SuccessorList"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(*peerServer).successorList(ctx, req.(*emptyMsg))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "Predecessor",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(emptyMsg)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*peerServer).predecessor(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.Peer/Predecessor"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(*peerServer).predecessor(ctx, req.(*emptyMsg))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "Notify",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(notifyRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*peerServer).notify(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.Peer/Notify"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(*peerServer).notify(ctx, req.(*notifyRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/transport/grpcpeer/server.go",
}
