// Package server hosts the gRPC listener a Chord node exposes to its
// peers, wrapping internal/transport/grpcpeer's service registration.
package server

import (
	"fmt"
	"net"

	"chorddht/internal/chord"
	"chorddht/internal/logger"
	"chorddht/internal/transport/grpcpeer"

	"google.golang.org/grpc"
)

// Server wraps a gRPC server hosting the peer-facing Chord service.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	lgr        logger.Logger
}

// New creates a new gRPC server bound to lis and registers svc's
// peer-facing surface. Extra grpc.ServerOptions (e.g. a stats handler
// for tracing) can be passed through grpcOpts.
func New(lis net.Listener, svc *chord.Service, grpcOpts []grpc.ServerOption, srvOpts ...Option) (*Server, error) {
	s := &Server{
		grpcServer: grpc.NewServer(grpcOpts...),
		listener:   lis,
		lgr:        &logger.NopLogger{},
	}
	for _, opt := range srvOpts {
		opt(s)
	}
	grpcpeer.RegisterServer(s.grpcServer, svc, s.lgr)
	return s, nil
}

// Start runs the gRPC server and blocks until it stops.
func (s *Server) Start() error {
	if err := s.grpcServer.Serve(s.listener); err != nil {
		return fmt.Errorf("gRPC server stopped: %w", err)
	}
	return nil
}

// Stop immediately stops the server and closes all active connections.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// GracefulStop gracefully shuts down the server, waiting for in-flight
// RPCs to complete.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}
