// Package lookuptrace adds OpenTelemetry spans around find_successor
// hops, and only those: its interceptors pass every other peer RPC
// (stabilize's successor and predecessor queries, notify, ping)
// through without a span of their own. Ambient spans for every RPC,
// when wanted, come from a separate gRPC stats handler.
package lookuptrace

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	lookupMetaKey = "x-chord-lookup"
	tracerName    = "chorddht/lookuptrace"
)

var tracer = otel.Tracer(tracerName)

// WithLookup marks ctx's outgoing metadata as belonging to a
// find_successor call chain, so the next hop receives the marker.
func WithLookup(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(lookupMetaKey, "true")
	return metadata.NewOutgoingContext(ctx, md)
}

// IsLookup reports whether the incoming call carries the lookup marker.
func IsLookup(ctx context.Context) bool {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	values := md.Get(lookupMetaKey)
	return len(values) > 0 && values[0] == "true"
}

// ServerInterceptor extracts the OTEL trace context from incoming
// metadata and opens a span for every inbound FindSuccessor call,
// whether or not it carries the lookup marker, marking the handler's
// context with WithLookup so recursive hops stay in the same trace.
func ServerInterceptor() grpc.UnaryServerInterceptor {
	propagator := otel.GetTextMapPropagator()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = propagator.Extract(ctx, metadataCarrier(md))
		}

		if !strings.HasSuffix(info.FullMethod, "/FindSuccessor") {
			return handler(ctx, req)
		}

		ctx = WithLookup(ctx)
		ctx, span := tracer.Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		return handler(ctx, req)
	}
}

// ClientInterceptor propagates the lookup marker and OTEL trace
// context on outbound FindSuccessor calls, and opens a matching
// client-side span.
func ClientInterceptor() grpc.UnaryClientInterceptor {
	propagator := otel.GetTextMapPropagator()

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if !strings.HasSuffix(method, "/FindSuccessor") {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		ctx = WithLookup(ctx)
		ctx, span := tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		md, _ := metadata.FromOutgoingContext(ctx)
		md = md.Copy()
		propagator.Inject(ctx, metadataCarrier(md))
		ctx = metadata.NewOutgoingContext(ctx, md)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

type metadataCarrier metadata.MD

func (mc metadataCarrier) Get(key string) string {
	vals := metadata.MD(mc).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (mc metadataCarrier) Set(key, value string) {
	metadata.MD(mc).Set(key, value)
}

func (mc metadataCarrier) Keys() []string {
	out := make([]string, 0, len(mc))
	for k := range mc {
		out = append(out, k)
	}
	return out
}
