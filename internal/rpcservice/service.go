// Package rpcservice exposes the clipboard bridge as the gRPC service
// capclip.v1.Clipboard. Requests and responses are protobuf well-known types
// (Struct and Empty), so the service is registered from a hand-written
// ServiceDesc and needs no generated code.
package rpcservice

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/clipboard"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "capclip.v1.Clipboard"

// Full method names.
const (
	WriteMethod  = "/" + ServiceName + "/Write"
	ReadMethod   = "/" + ServiceName + "/Read"
	StatusMethod = "/" + ServiceName + "/Status"
)

// ClipboardServer is the server API of capclip.v1.Clipboard.
type ClipboardServer interface {
	Write(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Read(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// Service implements ClipboardServer.
type Service struct {
	b       *bridge.Bridge
	backend string
	version string
	token   string // empty = no auth
}

// New returns a Service backed by b. backend names the clip backend ("" when
// none could be opened); token may be empty to disable auth.
func New(b *bridge.Bridge, backend, version, token string) *Service {
	return &Service{b: b, backend: backend, version: version, token: token}
}

// Register adds the service to s.
func Register(s grpc.ServiceRegistrar, srv ClipboardServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Write implements capclip.v1.Clipboard/Write. The response carries the
// outcome ("written" or "text-fallback").
func (s *Service) Write(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	call := bridge.CallFromStruct(req)
	outcome, err := s.b.WriteOutcome(call)
	if err != nil {
		slog.Info("write rejected", "peer", addrFromCtx(ctx), "reason", err)
		return nil, toStatus(err)
	}
	slog.Debug("clipboard written", "peer", addrFromCtx(ctx), "outcome", outcome)
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"outcome": structpb.NewStringValue(outcome.String()),
	}}, nil
}

// Read implements capclip.v1.Clipboard/Read.
func (s *Service) Read(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	data, err := s.b.Read()
	if err != nil {
		return nil, toStatus(err)
	}
	return bridge.ToStruct(data), nil
}

// Status implements capclip.v1.Clipboard/Status.
func (s *Service) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.auth(ctx); err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"backend":   structpb.NewStringValue(s.backend),
		"available": structpb.NewBoolValue(s.backend != ""),
		"version":   structpb.NewStringValue(s.version),
	}}, nil
}

// toStatus maps a bridge rejection to a gRPC status carrying the rejection
// message verbatim.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, bridge.ErrNoPayload), errors.Is(err, clipboard.ErrFormat):
		code = codes.InvalidArgument
	case errors.Is(err, bridge.ErrNoData):
		code = codes.NotFound
	case errors.Is(err, clipboard.ErrUnavailable):
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}

// auth accepts a call when any authorization value is "Bearer <token>" for
// the configured token. Every call passes when no token is configured.
func (s *Service) auth(ctx context.Context) error {
	if s.token == "" {
		return nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	for _, v := range md.Get("authorization") {
		tok, ok := strings.CutPrefix(v, "Bearer ")
		if ok && subtle.ConstantTimeCompare([]byte(tok), []byte(s.token)) == 1 {
			return nil
		}
	}
	slog.Warn("unauthenticated call", "peer", addrFromCtx(ctx))
	return status.Error(codes.Unauthenticated, "missing or invalid bearer token")
}

func addrFromCtx(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}

// ── service descriptor ─────────────────────────────────────────────────────

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClipboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Write", Handler: writeHandler},
		{MethodName: "Read", Handler: readHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "capclip/v1/clipboard.proto",
}

func writeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClipboardServer).Write(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WriteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClipboardServer).Write(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func readHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClipboardServer).Read(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReadMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClipboardServer).Read(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClipboardServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: StatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClipboardServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
