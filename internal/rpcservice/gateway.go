package rpcservice

import (
	"errors"
	"io"
	"net/http"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// HTTP routes served by NewGateway.
const (
	WritePath  = "/v1/clipboard/write"
	ReadPath   = "/v1/clipboard/read"
	StatusPath = "/v1/status"
)

// NewGateway returns an HTTP/JSON mux that calls srv in-process. Errors are
// rendered by the gateway runtime as {"code":..,"message":..} with the HTTP
// status matching the gRPC code.
func NewGateway(srv ClipboardServer) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux()

	routes := []struct {
		method, path, rpc string
		h                 func(*http.Request) (proto.Message, error)
	}{
		{http.MethodPost, WritePath, WriteMethod, func(r *http.Request) (proto.Message, error) {
			in := new(structpb.Struct)
			inbound, _ := gwruntime.MarshalerForRequest(mux, r)
			if err := inbound.NewDecoder(r.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
				return nil, status.Errorf(codes.InvalidArgument, "%v", err)
			}
			return srv.Write(r.Context(), in)
		}},
		{http.MethodGet, ReadPath, ReadMethod, func(r *http.Request) (proto.Message, error) {
			return srv.Read(r.Context(), &emptypb.Empty{})
		}},
		{http.MethodGet, StatusPath, StatusMethod, func(r *http.Request) (proto.Message, error) {
			return srv.Status(r.Context(), &emptypb.Empty{})
		}},
	}

	for _, rt := range routes {
		err := mux.HandlePath(rt.method, rt.path, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			_, outbound := gwruntime.MarshalerForRequest(mux, r)
			ctx, err := gwruntime.AnnotateIncomingContext(r.Context(), mux, r, rt.rpc)
			if err != nil {
				gwruntime.HTTPError(r.Context(), mux, outbound, w, r, err)
				return
			}
			resp, err := rt.h(r.WithContext(ctx))
			if err != nil {
				gwruntime.HTTPError(ctx, mux, outbound, w, r, err)
				return
			}
			gwruntime.ForwardResponseMessage(ctx, mux, outbound, w, r, resp)
		})
		if err != nil {
			return nil, err
		}
	}
	return mux, nil
}
