package main

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

// serveMux splits ln between gRPC (HTTP/2 with a grpc content-type) and the
// HTTP/1.1 gateway, and blocks until ln is closed.
func serveMux(ln net.Listener, gs *grpc.Server, mux *gwruntime.ServeMux) error {
	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	go func() {
		if err := gs.Serve(grpcL); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()
	go func() {
		if err := serveHTTPGateway(httpL, mux); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
			slog.Error("HTTP gateway stopped", "err", err)
		}
	}()

	if err := m.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// serveHTTPGateway runs an HTTP/1.1 server on ln serving the grpc-gateway mux.
func serveHTTPGateway(ln net.Listener, mux *gwruntime.ServeMux) error {
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	return srv.Serve(ln)
}
