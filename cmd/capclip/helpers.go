package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/capclip/internal/clip"
	"go.klb.dev/capclip/internal/clipboard"
	"go.klb.dev/capclip/internal/ipc"
	"go.klb.dev/capclip/internal/staging"
)

// defaultInstance returns a human-readable identifier for this host.
func defaultInstance() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "capclip"
}

// openLocal opens the configured clipboard backend. When no backend can be
// reached the returned Clipboard has none: writes fail with the unavailable
// message and reads find nothing. The caller must call the close func.
func openLocal(v *viper.Viper) (*clipboard.Clipboard, func(), error) {
	kind, err := clip.ParseKind(v.GetString("backend"))
	if err != nil {
		return nil, nil, err
	}
	stager := staging.New(v.GetString("cache-dir"))

	backend, err := clip.Open(kind)
	if err != nil {
		if !errors.Is(err, clip.ErrUnavailable) {
			return nil, nil, err
		}
		slog.Warn("clipboard unavailable", "backend", kind, "err", err)
		return clipboard.New(nil, stager), func() {}, nil
	}
	slog.Debug("clipboard backend", "name", backend.Name())
	return clipboard.New(backend, stager), backend.Close, nil
}

// dialDaemon returns a connection to a capclip daemon: the --server address
// when set, else the local IPC socket when a daemon is listening on it. It
// returns nil, nil when there is no daemon to talk to.
func dialDaemon(v *viper.Viper) (*grpc.ClientConn, error) {
	token := v.GetString("token")
	opts := dialOpts(token)

	if addr := v.GetString("server"); addr != "" {
		conn, err := grpc.NewClient(addr, opts...)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return conn, nil
	}

	path := ipc.SocketPath()
	if !ipc.IsRunning(path) {
		return nil, nil
	}
	conn, err := grpc.NewClient(ipc.Target(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("dial ipc: %w", err)
	}
	return conn, nil
}

// dialOpts returns gRPC dial options (insecure transport, optional token).
func dialOpts(token string) []grpc.DialOption {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(&clientCreds{token: token}))
	}
	return opts
}

type clientCreds struct {
	token string
}

func (c *clientCreds) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + c.token}, nil
}

func (c *clientCreds) RequireTransportSecurity() bool { return false }
