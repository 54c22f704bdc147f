package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/discovery"
	"go.klb.dev/capclip/internal/ipc"
	"go.klb.dev/capclip/internal/rpcservice"
	"go.klb.dev/capclip/internal/staging"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clipboard over gRPC, HTTP/JSON and the IPC socket",
		Long: `Starts the capclip daemon. The clipboard is served on:

  --addr         gRPC (capclip.v1.Clipboard) and HTTP/JSON on one TCP port
  IPC socket     gRPC for local "capclip write/read/status"

HTTP routes:
  POST /v1/clipboard/write   {"string"|"image"|"url": "...", "label": "..."}
  GET  /v1/clipboard/read    → {"value": "...", "type": "..."}
  GET  /v1/status

Staged image files older than --staging-ttl are removed at start and hourly.

Precedence (lowest → highest): defaults → config file → CAPCLIP_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("addr", "127.0.0.1:8753", "TCP listen address (empty = IPC socket only)")
	f.String("token", "", "shared secret required from callers (empty = no auth)")
	f.Bool("no-ipc", false, "do not listen on the IPC socket")
	f.Bool("mdns", false, "advertise the TCP endpoint over mDNS")
	f.String("instance", defaultInstance(), "mDNS instance name")
	f.Duration("staging-ttl", staging.DefaultTTL, "age after which staged image files are removed")
	addClipboardFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(parent context.Context, v *viper.Viper) error {
	setupLogging(v)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := v.GetString("addr")
	token := v.GetString("token")

	cb, closeFn, err := openLocal(v)
	if err != nil {
		return err
	}
	defer closeFn()

	slog.Info("capclip daemon starting",
		"version", Version,
		"addr", addr,
		"backend", cb.Backend(),
		"auth", token != "",
	)

	stager := staging.New(v.GetString("cache-dir"))
	go sweepLoop(ctx, stager, v.GetDuration("staging-ttl"))

	svc := rpcservice.New(bridge.New(cb), cb.Backend(), Version, token)
	gs := grpc.NewServer()
	rpcservice.Register(gs, svc)
	defer gs.Stop()

	if !v.GetBool("no-ipc") {
		path := ipc.SocketPath()
		ln, err := ipc.Listen(path)
		if err != nil {
			slog.Warn("IPC socket unavailable", "err", err)
		} else {
			slog.Info("IPC socket listening", "path", path)
			go func() {
				if err := gs.Serve(ln); err != nil {
					slog.Error("IPC server stopped", "err", err)
				}
			}()
		}
	}

	if addr == "" {
		<-ctx.Done()
		return nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	slog.Info("listening", "addr", ln.Addr())

	if v.GetBool("mdns") {
		port := ln.Addr().(*net.TCPAddr).Port
		ad, err := discovery.Register(v.GetString("instance"), port, Version)
		if err != nil {
			slog.Warn("mDNS advertisement failed", "err", err)
		} else {
			defer ad.Shutdown()
			slog.Info("advertising over mDNS", "service", discovery.ServiceType, "port", port)
		}
	}

	mux, err := rpcservice.NewGateway(svc)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- serveMux(ln, gs, mux) }()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		_ = ln.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

// sweepLoop removes stale staged images now and then every hour.
func sweepLoop(ctx context.Context, stager *staging.Stager, ttl time.Duration) {
	sweep := func() {
		n, err := stager.Sweep(ttl)
		if err != nil {
			slog.Warn("staging sweep failed", "err", err)
		} else if n > 0 {
			slog.Info("staged images removed", "count", n)
		}
	}
	sweep()

	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep()
		}
	}
}
