package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/session"
	"go.klb.dev/capclip/internal/wire"
)

func newBridgeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Answer clipboard calls as newline-delimited JSON on stdin/stdout",
		Long: `Runs the host bridge. A host application spawns capclip bridge and writes
one JSON request per line:

  {"id":"1","method":"write","options":{"string":"hello"}}
  {"id":"2","method":"read"}

Each request gets exactly one response line with the same id, either
{"id":..,"data":{..}} or {"id":..,"error":"<message>"}. Logs go to stderr.
The bridge exits when stdin is closed.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(v)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cb, closeFn, err := openLocal(v)
			if err != nil {
				return err
			}
			defer closeFn()

			slog.Debug("bridge ready", "backend", cb.Backend())
			status := func() map[string]any {
				return map[string]any{
					"backend":   cb.Backend(),
					"available": cb.Backend() != "",
					"version":   Version,
				}
			}
			conn := wire.New(cmd.InOrStdin(), cmd.OutOrStdout())
			return session.Serve(ctx, conn, bridge.New(cb), status)
		},
	}

	addClipboardFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}
