package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/status"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/clipboard"
	"go.klb.dev/capclip/internal/rpcservice"
)

func newReadCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Print the clipboard to stdout (like pbpaste)",
		Long: `Prints the clipboard value. With --json the value and its MIME type are
printed as {"value": ..., "type": ...}. Exits non-zero with "No data on
clipboard" when the clipboard is empty.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runRead(cmd, v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "print value and type as JSON")
	f.String("server", "", "daemon address host:port (default: IPC socket, then local clipboard)")
	f.String("token", "", "shared secret for the daemon")
	addClipboardFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runRead(cmd *cobra.Command, v *viper.Viper) error {
	resolveLogging(false, "auto", "warn")

	data, err := readData(v)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	_, err = fmt.Fprintln(out, data.Value)
	return err
}

func readData(v *viper.Viper) (clipboard.Data, error) {
	conn, err := dialDaemon(v)
	if err != nil {
		return clipboard.Data{}, err
	}
	if conn != nil {
		defer conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		data, err := rpcservice.NewClient(conn).Read(ctx)
		if err != nil {
			return clipboard.Data{}, errors.New(status.Convert(err).Message())
		}
		return data, nil
	}

	cb, closeFn, err := openLocal(v)
	if err != nil {
		return clipboard.Data{}, err
	}
	defer closeFn()
	return bridge.New(cb).Read()
}
