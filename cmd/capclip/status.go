package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/capclip/internal/ipc"
	"go.klb.dev/capclip/internal/rpcservice"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which clipboard backend is in use",
		Long: `Displays the clipboard backend, whether it is available and the version
of the process serving it.

If a local daemon is running, the request is sent via the IPC socket. Pass
--server to target a specific daemon over TCP. With no daemon the local
backend is probed directly.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	f := cmd.Flags()
	f.String("server", "", "daemon address host:port")
	f.String("token", "", "shared secret")
	f.Bool("json", false, "output raw JSON")
	addClipboardFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	resolveLogging(false, "auto", "warn")

	st, err := fetchStatus(v)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return printStatus(out, st)
}

func fetchStatus(v *viper.Viper) (map[string]any, error) {
	conn, err := dialDaemon(v)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		defer conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		st, err := rpcservice.NewClient(conn).Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if addr := v.GetString("server"); addr != "" {
			st["transport"] = fmt.Sprintf("tcp (%s)", addr)
		} else {
			st["transport"] = fmt.Sprintf("ipc (%s)", ipc.SocketPath())
		}
		return st, nil
	}

	cb, closeFn, err := openLocal(v)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return map[string]any{
		"backend":   cb.Backend(),
		"available": cb.Backend() != "",
		"version":   Version,
		"transport": "local",
	}, nil
}

func printStatus(out io.Writer, st map[string]any) error {
	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	for _, k := range keys {
		val := st[k]
		if s, ok := val.(string); ok && s == "" {
			val = "-"
		}
		fmt.Fprintf(w, "%s:\t%v\n", k, val)
	}
	return w.Flush()
}
