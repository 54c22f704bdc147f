// capclip: write text, references and images to the system clipboard and
// read them back.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/capclip/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "capclip",
		Short: "Cross-platform clipboard accessor",
		Long: `capclip writes plain text, content/file references and base64 data-URL
images to the system clipboard, and reads back whatever is on it together with
its MIME type.

Run "capclip serve" to expose the clipboard over gRPC and HTTP/JSON (and a
local IPC socket), or let a host application spawn "capclip bridge" and talk
newline-delimited JSON over stdio. "capclip write/read" use a running daemon
when one is listening on the IPC socket and the local clipboard otherwise.

Config file search order (first found wins):
  /etc/capclip/capclip.toml
  $HOME/.config/capclip/capclip.toml
  path supplied via --config

All flags can be set via CAPCLIP_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newWriteCmd(),
		newReadCmd(),
		newServeCmd(),
		newBridgeCmd(),
		newStatusCmd(),
		newDiscoverCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "capclip %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
