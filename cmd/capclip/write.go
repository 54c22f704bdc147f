package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/status"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/clipboard"
	"go.klb.dev/capclip/internal/logging"
	"go.klb.dev/capclip/internal/rpcservice"
)

const rpcTimeout = 5 * time.Second

func newWriteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write text, a reference or an image to the clipboard (like pbcopy)",
		Long: `Writes one payload to the clipboard. The first of --string, --image and
--url that is set wins. With none of them set, stdin is read as --string.

  capclip write --string "hello"
  capclip write --url content://media/external/images/42
  capclip write --image "data:image/png;base64,iVBORw0..."

If a local daemon is listening on the IPC socket (or --server is given) the
write goes through it; otherwise the local clipboard is used directly.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runWrite(cmd, v) },
	}

	f := cmd.Flags()
	f.String("string", "", "plain text (content:// and file:// values are written as references)")
	f.String("image", "", "data:image/<type>;base64,<payload> image")
	f.String("url", "", "content:// or file:// reference")
	f.String("label", "", "user-visible label for the clip")
	f.String("server", "", "daemon address host:port (default: IPC socket, then local clipboard)")
	f.String("token", "", "shared secret for the daemon")
	addClipboardFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// callFromFlags builds a bridge.Call from the flags the user actually set,
// falling back to stdin when no payload flag is present.
func callFromFlags(cmd *cobra.Command, stdin io.Reader) (bridge.Call, error) {
	var call bridge.Call
	get := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		s, _ := cmd.Flags().GetString(name)
		return &s
	}
	call.String = get("string")
	call.Image = get("image")
	call.URL = get("url")
	call.Label = get("label")

	if _, ok := call.Content(); !ok && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return call, fmt.Errorf("read stdin: %w", err)
		}
		if len(data) > 0 {
			s := string(data)
			call.String = &s
		}
	}
	return call, nil
}

func runWrite(cmd *cobra.Command, v *viper.Viper) error {
	resolveLogging(false, "auto", "warn")

	var stdin io.Reader
	if !logging.IsTTY(os.Stdin) {
		stdin = cmd.InOrStdin()
	}
	call, err := callFromFlags(cmd, stdin)
	if err != nil {
		return err
	}

	conn, err := dialDaemon(v)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		outcome, err := rpcservice.NewClient(conn).Write(ctx, call)
		if err != nil {
			return errors.New(status.Convert(err).Message())
		}
		warnOutcome(cmd.ErrOrStderr(), outcome)
		return nil
	}

	cb, closeFn, err := openLocal(v)
	if err != nil {
		return err
	}
	defer closeFn()

	outcome, err := bridge.New(cb).WriteOutcome(call)
	if err != nil {
		return err
	}
	warnOutcome(cmd.ErrOrStderr(), outcome)
	return nil
}

func warnOutcome(w io.Writer, outcome clipboard.Outcome) {
	if outcome == clipboard.OutcomeTextFallback {
		fmt.Fprintln(w, "warning: image could not be decoded; wrote it as plain text")
	}
}
