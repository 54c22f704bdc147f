package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/capclip/internal/discovery"
)

func newDiscoverCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List capclip daemons advertised on the local network",
		Long: `Browses mDNS for daemons started with "capclip serve --mdns" and prints
their addresses. Use an address with --server on write, read or status.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolveLogging(false, "auto", "warn")

			ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
			defer cancel()

			eps, err := discovery.Browse(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(eps) == 0 {
				fmt.Fprintln(out, "No daemons found.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "INSTANCE\tADDR\tHOST\tVERSION\n")
			for _, ep := range eps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ep.Instance, ep.Addr(), ep.Host, ep.Version)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Duration("timeout", discovery.DefaultTimeout, "how long to listen for announcements")
	addConfigFlag(cmd)

	return cmd
}
