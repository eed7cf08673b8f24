package main

import (
	"fmt"

	"github.com/caffeineduck/r2d2/bridge"
	"github.com/caffeineduck/r2d2/guest"
	"github.com/spf13/cobra"
)

func newUsageCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Query storage usage and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := launch(cmd, opts, guest.OpUsage, nil); err != nil {
				return err
			}
			if opts.outcome.Kind() == bridge.KindSuccess {
				fmt.Fprintln(cmd.OutOrStdout(), opts.outcome.Output())
			}
			return nil
		},
	}
}
