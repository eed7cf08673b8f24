package main

import (
	"github.com/caffeineduck/r2d2/guest"
	"github.com/spf13/cobra"
)

func newErrorCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:    "error",
		Short:  "Report a failure through the bridge (diagnostic)",
		Long:   "Exercise the reported-failure path end to end: the operation always fails, the process exits 1 with a diagnostic.",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, opts, guest.OpError, nil)
		},
	}
}
