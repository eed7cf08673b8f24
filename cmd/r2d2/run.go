package main

import (
	"github.com/caffeineduck/r2d2/guest"
	"github.com/spf13/cobra"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [-- engine args]",
		Short: "Run the engine CLI and exit with its status",
		Long: `Run the engine's main entry point. Arguments after -- are passed to
the engine CLI untouched, and its exit code becomes the process exit
code, verbatim.

  r2d2 run -- backup --bucket photos
  r2d2 run -- list`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, opts, guest.OpMain, args)
		},
	}
}
