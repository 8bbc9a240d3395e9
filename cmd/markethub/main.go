// Command markethub runs the Market Hub Essentials lead-capture API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markethub-essentials/backend/internal/config"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "markethub",
		Short:         "Market Hub Essentials lead-capture API",
		Long:          "HTTP service accepting the public inquiry and service request forms, delivering each lead by email and webhook.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return serve(cmd.Context())
		},
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cmd.SilenceUsage = true
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version and exit",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", config.ServiceName, Version)
			},
		},
	)

	return cmd
}
