package main

import "github.com/spf13/cobra"

// NewRootCmd creates the root command for the authgate CLI. Running the
// binary without a subcommand starts the HTTP server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "authgate",
		Short:         "authgate - authentication service",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCreateAdminCmd())

	return cmd
}
