// Package commands holds the thermotec-agenda command line.
package commands

import (
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/thermotec-agenda/internal/app"
)

// NewRootCommand builds the CLI; without a subcommand it serves.
func NewRootCommand(static fs.FS) *cobra.Command {
	var port int

	root := &cobra.Command{
		Use:           app.ServiceName,
		Short:         "Thermotec appliance repair scheduling",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunServer(cmd, static, port)
		},
	}
	AddServeFlags(root, &port)

	root.AddCommand(
		NewServeCommand(static),
		NewHashPasswordCommand(),
		NewMonthCommand(),
	)
	return root
}
