package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show-config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.cfg.String())
			return err
		},
	}
}
