package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				_, err := fmt.Fprintln(out, a.build.Version)
				return err
			}
			if a.cfg.Output == "json" {
				return writeJSON(out, a.build)
			}
			_, err := fmt.Fprintf(out, "registryctl version %s (commit: %s, built: %s)\n",
				a.build.Version, a.build.Commit, a.build.Date)
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print version number only")
	return cmd
}
