package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formula/pkg/renderers/tui"
)

func newDefaultsCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "defaults FILE",
		Short: "Print the initial values of a formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := opts.orchestrator().Defaults(cmd.Context(), request(args[0]))
			if err != nil {
				return err
			}
			data, err := tui.Encode(tui.OutputFormat(format), values)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "output format: json, yaml or pretty")

	return cmd
}
