package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formula/pkg/renderers/tui"
)

func newEditCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Fill in a formula interactively and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.orchestrator().Controller(cmd.Context(), request(args[0]))
			if err != nil {
				return err
			}

			session, err := tui.New(
				tui.WithPromptDriver(promptDriver(cmd)),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithLogger(opts.logger),
			)
			if err != nil {
				return err
			}

			output, err := session.Run(cmd.Context(), c)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "output format: json, yaml or pretty")

	return cmd
}

// promptDriver is swapped by tests to script the session.
var promptDriver = func(cmd *cobra.Command) tui.PromptDriver {
	return tui.NewSurveyDriver(cmd.ErrOrStderr())
}
