package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRenderCommand(opts *globalOptions) *cobra.Command {
	var (
		renderer string
		values   []string
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a formula through a registered renderer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request(args[0])
			req.Renderer = renderer

			prefill, err := parseAssignments(values)
			if err != nil {
				return err
			}
			req.Values = prefill

			output, err := opts.orchestrator().Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&renderer, "renderer", "r", "html", "renderer name: html or json")
	cmd.Flags().StringArrayVar(&values, "set", nil, "prefill a field, as path=value (repeatable)")

	return cmd
}

func parseAssignments(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, assignment := range raw {
		path, value, ok := strings.Cut(assignment, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --set %q: expected path=value", assignment)
		}
		out[path] = value
	}
	return out, nil
}
