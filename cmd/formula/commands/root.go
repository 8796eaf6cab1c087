// Package commands implements the formula command line.
package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/orchestrator"
)

type globalOptions struct {
	initialRows int
	logger      zerolog.Logger
}

// Execute runs the root command.
func Execute(ctx context.Context, version string, logger zerolog.Logger) error {
	return NewRootCommand(version, logger).ExecuteContext(ctx)
}

// NewRootCommand assembles the command tree. Tests call it directly with
// their own output writers.
func NewRootCommand(version string, logger zerolog.Logger) *cobra.Command {
	opts := &globalOptions{logger: logger}

	rootCmd := &cobra.Command{
		Use:   "formula",
		Short: "Build, render and fill forms described by formula files",
		Long: `formula reads a formula document (YAML, JSON or JSONC), builds the form it
describes and either prints its default values, renders it, or walks you
through filling it in on the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().IntVar(&opts.initialRows, "initial-rows", 0,
		"rows created per collection (0 uses the collection's minimum, at least one)")

	rootCmd.AddCommand(newDefaultsCommand(opts))
	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newEditCommand(opts))

	return rootCmd
}

func (g *globalOptions) orchestrator() *orchestrator.Orchestrator {
	var formulaOptions []formula.Option
	if g.initialRows > 0 {
		formulaOptions = append(formulaOptions, formula.WithInitialRows(g.initialRows))
	}
	return orchestrator.New(
		orchestrator.WithLogger(g.logger),
		orchestrator.WithFormulaOptions(formulaOptions...),
	)
}

func request(file string) orchestrator.Request {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	return orchestrator.Request{
		FS:   os.DirFS(filepath.Dir(abs)),
		Path: filepath.Base(abs),
	}
}

func writeOutput(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
