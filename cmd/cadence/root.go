package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/cadence/internal/taxonomy"
)

type rootOptions struct {
	rulesFile string
	verbose   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "cadence",
		Short:         "Classify and benchmark email campaigns",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "taxonomy rules YAML (default: built-in rules)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(
		newClassifyCommand(opts),
		newTaxonomyCommand(opts),
		newBenchmarkCommand(opts),
	)

	return cmd
}

func (o *rootOptions) classifier() (*taxonomy.Classifier, error) {
	if o.rulesFile == "" {
		return taxonomy.Default(), nil
	}

	data, err := os.ReadFile(o.rulesFile)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return taxonomy.Load(data)
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
