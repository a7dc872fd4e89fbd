package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCommand(opts *rootOptions) *cobra.Command {
	var stdin bool

	cmd := &cobra.Command{
		Use:   "classify [names...]",
		Short: "Assign a bucket and topic to each campaign name",
		Example: `  cadence classify "AAD Conference Coverage 2024" "Weekly Newsletter"
  cut -d, -f2 campaigns.csv | cadence classify --stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.classifier()
			if err != nil {
				return err
			}

			names := args
			if stdin {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						names = append(names, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return err
				}
			}
			if len(names) == 0 {
				return cmd.Usage()
			}

			return writeJSON(cmd.OutOrStdout(), c.ClassifyAll(names))
		},
	}

	cmd.Flags().BoolVar(&stdin, "stdin", false, "read additional names from stdin, one per line")
	return cmd
}

func newTaxonomyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the ordered bucket and topic taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.classifier()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c.Buckets())
		},
	}
}
