package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/cadence/internal/benchmarks"
	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/pkg/metrics"
)

// fileCorpus serves a snapshot decoded once from a local file.
type fileCorpus struct {
	campaigns []campaigns.Campaign
}

func (f *fileCorpus) Corpus(context.Context) ([]campaigns.Campaign, error) {
	return f.campaigns, nil
}

func loadCorpus(path string) (*fileCorpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	snapshot, err := campaigns.DecodeSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &fileCorpus{campaigns: snapshot}, nil
}

type benchmarkOptions struct {
	corpusFile   string
	campaignID   string
	campaignName string
	byTopic      bool
	month        string
	similarLimit int
	distribution bool
}

func newBenchmarkCommand(opts *rootOptions) *cobra.Command {
	b := &benchmarkOptions{}

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Benchmark one campaign against a snapshot file",
		Example: `  cadence benchmark --corpus campaigns.json --campaign "AAD Conference Coverage 2024"
  cadence benchmark --corpus campaigns.json --campaign "Weekly Newsletter" --by-topic --month Q1
  cadence benchmark --corpus campaigns.json --distribution`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.classifier()
			if err != nil {
				return err
			}

			corpus, err := loadCorpus(b.corpusFile)
			if err != nil {
				return err
			}

			cfg := benchmarks.Config{SimilarLimit: b.similarLimit}
			if err := cfg.Finalize(nil); err != nil {
				return err
			}

			sys := benchmarks.New(
				cfg,
				corpus,
				c,
				metrics.New(),
				opts.logger(cmd),
			)

			if b.distribution {
				cells, err := sys.Distribution(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), cells)
			}

			result, err := sys.Benchmark(cmd.Context(), benchmarks.Request{
				CampaignID:   b.campaignID,
				CampaignName: b.campaignName,
				Filters: benchmarks.Filters{
					FilterByTopic: b.byTopic,
					Month:         b.month,
				},
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&b.corpusFile, "corpus", "", "campaign snapshot JSON file")
	cmd.Flags().StringVar(&b.campaignName, "campaign", "", "name of the campaign to benchmark")
	cmd.Flags().StringVar(&b.campaignID, "id", "", "campaign_id of the campaign to benchmark (wins over --campaign)")
	cmd.Flags().BoolVar(&b.byTopic, "by-topic", false, "only compare campaigns with the same topic")
	cmd.Flags().StringVar(&b.month, "month", "", "month filter: 1-12, Q1-Q4 or all")
	cmd.Flags().IntVar(&b.similarLimit, "limit", benchmarks.DefaultSimilarLimit, "number of similar campaigns to list")
	cmd.Flags().BoolVar(&b.distribution, "distribution", false, "print the bucket and topic distribution instead")
	cmd.MarkFlagRequired("corpus")
	cmd.MarkFlagsMutuallyExclusive("distribution", "campaign")
	cmd.MarkFlagsMutuallyExclusive("distribution", "id")

	return cmd
}
