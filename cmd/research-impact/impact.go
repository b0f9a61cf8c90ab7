package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-impact/internal/attention"
	"github.com/pdiddy/research-impact/internal/classify"
	"github.com/pdiddy/research-impact/internal/config"
	"github.com/pdiddy/research-impact/internal/identify"
	"github.com/pdiddy/research-impact/internal/impact"
	"github.com/pdiddy/research-impact/internal/openaccess"
	"github.com/pdiddy/research-impact/internal/profile"
	"github.com/pdiddy/research-impact/pkg/types"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Compute publication impact metrics for researchers",
	Long: `Impact retrieves each configured researcher's publication listing, resolves
DOI and PMID identifiers, fetches Altmetric attention, decides open-access
status, and tags public-health and capacity-building topics.

Papers are processed one at a time with a pause between them. Results for
each author are written to <output-dir>/<author_name>/.`,
	RunE: runImpact,
}

func init() {
	impactCmd.Flags().StringArray("author", nil, "researcher as Name=ProfileID (repeatable; replaces impact.authors)")
	impactCmd.Flags().String("output-dir", "", "base directory for author results (default output/impact)")
	impactCmd.Flags().Int("max-publications", 0, "maximum publications per author (default 300)")
	impactCmd.Flags().Duration("paper-delay", 0, "pause between consecutive papers (default 2s)")
	impactCmd.Flags().String("provider", "", "publication listing provider: openalex or file")
	impactCmd.Flags().String("profile-file", "", "YAML listing read by the file provider")

	viper.BindPFlag("impact.output_dir", impactCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("impact.max_publications", impactCmd.Flags().Lookup("max-publications"))
	viper.BindPFlag("impact.paper_delay", impactCmd.Flags().Lookup("paper-delay"))
	viper.BindPFlag("impact.profile.provider", impactCmd.Flags().Lookup("provider"))
	viper.BindPFlag("impact.profile.file", impactCmd.Flags().Lookup("profile-file"))

	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := rt.cfg.Impact
	email := rt.cfg.HTTP.ContactEmail
	logger := rt.logger
	out := cmd.OutOrStdout()

	authors := cfg.Authors
	if flags, _ := cmd.Flags().GetStringArray("author"); len(flags) > 0 {
		authors = make([]types.AuthorSpec, 0, len(flags))
		for _, f := range flags {
			a, err := config.ParseAuthor(f)
			if err != nil {
				return err
			}
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		return fmt.Errorf("no authors configured; set impact.authors or pass --author Name=ID")
	}

	provider, err := profile.New(cfg.Profile, rt.client, email, logger)
	if err != nil {
		return err
	}

	misses := &attention.MissLog{}
	pipeline := &impact.Pipeline{
		Provider: provider,
		Resolver: &identify.Resolver{
			Client:  rt.client,
			Logger:  logger,
			Email:   email,
			NCBIKey: cfg.NCBIAPIKey,
		},
		Attention: &attention.Fetcher{
			Client:  rt.client,
			Logger:  logger,
			Metrics: rt.metrics,
			APIKey:  cfg.AltmetricAPIKey,
			Misses:  misses,
		},
		OpenAccess: &openaccess.Cascade{
			Stages: openaccess.DefaultStages(openaccess.Options{
				Client:           rt.client,
				Logger:           logger,
				Email:            email,
				OpenAccessConfig: cfg.OpenAccess,
			}),
			Logger:  logger,
			Metrics: rt.metrics,
		},
		Classify:        classify.NewConfig(cfg.Keywords, cfg.OpenAccess.PreprintSources),
		Misses:          misses,
		MaxPublications: cfg.MaxPublications,
		SinceYear:       cfg.SinceYear,
		PaperDelay:      cfg.PaperDelay,
		Logger:          logger,
		Metrics:         rt.metrics,
		Out:             out,
	}

	failed := 0
	for _, author := range authors {
		fmt.Fprintf(out, "Retrieving data for %s...\n", author.Name)
		report, err := pipeline.Run(ctx, author)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Str("author", author.Name).Msg("author run failed")
			fmt.Fprintf(out, "Could not retrieve profile for %s\n", author.Name)
			failed++
			continue
		}

		dir, err := report.Write(cfg.OutputDir)
		if err != nil {
			return err
		}
		if len(report.Records) > 0 {
			fmt.Fprintf(out, "Finished for %s: %d papers saved to %s\n", author.Name, len(report.Records), dir)
		}
		if len(report.Misses) > 0 {
			fmt.Fprintf(out, "%d papers had no Altmetric record. Saved to %s\n", len(report.Misses), dir)
		}
	}

	fmt.Fprintln(out, "All authors processed.")
	if failed > 0 {
		return fmt.Errorf("%d of %d author(s) failed", failed, len(authors))
	}
	return nil
}
