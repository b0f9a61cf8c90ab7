package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-impact/internal/funding"
)

var fundingCmd = &cobra.Command{
	Use:   "funding",
	Short: "Collect research funding opportunities",
}

var fundingScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the IDRC funding page",
	Long: `Scrape reads the IDRC funding listing and writes one row per opportunity,
marking each Open or Closed from its deadline.`,
	RunE: runFundingScrape,
}

var fundingAggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Collect NIH RePORTER, Grants.gov, and IDRC opportunities",
	Long: `Aggregate fetches NIH RePORTER projects by fiscal year and Grants.gov
opportunities by page with bounded worker pools, scrapes the IDRC listing,
and writes per-source tables plus a combined table deduplicated by title
and source. A source that fails contributes no records.`,
	RunE: runFundingAggregate,
}

func init() {
	fundingCmd.PersistentFlags().String("output-dir", "", "directory for funding tables (default output/funding)")
	viper.BindPFlag("funding.output_dir", fundingCmd.PersistentFlags().Lookup("output-dir"))

	fundingAggregateCmd.Flags().Int("from-year", 0, "first NIH fiscal year (default 2015)")
	fundingAggregateCmd.Flags().Int("to-year", 0, "last NIH fiscal year (default 2024)")
	fundingAggregateCmd.Flags().String("text-search", "", "NIH RePORTER text search (default \"machine learning\")")
	viper.BindPFlag("funding.nih.from_year", fundingAggregateCmd.Flags().Lookup("from-year"))
	viper.BindPFlag("funding.nih.to_year", fundingAggregateCmd.Flags().Lookup("to-year"))
	viper.BindPFlag("funding.nih.text_search", fundingAggregateCmd.Flags().Lookup("text-search"))

	fundingCmd.AddCommand(fundingScrapeCmd, fundingAggregateCmd)
	rootCmd.AddCommand(fundingCmd)
}

func idrcScraper() *funding.IDRCScraper {
	return &funding.IDRCScraper{Client: rt.client, URL: rt.cfg.Funding.IDRC.URL}
}

func runFundingScrape(cmd *cobra.Command, args []string) error {
	cfg := rt.cfg.Funding
	recs, err := idrcScraper().Scrape(cmd.Context())
	if err != nil {
		return fmt.Errorf("scraping IDRC: %w", err)
	}
	rt.metrics.Fetched("idrc", len(recs))

	if err := funding.WriteOpportunities(cfg.OutputDir, funding.ScrapeFile, recs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scraping done: %d opportunities saved to %s\n",
		len(recs), filepath.Join(cfg.OutputDir, funding.ScrapeFile+".csv"))
	return nil
}

func runFundingAggregate(cmd *cobra.Command, args []string) error {
	cfg := rt.cfg.Funding
	agg := &funding.Aggregator{
		NIH: &funding.NIHClient{
			Client:     rt.client,
			Logger:     rt.logger,
			TextSearch: cfg.NIH.TextSearch,
			PageSize:   cfg.NIH.PageSize,
		},
		GrantsGov: &funding.GrantsGovClient{
			Client:             rt.client,
			FundingCategories:  cfg.GrantsGov.FundingCategories,
			FundingInstruments: cfg.GrantsGov.FundingInstruments,
			OppStatuses:        cfg.GrantsGov.OppStatuses,
		},
		IDRC:             idrcScraper(),
		FromYear:         cfg.NIH.FromYear,
		ToYear:           cfg.NIH.ToYear,
		NIHWorkers:       cfg.NIH.Workers,
		GrantsGovWorkers: cfg.GrantsGov.Workers,
		GrantsGovRows:    cfg.GrantsGov.PageSize,
		OutputDir:        cfg.OutputDir,
		Logger:           rt.logger,
		Metrics:          rt.metrics,
		Out:              cmd.OutOrStdout(),
	}
	_, err := agg.Run(cmd.Context())
	return err
}
