// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-impact CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-impact/internal/config"
	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/internal/observability"
	"github.com/pdiddy/research-impact/internal/secrets"
	"github.com/pdiddy/research-impact/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// session is what the root command prepares for every subcommand.
type session struct {
	cfg       *types.Config
	logger    zerolog.Logger
	logCloser io.Closer
	metrics   *observability.Metrics
	client    *httputil.Client
}

var rt session

// rootCmd is the base command for the research-impact CLI.
var rootCmd = &cobra.Command{
	Use:   "research-impact",
	Short: "Research impact metrics and funding opportunity collection",
	Long: `research-impact enriches a researcher's publication list with DOI and PMID
identifiers, attention scores, and open-access status, and collects funding
opportunities from NIH RePORTER, Grants.gov, and IDRC.

The impact subcommand writes one directory of tables per author. The funding
subcommands write per-source and combined opportunity tables.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-impact.yaml or ~/.config/research-impact/research-impact.yaml)")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics in text format to this file at exit")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "timeout applied to every HTTP request")

	viper.BindPFlag("metrics_file", rootCmd.PersistentFlags().Lookup("metrics-file"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("research-impact")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "research-impact"))
		}
	}

	config.BindEnv(v)

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

// setup loads secrets and configuration and builds the logger, metrics,
// and HTTP client shared by the subcommands.
func setup(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	bootLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	s, err := secrets.Load(".secrets/", bootLog)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
	}

	cfg, err := config.Load(viper.GetViper(), s)
	if err != nil {
		return err
	}
	logger, closer, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}

	rt.cfg = cfg
	rt.logger = logger.With().Str("command", cmd.Name()).Logger()
	rt.logCloser = closer
	rt.metrics = observability.NewMetrics()
	rt.client = httputil.New(cfg.HTTP, rt.metrics)
	return nil
}

// teardown writes the metrics file and closes the log output.
func teardown(cmd *cobra.Command, args []string) error {
	if rt.cfg == nil {
		return nil
	}
	if rt.cfg.MetricsFile != "" {
		if err := rt.metrics.WriteTextfile(rt.cfg.MetricsFile); err != nil {
			rt.logger.Error().Err(err).Str("path", rt.cfg.MetricsFile).Msg("writing metrics file")
		}
	}
	return rt.logCloser.Close()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
