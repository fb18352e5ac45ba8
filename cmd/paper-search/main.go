// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-search CLI and server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/history"
	"github.com/pdiddy/paper-search/internal/provider"
	"github.com/pdiddy/paper-search/internal/secrets"
	"github.com/pdiddy/paper-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the paper-search CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-search",
	Short: "Search research papers across Semantic Scholar, arXiv and DOAJ",
	Long: `paper-search queries academic paper APIs and serves a search page with
autocomplete suggestions and expandable abstracts.

Run "paper-search serve" for the web page and JSON API, or use the search,
suggest and references subcommands directly from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-search.yaml or ~/.config/paper-search/paper-search.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("history-db", filepath.Join(".paper-search", "history.db"), "SQLite search log (empty disables it)")

	_ = viper.BindPFlag("server.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("server.history_db", rootCmd.PersistentFlags().Lookup("history-db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-search"))
		}
	}

	viper.SetEnvPrefix("PAPER_SEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the viper settings and fills provider keys from
// secrets when the config leaves them empty.
func loadConfig() (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg = cfg.WithDefaults()
	if cfg.Providers.SemanticScholarAPIKey == "" {
		cfg.Providers.SemanticScholarAPIKey = loadedSecrets.Get(secrets.SemanticScholarKey)
	}
	if cfg.Providers.DOAJAPIKey == "" {
		cfg.Providers.DOAJAPIKey = loadedSecrets.Get(secrets.DOAJKey)
	}
	return cfg, nil
}

func newLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return log, nil
}

// setup loads configuration and builds the logger and provider registry
// shared by every subcommand.
func setup(observer provider.Observer) (types.AppConfig, *logrus.Logger, *provider.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, nil, err
	}
	log, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, log, provider.NewRegistry(cfg.Providers, log, observer), nil
}

// openHistory opens the configured search log. It returns nil when the
// log is disabled.
func openHistory(cfg types.AppConfig, log logrus.FieldLogger) (*history.Store, error) {
	if cfg.Server.HistoryDB == "" {
		return nil, nil
	}
	return history.Open(cfg.Server.HistoryDB, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
