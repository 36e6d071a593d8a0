// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-harvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/internal/logging"
	"github.com/pdiddy/pubmed-harvest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds NCBI credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// closeLog flushes the log file opened during setup, if any.
var closeLog = func() error { return nil }

// rootCmd is the base command for the pubmed-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-harvest",
	Short: "Acquire and assemble a PubMed QA dataset",
	Long: `pubmed-harvest builds a retrieval-augmented QA dataset from a BioASQ
question corpus. It collects every referenced PubMed identifier, fetches
article metadata from NCBI E-utilities under the service rate limits with
resumable incremental persistence, and assembles the records and questions
into line-delimited dataset files.

Each stage is a subcommand: collect, fetch, retry, assemble, and status.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s

		level, _ := cmd.Flags().GetString("log-level")
		logFile, _ := cmd.Flags().GetString("log-file")
		_, closer, err := logging.Setup(logging.Config{Level: level, File: logFile})
		if err != nil {
			return err
		}
		closeLog = closer
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-harvest.yaml or ~/.config/pubmed-harvest/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base directory for corpus files, records, and the ledger")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.SetDefault("data_dir", "data")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-harvest"))
		}
	}

	viper.SetEnvPrefix("PUBMED_HARVEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dataDir resolves the data directory from flag, env, or config file.
func dataDir() string {
	return viper.GetString("data_dir")
}

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}
