// Package cmd implements the trialfinder command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/jjenkins/trialfinder/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	cfg    *config.Config
	logger zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "trialfinder",
		Short: "Search jRCT and ClinicalTrials.gov with Japanese terms",
		Long: `trialfinder searches the Japan Registry of Clinical Trials with Japanese
terms, translates the terms to English and searches ClinicalTrials.gov.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
}

// initConfig loads and validates configuration. A missing translation
// credential stops the program before any request is made.
func initConfig() error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}

	loaded, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	logger = config.NewLogger(cfg)
	return nil
}
