package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petasbytes/advisor-relay/internal/config"
)

// app carries what every subcommand needs once flags and environment are resolved.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "relay",
		Short:         "Relationship advisor chat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("db-path", "", "SQLite database path (overrides APP_ENV)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd(a), newMessagesCmd(a), newModelsCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	a.logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		a.logger.Warn("dotenv not loaded", "err", err)
	}

	v, err := config.NewViper()
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		config.KeyLogLevel: "log-level",
		config.KeyDBPath:   "db-path",
		config.KeyAddr:     "addr",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.logger.SetLevel(cfg.LogLevel)
	log.SetDefault(a.logger)

	a.v, a.cfg = v, cfg
	return nil
}
