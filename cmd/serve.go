package main

import (
	"fmt"

	"github.com/meghashyamc/whereis/api"
	"github.com/meghashyamc/whereis/config"
	"github.com/meghashyamc/whereis/logger"
	"github.com/spf13/cobra"
)

const (
	logMaxSizeMB  = 50
	logMaxBackups = 3
	logMaxAgeDays = 28
)

func newServeCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Long: `Run the HTTP search API until interrupted.

Settings are read from config/config.<env>.yaml, with environment variables
(PORT, KVDB_PATH, LOG_LEVEL, LOG_FILE, MAX_RESULTS) taking precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log, err := logger.NewWithConfig(logger.Config{
				Level:      cfg.GetLogLevel(),
				FilePath:   cfg.GetLogFile(),
				MaxSizeMB:  logMaxSizeMB,
				MaxBackups: logMaxBackups,
				MaxAgeDays: logMaxAgeDays,
			})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			return api.Run(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "Config environment to load (default $ENV or local)")

	return cmd
}
