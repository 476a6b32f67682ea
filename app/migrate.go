package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/oneid-io/oneid/internal/config"
	"github.com/oneid-io/oneid/internal/daemon"
)

var dumpConfig bool

func init() { //nolint: gochecknoinits
	migrateCmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "Print the effective configuration as TOML")

	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema and seed an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if dumpConfig {
			out, err := config.DumpConfig(&cfg)
			if err != nil {
				return err
			}

			cmd.Print(out)
		}

		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		if err = daemon.Migrate(cmd.Context(), &cfg, db); err != nil {
			return err
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database migrated")

		return nil
	},
}
