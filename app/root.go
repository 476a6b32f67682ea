// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/oneid-io/oneid/internal/config"
	"github.com/oneid-io/oneid/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "oneid",
	Short: "oneid is an identity, membership and permission service",
	Long: `oneid keeps the accounts, groups, departments and permissions of an
organisation and answers login and permission checks for client applications.`,
	Args: cobra.OnlyValidArgs,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		if devMode {
			cfg.DevMode = true
		}

		return logger.Init(cfg.Log)
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
