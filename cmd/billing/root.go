package main

import (
	"github.com/hsdfat8/telbill/internal/config"
	"github.com/hsdfat8/telbill/internal/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Telecom billing service",
		Long: `billing runs the telecom billing API: customer accounts, call charges,
payments through card, wallet or bank transfer, plan quotes, network devices
and the phone catalog.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./config.yaml)")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, ".env files to load before reading config")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newDemoCmd())

	return cmd
}

// loadConfig loads .env files and the config, then applies the log level
func (o *rootOptions) loadConfig() (*config.Config, error) {
	config.LoadEnv(o.envFiles...)

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	logger.SetLevel(cfg.Logging.Level)
	return cfg, nil
}
