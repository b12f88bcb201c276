package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/codetesla51/kvcache/cache"
	"github.com/codetesla51/kvcache/config"
	"github.com/codetesla51/kvcache/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Execute runs the kvcache command line.
func Execute() error {
	return NewRootCommand(viper.New()).Execute()
}

func NewRootCommand(v *viper.Viper) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "kvcache",
		Short:        "Talk to a key-value store through the kvcache client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config %s: %w", cfgFile, err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "specifies a config file to load")
	configFlags := config.Flags()
	root.PersistentFlags().AddFlagSet(configFlags)
	cobra.CheckErr(config.Bind(v, configFlags))

	root.AddCommand(
		newPingCommand(v),
		newGetCommand(v),
		newSetCommand(v),
		newDelCommand(v),
	)
	return root
}

// withClient loads the configuration, connects and hands the client to fn.
func withClient(ctx context.Context, v *viper.Viper, fn func(c *cache.Client) error) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// single-shot commands have no use for the background monitor
	cfg.HealthInterval = 0
	c, err := cache.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()
	return fn(c)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
