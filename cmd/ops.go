package cmd

import (
	"errors"

	"github.com/codetesla51/kvcache/cache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNotAlive = errors.New("store is not reachable")

func newPingCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the store answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), v, func(c *cache.Client) error {
				if !c.IsAlive() {
					printf(cmd.OutOrStdout(), "false\n")
					return errNotAlive
				}
				printf(cmd.OutOrStdout(), "true\n")
				return nil
			})
		},
	}
}

func newGetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY, or (nil)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), v, func(c *cache.Client) error {
				value, ok, err := c.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					printf(cmd.OutOrStdout(), "(nil)\n")
					return nil
				}
				printf(cmd.OutOrStdout(), "%s\n", value)
				return nil
			})
		},
	}
}

func newSetCommand(v *viper.Viper) *cobra.Command {
	var expire int
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY for --expire seconds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), v, func(c *cache.Client) error {
				if err := c.SetSeconds(cmd.Context(), args[0], args[1], expire); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "OK\n")
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&expire, "expire", 60, "seconds until the key expires")
	return cmd
}

func newDelCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY",
		Short: "Remove KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), v, func(c *cache.Client) error {
				if err := c.Del(cmd.Context(), args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "OK\n")
				return nil
			})
		},
	}
}
