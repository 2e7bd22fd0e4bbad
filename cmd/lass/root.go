package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool
	var nowFlag string

	ctx := newCommandContext(&configFlag, &jsonFlag, &nowFlag)

	rootCmd := &cobra.Command{
		Use:           "lass",
		Short:         "Radio station schedule assembly",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Write machine-readable JSON")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Treat this RFC 3339 instant as the current time")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDBCommand(ctx))
	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newMetaCommand(ctx))
	rootCmd.AddCommand(newCreditsCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newServiceCommand(ctx))

	return rootCmd
}
