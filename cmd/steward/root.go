package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/steward/internal/app"
)

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:           "steward",
		Short:         "Terminal console for the admin backend's list screens",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file path (optional)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "Preferences file path (optional)")
	cmd.Flags().IntVar(&opts.PollEvery, "poll", 0, "Refresh interval in seconds (optional)")

	cmd.AddCommand(newExportCmd())
	return cmd
}
