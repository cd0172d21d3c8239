package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "disklog",
		Short:         "Configure and exercise the on-disk logging layer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.BoolVar(&ctx.enabledFlag, flagEnabled, false, "Enable logging to the log file")
	flags.StringVar(&ctx.logFileFlag, flagLogFile, "", "Append records to this file")
	flags.StringVar(&ctx.logLevelFlag, flagLogLevel, "", "Filter directives, e.g. \"info,sink=debug\"")
	flags.StringVar(&ctx.spanEventsFlag, flagSpanEvents, "", "Span events to record (new,enter,exit,close,active,full,none)")

	rootCmd.AddCommand(newEmitCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newTailCommand(ctx))

	return rootCmd
}
