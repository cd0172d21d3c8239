package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"disklog/internal/logtail"
)

func newTailCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent records from the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, _, err := ctx.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path := cfg.Logging.LogFileOrEmpty()
			if path == "" {
				return errors.New("no log_file configured")
			}

			out := cmd.OutOrStdout()
			if follow {
				err := logtail.Follow(cmd.Context(), path, lines, func(line string) {
					fmt.Fprintln(out, line)
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			res, err := logtail.Read(cmd.Context(), path, logtail.Options{Offset: -1, Lines: lines})
			if err != nil {
				return err
			}
			for _, line := range res.Lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing records as they are appended")
	return cmd
}
