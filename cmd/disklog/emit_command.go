package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"disklog/internal/logging"
)

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var level string
	var component string
	var spanName string

	cmd := &cobra.Command{
		Use:   "emit [message...]",
		Short: "Assemble the logger and write one record inside a span",
		RunE: func(cmd *cobra.Command, args []string) error {
			recordLevel, err := parseRecordLevel(level)
			if err != nil {
				return err
			}
			cfg, _, _, err := ctx.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, effective := logging.Assemble(cfg.Logging, cmd.ErrOrStderr())
			defer logger.Close()

			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				message = "disklog emit"
			}

			log := logger.Slog()
			var spanAttrs []logging.Attr
			if component != "" {
				log = logging.NewComponentLogger(log, component)
				spanAttrs = append(spanAttrs, logging.String(logging.FieldComponent, component))
			}

			_, span := logger.StartSpan(cmd.Context(), spanName, spanAttrs...)
			span.Run(func(spanCtx context.Context) {
				log.Log(spanCtx, recordLevel, message)
			})
			span.End()

			if err := logger.Close(); err != nil {
				return fmt.Errorf("close log file: %w", err)
			}

			out := cmd.OutOrStdout()
			if logger.Active() {
				fmt.Fprintf(out, "Logging %s into %s (filter %s, span events %s)\n",
					logger.State(), logger.LogFile(), logger.Filter(), logger.SpanEvents())
			} else {
				fmt.Fprintf(out, "Logging %s (enabled=%t)\n", logger.State(), effective.IsEnabled())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "info", "Record level (trace, debug, info, warn, error)")
	cmd.Flags().StringVar(&component, "component", "", "Component the record targets")
	cmd.Flags().StringVar(&spanName, "span", "emit", "Name of the span wrapping the record")
	return cmd
}

func parseRecordLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return logging.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.New("--level must be one of trace, debug, info, warn, error")
	}
}
