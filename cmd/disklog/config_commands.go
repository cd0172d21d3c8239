package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"disklog/internal/config"
	"disklog/internal/logging"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective logging configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := ctx.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if asTOML {
				encoded, err := cfg.Encode()
				if err != nil {
					return err
				}
				fmt.Fprint(out, encoded)
				return nil
			}

			source := path
			if !exists {
				source = path + " (not found, defaults used)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprintln(out, renderSettings(
				[]string{"Setting", "Value", "Resolved"},
				configRows(cfg.Logging),
				shouldColorize(out),
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "Print the effective configuration as TOML")
	return cmd
}

func configRows(l config.Logging) [][]string {
	unset := "(unset)"
	rows := make([][]string, 0, 4)

	enabled := unset
	if l.Enabled != nil {
		enabled = fmt.Sprintf("%t", *l.Enabled)
	}
	rows = append(rows, []string{"enabled", enabled, fmt.Sprintf("%t", l.IsEnabled())})

	logFile := unset
	if l.LogFile != nil {
		logFile = *l.LogFile
	}
	rows = append(rows, []string{"log_file", logFile, l.LogFileOrEmpty()})

	level := unset
	if l.LogLevel != nil {
		level = *l.LogLevel
	}
	filter, _ := logging.BuildFilter(l)
	rows = append(rows, []string{"log_level", level, filter.String()})

	spanEvents := unset
	if l.SpanEvents != nil {
		spanEvents = l.SpanEvents.String()
	}
	rows = append(rows, []string{"span_events", spanEvents, l.ResolvedSpanEvents().String()})

	return rows
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report problems that would keep logging from starting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := ctx.loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if _, err := logging.BuildFilter(cfg.Logging); err != nil {
				return fmt.Errorf("invalid logging.log_level: %w", err)
			}
			if cfg.Logging.IsEnabled() {
				fmt.Fprintf(out, "Logging enabled into %s\n", filepath.Clean(cfg.Logging.LogFileOrEmpty()))
			} else {
				fmt.Fprintln(out, "Logging disabled")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
