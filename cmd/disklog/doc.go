// Package main hosts the disklog CLI, a small host process for the on-disk
// logging layer.
//
// The root command resolves configuration in layers (defaults, TOML file,
// DISKLOG_* environment, then the logging flags given on the command line)
// and subcommands either inspect that configuration or assemble a logger
// and write records through it. tail reads the log file back.
package main
