// Package config loads, layers, and normalizes disklog configuration data.
//
// The Logging section carries four optional fields (enabled, log_file,
// log_level, span_events). Every field is a pointer so an unset value stays
// distinguishable from an explicit false or empty one. Layers are combined
// with Merge: repository defaults, then the TOML file, then DISKLOG_*
// environment overrides, then whatever the host passes on its command line.
//
// Nothing here opens log files or parses filter directives; problems with
// those surface when the logging package builds the sink and filter.
package config
