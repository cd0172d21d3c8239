// Package logging builds the on-disk structured logging layer for a host
// process.
//
// Assemble turns an effective config.Logging into a Logger: a slog.Handler
// that is either Active (records appended to a buffered, lock-guarded log
// file) or Disabled (records discarded), always wrapped by a per-component
// severity Filter. Sink failures never abort the host; they produce one
// diagnostic line and a Disabled logger. Spans started from the Logger emit
// lifecycle records (new, enter, exit, close) according to the configured
// span event set.
//
// Registering the result globally (slog.SetDefault) is left to the host.
package logging
