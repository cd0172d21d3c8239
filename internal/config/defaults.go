package config

const (
	defaultLogLevel = "info"
)

// Default returns a Config populated with repository defaults. Only the
// log level is preset; enabled, log_file and span_events stay unset so
// later layers decide them.
func Default() Config {
	return Config{
		Logging: Logging{
			LogLevel: Ptr(defaultLogLevel),
		},
	}
}
