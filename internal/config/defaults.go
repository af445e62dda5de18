package config

const (
	defaultAPITimeoutSeconds    = 120
	defaultAPIUserAgent         = "subgen/dev"
	defaultOutputDir            = "~/.local/share/subgen/subtitles"
	defaultHistoryPath          = "~/.local/share/subgen/history.db"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			TimeoutSeconds: defaultAPITimeoutSeconds,
			UserAgent:      defaultAPIUserAgent,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Success:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
