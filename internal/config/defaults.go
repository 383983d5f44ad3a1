package config

const (
	defaultLogDir           = "~/.local/share/takeoutfix/logs"
	defaultDetectorBinary   = "file"
	defaultEmbedderBinary   = "exiftool"
	defaultExcludeSubstring = "edited"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Detector: Detector{
			Binary: defaultDetectorBinary,
		},
		Extensions: Extensions{
			Enabled: true,
		},
		Embedder: Embedder{
			Enabled:          true,
			Binary:           defaultEmbedderBinary,
			ExcludeSubstring: defaultExcludeSubstring,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
