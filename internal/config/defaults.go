package config

const (
	defaultCacheDir              = "~/.cache/dialogdetective"
	defaultLogDir                = "~/.local/share/dialogdetective/logs"
	defaultCatalogBaseURL        = "https://api.tvmaze.com"
	defaultCatalogTTLHours       = 24
	defaultFFmpegBinary          = "ffmpeg"
	defaultWhisperBinary         = "whisper-cli"
	defaultTranscriberTimeout    = 1800
	defaultMatcherBackend        = "gemini"
	defaultMatcherTimeoutSeconds = 300
	defaultMatcherRetryAttempts  = 1
	defaultMaxTranscriptChars    = 24000
	defaultTemplate              = "{show} - S{season:02}E{episode:02} - {title}.{ext}"
	defaultWorkers               = 2
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:  defaultCatalogBaseURL,
			TTLHours: defaultCatalogTTLHours,
		},
		Transcriber: Transcriber{
			FFmpegBinary:   defaultFFmpegBinary,
			WhisperBinary:  defaultWhisperBinary,
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		Matcher: Matcher{
			Backend:            defaultMatcherBackend,
			TimeoutSeconds:     defaultMatcherTimeoutSeconds,
			RetryAttempts:      defaultMatcherRetryAttempts,
			MaxTranscriptChars: defaultMaxTranscriptChars,
		},
		Library: Library{
			Template: defaultTemplate,
		},
		Workers: defaultWorkers,
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
