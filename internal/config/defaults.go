package config

const (
	defaultJobsDir          = "~/.local/share/av1janitor/jobs"
	defaultLogDir           = "~/.local/share/av1janitor/logs"
	defaultHistoryDB        = "~/.local/share/av1janitor/history.db"
	defaultScanInterval     = 60
	defaultMinFileSizeBytes = int64(2) * 1024 * 1024 * 1024
	defaultStabilitySamples = 3
	defaultStabilityDelayMS = 500
	defaultMaxConcurrent    = 1
	defaultEncodeTimeout    = 14400
	defaultMaxStderrLines   = 1000
	defaultExcludedLanguage = "rus"
	defaultPreset           = "medium"
	defaultQualityBelow1080 = 25
	defaultQualityAt1080    = 24
	defaultQualityAt1440    = 23
	defaultSizeGateFactor   = 0.9
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

func defaultMediaExtensions() []string {
	return []string{"mkv", "mp4", "avi"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JobsDir:   defaultJobsDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Scan: Scan{
			IntervalSeconds:  defaultScanInterval,
			MediaExtensions:  defaultMediaExtensions(),
			MinFileSizeBytes: defaultMinFileSizeBytes,
			StabilitySamples: defaultStabilitySamples,
			StabilityDelayMS: defaultStabilityDelayMS,
		},
		Encoding: Encoding{
			MaxConcurrent:        defaultMaxConcurrent,
			EncodeTimeoutSeconds: defaultEncodeTimeout,
			MaxStderrLines:       defaultMaxStderrLines,
			ExcludedLanguage:     defaultExcludedLanguage,
			Preset:               defaultPreset,
		},
		Quality: Quality{
			Below1080p:      defaultQualityBelow1080,
			At1080p:         defaultQualityAt1080,
			At1440pAndAbove: defaultQualityAt1440,
		},
		Postprocess: Postprocess{
			SizeGateFactor: defaultSizeGateFactor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
