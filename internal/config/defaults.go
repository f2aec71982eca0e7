package config

const (
	defaultWorkDir  = "~/.local/share/anchor/work"
	defaultCacheDir = "~/.local/share/anchor/cache"
	defaultLogDir   = "~/.local/share/anchor/logs"

	defaultConfidenceFloor  = 0.55
	defaultOutlierTolerance = 3.5
	defaultDriftWindow      = 15
	defaultMinAnchors       = 8
	defaultMinGapMS         = 50
	defaultMinDurationMS    = 600
	defaultWorkers          = 0

	defaultWhisperXModel       = "large-v3-turbo"
	defaultWhisperXDevice      = "cpu"
	defaultWhisperXComputeType = "int8"
	defaultWhisperXBatchSize   = 8

	defaultTranslationBaseURL          = "https://api.openai.com/v1"
	defaultTranslationModel            = "gpt-4o-mini"
	defaultTranslationRequestsPerMin   = 30
	defaultTranslationOverlapThreshold = 0.2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Engine: Engine{
			ConfidenceFloor:  defaultConfidenceFloor,
			OutlierTolerance: defaultOutlierTolerance,
			DriftWindow:      defaultDriftWindow,
			MinAnchors:       defaultMinAnchors,
			MinGapMS:         defaultMinGapMS,
			MinDurationMS:    defaultMinDurationMS,
			Workers:          defaultWorkers,
		},
		WhisperX: WhisperX{
			Model:       defaultWhisperXModel,
			Device:      defaultWhisperXDevice,
			ComputeType: defaultWhisperXComputeType,
			BatchSize:   defaultWhisperXBatchSize,
		},
		Translation: Translation{
			BaseURL:           defaultTranslationBaseURL,
			Model:             defaultTranslationModel,
			RequestsPerMinute: defaultTranslationRequestsPerMin,
			OverlapThreshold:  defaultTranslationOverlapThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
