package config

import (
	"github.com/sdejongh/semdiff/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Tolerances  Tolerances        `yaml:"tolerances"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Tolerances holds the per-comparator thresholds. The struct is built once
// per run and passed by reference into every comparator invocation; no
// option implies another.
type Tolerances struct {
	// JSONIgnoreObjectKeyOrder makes object key declaration order
	// insignificant. When false, a pure reorder of keys is itself a
	// reported difference.
	JSONIgnoreObjectKeyOrder bool `yaml:"json_ignore_object_key_order"`

	// ImageMaxDistance is the max OkLab+alpha Euclidean distance for two
	// pixels to count as equal.
	ImageMaxDistance float64 `yaml:"image_max_distance"`

	// ImageMaxDiffRatio is the max ratio of differing pixels for two
	// images to verdict Equal. The boundary is inclusive.
	ImageMaxDiffRatio float64 `yaml:"image_max_diff_ratio"`

	// AudioShiftToleranceSeconds bounds the alignment search window.
	// Candidate shifts are searched in [-window, +window]; ties resolve
	// to the smallest absolute shift, negative before positive.
	AudioShiftToleranceSeconds float64 `yaml:"audio_shift_tolerance_seconds"`

	// AudioLUFSToleranceDB is the max integrated loudness delta in dB.
	AudioLUFSToleranceDB float64 `yaml:"audio_lufs_tolerance_db"`

	// AudioSpectralTolerance is the max per-bin log-magnitude delta for a
	// spectrogram bin to count as equal.
	AudioSpectralTolerance float64 `yaml:"audio_spectral_tolerance"`

	// AudioSpectrogramDiffRateTolerance is the max ratio of differing
	// spectrogram bins for the spectral stage to pass. The spectrogram
	// uses a 2048-sample Hann window with a 1024-sample hop.
	AudioSpectrogramDiffRateTolerance float64 `yaml:"audio_spectrogram_diff_rate_tolerance"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	// MaxWorkers bounds concurrent file comparisons
	MaxWorkers int `yaml:"max_workers"`

	// MaxFileSizeBytes bounds how large a file may be before comparison
	// is refused with a resource error. Zero disables the limit.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`    // "summary" or "json"
	JSONPath string `yaml:"json_path"` // write JSON report here (empty = off)
	HTMLPath string `yaml:"html_path"` // write HTML report here (empty = off)
	Progress bool   `yaml:"progress"`  // show a progress bar
	Quiet    bool   `yaml:"quiet"`     // suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Tolerances: Tolerances{
			JSONIgnoreObjectKeyOrder:          false,
			ImageMaxDistance:                  0.02,
			ImageMaxDiffRatio:                 0.0,
			AudioShiftToleranceSeconds:        0.1,
			AudioLUFSToleranceDB:              0.5,
			AudioSpectralTolerance:            0.5,
			AudioSpectrogramDiffRateTolerance: 0.0,
		},
		Performance: PerformanceConfig{
			MaxWorkers:       5,
			MaxFileSizeBytes: 256 * 1024 * 1024,
		},
		Output: OutputConfig{
			Format:   "summary",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.MaxFileSizeBytes < 0 {
		return &models.ValidationError{
			Field:   "performance.max_file_size_bytes",
			Message: "must not be negative",
		}
	}

	if c.Tolerances.ImageMaxDistance < 0 {
		return &models.ValidationError{
			Field:   "tolerances.image_max_distance",
			Message: "must not be negative",
		}
	}
	if c.Tolerances.ImageMaxDiffRatio < 0 || c.Tolerances.ImageMaxDiffRatio > 1 {
		return &models.ValidationError{
			Field:   "tolerances.image_max_diff_ratio",
			Message: "must be between 0 and 1",
		}
	}
	if c.Tolerances.AudioShiftToleranceSeconds < 0 {
		return &models.ValidationError{
			Field:   "tolerances.audio_shift_tolerance_seconds",
			Message: "must not be negative",
		}
	}
	if c.Tolerances.AudioLUFSToleranceDB < 0 {
		return &models.ValidationError{
			Field:   "tolerances.audio_lufs_tolerance_db",
			Message: "must not be negative",
		}
	}
	if c.Tolerances.AudioSpectralTolerance < 0 {
		return &models.ValidationError{
			Field:   "tolerances.audio_spectral_tolerance",
			Message: "must not be negative",
		}
	}
	if c.Tolerances.AudioSpectrogramDiffRateTolerance < 0 || c.Tolerances.AudioSpectrogramDiffRateTolerance > 1 {
		return &models.ValidationError{
			Field:   "tolerances.audio_spectrogram_diff_rate_tolerance",
			Message: "must be between 0 and 1",
		}
	}

	validFormats := map[string]bool{"summary": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'summary' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
