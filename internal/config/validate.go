package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEngine() error {
	if c.Engine.ConfidenceFloor < 0 || c.Engine.ConfidenceFloor > 1 {
		return errors.New("engine.confidence_floor must be between 0 and 1")
	}
	if c.Engine.OutlierTolerance <= 0 {
		return errors.New("engine.outlier_tolerance must be positive")
	}
	if c.Engine.DriftWindow < 3 {
		return errors.New("engine.drift_window must be at least 3")
	}
	if c.Engine.MinAnchors < 2 {
		return errors.New("engine.min_anchors must be at least 2")
	}
	if c.Engine.MinGapMS < 0 {
		return errors.New("engine.min_gap_ms must not be negative")
	}
	if c.Engine.MinDurationMS <= 0 {
		return errors.New("engine.min_duration_ms must be positive")
	}
	if c.Engine.Workers < 0 {
		return errors.New("engine.workers must not be negative")
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	switch c.WhisperX.Device {
	case "cpu", "cuda":
		return nil
	default:
		return fmt.Errorf("whisperx.device must be cpu or cuda, got %q", c.WhisperX.Device)
	}
}

func (c *Config) validateTranslation() error {
	if !c.Translation.Enabled {
		return nil
	}
	if c.Translation.APIKey == "" {
		return errors.New("translation.api_key is required when translation.enabled is true (or set ANCHOR_TRANSLATION_API_KEY)")
	}
	if c.Translation.OverlapThreshold < 0 || c.Translation.OverlapThreshold > 1 {
		return errors.New("translation.overlap_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
