// Package config loads, normalizes, and validates anchor configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ANCHOR_TRANSLATION_API_KEY. The Config type centralizes every knob the CLI
// needs: engine tuning, WhisperX invocation, translation credentials, cache
// and log directories.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
