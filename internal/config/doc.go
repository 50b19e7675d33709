// Package config loads, normalizes, and validates subseg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the LLM
// API key. The Config type centralizes every knob the CLI and pipeline need,
// so checkpoint directories, stage toggles, and service credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
