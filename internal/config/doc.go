// Package config loads, normalizes, and validates ytscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CLARIFAI_BASE_URL and YTSCRIBE_BIND. The Config type centralizes every knob
// the server and CLI need so credentials lookup, the caption fetcher, and the
// model client are configured in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
