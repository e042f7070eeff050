// Package config loads, normalizes, and validates nam2aidax configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NAM2AIDAX_REAMP. The Config type centralizes every knob the CLI needs:
// collaborator binaries, workspace placement, hyperparameter defaults, and
// log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
