// Package services defines shared utilities consumed by the pipeline stages
// and external collaborator clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (user error vs staging vs execution vs contract violation) and record
//     the failing stage for diagnostics and exit-code mapping.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
