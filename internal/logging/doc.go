// Package logging wires log/slog for the converter: a single-line key=value
// console handler, a JSON handler, attr helpers, and context-derived
// stage/run fields so every record produced during a pipeline run can be
// correlated.
package logging
