// Package pipeline implements the conversion orchestrator: a linear,
// one-shot state machine that validates inputs, prepares an exclusive
// workspace, drives the re-amp and trainer collaborators through their file
// contracts, collects the exported artifact, and releases the workspace on
// every exit path.
package pipeline
