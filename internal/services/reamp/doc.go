// Package reamp wraps the native re-amping collaborator that maps a captured
// profile plus a stimulus wav to the rendered wet reference.
package reamp
