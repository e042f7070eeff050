// Package preflight evaluates environment requirements before a conversion
// runs: collaborator binaries on PATH, trainer checkout contents, and
// workspace-root access.
package preflight
