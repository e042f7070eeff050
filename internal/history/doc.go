// Package history persists conversion run outcomes to a local SQLite
// database so past runs can be listed from the CLI.
package history
