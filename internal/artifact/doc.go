// Package artifact discovers the exported model in the workspace output area
// and copies it byte-for-byte to the user destination.
package artifact
