// Package trainer wraps the external training/export procedure that consumes
// a dataset directory plus hyperparameters and leaves an exported artifact in
// the output directory.
package trainer
