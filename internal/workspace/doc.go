// Package workspace owns the per-run scratch directory tree: acquisition
// with a unique name and advisory lock, canonical staging of inputs, and
// guaranteed recursive removal. CleanStale sweeps leftovers from crashed
// runs while the lock protects live ones.
package workspace
