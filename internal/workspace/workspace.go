package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"nam2aidax/internal/fileutil"
)

// Canonical file names inside a workspace. The trainer collaborator depends
// on the dataset pair names; the rest keep staged inputs unambiguous.
const (
	ProfileName       = "profile.nam"
	StimulusName      = "stimulus.wav"
	RenderedName      = "rendered.wav"
	DatasetInputName  = "input.wav"
	DatasetOutputName = "output.wav"

	stagingDirName = "staging"
	datasetDirName = "dataset"
	outputDirName  = "output"
	lockFileName   = ".lock"
)

// Workspace is an exclusively owned scratch directory tree for one pipeline
// run. It is created by Manager.Acquire and torn down by Release; the two
// must pair exactly once on every code path.
type Workspace struct {
	Root string

	lock     *flock.Flock
	released bool
}

// StagingDir holds canonical copies of the caller inputs and the rendered
// reference.
func (w *Workspace) StagingDir() string { return filepath.Join(w.Root, stagingDirName) }

// DatasetDir holds the input/output wav pair the trainer consumes.
func (w *Workspace) DatasetDir() string { return filepath.Join(w.Root, datasetDirName) }

// OutputDir is where the trainer/exporter leaves its artifact.
func (w *Workspace) OutputDir() string { return filepath.Join(w.Root, outputDirName) }

// StagingPath returns the canonical location for name inside the staging area.
func (w *Workspace) StagingPath(name string) string {
	return filepath.Join(w.StagingDir(), name)
}

// DatasetPath returns the canonical location for name inside the dataset area.
func (w *Workspace) DatasetPath(name string) string {
	return filepath.Join(w.DatasetDir(), name)
}

// Stage copies a caller-supplied file into the staging area under the given
// canonical name and returns the staged path.
func (w *Workspace) Stage(src, canonicalName string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", errors.New("source path required")
	}
	if !fileutil.IsRegularFile(src) {
		return "", fmt.Errorf("source %s missing or not a regular file", src)
	}
	dst := w.StagingPath(canonicalName)
	if err := fileutil.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("stage %s as %s: %w", src, canonicalName, err)
	}
	return dst, nil
}

// Release drops the workspace lock and recursively removes the tree. It is
// idempotent so a deferred call stays safe alongside explicit cleanup.
func (w *Workspace) Release() error {
	if w == nil || w.released {
		return nil
	}
	w.released = true

	if w.lock != nil {
		_ = w.lock.Unlock()
	}
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.Root, err)
	}
	return nil
}

// Manager creates workspaces under a fixed root directory.
type Manager struct {
	root string
}

// NewManager returns a manager rooted at root.
func NewManager(root string) (*Manager, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("workspace root required")
	}
	return &Manager{root: root}, nil
}

// Root returns the parent directory new workspaces are created under.
func (m *Manager) Root() string { return m.root }

// Acquire creates a fresh, uniquely named workspace tree with staging,
// dataset, and output subareas and takes its advisory lock. The lock lets the
// stale sweeper distinguish live runs from leftovers.
func (m *Manager) Acquire() (*Workspace, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root %s: %w", m.root, err)
	}

	root := filepath.Join(m.root, "run-"+uuid.NewString())
	ws := &Workspace{Root: root}
	for _, dir := range []string{ws.StagingDir(), ws.DatasetDir(), ws.OutputDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = os.RemoveAll(root)
			return nil, fmt.Errorf("create workspace area %s: %w", dir, err)
		}
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		_ = os.RemoveAll(root)
		if err == nil {
			err = errors.New("lock already held")
		}
		return nil, fmt.Errorf("lock workspace %s: %w", root, err)
	}
	ws.lock = lock

	return ws, nil
}
