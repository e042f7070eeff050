package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"nam2aidax/internal/fileutil"
	"nam2aidax/internal/logging"
	"nam2aidax/internal/services"
)

// DefaultExtension is the exported artifact extension the trainer leaves in
// the output area.
const DefaultExtension = ".aidax"

// Collector locates the trained artifact and copies it to its destination.
type Collector struct {
	logger *slog.Logger
}

// New constructs a collector. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Collector{logger: logging.NewComponentLogger(logger, "artifact")}
}

// Collect scans outputDir (shallow, never recursive, so intermediate files
// nested by the trainer are not matched) for files with the given extension
// and copies the selected match to destination, overwriting any existing
// file there. Zero matches fail with a no-artifact error. Multiple matches
// select the most recently modified file deterministically and emit a
// warning, since directory-listing order carries no meaning.
func (c *Collector) Collect(outputDir, extension, destination string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", services.Wrap(services.ErrNoArtifact, services.StageCollecting, "scan output area", outputDir, err)
	}

	type candidate struct {
		path    string
		modTime int64
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(outputDir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrNoArtifact, services.StageCollecting, "scan output area",
			fmt.Sprintf("no %s files in %s", extension, outputDir), nil)
	}

	selected := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.modTime > selected.modTime {
			selected = cand
		}
	}
	if len(candidates) > 1 {
		c.logger.Warn("ambiguous artifact selection, picking most recently modified",
			logging.Int("candidates", len(candidates)),
			logging.String("selected", selected.path),
		)
	}

	if err := fileutil.CopyFileVerified(selected.path, destination); err != nil {
		return "", services.Wrap(services.ErrStaging, services.StageCollecting, "copy artifact",
			fmt.Sprintf("%s -> %s", selected.path, destination), err)
	}

	c.logger.Info("artifact collected",
		logging.String("source", selected.path),
		logging.String("destination", destination),
	)
	return destination, nil
}
