package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"nam2aidax/internal/config"
)

// Result captures one preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// trainerScripts are the entry points the trainer checkout must provide for
// training and export.
var trainerScripts = []string{"dist_model_recnet.py", "modelToKeras.py"}

// Run evaluates every environment requirement for a conversion: collaborator
// binaries, workspace-root access, and (when given) the trainer checkout
// contents.
func Run(cfg *config.Config, trainerDir string) []Result {
	results := CheckSystemDeps(cfg)
	results = append(results, CheckDirectoryWritable("Workspace root", cfg.Paths.WorkspaceRoot))
	if trainerDir != "" {
		results = append(results, CheckTrainerCheckout(trainerDir)...)
	}
	return results
}

// CheckSystemDeps verifies the external binaries the pipeline shells out to.
func CheckSystemDeps(cfg *config.Config) []Result {
	return []Result{
		checkBinary("Re-amp", cfg.Tools.ReampBinary, "required to render the wet reference"),
		checkBinary("Python", cfg.Tools.PythonBinary, "required to launch the trainer wrapper"),
	}
}

func checkBinary(name, command, description string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: fmt.Sprintf("command not configured (%s)", description)}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found (%s)", command, description)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDirectoryWritable verifies the directory exists (or can be created)
// and is readable, writable, and traversable.
func CheckDirectoryWritable(name, path string) Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTrainerCheckout verifies the trainer checkout provides the scripts the
// wrapper depends on.
func CheckTrainerCheckout(trainerDir string) []Result {
	info, err := os.Stat(trainerDir)
	if err != nil || !info.IsDir() {
		return []Result{{Name: "Trainer checkout", Detail: fmt.Sprintf("%s (error: not a directory)", trainerDir)}}
	}

	results := []Result{{Name: "Trainer checkout", Passed: true, Detail: trainerDir}}
	for _, script := range trainerScripts {
		path := filepath.Join(trainerDir, script)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			results = append(results, Result{Name: script, Passed: true, Detail: path})
		} else {
			results = append(results, Result{Name: script, Detail: fmt.Sprintf("missing from %s", trainerDir)})
		}
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
