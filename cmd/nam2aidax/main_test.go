package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nam2aidax/internal/history"
	"nam2aidax/internal/services"
	"nam2aidax/internal/testsupport"
)

func TestExitCodeFor(t *testing.T) {
	if code := exitCodeFor(nil); code != exitSuccess {
		t.Fatalf("nil error = %d", code)
	}
	usage := services.Wrap(services.ErrInvalidInput, services.StageValidating, "check profile", "missing", nil)
	if code := exitCodeFor(usage); code != exitUsage {
		t.Fatalf("user error = %d", code)
	}
	failure := services.Wrap(services.ErrExecution, services.StageTraining, "run", "", errors.New("boom"))
	if code := exitCodeFor(failure); code != exitFailure {
		t.Fatalf("pipeline error = %d", code)
	}
}

func TestFormatErrorIncludesStage(t *testing.T) {
	err := services.Wrap(services.ErrExecution, services.StageReamping, "run collaborator", "", errors.New("boom"))
	msg := formatError(err)
	if !strings.Contains(msg, services.StageReamping) {
		t.Fatalf("message lacks failing stage: %q", msg)
	}
}

type cliFixture struct {
	dir         string
	configPath  string
	workRoot    string
	dataDir     string
	trainerDir  string
	profile     string
	stimulus    string
	destination string
}

// newCLIFixture builds a config file plus shell-script stand-ins for the
// re-amp binary and the trainer wrapper.
func newCLIFixture(t *testing.T, reampScript, wrapperScript string) cliFixture {
	t.Helper()

	dir := t.TempDir()
	f := cliFixture{
		dir:         dir,
		configPath:  filepath.Join(dir, "config.toml"),
		workRoot:    filepath.Join(dir, "work"),
		dataDir:     filepath.Join(dir, "state"),
		trainerDir:  filepath.Join(dir, "trainer"),
		profile:     filepath.Join(dir, "amp.nam"),
		stimulus:    filepath.Join(dir, "di.wav"),
		destination: filepath.Join(dir, "amp.aidax"),
	}

	if err := os.MkdirAll(f.trainerDir, 0o755); err != nil {
		t.Fatal(err)
	}
	reampPath := filepath.Join(dir, "fake-reamp")
	if err := os.WriteFile(reampPath, []byte(reampScript), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.trainerDir, "wrapper.sh"), []byte(wrapperScript), 0o755); err != nil {
		t.Fatal(err)
	}

	testsupport.WriteFile(t, f.profile, []byte("nam-profile"))
	testsupport.WriteWav(t, f.stimulus, 48000, 1)

	cfg := fmt.Sprintf(`[paths]
workspace_root = %q
data_dir = %q

[tools]
reamp_binary = %q
python_binary = "/bin/sh"
trainer_script = "wrapper.sh"

[training]
epochs = 3
model_type = "Light"

[logging]
level = "error"
`, f.workRoot, f.dataDir, reampPath)
	testsupport.WriteFile(t, f.configPath, []byte(cfg))

	return f
}

const copyReampScript = `#!/bin/sh
cp "$2" "$3"
`

const failReampScript = `#!/bin/sh
echo "render blew up" >&2
exit 1
`

const writeArtifactWrapper = `#!/bin/sh
out=""
while [ "$#" -gt 0 ]; do
  case "$1" in
    --out-dir) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
printf 'aidax-model' > "$out/model.aidax"
`

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), err
}

func convertArgs(f cliFixture) []string {
	return []string{
		"-c", f.configPath,
		"--nam", f.profile,
		"--di", f.stimulus,
		"--trainer", f.trainerDir,
		"--out", f.destination,
	}
}

func TestConvertSuccess(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	out, err := executeCommand(t, convertArgs(f)...)
	if err != nil {
		t.Fatalf("convert failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, f.destination) {
		t.Fatalf("destination not printed: %q", out)
	}

	content, err := os.ReadFile(f.destination)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if string(content) != "aidax-model" {
		t.Fatalf("artifact content = %q", content)
	}

	entries, err := os.ReadDir(f.workRoot)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "run-") {
			t.Fatalf("workspace left behind: %s", entry.Name())
		}
	}

	assertHistoryStatus(t, f, history.StatusSucceeded, "")
}

func TestConvertMissingProfileIsUsageError(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	args := []string{
		"-c", f.configPath,
		"--di", f.stimulus,
		"--trainer", f.trainerDir,
		"--out", f.destination,
	}
	_, err := executeCommand(t, args...)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if exitCodeFor(err) != exitUsage {
		t.Fatalf("exit code = %d for %v", exitCodeFor(err), err)
	}
}

func TestConvertZeroEpochsIsUsageError(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	args := append(convertArgs(f), "--epochs", "0")
	_, err := executeCommand(t, args...)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if exitCodeFor(err) != exitUsage {
		t.Fatalf("exit code = %d for %v", exitCodeFor(err), err)
	}
	if _, statErr := os.Stat(f.destination); !os.IsNotExist(statErr) {
		t.Fatalf("artifact produced despite invalid epochs: %v", statErr)
	}
}

func TestConvertInvalidInputLeavesNoTraces(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	args := []string{
		"-c", f.configPath,
		"--nam", filepath.Join(f.dir, "does-not-exist.nam"),
		"--di", f.stimulus,
		"--trainer", f.trainerDir,
		"--out", f.destination,
	}
	_, err := executeCommand(t, args...)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if exitCodeFor(err) != exitUsage {
		t.Fatalf("exit code = %d for %v", exitCodeFor(err), err)
	}

	if _, statErr := os.Stat(f.workRoot); !os.IsNotExist(statErr) {
		t.Fatalf("workspace root created on invalid input: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(f.dataDir, "history.db")); !os.IsNotExist(statErr) {
		t.Fatalf("history database written on invalid input: %v", statErr)
	}
}

func TestRunPrintsUsageOnInvalidInput(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	var stderr bytes.Buffer
	args := []string{
		"-c", f.configPath,
		"--di", f.stimulus,
		"--trainer", f.trainerDir,
		"--out", f.destination,
	}
	if code := run(args, &stderr); code != exitUsage {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
}

func TestRunPrintsUsageOnUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"--no-such-flag"}, &stderr); code != exitUsage {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
}

func TestRunOmitsUsageOnPipelineFailure(t *testing.T) {
	f := newCLIFixture(t, failReampScript, writeArtifactWrapper)

	var stderr bytes.Buffer
	if code := run(convertArgs(f), &stderr); code != exitFailure {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr.String())
	}
	if strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("usage printed for runtime failure: %q", stderr.String())
	}
}

func TestConvertUnknownFlagIsUsageError(t *testing.T) {
	_, err := executeCommand(t, "--no-such-flag")
	if err == nil {
		t.Fatal("expected flag error")
	}
	if exitCodeFor(err) != exitUsage {
		t.Fatalf("exit code = %d for %v", exitCodeFor(err), err)
	}
}

func TestConvertInvalidModelTypeIsUsageError(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	args := append(convertArgs(f), "--model-type", "Enormous")
	_, err := executeCommand(t, args...)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if exitCodeFor(err) != exitUsage {
		t.Fatalf("exit code = %d for %v", exitCodeFor(err), err)
	}
}

func TestConvertReampFailure(t *testing.T) {
	f := newCLIFixture(t, failReampScript, writeArtifactWrapper)

	_, err := executeCommand(t, convertArgs(f)...)
	if err == nil {
		t.Fatal("expected reamp failure")
	}
	if exitCodeFor(err) != exitFailure {
		t.Fatalf("exit code = %d for %v", exitCodeFor(err), err)
	}
	if stage, ok := services.StageOf(err); !ok || stage != services.StageReamping {
		t.Fatalf("stage = %q, %v", stage, ok)
	}

	assertHistoryStatus(t, f, history.StatusFailed, services.StageReamping)
}

func assertHistoryStatus(t *testing.T, f cliFixture, status, failureStage string) {
	t.Helper()

	store, err := history.Open(filepath.Join(f.dataDir, "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	records, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Status != status {
		t.Fatalf("status = %q, want %q", records[0].Status, status)
	}
	if records[0].FailureStage != failureStage {
		t.Fatalf("failure stage = %q, want %q", records[0].FailureStage, failureStage)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "-p", target)
	if err != nil {
		t.Fatalf("config init: %v\noutput: %s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "-p", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	out, err := executeCommand(t, "history", "-c", f.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet") {
		t.Fatalf("output = %q", out)
	}
}

func TestCleanRemovesStaleWorkspace(t *testing.T) {
	f := newCLIFixture(t, copyReampScript, writeArtifactWrapper)

	stale := filepath.Join(f.workRoot, "run-stale")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "clean", "-c", f.configPath, "--max-age", "0")
	if err != nil {
		t.Fatalf("clean: %v\noutput: %s", err, out)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale workspace survived: %v", err)
	}
}
