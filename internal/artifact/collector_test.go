package artifact

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nam2aidax/internal/logging"
	"nam2aidax/internal/services"
)

func TestCollectSingleArtifact(t *testing.T) {
	outputDir := t.TempDir()
	content := []byte(`{"model":"lstm-16"}`)
	if err := os.WriteFile(filepath.Join(outputDir, "model-lstm.aidax"), content, 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-matching files in the output area are ignored.
	if err := os.WriteFile(filepath.Join(outputDir, "model-lstm.nam"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "result.aidax")
	got, err := New(nil).Collect(outputDir, DefaultExtension, dest)
	if err != nil {
		t.Fatal(err)
	}
	if got != dest {
		t.Fatalf("returned path = %q", got)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("destination not byte-identical: %q", data)
	}
}

func TestCollectZeroMatchesFails(t *testing.T) {
	outputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outputDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(nil).Collect(outputDir, DefaultExtension, filepath.Join(t.TempDir(), "out.aidax"))
	if !errors.Is(err, services.ErrNoArtifact) {
		t.Fatalf("expected ErrNoArtifact, got %v", err)
	}
	if stage, _ := services.StageOf(err); stage != services.StageCollecting {
		t.Fatalf("stage = %q", stage)
	}
}

func TestCollectPicksMostRecentlyModified(t *testing.T) {
	outputDir := t.TempDir()

	older := filepath.Join(outputDir, "checkpoint-10.aidax")
	newer := filepath.Join(outputDir, "checkpoint-20.aidax")
	if err := os.WriteFile(older, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newer, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dest := filepath.Join(t.TempDir(), "out.aidax")
	if _, err := New(logger).Collect(outputDir, DefaultExtension, dest); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Fatalf("selected artifact = %q, want newest", data)
	}
	if !strings.Contains(logBuf.String(), "ambiguous") {
		t.Fatalf("expected ambiguity warning, log: %q", logBuf.String())
	}
}

func TestCollectOverwritesDestination(t *testing.T) {
	outputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outputDir, "model.aidax"), []byte("fresh"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "result.aidax")
	if err := os.WriteFile(dest, []byte("previous run output"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(logging.NewNop()).Collect(outputDir, DefaultExtension, dest); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fresh" {
		t.Fatalf("destination not overwritten: %q", data)
	}
}

func TestCollectIgnoresNestedArtifacts(t *testing.T) {
	outputDir := t.TempDir()
	nested := filepath.Join(outputDir, "checkpoints")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "epoch-5.aidax"), []byte("intermediate"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(nil).Collect(outputDir, DefaultExtension, filepath.Join(t.TempDir(), "out.aidax"))
	if !errors.Is(err, services.ErrNoArtifact) {
		t.Fatalf("nested artifacts must not match, got %v", err)
	}
}
