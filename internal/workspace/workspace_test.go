package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireCreatesAreas(t *testing.T) {
	mgr, err := NewManager(filepath.Join(t.TempDir(), "scratch"))
	if err != nil {
		t.Fatal(err)
	}

	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Release()

	for _, dir := range []string{ws.StagingDir(), ws.DatasetDir(), ws.OutputDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing workspace area %s: %v", dir, err)
		}
	}
}

func TestAcquireIsUnique(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	a, err := mgr.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()
	b, err := mgr.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	if a.Root == b.Root {
		t.Fatalf("workspaces share a root: %s", a.Root)
	}
}

func TestStage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "capture.nam")
	if err := os.WriteFile(src, []byte(`{"profile":true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr, err := NewManager(filepath.Join(dir, "scratch"))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Release()

	staged, err := ws.Stage(src, ProfileName)
	if err != nil {
		t.Fatal(err)
	}
	if staged != ws.StagingPath(ProfileName) {
		t.Fatalf("staged path = %s", staged)
	}

	got, err := os.ReadFile(staged)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"profile":true}` {
		t.Fatalf("staged content mismatch: %q", got)
	}
}

func TestStageMissingSource(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Release()

	if _, err := ws.Stage(filepath.Join(t.TempDir(), "ghost.wav"), StimulusName); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestReleaseRemovesTree(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	if err := ws.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.Root); !os.IsNotExist(err) {
		t.Fatalf("workspace still exists after release: %v", err)
	}

	// Second release stays a no-op.
	if err := ws.Release(); err != nil {
		t.Fatal(err)
	}
}
