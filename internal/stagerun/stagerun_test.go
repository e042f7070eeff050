package stagerun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"nam2aidax/internal/services"
)

func useHelperProcess(t *testing.T, mode string, extraEnv ...string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "STAGERUN_HELPER_MODE="+mode)
		cmd.Env = append(cmd.Env, extraEnv...)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("STAGERUN_HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "trainer blew up")
		os.Exit(3)
	case "write-output":
		if err := os.WriteFile(os.Getenv("STAGERUN_HELPER_OUTPUT"), []byte("rendered audio"), 0o644); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case "silent-success":
		os.Exit(0)
	}
	os.Exit(0)
}

func TestRunSuccessWithExpectedOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rendered.wav")
	useHelperProcess(t, "write-output", "STAGERUN_HELPER_OUTPUT="+out)

	runner := New(nil)
	result, err := runner.Run(context.Background(), Command{
		Stage:           "Reamping",
		Binary:          "nam-reamp",
		Args:            []string{"profile.nam", "stimulus.wav", out},
		ExpectedOutputs: []string{out},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
}

func TestRunNonzeroExitIsExecutionError(t *testing.T) {
	useHelperProcess(t, "fail")

	runner := New(nil)
	result, err := runner.Run(context.Background(), Command{
		Stage:  "Training",
		Binary: "python3",
	})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if !errors.Is(err, services.ErrExecution) {
		t.Fatalf("expected ErrExecution, got %v", err)
	}
	if stage, _ := services.StageOf(err); stage != "Training" {
		t.Fatalf("stage = %q", stage)
	}
	if result.ExitCode != 3 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "trainer blew up") {
		t.Fatalf("captured stderr missing from diagnostic: %v", err)
	}
}

func TestRunMissingDeclaredOutputIsContractViolation(t *testing.T) {
	useHelperProcess(t, "silent-success")

	missing := filepath.Join(t.TempDir(), "never-written.wav")
	runner := New(nil)
	_, err := runner.Run(context.Background(), Command{
		Stage:           "Reamping",
		Binary:          "nam-reamp",
		ExpectedOutputs: []string{missing},
	})
	if err == nil {
		t.Fatal("expected contract violation")
	}
	if !errors.Is(err, services.ErrContract) {
		t.Fatalf("expected ErrContract, got %v", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("missing path absent from diagnostic: %v", err)
	}
}

func TestRunEmptyDeclaredOutputIsContractViolation(t *testing.T) {
	useHelperProcess(t, "silent-success")

	empty := filepath.Join(t.TempDir(), "empty.wav")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	runner := New(nil)
	_, err := runner.Run(context.Background(), Command{
		Stage:           "Reamping",
		Binary:          "nam-reamp",
		ExpectedOutputs: []string{empty},
	})
	if !errors.Is(err, services.ErrContract) {
		t.Fatalf("expected ErrContract for zero-length output, got %v", err)
	}
}

func TestRunRequiresBinary(t *testing.T) {
	runner := New(nil)
	_, err := runner.Run(context.Background(), Command{Stage: "Reamping"})
	if !errors.Is(err, services.ErrExecution) {
		t.Fatalf("expected ErrExecution, got %v", err)
	}
}
