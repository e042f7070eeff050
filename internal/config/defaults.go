package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultEpochs matches the trainer wrapper's default epoch count.
	DefaultEpochs = 200
	// DefaultModelType is the capacity tier used when none is requested.
	DefaultModelType = "Standard"

	defaultReampBinary   = "nam-reamp"
	defaultPythonBinary  = "python3"
	defaultTrainerScript = "train_min.py"

	defaultCleanupMaxAgeHours = 24
)

// Default returns the repository default configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceRoot: filepath.Join(os.TempDir(), "nam2aidax"),
			DataDir:       defaultDataDir(),
		},
		Tools: Tools{
			ReampBinary:   defaultReampBinary,
			PythonBinary:  defaultPythonBinary,
			TrainerScript: defaultTrainerScript,
		},
		Training: Training{
			Epochs:    DefaultEpochs,
			ModelType: DefaultModelType,
		},
		History: History{
			Enabled: true,
		},
		Cleanup: Cleanup{
			MaxAgeHours: defaultCleanupMaxAgeHours,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "nam2aidax")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nam2aidax-state")
	}
	return filepath.Join(home, ".local", "state", "nam2aidax")
}
