package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkspaceRoot, err = expandPath(c.Paths.WorkspaceRoot); err != nil {
		return fmt.Errorf("paths.workspace_root: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) != "" {
		if c.History.Path, err = expandPath(c.History.Path); err != nil {
			return fmt.Errorf("history.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	// Environment overrides trump the config file for collaborator locations,
	// which keeps CI and packaging scripts away from user config.
	if v := strings.TrimSpace(os.Getenv("NAM2AIDAX_REAMP")); v != "" {
		c.Tools.ReampBinary = v
	}
	if v := strings.TrimSpace(os.Getenv("NAM2AIDAX_PYTHON")); v != "" {
		c.Tools.PythonBinary = v
	}
	c.Tools.ReampBinary = strings.TrimSpace(c.Tools.ReampBinary)
	c.Tools.PythonBinary = strings.TrimSpace(c.Tools.PythonBinary)
	c.Tools.TrainerScript = strings.TrimSpace(c.Tools.TrainerScript)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Tools.ReampBinary == "" {
		return errors.New("tools.reamp_binary must be set")
	}
	if c.Tools.PythonBinary == "" {
		return errors.New("tools.python_binary must be set")
	}
	if c.Tools.TrainerScript == "" {
		return errors.New("tools.trainer_script must be set")
	}
	if c.Paths.WorkspaceRoot == "" {
		return errors.New("paths.workspace_root must be set")
	}
	if c.Training.Epochs <= 0 {
		return errors.New("training.epochs must be a positive integer")
	}
	if c.Cleanup.MaxAgeHours <= 0 {
		return errors.New("cleanup.max_age_hours must be a positive integer")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
