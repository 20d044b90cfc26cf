package config

import (
	"os"
	"path/filepath"
)

// TaskflowPath returns the root directory for taskflow data.
// It uses $TASKFLOW_PATH if set, otherwise defaults to ~/.taskflow.
func TaskflowPath() string {
	if v := os.Getenv("TASKFLOW_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskflow")
	}
	return filepath.Join(home, ".taskflow")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(TaskflowPath(), "config.jsonc")
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	return filepath.Join(TaskflowPath(), ".env")
}

// DataPath returns the default storage directory.
func DataPath() string {
	return filepath.Join(TaskflowPath(), "data")
}
