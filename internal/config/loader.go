package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/tailscale/hujson"

	"github.com/dohr-michael/taskflow/internal/scheduler"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, expands ${{ .Env.VAR }} templates,
// unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns the defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg, nil
	}
	return Load(path)
}

// Parse decodes JSONC content into a Config with defaults applied.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvTemplates(string(data))

	std, err := hujson.Standardize([]byte(expanded))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields.
func applyDefaults(cfg *Config) {
	if cfg.Scoring.ClassifyWindow == 0 {
		cfg.Scoring.ClassifyWindow = Duration(7 * 24 * time.Hour)
	}
	if cfg.Scoring.ProgressWindow == 0 {
		cfg.Scoring.ProgressWindow = Duration(3 * 24 * time.Hour)
	}
	if cfg.Scoring.Thresholds.Urgency == 0 {
		cfg.Scoring.Thresholds.Urgency = 0.5
	}
	if cfg.Scoring.Thresholds.Importance == 0 {
		cfg.Scoring.Thresholds.Importance = 3.0
	}
	if cfg.Scoring.Weights.Importance == 0 && cfg.Scoring.Weights.Urgency == 0 {
		cfg.Scoring.Weights.Importance = 0.6
		cfg.Scoring.Weights.Urgency = 0.4
	}

	if cfg.Scheduler.DurationKind == "" {
		cfg.Scheduler.DurationKind = "normal"
	}
	if cfg.Scheduler.WorkingHours == "" {
		cfg.Scheduler.WorkingHours = scheduler.DefaultWorkingHours
	}

	if cfg.Storage.Driver == "" {
		if v := os.Getenv("TASKFLOW_STORAGE"); v != "" {
			cfg.Storage.Driver = v
		} else {
			cfg.Storage.Driver = "file"
		}
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = DataPath()
	}
	if cfg.Storage.TaskGlob == "" {
		cfg.Storage.TaskGlob = filepath.Join(TaskflowPath(), "tasks", "**", "*.{json,yaml,yml}")
	}

	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 256
	}
	if cfg.Events.LogDir == "" {
		cfg.Events.LogDir = filepath.Join(TaskflowPath(), "logs")
	}
}
