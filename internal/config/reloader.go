package config

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Reloader re-reads .env and the config file on demand and swaps the
// result in atomically.
type Reloader struct {
	configPath string
	dotenvPath string
	current    atomic.Pointer[Config]

	mu        sync.Mutex // serializes Reload and guards listeners
	listeners []func(prev, next *Config)
}

// NewReloader starts from initial, usually the config loaded at startup.
func NewReloader(configPath, dotenvPath string, initial *Config) *Reloader {
	r := &Reloader{configPath: configPath, dotenvPath: dotenvPath}
	r.current.Store(initial)
	return r
}

// Current returns the active config.
func (r *Reloader) Current() *Config {
	return r.current.Load()
}

// OnReload registers fn to run after each successful reload with the
// replaced and the new config.
func (r *Reloader) OnReload(fn func(prev, next *Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload overrides the environment from .env, then loads the config file
// (defaults when it is missing). On error the active config is kept.
func (r *Reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ReloadDotenv(r.dotenvPath); err != nil {
		return fmt.Errorf("reload dotenv: %w", err)
	}
	next, err := LoadOrDefault(r.configPath)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	prev := r.current.Swap(next)
	slog.Debug("config reloaded", "path", r.configPath)
	for _, fn := range r.listeners {
		fn(prev, next)
	}
	return nil
}
