package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the backend for driver, rooted at dir.
func Open(driver, dir string) (Backend, error) {
	switch driver {
	case "", DriverFile:
		return NewFileBackend(dir), nil
	case DriverSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return OpenSQLite(filepath.Join(dir, "taskflow.db"))
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
