// Package datadir provides constants and utilities for the on-disk layout
// of a todoapp working directory.
package datadir

import "path/filepath"

const (
	// Dir is the name of the data directory.
	Dir = "data"

	// TasksFile is the default JSON task file name (inside Dir).
	TasksFile = "todos.json"

	// DatabaseFile is the default SQLite database name (inside Dir).
	DatabaseFile = "todos.db"

	// PublicDir is the default static file directory.
	PublicDir = "public"

	// ConfigFile is the project config file name.
	ConfigFile = "todoapp.toml"

	// LockSuffix is appended to a data file path to name its lock file.
	LockSuffix = ".lock"
)

// TasksPath returns the path to the JSON task file within a work directory.
func TasksPath(workDir string) string {
	return joinPath(workDir, TasksFile)
}

// DatabasePath returns the path to the SQLite database within a work directory.
func DatabasePath(workDir string) string {
	return joinPath(workDir, DatabaseFile)
}

// DirPath returns the path to the data directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// LockPath returns the lock file path for a data file.
func LockPath(dataFile string) string {
	return dataFile + LockSuffix
}

func joinPath(workDir, file string) string {
	return filepath.Join(DirPath(workDir), file)
}
