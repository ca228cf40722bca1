package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/nibzard/todoapp-go/internal/datadir"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{datadir.ConfigFile, "." + datadir.ConfigFile}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.todoapp/todoapp.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".todoapp", datadir.ConfigFile)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "todoapp", datadir.ConfigFile)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		// Respect XDG_CONFIG_HOME or use ~/.config
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Addr = DefaultAddr
	cfg.Store = DefaultStore
	cfg.DataFile = DefaultDataFile
	cfg.StaticDir = DefaultStaticDir
	cfg.IDFormat = DefaultIDFormat
	cfg.FileLock = true
	cfg.RequestLog = true

	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = true
	cfg.LogCaller = false
}

// Entry is one resolved configuration value.
type Entry struct {
	Key    string
	Value  string
	Source ConfigSource
}

// Entries returns every configurable key with its final value and source.
func (cws *ConfigWithSources) Entries() []Entry {
	c := cws.Config
	values := map[string]string{
		"addr":           c.Addr,
		"store":          c.Store,
		"data_file":      c.DataFile,
		"static_dir":     c.StaticDir,
		"id_format":      c.IDFormat,
		"file_lock":      strconv.FormatBool(c.FileLock),
		"request_log":    strconv.FormatBool(c.RequestLog),
		"log_level":      c.LogLevel,
		"log_format":     c.LogFormat,
		"log_timestamps": strconv.FormatBool(c.LogTimestamps),
		"log_caller":     strconv.FormatBool(c.LogCaller),
	}

	fields := configFields()
	entries := make([]Entry, 0, len(fields))
	for _, key := range fields {
		source, ok := cws.Sources[key]
		if !ok {
			source = SourceDefault
		}
		entries = append(entries, Entry{Key: key, Value: values[key], Source: source})
	}
	return entries
}

// String formats the entry as "key = value (source)".
func (e Entry) String() string {
	return fmt.Sprintf("%s = %s (%s)", e.Key, e.Value, e.Source)
}
