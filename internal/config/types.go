package config

import "github.com/nibzard/todoapp-go/internal/datadir"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Default values.
const (
	DefaultAddr      = ":3000"
	DefaultStore     = "file"
	DefaultStaticDir = datadir.PublicDir
	DefaultIDFormat  = "base36"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default data files, relative to the working directory.
var (
	DefaultDataFile   = datadir.TasksPath("")
	DefaultSQLiteFile = datadir.DatabasePath("")
)

// Config holds the full configuration for todoapp.
type Config struct {
	// Server
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`

	// Storage
	Store    string `toml:"store"`
	DataFile string `toml:"data_file"`
	FileLock bool   `toml:"file_lock"`

	// Task ids: base36 or uuid
	IDFormat string `toml:"id_format"`

	// HTTP request logging
	RequestLog bool `toml:"request_log"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the configurable keys in display order.
func configFields() []string {
	return []string{
		"addr",
		"store",
		"data_file",
		"static_dir",
		"id_format",
		"file_lock",
		"request_log",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}
