package config

import (
	"flag"
	"strings"
)

// parseFlags defines the global flags on fs, parses args and records the
// keys of flags that were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todoapp", flag.ContinueOnError)
	}

	// Server
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address (host:port or :port)")
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Directory of static files served at / (empty disables)")

	// Storage
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend (file|sqlite)")
	fs.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "Path to the task data file")
	fs.BoolVar(&cfg.FileLock, "file-lock", cfg.FileLock, "Lock the data file across processes")
	fs.StringVar(&cfg.IDFormat, "id-format", cfg.IDFormat, "Task id format (base36|uuid)")

	// Logging
	fs.BoolVar(&cfg.RequestLog, "request-log", cfg.RequestLog, "Log every HTTP request")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, field := range configFields() {
		known[field] = true
	}
	fs.Visit(func(f *flag.Flag) {
		key := flagKey(f.Name)
		if known[key] {
			sources[key] = SourceFlag
		}
	})
	return nil
}

// flagKey maps a flag name to its config key, e.g. data-file -> data_file.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
