package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/todoapp-go/internal/utils"
)

// load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todoapp/todoapp.toml or OS-specific config dir)
// 3. Project config file (todoapp.toml or .todoapp.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}
	var files []string

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		files = append(files, userConfigFile)
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		files = append(files, projectConfigFile)
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg, sources); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// loadConfigFile decodes TOML from path over cfg and records the keys it defines.
// Unknown keys are rejected.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig validates enumerated values and computes derived ones.
func finalizeConfig(cfg *Config, sources map[string]ConfigSource) error {
	store, ok := utils.OneOf(cfg.Store, "file", "sqlite")
	if !ok {
		return fmt.Errorf("invalid store %q, must be one of: file, sqlite", cfg.Store)
	}
	cfg.Store = store

	idFormat, ok := utils.OneOf(cfg.IDFormat, "base36", "uuid")
	if !ok {
		return fmt.Errorf("invalid id_format %q, must be one of: base36, uuid", cfg.IDFormat)
	}
	cfg.IDFormat = idFormat

	logFormat, ok := utils.OneOf(cfg.LogFormat, "text", "json", "logfmt")
	if !ok {
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", cfg.LogFormat)
	}
	cfg.LogFormat = logFormat

	logLevel, ok := utils.OneOf(cfg.LogLevel, "debug", "info", "warn", "warning", "error", "fatal")
	if !ok {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error, fatal", cfg.LogLevel)
	}
	cfg.LogLevel = logLevel

	// The SQLite backend gets its own default file name.
	if cfg.Store == "sqlite" && sources["data_file"] == SourceDefault {
		cfg.DataFile = DefaultSQLiteFile
	}

	cfg.Addr = NormalizeAddr(cfg.Addr)
	if cfg.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if strings.TrimSpace(cfg.DataFile) == "" {
		return fmt.Errorf("data_file must not be empty")
	}

	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.DataFile = resolvePath(cfg.ProjectRoot, cfg.DataFile)
	if cfg.StaticDir != "" {
		cfg.StaticDir = resolvePath(cfg.ProjectRoot, cfg.StaticDir)
	}

	return nil
}

// NormalizeAddr turns a bare port such as "8080" into ":8080".
func NormalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

// resolvePath expands ~ and environment variables and makes p absolute
// relative to root.
func resolvePath(root, p string) string {
	p = expandPath(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}
