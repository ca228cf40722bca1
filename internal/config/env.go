package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// envPrefix is the prefix of every todoapp environment variable.
const envPrefix = "TODOAPP_"

// loadFromEnv overrides config from environment variables and updates
// source tracking. PORT is honored for compatibility with hosting platforms;
// TODOAPP_ADDR takes precedence over it.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(key string, target *string) {
		if v := os.Getenv(envName(key)); v != "" {
			*target = v
			sources[key] = SourceEnv
		}
	}
	setBool := func(key string, target *bool) error {
		v := os.Getenv(envName(key))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", envName(key), v)
		}
		*target = b
		sources[key] = SourceEnv
		return nil
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = ":" + port
		sources["addr"] = SourceEnv
	}
	setString("addr", &cfg.Addr)
	setString("store", &cfg.Store)
	setString("data_file", &cfg.DataFile)
	setString("static_dir", &cfg.StaticDir)
	setString("id_format", &cfg.IDFormat)
	setString("log_level", &cfg.LogLevel)
	setString("log_format", &cfg.LogFormat)

	bools := []struct {
		key    string
		target *bool
	}{
		{"file_lock", &cfg.FileLock},
		{"request_log", &cfg.RequestLog},
		{"log_timestamps", &cfg.LogTimestamps},
		{"log_caller", &cfg.LogCaller},
	}
	for _, b := range bools {
		if err := setBool(b.key, b.target); err != nil {
			return err
		}
	}
	return nil
}

// envName maps a config key to its environment variable, e.g. data_file -> TODOAPP_DATA_FILE.
func envName(key string) string {
	return envPrefix + strings.ToUpper(key)
}
