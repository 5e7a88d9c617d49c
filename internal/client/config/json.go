package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mynote-app/mynote/internal/flagx"
	"github.com/mynote-app/mynote/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are timex.Duration so JSON can hold "30s" or integer nanoseconds. Zero
// values leave the corresponding Config field untouched.
type JSONConfig struct {
	DatabaseDSN          string         `json:"database_dsn"`
	LocalStorePath       string         `json:"local_store_path"`
	EncryptionKey        string         `json:"encryption_key"`
	SessionSecret        string         `json:"session_secret"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
	RedisAddr            string         `json:"redis_addr"`
	BaseURL              string         `json:"base_url"`
	LogLevel             string         `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c or -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.LocalStorePath, jc.LocalStorePath)
	setString(&cfg.EncryptionKey, jc.EncryptionKey)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.BaseURL, jc.BaseURL)
	if jc.SessionTTL.Duration > 0 {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.SessionCheckInterval.Duration > 0 {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(jc.LogLevel))); err != nil {
			return fmt.Errorf("parse config %s: log_level: %w", path, err)
		}
		cfg.LogLevel = lvl
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
