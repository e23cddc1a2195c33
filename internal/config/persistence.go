// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations rendered as strings so the
// written file can be read back by viper.
type fileConfig struct {
	RootDir         string `yaml:"root_dir"`
	DatabasePath    string `yaml:"database_path"`
	DatabaseType    string `yaml:"database_type"`
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	Debug           bool   `yaml:"debug"`
	LogFile         string `yaml:"log_file"`
	DefaultDocument string `yaml:"default_document"`

	AICandidates     []string `yaml:"ai_candidates"`
	AIPrefixes       []string `yaml:"ai_prefixes"`
	ExcludePatterns  []string `yaml:"exclude_patterns"`
	ResolveCacheTTL  string   `yaml:"resolve_cache_ttl"`
	WatchRoot        bool     `yaml:"watch_root"`
	SuggestionsLimit int      `yaml:"suggestions_limit"`

	RateLimitPerMinute int   `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int   `yaml:"rate_limit_burst"`
	MaxBodyBytes       int64 `yaml:"max_body_bytes"`

	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

func toFileConfig(cfg Config) fileConfig {
	return fileConfig{
		RootDir:            cfg.RootDir,
		DatabasePath:       cfg.DatabasePath,
		DatabaseType:       cfg.DatabaseType,
		Host:               cfg.Host,
		Port:               cfg.Port,
		Debug:              cfg.Debug,
		LogFile:            cfg.LogFile,
		DefaultDocument:    cfg.DefaultDocument,
		AICandidates:       cfg.AICandidates,
		AIPrefixes:         cfg.AIPrefixes,
		ExcludePatterns:    cfg.ExcludePatterns,
		ResolveCacheTTL:    cfg.ResolveCacheTTL.String(),
		WatchRoot:          cfg.WatchRoot,
		SuggestionsLimit:   cfg.SuggestionsLimit,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		ReadTimeout:        cfg.ReadTimeout.String(),
		WriteTimeout:       cfg.WriteTimeout.String(),
		IdleTimeout:        cfg.IdleTimeout.String(),
	}
}

// Dump renders cfg as YAML in the same shape the config file uses.
func Dump(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(toFileConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes cfg to path as YAML. Existing files are only
// replaced when overwrite is set.
func SaveConfigToFile(cfg Config, path string, overwrite bool) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := Dump(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] Configuration saved to file: %s", path)
	return nil
}
