// file: internal/config/config.go
// version: 2.1.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultAICandidates are the page names tried, in order, for AI simulation
// routes after the requested path itself.
var DefaultAICandidates = []string{
	"ai-simulation.html",
	"ai_simulation.html",
	"AI Simulation.html",
	"ai.html",
	"simulate.html",
	"ai-simulate.html",
	"interview-ai.html",
}

// DefaultAIPrefixes are the path prefixes routed to the AI simulation handler.
var DefaultAIPrefixes = []string{"/ai", "/ai-simulation", "/simulate", "/ai-simulate", "/api/ai"}

// Config holds application configuration
type Config struct {
	RootDir         string `yaml:"root_dir" validate:"required,dir"`
	DatabasePath    string `yaml:"database_path" validate:"required"`
	DatabaseType    string `yaml:"database_type" validate:"oneof=sqlite pebble"`
	Host            string `yaml:"host"`
	Port            string `yaml:"port" validate:"required,numeric"`
	Debug           bool   `yaml:"debug"`
	LogFile         string `yaml:"log_file"`
	DefaultDocument string `yaml:"default_document" validate:"required"`

	AICandidates     []string      `yaml:"ai_candidates"`
	AIPrefixes       []string      `yaml:"ai_prefixes" validate:"dive,startswith=/"`
	ExcludePatterns  []string      `yaml:"exclude_patterns"`
	ResolveCacheTTL  time.Duration `yaml:"resolve_cache_ttl"`
	WatchRoot        bool          `yaml:"watch_root"`
	SuggestionsLimit int           `yaml:"suggestions_limit" validate:"min=0"`

	RateLimitPerMinute int   `yaml:"rate_limit_per_minute" validate:"min=0"`
	RateLimitBurst     int   `yaml:"rate_limit_burst" validate:"min=0"`
	MaxBodyBytes       int64 `yaml:"max_body_bytes" validate:"min=0"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

var AppConfig Config

// SetDefaults registers the default value of every key with viper.
func SetDefaults() {
	viper.SetDefault("root_dir", ".")
	viper.SetDefault("database_path", "users.db")
	viper.SetDefault("database_type", "sqlite")
	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", "8000")
	viper.SetDefault("debug", false)
	viper.SetDefault("log_file", "server.log")
	viper.SetDefault("default_document", "index.html")

	viper.SetDefault("ai_candidates", DefaultAICandidates)
	viper.SetDefault("ai_prefixes", DefaultAIPrefixes)
	viper.SetDefault("exclude_patterns", []string{})
	viper.SetDefault("resolve_cache_ttl", time.Duration(0))
	viper.SetDefault("watch_root", true)
	viper.SetDefault("suggestions_limit", 5)

	viper.SetDefault("rate_limit_per_minute", 0)
	viper.SetDefault("rate_limit_burst", 100)
	viper.SetDefault("max_body_bytes", 1<<20)

	viper.SetDefault("read_timeout", 15*time.Second)
	viper.SetDefault("write_timeout", 30*time.Second)
	viper.SetDefault("idle_timeout", 60*time.Second)
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		RootDir:         viper.GetString("root_dir"),
		DatabasePath:    viper.GetString("database_path"),
		DatabaseType:    viper.GetString("database_type"),
		Host:            viper.GetString("host"),
		Port:            viper.GetString("port"),
		Debug:           viper.GetBool("debug"),
		LogFile:         viper.GetString("log_file"),
		DefaultDocument: viper.GetString("default_document"),

		AICandidates:     viper.GetStringSlice("ai_candidates"),
		AIPrefixes:       viper.GetStringSlice("ai_prefixes"),
		ExcludePatterns:  viper.GetStringSlice("exclude_patterns"),
		ResolveCacheTTL:  viper.GetDuration("resolve_cache_ttl"),
		WatchRoot:        viper.GetBool("watch_root"),
		SuggestionsLimit: viper.GetInt("suggestions_limit"),

		RateLimitPerMinute: viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("rate_limit_burst"),
		MaxBodyBytes:       viper.GetInt64("max_body_bytes"),

		ReadTimeout:  viper.GetDuration("read_timeout"),
		WriteTimeout: viper.GetDuration("write_timeout"),
		IdleTimeout:  viper.GetDuration("idle_timeout"),
	}

	// Normalize database type
	AppConfig.DatabaseType = strings.ToLower(AppConfig.DatabaseType)
	if AppConfig.DatabaseType == "sqlite3" || AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "sqlite"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that cfg can be used to start the server.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q check (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
