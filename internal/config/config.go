// Package config provides hierarchical configuration loading for siteclone.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the siteclone service.
type Config struct {
	Server     Server     `yaml:"server"`
	Database   Database   `yaml:"database"`
	Platform   Platform   `yaml:"platform"`
	Transcript Transcript `yaml:"transcript"`
	Assets     Assets     `yaml:"assets"`
	Security   Security   `yaml:"security"`
	Catalog    Catalog    `yaml:"catalog"`
	Logging    Logging    `yaml:"logging"`
	Telemetry  Telemetry  `yaml:"telemetry"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Database holds SQLite configuration.
type Database struct {
	Path string `yaml:"path"`
}

// Platform describes the multisite installation new sites are created in.
type Platform struct {
	SubdomainInstall bool     `yaml:"subdomain_install"`
	BaseDomain       string   `yaml:"base_domain"`
	BasePath         string   `yaml:"base_path"`
	Scheme           string   `yaml:"scheme"`
	ReservedWords    []string `yaml:"reserved_words"`
	Duplicables      string   `yaml:"duplicables"` // "all" | "selected"
	AutoSelectSingle bool     `yaml:"auto_select_single"`
}

// Transcript holds duplication transcript configuration.
type Transcript struct {
	Root    string `yaml:"root"`     // log paths must lie inside; empty allows any absolute path
	BaseURL string `yaml:"base_url"` // public URL of Root; empty disables log URLs
}

// Assets holds per-tenant file storage configuration.
type Assets struct {
	Root string `yaml:"root"`
}

// Security holds anti-forgery token configuration.
type Security struct {
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// Catalog holds source catalog caching configuration.
type Catalog struct {
	CacheTTL time.Duration `yaml:"cache_ttl"` // 0 disables the cache
}

// Logging holds structured logging configuration.
type Logging struct {
	Level string `yaml:"level"`
}

// Telemetry holds OpenTelemetry exporter configuration.
type Telemetry struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`
	Exporter       string `yaml:"exporter"` // "stdout" | "otlp" | "none"
	Insecure       bool   `yaml:"insecure"`
}

// Defaults returns a Config with sensible defaults for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:            "8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: Database{
			Path: "siteclone.db",
		},
		Platform: Platform{
			BaseDomain:       "localhost",
			BasePath:         "/",
			Scheme:           "https",
			ReservedWords:    []string{"page", "comments", "blog", "files", "feed"},
			Duplicables:      "all",
			AutoSelectSingle: true,
		},
		Transcript: Transcript{
			Root: "data/transcripts",
		},
		Assets: Assets{
			Root: "data/assets",
		},
		Security: Security{
			TokenTTL: 12 * time.Hour,
		},
		Catalog: Catalog{
			CacheTTL: 30 * time.Second,
		},
		Logging: Logging{
			Level: "info",
		},
		Telemetry: Telemetry{
			ServiceName:    "siteclone",
			ServiceVersion: "0.1.0",
			Environment:    "development",
			Exporter:       "stdout",
			Insecure:       true,
		},
	}
}
