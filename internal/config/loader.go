package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "siteclone.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV. The YAML
// path can be overridden with SITECLONE_CONFIG.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if v := os.Getenv("SITECLONE_CONFIG"); v != "" {
		path = v
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	// Log paths arrive absolute, so the root they are confined to must be too.
	root, err := filepath.Abs(cfg.Transcript.Root)
	if err != nil {
		return nil, fmt.Errorf("config transcript root: %w", err)
	}
	cfg.Transcript.Root = root

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setDuration(&cfg.Server.ShutdownTimeout, "SITECLONE_SHUTDOWN_TIMEOUT")
	setString(&cfg.Database.Path, "DATABASE_PATH")

	// Platform
	setBool(&cfg.Platform.SubdomainInstall, "SITECLONE_SUBDOMAIN_INSTALL")
	setString(&cfg.Platform.BaseDomain, "SITECLONE_BASE_DOMAIN")
	setString(&cfg.Platform.BasePath, "SITECLONE_BASE_PATH")
	setString(&cfg.Platform.Scheme, "SITECLONE_SCHEME")
	setList(&cfg.Platform.ReservedWords, "SITECLONE_RESERVED_WORDS")
	setString(&cfg.Platform.Duplicables, "SITECLONE_DUPLICABLES")
	setBool(&cfg.Platform.AutoSelectSingle, "SITECLONE_AUTO_SELECT_SINGLE")

	setString(&cfg.Transcript.Root, "SITECLONE_TRANSCRIPT_ROOT")
	setString(&cfg.Transcript.BaseURL, "SITECLONE_TRANSCRIPT_BASE_URL")
	setString(&cfg.Assets.Root, "SITECLONE_ASSETS_ROOT")
	setString(&cfg.Security.TokenSecret, "SITECLONE_TOKEN_SECRET")
	setDuration(&cfg.Security.TokenTTL, "SITECLONE_TOKEN_TTL")
	setDuration(&cfg.Catalog.CacheTTL, "SITECLONE_CATALOG_CACHE_TTL")
	setString(&cfg.Logging.Level, "SITECLONE_LOG_LEVEL")

	// Telemetry keeps the standard OTEL_* names.
	setString(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
	setString(&cfg.Telemetry.ServiceVersion, "OTEL_SERVICE_VERSION")
	setString(&cfg.Telemetry.Environment, "OTEL_ENVIRONMENT")
	setString(&cfg.Telemetry.Exporter, "OTEL_EXPORTER")
	setBool(&cfg.Telemetry.Insecure, "OTEL_EXPORTER_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if cfg.Platform.BaseDomain == "" {
		return errors.New("platform.base_domain is required")
	}
	if !strings.HasPrefix(cfg.Platform.BasePath, "/") || !strings.HasSuffix(cfg.Platform.BasePath, "/") {
		return errors.New("platform.base_path must start and end with /")
	}
	switch cfg.Platform.Duplicables {
	case "all", "selected":
	default:
		return fmt.Errorf("platform.duplicables must be \"all\" or \"selected\", got %q", cfg.Platform.Duplicables)
	}
	if cfg.Transcript.Root == "" {
		return errors.New("transcript.root is required")
	}
	if cfg.Security.TokenTTL <= 0 {
		return errors.New("security.token_ttl must be > 0")
	}
	if cfg.Catalog.CacheTTL < 0 {
		return errors.New("catalog.cache_ttl must be >= 0")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// setList reads a comma-separated list. Blank entries are dropped.
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
