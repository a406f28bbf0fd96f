package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BackendConfig points the client at the retrieval backend.
type BackendConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// Timeout applies to request/response endpoints only.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// FeaturesConfig toggles optional UI features.
type FeaturesConfig struct {
	// ModelSelector requires a model on every query. When false queries are
	// sent without one.
	ModelSelector bool `yaml:"model_selector"`
}

// ModelsConfig configures the model catalog.
type ModelsConfig struct {
	CacheTTLSecs int `yaml:"cache_ttl_secs" validate:"gte=0"`
}

func (m ModelsConfig) CacheTTL() time.Duration {
	return time.Duration(m.CacheTTLSecs) * time.Second
}

// QdrantConfig contains connection details for the vector store inspector.
// An empty URL disables it.
type QdrantConfig struct {
	URL          string `yaml:"url" validate:"omitempty,url"`
	APIKey       string `yaml:"api_key,omitempty"`
	Collection   string `yaml:"collection" validate:"required_with=URL"`
	DashboardURL string `yaml:"dashboard_url,omitempty" validate:"omitempty,url"`
	TimeoutSecs  int    `yaml:"timeout_secs" validate:"gte=0"`
}

func (q QdrantConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSecs) * time.Second
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	Console    bool   `yaml:"console"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Backend  BackendConfig  `yaml:"backend"`
	Features FeaturesConfig `yaml:"features"`
	Models   ModelsConfig   `yaml:"models"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Log      LogConfig      `yaml:"log"`
}

// ConfigError lists the fields that failed validation.
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + strings.Join(e.Fields, ", ")
}

// Validate checks cfg and returns a *ConfigError describing every failure.
func Validate(cfg *AppConfig) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ce := &ConfigError{}
	for _, e := range verrs {
		ce.Fields = append(ce.Fields, fmt.Sprintf("%s: failed on '%s'", strings.TrimPrefix(e.Namespace(), "AppConfig."), e.Tag()))
	}
	return ce
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied after the file.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	applyConfigDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./ragdesk.yaml first, then ~/.config/ragdesk/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragdesk/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "ragdesk.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragdesk"), nil
}

func defaultUserConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Backend:  BackendConfig{BaseURL: "http://localhost:5000", TimeoutSecs: 120},
		Features: FeaturesConfig{ModelSelector: true},
		Models:   ModelsConfig{CacheTTLSecs: 300},
		Qdrant: QdrantConfig{
			URL:         "http://localhost:6333",
			Collection:  "knowledge_base",
			TimeoutSecs: 10,
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30},
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("RAGDESK_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v, ok := os.LookupEnv("RAGDESK_QDRANT_URL"); ok {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv("RAGDESK_QDRANT_API_KEY"); v != "" {
		cfg.Qdrant.APIKey = v
	}
	if v := os.Getenv("RAGDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	cfg.Qdrant.URL = strings.TrimRight(cfg.Qdrant.URL, "/")
	if cfg.Qdrant.URL != "" && cfg.Qdrant.DashboardURL == "" {
		cfg.Qdrant.DashboardURL = cfg.Qdrant.URL + "/dashboard"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		if dir, err := configDir(); err == nil {
			cfg.Log.File = filepath.Join(dir, "ragdesk.log")
		}
	}
}
