// Package config resolves relay settings from flags, environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/petasbytes/advisor-relay/internal/provider"
)

// Viper keys.
const (
	KeyGroqAPIKey      = "groq_api_key"
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyProvider        = "provider"
	KeyModel           = "model"
	KeyBaseURL         = "base_url"
	KeyAppEnv          = "app_env"
	KeyDBPath          = "db_path"
	KeyAddr            = "addr"
	KeyTokenBudget     = "token_budget"
	KeyLogLevel        = "log_level"
)

const (
	DBFileName         = "relationship_ai.db"
	DefaultAddr        = ":5000"
	// DefaultTokenBudget leaves windowing off; the full conversation is sent.
	DefaultTokenBudget = 0
	productionEnv      = "production"
)

var envBindings = map[string][]string{
	KeyGroqAPIKey:      {"GROQ_API_KEY"},
	KeyAnthropicAPIKey: {"ANTHROPIC_API_KEY"},
	KeyProvider:        {"RELAY_PROVIDER"},
	KeyModel:           {"RELAY_MODEL"},
	KeyBaseURL:         {"RELAY_BASE_URL"},
	KeyAppEnv:          {"APP_ENV"},
	KeyDBPath:          {"RELAY_DB_PATH"},
	KeyAddr:            {"RELAY_ADDR", "PORT"},
	KeyTokenBudget:     {"RELAY_TOKEN_BUDGET"},
	KeyLogLevel:        {"RELAY_LOG_LEVEL"},
}

// Config is a snapshot of the non-secret settings. Credentials are read
// from the Viper instance when the provider is first built.
type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	AppEnv      string
	DBPath      string
	Addr        string
	TokenBudget int
	LogLevel    log.Level
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// NewViper returns a Viper with defaults and environment bindings applied.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyProvider, provider.NameGroq)
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyTokenBudget, DefaultTokenBudget)
	v.SetDefault(KeyLogLevel, "info")

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return v, nil
}

// Load reads a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Provider:    strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider))),
		Model:       v.GetString(KeyModel),
		BaseURL:     v.GetString(KeyBaseURL),
		AppEnv:      v.GetString(KeyAppEnv),
		Addr:        normalizeAddr(v.GetString(KeyAddr)),
		TokenBudget: v.GetInt(KeyTokenBudget),
	}

	switch cfg.Provider {
	case provider.NameGroq, provider.NameAnthropic:
	default:
		return Config{}, fmt.Errorf("%w: %q", provider.ErrUnknownProvider, cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = provider.DefaultModel(cfg.Provider)
	}
	if cfg.TokenBudget < 0 {
		return Config{}, fmt.Errorf("token budget must be >= 0, got %d", cfg.TokenBudget)
	}

	lvl, err := log.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}
	cfg.LogLevel = lvl

	cfg.DBPath = ResolveDBPath(v.GetString(KeyDBPath), cfg.AppEnv)
	return cfg, nil
}

// ResolveDBPath picks the database file. An explicit path wins; APP_ENV=production
// uses the temporary directory, which does not survive restarts on most hosts.
func ResolveDBPath(explicit, appEnv string) string {
	if explicit != "" {
		return explicit
	}
	if appEnv == productionEnv {
		return filepath.Join(os.TempDir(), DBFileName)
	}
	return DBFileName
}

// ProviderSettings returns the backend settings, reading the credential
// from v at call time.
func ProviderSettings(v *viper.Viper, cfg Config) provider.Settings {
	s := provider.Settings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	}
	switch cfg.Provider {
	case provider.NameAnthropic:
		s.APIKey = v.GetString(KeyAnthropicAPIKey)
		s.APIKeyEnv = "ANTHROPIC_API_KEY"
	default:
		s.APIKey = v.GetString(KeyGroqAPIKey)
		s.APIKeyEnv = "GROQ_API_KEY"
	}
	return s
}

func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return DefaultAddr
	}
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}
