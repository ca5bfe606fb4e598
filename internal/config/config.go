// Package config loads trialfinder settings from the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Translator providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Cache backends
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// jRCT strategies
const (
	StrategyDirect = "direct"
	StrategyForm   = "form"
)

// ErrMissingAPIKey is returned when the selected translator has no credential
var ErrMissingAPIKey = errors.New("translation API key is not set")

// Config is the full application configuration
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	TranslatorProvider string
	TranslatorModel    string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	GeminiAPIKey       string

	CTGovBaseURL  string
	CTGovPageSize int
	CTGovMaxPages int

	JRCTBaseURL  string
	JRCTStrategy string
	JRCTTimeout  time.Duration

	CacheBackend  string
	CacheSize     int
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	SessionTTL time.Duration
}

// LoadEnvFiles loads .env.local then .env when present. Missing files are ignored.
func LoadEnvFiles() error {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string][]string{
	"port":                {"PORT"},
	"log.level":           {"LOG_LEVEL"},
	"log.format":          {"LOG_FORMAT"},
	"translator.provider": {"TRANSLATOR_PROVIDER"},
	"translator.model":    {"TRANSLATOR_MODEL", "OPENAI_MODEL"},
	"openai.api_key":      {"OPENAI_API_KEY"},
	"openai.base_url":     {"OPENAI_BASE_URL"},
	"gemini.api_key":      {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"ctgov.base_url":      {"CTGOV_BASE_URL"},
	"ctgov.page_size":     {"CTGOV_PAGE_SIZE"},
	"ctgov.max_pages":     {"CTGOV_MAX_PAGES"},
	"jrct.base_url":       {"JRCT_BASE_URL"},
	"jrct.strategy":       {"JRCT_STRATEGY"},
	"jrct.timeout":        {"JRCT_TIMEOUT"},
	"cache.backend":       {"CACHE_BACKEND"},
	"cache.size":          {"CACHE_SIZE"},
	"cache.ttl":           {"CACHE_TTL"},
	"redis.addr":          {"REDIS_ADDR"},
	"redis.password":      {"REDIS_PASSWORD"},
	"redis.db":            {"REDIS_DB"},
	"database_url":        {"DATABASE_URL"},
	"session.ttl":         {"SESSION_TTL"},
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("translator.provider", ProviderOpenAI)
	v.SetDefault("ctgov.base_url", "https://clinicaltrials.gov/api/v2")
	v.SetDefault("ctgov.page_size", 100)
	v.SetDefault("ctgov.max_pages", 5)
	v.SetDefault("jrct.base_url", "https://jrct.mhlw.go.jp")
	v.SetDefault("jrct.strategy", StrategyDirect)
	v.SetDefault("jrct.timeout", 20*time.Second)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.size", 2048)
	v.SetDefault("cache.ttl", 7*24*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("session.ttl", 30*time.Minute)
}

// Bind wires environment variables into v
func Bind(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load builds a Config from v, reading cfgFile first when given
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	if err := Bind(v); err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		Port:               v.GetString("port"),
		LogLevel:           v.GetString("log.level"),
		LogFormat:          v.GetString("log.format"),
		TranslatorProvider: strings.ToLower(v.GetString("translator.provider")),
		TranslatorModel:    v.GetString("translator.model"),
		OpenAIAPIKey:       v.GetString("openai.api_key"),
		OpenAIBaseURL:      v.GetString("openai.base_url"),
		GeminiAPIKey:       v.GetString("gemini.api_key"),
		CTGovBaseURL:       v.GetString("ctgov.base_url"),
		CTGovPageSize:      v.GetInt("ctgov.page_size"),
		CTGovMaxPages:      v.GetInt("ctgov.max_pages"),
		JRCTBaseURL:        v.GetString("jrct.base_url"),
		JRCTStrategy:       strings.ToLower(v.GetString("jrct.strategy")),
		JRCTTimeout:        v.GetDuration("jrct.timeout"),
		CacheBackend:       strings.ToLower(v.GetString("cache.backend")),
		CacheSize:          v.GetInt("cache.size"),
		CacheTTL:           v.GetDuration("cache.ttl"),
		RedisAddr:          v.GetString("redis.addr"),
		RedisPassword:      v.GetString("redis.password"),
		RedisDB:            v.GetInt("redis.db"),
		DatabaseURL:        v.GetString("database_url"),
		SessionTTL:         v.GetDuration("session.ttl"),
	}

	return cfg, nil
}

// Validate checks settings needed before anything talks to the network.
// A missing translation credential fails here rather than on first search.
func (c *Config) Validate() error {
	switch c.TranslatorProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingAPIKey)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("unknown translator provider %q (want %s or %s)", c.TranslatorProvider, ProviderOpenAI, ProviderGemini)
	}

	switch c.JRCTStrategy {
	case StrategyDirect, StrategyForm:
	default:
		return fmt.Errorf("unknown jRCT strategy %q (want %s or %s)", c.JRCTStrategy, StrategyDirect, StrategyForm)
	}

	switch c.CacheBackend {
	case CacheMemory, CacheRedis:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return errors.New("cache backend postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}

	return nil
}
