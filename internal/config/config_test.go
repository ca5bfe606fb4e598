package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.TranslatorProvider)
	assert.Equal(t, StrategyDirect, cfg.JRCTStrategy)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 20*time.Second, cfg.JRCTTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.CTGovMaxPages)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PORT", "9090")
	t.Setenv("JRCT_STRATEGY", "FORM")
	t.Setenv("CTGOV_MAX_PAGES", "2")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StrategyForm, cfg.JRCTStrategy)
	assert.Equal(t, 2, cfg.CTGovMaxPages)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "trialfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("translator:\n  provider: gemini\ncache:\n  backend: redis\n"), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.TranslatorProvider)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
}

func TestValidate(t *testing.T) {
	valid := Config{
		TranslatorProvider: ProviderOpenAI,
		OpenAIAPIKey:       "sk-test",
		JRCTStrategy:       StrategyDirect,
		CacheBackend:       CacheMemory,
	}
	require.NoError(t, valid.Validate())

	missingKey := valid
	missingKey.OpenAIAPIKey = ""
	err := missingKey.Validate()
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	gemini := valid
	gemini.TranslatorProvider = ProviderGemini
	assert.ErrorIs(t, gemini.Validate(), ErrMissingAPIKey)
	gemini.GeminiAPIKey = "g-key"
	assert.NoError(t, gemini.Validate())

	badStrategy := valid
	badStrategy.JRCTStrategy = "selenium"
	assert.Error(t, badStrategy.Validate())

	pg := valid
	pg.CacheBackend = CachePostgres
	assert.Error(t, pg.Validate())
	pg.DatabaseURL = "postgres://localhost/trials"
	assert.NoError(t, pg.Validate())

	unknownProvider := valid
	unknownProvider.TranslatorProvider = "deepl"
	assert.Error(t, unknownProvider.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, `"k":"v"`), out)

	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, "nonsense", "console").GetLevel())
}
