package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_GeminiDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "Clínica La Ermita", cfg.Acta.Organization)
	assert.Equal(t, "Acta_Ermita.docx", cfg.Acta.DownloadName)
	assert.Equal(t, "CLINICA_LA_ERMITA.docx", cfg.Acta.DefaultTemplate)
	assert.Equal(t, uint64(0), cfg.LLM.MaxRetries)
	assert.Equal(t, 0, cfg.RateLimit.PerMinute)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Auth.Enabled())
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoad_OperatorAuthAndProxies(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("OPERATOR_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("OPERATOR_TOKEN_EXPIRY", "30m")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenExpiry)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoad_GroqModelDefault(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "GROQ")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
}

func TestLoad_MissingKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			LLM:  LLMConfig{Provider: ProviderGemini, GeminiAPIKey: "k"},
			Acta: ActaConfig{TemplateSource: "dir"},
		}
	}

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base()
		cfg.LLM.Provider = "openai"
		assert.ErrorContains(t, cfg.Validate(), "unsupported LLM_PROVIDER")
	})

	t.Run("minio templates need storage", func(t *testing.T) {
		cfg := base()
		cfg.Acta.TemplateSource = "minio"
		assert.ErrorContains(t, cfg.Validate(), "STORAGE_ENABLED")

		cfg.Storage.Enabled = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative rate limit", func(t *testing.T) {
		cfg := base()
		cfg.RateLimit.PerMinute = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("short operator secret", func(t *testing.T) {
		cfg := base()
		cfg.Auth.OperatorSecret = "changeme"
		assert.ErrorContains(t, cfg.Validate(), "OPERATOR_JWT_SECRET")

		cfg.Auth.OperatorSecret = "0123456789abcdef0123456789abcdef"
		cfg.Auth.TokenExpiry = time.Hour
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadAuth(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPERATOR_JWT_SECRET", "")
	_, err := LoadAuth()
	assert.ErrorContains(t, err, "OPERATOR_JWT_SECRET")

	t.Setenv("OPERATOR_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	auth, err := LoadAuth()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, auth.TokenExpiry)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "Ermita", slug("Clínica La Ermita"))
	assert.Equal(t, "Reunion", slug(""))
	assert.Equal(t, "Reunion", slug("Clínica Ñ"))
	assert.Equal(t, "ACME", slug("ACME"))
}
