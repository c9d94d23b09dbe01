package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported LLM providers
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

const minSecretLen = 32

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Acta      ActaConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Log       LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	MaxBodyBytes    string   `envconfig:"MAX_BODY_SIZE" default:"2M"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES"` // CIDRs allowed to set X-Forwarded-For
}

// LLMConfig holds the extraction model configuration
type LLMConfig struct {
	Provider     string        `envconfig:"LLM_PROVIDER" default:"gemini"`
	Model        string        `envconfig:"LLM_MODEL"`
	Temperature  float32       `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	MaxTokens    int           `envconfig:"LLM_MAX_TOKENS" default:"8192"`
	Timeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	MaxRetries   uint64        `envconfig:"LLM_MAX_RETRIES" default:"0"`
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	GeminiURL    string        `envconfig:"GEMINI_BASE_URL"`
	GroqAPIKey   string        `envconfig:"GROQ_API_KEY"`
	GroqURL      string        `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
}

// ActaConfig holds document generation settings
type ActaConfig struct {
	Organization    string        `envconfig:"ACTA_ORGANIZATION" default:"Clínica La Ermita"`
	TemplateDir     string        `envconfig:"ACTA_TEMPLATE_DIR" default:"templates"`
	TemplateSource  string        `envconfig:"ACTA_TEMPLATE_SOURCE" default:"dir"` // "dir" or "minio"
	DefaultTemplate string        `envconfig:"ACTA_DEFAULT_TEMPLATE" default:"CLINICA_LA_ERMITA.docx"`
	DownloadName    string        `envconfig:"ACTA_DOWNLOAD_NAME"`
	RequestTimeout  time.Duration `envconfig:"ACTA_REQUEST_TIMEOUT" default:"90s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled     bool   `envconfig:"DB_ENABLED" default:"false"`
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"acta_generator"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"2"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"actas"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// RateLimitConfig holds the per client generation limit
type RateLimitConfig struct {
	PerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"0"` // 0 disables
	Window    time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// AuthConfig holds the operator token settings. Run history routes are
// only served when OperatorSecret is set.
type AuthConfig struct {
	OperatorSecret string        `envconfig:"OPERATOR_JWT_SECRET"`
	TokenExpiry    time.Duration `envconfig:"OPERATOR_TOKEN_EXPIRY" default:"12h"`
}

// Enabled reports whether operator tokens can be issued and checked
func (a AuthConfig) Enabled() bool {
	return a.OperatorSecret != ""
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadAuth reads only the operator token settings, for tools that never call the model
func LoadAuth() (*AuthConfig, error) {
	_ = godotenv.Load()

	var auth AuthConfig
	if err := envconfig.Process("", &auth); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if !auth.Enabled() {
		return nil, fmt.Errorf("OPERATOR_JWT_SECRET is not set")
	}
	if err := auth.validate(); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (a AuthConfig) validate() error {
	if a.Enabled() && len(a.OperatorSecret) < minSecretLen {
		return fmt.Errorf("OPERATOR_JWT_SECRET must be at least %d characters", minSecretLen)
	}
	if a.TokenExpiry <= 0 {
		return fmt.Errorf("OPERATOR_TOKEN_EXPIRY must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case ProviderGroq:
			c.LLM.Model = "llama-3.3-70b-versatile"
		default:
			c.LLM.Model = "gemini-2.0-flash"
		}
	}
	if c.Acta.DownloadName == "" {
		c.Acta.DownloadName = "Acta_" + slug(c.Acta.Organization) + ".docx"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderGroq:
		if c.LLM.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	switch c.Acta.TemplateSource {
	case "dir":
	case "minio":
		if !c.Storage.Enabled {
			return fmt.Errorf("ACTA_TEMPLATE_SOURCE=minio requires STORAGE_ENABLED=true")
		}
	default:
		return fmt.Errorf("unsupported ACTA_TEMPLATE_SOURCE %q", c.Acta.TemplateSource)
	}

	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	if c.Auth.Enabled() {
		return c.Auth.validate()
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// slug keeps the last word of the organization name, "Clínica La Ermita" -> "Ermita"
func slug(org string) string {
	fields := strings.Fields(org)
	if len(fields) == 0 {
		return "Reunion"
	}
	last := fields[len(fields)-1]
	var b strings.Builder
	for _, r := range last {
		if r < 128 && (r == '-' || r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Reunion"
	}
	return b.String()
}
