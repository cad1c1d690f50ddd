package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Auth   AuthConfig
	Parser ParserConfig
	OCR    OCRConfig
	S3     S3Config
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds token issuance and password hashing settings.
// DebugToken, when non-empty, is one fixed token accepted without a store
// lookup. It exists for local testing only and is disabled by default;
// deployments must leave it empty.
type AuthConfig struct {
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
	DebugToken  string        `mapstructure:"debug_token"`
}

// ParserProviderConfig holds settings for a single LLM endpoint.
type ParserProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds the model settings for the three bill parser variants.
// Vision serves the image-direct variant; Text serves both the free-text
// variant and the OCR-then-text variant.
type ParserConfig struct {
	Vision ParserProviderConfig `mapstructure:"vision"`
	Text   ParserProviderConfig `mapstructure:"text"`
}

// OCRConfig holds Baidu OCR credential settings. The access token is fetched
// at runtime via the OAuth client-credentials exchange and cached.
type OCRConfig struct {
	APIKey      string `mapstructure:"api_key"`
	SecretKey   string `mapstructure:"secret_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// S3Config holds receipt archival settings. An empty bucket disables archival.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether receipt archival is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SMARTLEDGER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SMARTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", "")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "smartledger")
	v.SetDefault("db.password", "smartledger_secret")
	v.SetDefault("db.name", "smartledger_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth defaults: 30-day tokens, debug bypass off
	v.SetDefault("auth.token_expiry", "720h")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.debug_token", "")

	// Parser defaults (DashScope OpenAI-compatible endpoint)
	v.SetDefault("parser.vision.api_key", "")
	v.SetDefault("parser.vision.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("parser.vision.model", "qwen3-vl-plus")
	v.SetDefault("parser.vision.timeout_secs", 120)
	v.SetDefault("parser.text.api_key", "")
	v.SetDefault("parser.text.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("parser.text.model", "qwen-turbo")
	v.SetDefault("parser.text.timeout_secs", 120)

	// OCR defaults
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.secret_key", "")
	v.SetDefault("ocr.timeout_secs", 30)

	// S3 defaults (archival disabled until a bucket is set)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "SMARTLEDGER_SERVER_PORT",
		"server.read_timeout":        "SMARTLEDGER_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "SMARTLEDGER_SERVER_WRITE_TIMEOUT",
		"server.environment":         "SMARTLEDGER_SERVER_ENVIRONMENT",
		"server.allowed_origins":     "SMARTLEDGER_SERVER_ALLOWED_ORIGINS",
		"db.host":                    "SMARTLEDGER_DB_HOST",
		"db.port":                    "SMARTLEDGER_DB_PORT",
		"db.user":                    "SMARTLEDGER_DB_USER",
		"db.password":                "SMARTLEDGER_DB_PASSWORD",
		"db.name":                    "SMARTLEDGER_DB_NAME",
		"db.sslmode":                 "SMARTLEDGER_DB_SSLMODE",
		"db.max_open":                "SMARTLEDGER_DB_MAX_OPEN",
		"db.max_idle":                "SMARTLEDGER_DB_MAX_IDLE",
		"auth.token_expiry":          "SMARTLEDGER_AUTH_TOKEN_EXPIRY",
		"auth.bcrypt_cost":           "SMARTLEDGER_AUTH_BCRYPT_COST",
		"auth.debug_token":           "SMARTLEDGER_AUTH_DEBUG_TOKEN",
		"parser.vision.api_key":      "SMARTLEDGER_PARSER_VISION_API_KEY",
		"parser.vision.base_url":     "SMARTLEDGER_PARSER_VISION_BASE_URL",
		"parser.vision.model":        "SMARTLEDGER_PARSER_VISION_MODEL",
		"parser.vision.timeout_secs": "SMARTLEDGER_PARSER_VISION_TIMEOUT_SECS",
		"parser.text.api_key":        "SMARTLEDGER_PARSER_TEXT_API_KEY",
		"parser.text.base_url":       "SMARTLEDGER_PARSER_TEXT_BASE_URL",
		"parser.text.model":          "SMARTLEDGER_PARSER_TEXT_MODEL",
		"parser.text.timeout_secs":   "SMARTLEDGER_PARSER_TEXT_TIMEOUT_SECS",
		"ocr.api_key":                "SMARTLEDGER_OCR_API_KEY",
		"ocr.secret_key":             "SMARTLEDGER_OCR_SECRET_KEY",
		"ocr.timeout_secs":           "SMARTLEDGER_OCR_TIMEOUT_SECS",
		"s3.region":                  "SMARTLEDGER_S3_REGION",
		"s3.bucket":                  "SMARTLEDGER_S3_BUCKET",
		"s3.endpoint":                "SMARTLEDGER_S3_ENDPOINT",
		"s3.access_key":              "SMARTLEDGER_S3_ACCESS_KEY",
		"s3.secret_key":              "SMARTLEDGER_S3_SECRET_KEY",
		"s3.presign_expiry":          "SMARTLEDGER_S3_PRESIGN_EXPIRY",
		"log.level":                  "SMARTLEDGER_LOG_LEVEL",
		"log.format":                 "SMARTLEDGER_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SMARTLEDGER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SMARTLEDGER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	var origins []string
	if raw := v.GetString("server.allowed_origins"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	cfg.Server = ServerConfig{
		Port:           serverPort,
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		Environment:    v.GetString("server.environment"),
		AllowedOrigins: origins,
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		TokenExpiry: v.GetDuration("auth.token_expiry"),
		BcryptCost:  v.GetInt("auth.bcrypt_cost"),
		DebugToken:  v.GetString("auth.debug_token"),
	}
	cfg.Parser = ParserConfig{
		Vision: ParserProviderConfig{
			APIKey:      v.GetString("parser.vision.api_key"),
			BaseURL:     v.GetString("parser.vision.base_url"),
			Model:       v.GetString("parser.vision.model"),
			TimeoutSecs: v.GetInt("parser.vision.timeout_secs"),
		},
		Text: ParserProviderConfig{
			APIKey:      v.GetString("parser.text.api_key"),
			BaseURL:     v.GetString("parser.text.base_url"),
			Model:       v.GetString("parser.text.model"),
			TimeoutSecs: v.GetInt("parser.text.timeout_secs"),
		},
	}
	cfg.OCR = OCRConfig{
		APIKey:      v.GetString("ocr.api_key"),
		SecretKey:   v.GetString("ocr.secret_key"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
