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
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	Analyzer AnalyzerConfig
	Monitor  MonitorConfig
	Billing  BillingConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// S3Config holds object storage settings for uploaded scans.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalyzerConfig holds settings for the external OCR/AI analysis service.
type AnalyzerConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

// MonitorConfig holds batch job monitor settings.
type MonitorConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
}

// BillingConfig holds the built-in billing defaults used when the settings
// store has no value for a key.
type BillingConfig struct {
	BaseRate         string `mapstructure:"base_rate"`
	WordsPerPage     int    `mapstructure:"words_per_page"`
	EasyMultiplier   string `mapstructure:"easy_multiplier"`
	MediumMultiplier string `mapstructure:"medium_multiplier"`
	HardMultiplier   string `mapstructure:"hard_multiplier"`
	MinBillablePages string `mapstructure:"min_billable_pages"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the TRANSQUOTE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRANSQUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "transquote")
	v.SetDefault("db.password", "transquote_secret")
	v.SetDefault("db.name", "transquote_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "transquote-scans")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Analyzer defaults
	v.SetDefault("analyzer.base_url", "http://localhost:9090")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.timeout_secs", 120)
	v.SetDefault("analyzer.max_retries", 3)

	// Monitor defaults
	v.SetDefault("monitor.poll_interval_secs", 10)

	// Billing defaults used when the settings store is empty
	v.SetDefault("billing.base_rate", "65.00")
	v.SetDefault("billing.words_per_page", 225)
	v.SetDefault("billing.easy_multiplier", "1.0")
	v.SetDefault("billing.medium_multiplier", "1.15")
	v.SetDefault("billing.hard_multiplier", "1.25")
	v.SetDefault("billing.min_billable_pages", "0.5")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "TRANSQUOTE_SERVER_PORT",
		"server.read_timeout":        "TRANSQUOTE_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "TRANSQUOTE_SERVER_WRITE_TIMEOUT",
		"server.environment":         "TRANSQUOTE_SERVER_ENVIRONMENT",
		"db.host":                    "TRANSQUOTE_DB_HOST",
		"db.port":                    "TRANSQUOTE_DB_PORT",
		"db.user":                    "TRANSQUOTE_DB_USER",
		"db.password":                "TRANSQUOTE_DB_PASSWORD",
		"db.name":                    "TRANSQUOTE_DB_NAME",
		"db.sslmode":                 "TRANSQUOTE_DB_SSLMODE",
		"db.max_open":                "TRANSQUOTE_DB_MAX_OPEN",
		"db.max_idle":                "TRANSQUOTE_DB_MAX_IDLE",
		"s3.region":                  "TRANSQUOTE_S3_REGION",
		"s3.bucket":                  "TRANSQUOTE_S3_BUCKET",
		"s3.endpoint":                "TRANSQUOTE_S3_ENDPOINT",
		"s3.access_key":              "TRANSQUOTE_S3_ACCESS_KEY",
		"s3.secret_key":              "TRANSQUOTE_S3_SECRET_KEY",
		"s3.max_file_size_mb":        "TRANSQUOTE_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":          "TRANSQUOTE_S3_PRESIGN_EXPIRY",
		"log.level":                  "TRANSQUOTE_LOG_LEVEL",
		"log.format":                 "TRANSQUOTE_LOG_FORMAT",
		"analyzer.base_url":          "TRANSQUOTE_ANALYZER_BASE_URL",
		"analyzer.api_key":           "TRANSQUOTE_ANALYZER_API_KEY",
		"analyzer.timeout_secs":      "TRANSQUOTE_ANALYZER_TIMEOUT_SECS",
		"analyzer.max_retries":       "TRANSQUOTE_ANALYZER_MAX_RETRIES",
		"monitor.poll_interval_secs": "TRANSQUOTE_MONITOR_POLL_INTERVAL_SECS",
		"billing.base_rate":          "TRANSQUOTE_BILLING_BASE_RATE",
		"billing.words_per_page":     "TRANSQUOTE_BILLING_WORDS_PER_PAGE",
		"billing.easy_multiplier":    "TRANSQUOTE_BILLING_EASY_MULTIPLIER",
		"billing.medium_multiplier":  "TRANSQUOTE_BILLING_MEDIUM_MULTIPLIER",
		"billing.hard_multiplier":    "TRANSQUOTE_BILLING_HARD_MULTIPLIER",
		"billing.min_billable_pages": "TRANSQUOTE_BILLING_MIN_BILLABLE_PAGES",
		"cors.allowed_origins":       "TRANSQUOTE_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TRANSQUOTE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TRANSQUOTE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Analyzer = AnalyzerConfig{
		BaseURL:     v.GetString("analyzer.base_url"),
		APIKey:      v.GetString("analyzer.api_key"),
		TimeoutSecs: v.GetInt("analyzer.timeout_secs"),
		MaxRetries:  v.GetInt("analyzer.max_retries"),
	}
	cfg.Monitor = MonitorConfig{
		PollIntervalSecs: v.GetInt("monitor.poll_interval_secs"),
	}
	cfg.Billing = BillingConfig{
		BaseRate:         v.GetString("billing.base_rate"),
		WordsPerPage:     v.GetInt("billing.words_per_page"),
		EasyMultiplier:   v.GetString("billing.easy_multiplier"),
		MediumMultiplier: v.GetString("billing.medium_multiplier"),
		HardMultiplier:   v.GetString("billing.hard_multiplier"),
		MinBillablePages: v.GetString("billing.min_billable_pages"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
