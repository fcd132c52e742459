package config

import (
	"os"
	"strconv"
	"time"
)

// Application settings
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Upstream UpstreamConfig
	Storage  StorageConfig
	OpenAI   OpenAIConfig
	SMTP     SMTPConfig
	PDF      PDFConfig
}

// Server settings
type ServerConfig struct {
	Port       string
	PublicBase string
}

// Ad-platform sample-data API settings
type UpstreamConfig struct {
	BaseURL            string
	APIToken           string
	AuthHeaderName     string
	RequestTimeout     time.Duration
	RateLimitPerSecond int
}

type StorageConfig struct {
	DataDir   string
	ReportDir string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type PDFConfig struct {
	RenderTimeout time.Duration
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:       getEnv("PORT", "4000"),
			PublicBase: getEnv("SERVER_PUBLIC_BASE", "http://localhost:4000"),
		},
		Upstream: UpstreamConfig{
			BaseURL:            getEnv("UPSTREAM_API_BASE", "https://bizdev.newform.ai"),
			APIToken:           getEnv("UPSTREAM_API_TOKEN", "NEWFORMCODINGCHALLENGE"),
			AuthHeaderName:     getEnv("UPSTREAM_AUTH_HEADER_NAME", "Authorization"),
			RequestTimeout:     getDurationEnv("UPSTREAM_REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond: getIntEnv("UPSTREAM_RATE_LIMIT_PER_SECOND", 10),
		},
		Storage: StorageConfig{
			DataDir:   getEnv("DATA_DIR", "data"),
			ReportDir: getEnv("REPORT_DIR", "reports"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getIntEnv("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		PDF: PDFConfig{
			RenderTimeout: getDurationEnv("PDF_RENDER_TIMEOUT", "60s"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
