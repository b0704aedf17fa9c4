package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver   string `yaml:"db_driver" validate:"oneof=postgres mysql sqlite"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	// DatabaseURL overrides the individual DB_* settings when present.
	DatabaseURL string `yaml:"database_url"`

	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	SessionSecret string `yaml:"session_secret" validate:"required,min=16"`

	JWTSecret string        `yaml:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `yaml:"token_ttl" validate:"gt=0"`

	GinMode     string   `yaml:"gin_mode" validate:"oneof=debug release test"`
	ListenAddr  string   `yaml:"listen_addr" validate:"required"`
	CORSOrigins []string `yaml:"cors_origins"`
	TimeZone    string   `yaml:"time_zone" validate:"required"`

	UploadBackend  string `yaml:"upload_backend" validate:"oneof=local gcs"`
	UploadDir      string `yaml:"upload_dir"`
	GCSBucket      string `yaml:"gcs_bucket" validate:"required_if=UploadBackend gcs"`
	GCSCredentials string `yaml:"gcs_credentials"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=none stdout"`
}

// Load reads CONFIG_FILE (if set) and then applies environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DBDriver:      "postgres",
		DBHost:        "localhost",
		DBPort:        "5432",
		DBUser:        "reportuser",
		DBPassword:    "reportpassword",
		DBName:        "report_tracker",
		RedisPort:     "6379",
		SessionSecret: "default-secret-key-change-me",
		JWTSecret:     "dev-secret-change-me-please",
		TokenTTL:      constants.DefaultTokenTTL,
		GinMode:       "debug",
		ListenAddr:    ":8080",
		CORSOrigins:   []string{"http://localhost:5173"},
		TimeZone:      "Asia/Jakarta",
		UploadBackend: "local",
		UploadDir:     "uploads",
		TraceExporter: "none",
	}
}

func (c *Config) applyEnv() {
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnv("REDIS_PORT", c.RedisPort)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.TimeZone = getEnv("TIME_ZONE", c.TimeZone)
	c.UploadBackend = getEnv("UPLOAD_BACKEND", c.UploadBackend)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.GCSBucket = getEnv("GCS_BUCKET", c.GCSBucket)
	c.GCSCredentials = getEnv("GCS_CREDENTIALS", c.GCSCredentials)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.TraceExporter = getEnv("TRACE_EXPORTER", c.TraceExporter)

	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.TokenTTL = d
		} else if hours, err := strconv.Atoi(ttl); err == nil {
			c.TokenTTL = time.Duration(hours) * time.Hour
		}
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

// Validate checks field constraints and that the time zone resolves.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid configuration: time zone %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location returns the time zone used for calendar-month boundaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
