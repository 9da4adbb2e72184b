package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite (default) or mysql
	Path   string `yaml:"path"`   // sqlite file path
	DSN    string `yaml:"dsn"`    // mysql DSN
}

type JWTConfig struct {
	Secret           string `yaml:"secret"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	RefreshTTLHours  int    `yaml:"refresh_ttl_hours"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SeedConfig struct {
	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"` // admin is seeded only when set
	SampleMenu    bool   `yaml:"sample_menu"`
}

type Config struct {
	BaseURL  string         `yaml:"base_url"` // used to build links in emails
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	CORS     CORSConfig     `yaml:"cors"`
	S3       S3Config       `yaml:"s3"`
	Log      LogConfig      `yaml:"log"`
	Seed     SeedConfig     `yaml:"seed"`
}

// Load assembles configuration in three layers: built-in defaults, an
// optional YAML file (CONFIG_FILE, default config.yaml), then environment
// variables. A missing .env or config file is fine; a malformed one is not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		BaseURL: "http://localhost:8080",
		Server:  ServerConfig{Port: "8080", Mode: "debug"},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "cafeteria.db",
		},
		JWT: JWTConfig{
			Secret:           "cafeteria-dev-secret-change-in-production",
			AccessTTLMinutes: 60,
			RefreshTTLHours:  24 * 30,
		},
		CORS: CORSConfig{AllowOrigins: []string{"*"}},
		Log:  LogConfig{Level: "info", Format: "json"},
		Seed: SeedConfig{
			AdminUsername: "admin",
			AdminEmail:    "admin@cafehub.com",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.BaseURL = getEnv("APP_BASE_URL", cfg.BaseURL)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Mode = getEnv("GIN_MODE", cfg.Server.Mode)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)
	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.AccessTTLMinutes = getEnvInt("JWT_ACCESS_TTL_MINUTES", cfg.JWT.AccessTTLMinutes)
	cfg.JWT.RefreshTTLHours = getEnvInt("JWT_REFRESH_TTL_HOURS", cfg.JWT.RefreshTTLHours)
	cfg.SMTP.Host = getEnv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", cfg.SMTP.Password)
	cfg.SMTP.From = getEnv("SMTP_FROM", cfg.SMTP.From)
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		cfg.CORS.AllowOrigins = splitAndTrim(origins)
	}
	cfg.S3.Bucket = getEnv("S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Region = getEnv("AWS_REGION", cfg.S3.Region)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Seed.AdminUsername = getEnv("SEED_ADMIN_USERNAME", cfg.Seed.AdminUsername)
	cfg.Seed.AdminEmail = getEnv("SEED_ADMIN_EMAIL", cfg.Seed.AdminEmail)
	cfg.Seed.AdminPassword = getEnv("SEED_ADMIN_PASSWORD", cfg.Seed.AdminPassword)
	cfg.Seed.SampleMenu = getEnvBool("SEED_SAMPLE_MENU", cfg.Seed.SampleMenu)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
