package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort string

	// Remote finance API
	APIBaseURL  string
	APITimeout  time.Duration
	DataBackend string // http | memory

	// Audit store; empty keeps batch runs in memory
	DatabaseDSN string

	JWTSecret          string
	AdminPasswordHash  string
	BranchPasswordHash string
	CORSOrigins        string

	LogLevel  string
	LogFormat string

	CategoriesFile   string
	BatchConcurrency int
	SnapshotTTL      time.Duration

	AMQPURL      string
	AMQPExchange string
}

// Load reads the environment, after loading envFiles (or ".env" when none
// are given) if present. Missing files are not an error.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:5000"),
		APITimeout:         getEnvDuration("API_TIMEOUT", 15*time.Second),
		DataBackend:        getEnv("DATA_BACKEND", "http"),
		DatabaseDSN:        getEnv("DATABASE_DSN", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		BranchPasswordHash: getEnv("BRANCH_PASSWORD_HASH", ""),
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		CategoriesFile:     getEnv("CATEGORIES_FILE", ""),
		BatchConcurrency:   getEnvInt("BATCH_CONCURRENCY", 4),
		SnapshotTTL:        getEnvDuration("SNAPSHOT_TTL", 30*time.Second),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "finance-console"),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid HTTP_PORT %q: must be a number between 1 and 65535", c.HTTPPort))
	}

	switch c.DataBackend {
	case "http":
		if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid API_BASE_URL %q", c.APIBaseURL))
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid DATA_BACKEND %q: must be http or memory", c.DataBackend))
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "API_TIMEOUT must be positive")
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters")
	}
	if c.AdminPasswordHash == "" {
		problems = append(problems, "ADMIN_PASSWORD_HASH is required")
	}
	if c.BranchPasswordHash == "" {
		problems = append(problems, "BRANCH_PASSWORD_HASH is required")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL %q", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat))
	}

	if c.BatchConcurrency < 1 || c.BatchConcurrency > 64 {
		problems = append(problems, fmt.Sprintf("invalid BATCH_CONCURRENCY %d: must be between 1 and 64", c.BatchConcurrency))
	}
	if c.SnapshotTTL < 0 {
		problems = append(problems, "SNAPSHOT_TTL must not be negative")
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE is required when AMQP_URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Warnings lists settings that work but should not reach production.
func (c *Config) Warnings() []string {
	var out []string
	if c.CORSOrigins == "http://localhost:5173" {
		out = append(out, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.DatabaseDSN == "" {
		out = append(out, "DATABASE_DSN is empty, batch runs are kept in memory only")
	}
	if c.DataBackend == "memory" {
		out = append(out, "DATA_BACKEND=memory, nothing reaches the remote API")
	}
	return out
}

// CORSOriginList splits CORS_ALLOWED_ORIGINS.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type categoriesFile struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories reads the default category list from a YAML file of the
// form "categories: [Rent, Petrol]". An empty path yields nil.
func LoadCategories(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var f categoriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories file %s: %w", path, err)
	}
	out := make([]string, 0, len(f.Categories))
	seen := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
