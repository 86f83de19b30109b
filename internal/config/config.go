package config

import (
	"errors"
	"fmt"
	"strings"

	"linkkit/internal/util"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPAddr   string
	BaseURL    string // empty: derived from each request's host
	DevHTTP    bool
	AdminToken string

	Store       string
	StorePath   string
	DatabaseDSN string
	RedisAddr   string

	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int

	ExportDir string
	Minio     MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object store was configured.
func (m MinioConfig) Enabled() bool { return m.Endpoint != "" }

// LoadDotEnv loads .env from the working directory if there is one.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load reads configuration from the environment, with an optional YAML
// file underneath it. An empty path looks for config.yaml in . and
// ./configs and is fine when none exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		BaseURL:        strings.TrimSpace(v.GetString("BASE_URL")),
		DevHTTP:        v.GetBool("DEV_HTTP"),
		AdminToken:     v.GetString("ADMIN_TOKEN"),
		Store:          strings.ToLower(v.GetString("STORE")),
		StorePath:      v.GetString("STORE_PATH"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		ExportDir:      v.GetString("EXPORT_DIR"),
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
	}
	if cfg.Store == "" {
		cfg.Store = StoreFile
		if cfg.DatabaseDSN != "" {
			cfg.Store = StorePostgres
		}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_PATH", "data/links.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("MINIO_BUCKET", "qr-exports")
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.StorePath == "" {
			errs = append(errs, errors.New("STORE_PATH is required for the file store"))
		}
	case StorePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE %q", c.Store))
	}
	if c.BaseURL != "" && !util.ValidateURL(c.BaseURL) {
		errs = append(errs, fmt.Errorf("BASE_URL %q is not an absolute URL", c.BaseURL))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
