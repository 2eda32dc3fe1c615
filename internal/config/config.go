package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"fuel-backend/internal/reconcile"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "configs/config.yaml"

// Server modes
const (
	ModeStaff  = "staff"
	ModeClient = "client"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		Mode               string   `mapstructure:"mode"`
		Store              string   `mapstructure:"store"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	// Storage is the S3-compatible bucket payment proofs are uploaded to.
	Storage struct {
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		PublicURL string `mapstructure:"public_url"`
	} `mapstructure:"storage"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Business struct {
		CompanyName         string            `mapstructure:"company_name"`
		Timezone            string            `mapstructure:"timezone"`
		StatementCategories []string          `mapstructure:"statement_categories"`
		Shareholders        []reconcile.Share `mapstructure:"shareholders"`
		OverdueSweepCron    string            `mapstructure:"overdue_sweep_cron"`
		DebtorPageSize      int               `mapstructure:"debtor_page_size"`
	} `mapstructure:"business"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", ModeStaff)
	v.SetDefault("server.store", StorePostgres)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "fuel_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "fuel-backend")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("storage.region", "auto")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("business.company_name", "Fuel Trading Ltd")
	v.SetDefault("business.timezone", "Africa/Accra")
	v.SetDefault("business.statement_categories", []string{"PMS", "AGO"})
	v.SetDefault("business.shareholders", []map[string]interface{}{
		{"name": "Rex", "share": 0.35},
		{"name": "Simon", "share": 0.35},
		{"name": "Paul", "share": 0.30},
	})
	v.SetDefault("business.overdue_sweep_cron", "")
	v.SetDefault("business.debtor_page_size", 10)
}

// Load reads .env, then the YAML file at path (optional), then the
// environment. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Info().Str("component", "config").Str("path", path).Msg("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			*dst = n
		}
	}
}

// applyEnv lets the deployment's conventional variables win over the file.
func (c *Config) applyEnv() {
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Name)

	if c.JWT.Secret == "" || c.JWT.Secret == "${JWT_SECRET}" {
		c.JWT.Secret = os.Getenv("JWT_SECRET")
	}

	envString("REDIS_HOST", &c.Redis.Host)
	envInt("REDIS_PORT", &c.Redis.Port)
	envString("REDIS_PASSWORD", &c.Redis.Password)

	envString("S3_ENDPOINT", &c.Storage.Endpoint)
	envString("S3_BUCKET", &c.Storage.Bucket)
	envString("S3_ACCESS_KEY", &c.Storage.AccessKey)
	envString("S3_SECRET_KEY", &c.Storage.SecretKey)
}

// Validate rejects a configuration the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("jwt secret is not set (JWT_SECRET)")
	}
	switch c.Server.Mode {
	case ModeStaff, ModeClient:
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	switch c.Server.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Server.Store)
	}
	if len(c.Business.Shareholders) > 0 {
		total := 0.0
		for _, s := range c.Business.Shareholders {
			total += s.Share
		}
		if math.Abs(total-1) > 1e-6 {
			return fmt.Errorf("shareholder split sums to %.4f, want 1", total)
		}
	}
	return nil
}

// DSN is the Postgres connection string.
func (c *Config) DSN() string {
	d := c.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisAddr is host:port of the cache.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// StorageEnabled reports whether payment proofs can be uploaded.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != "" && c.Storage.AccessKey != "" && c.Storage.SecretKey != ""
}
