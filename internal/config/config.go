package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matheusmosca/storefront/internal/storage"
)

// Config reúne as configurações do serviço
type Config struct {
	Port           string         `yaml:"port"`
	Environment    string         `yaml:"env"`
	LogLevel       string         `yaml:"log_level"`
	ServiceName    string         `yaml:"service_name"`
	OTLPEndpoint   string         `yaml:"otlp_endpoint"`
	AuthServiceURL string         `yaml:"auth_service_url"`
	AuthTimeout    time.Duration  `yaml:"auth_timeout"`
	LockTimeout    time.Duration  `yaml:"lock_timeout"`
	Database       DatabaseConfig `yaml:"database"`
	Redis          RedisConfig    `yaml:"redis"`
}

// DatabaseConfig configura o PostgreSQL
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// RedisConfig configures the optional report cache. An empty Addr disables it.
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`
}

// Default retorna a configuração padrão para desenvolvimento local
func Default() Config {
	return Config{
		Port:           "8080",
		Environment:    "development",
		LogLevel:       "info",
		ServiceName:    "storefront",
		OTLPEndpoint:   "localhost:4318",
		AuthServiceURL: "http://auth-service:8080",
		AuthTimeout:    5 * time.Second,
		LockTimeout:    5 * time.Second,
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "root",
			Password: "pass",
			Name:     "storefront_db",
			MaxConns: 50,
			MinConns: 10,
		},
		Redis: RedisConfig{
			ReportCacheTTL: 30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENV", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.AuthServiceURL = getEnv("AUTH_SERVICE_URL", c.AuthServiceURL)

	c.Database.Host = getEnv("DATABASE_HOST", c.Database.Host)
	c.Database.Port = getEnv("DATABASE_PORT", c.Database.Port)
	c.Database.User = getEnv("DATABASE_USER", c.Database.User)
	c.Database.Password = getEnv("DATABASE_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DATABASE_NAME", c.Database.Name)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	var err error
	if c.AuthTimeout, err = getDurationEnv("AUTH_TIMEOUT", c.AuthTimeout); err != nil {
		return err
	}
	if c.LockTimeout, err = getDurationEnv("LOCK_TIMEOUT", c.LockTimeout); err != nil {
		return err
	}
	if c.Redis.ReportCacheTTL, err = getDurationEnv("REPORT_CACHE_TTL", c.Redis.ReportCacheTTL); err != nil {
		return err
	}

	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_MAX_CONNS %q: %w", v, err)
		}
		c.Database.MaxConns = int32(n)
	}
	return nil
}

// Validate verifica os valores obrigatórios
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		errs = append(errs, errors.New("database host and name are required"))
	}
	if c.AuthServiceURL == "" {
		errs = append(errs, errors.New("auth service url is required"))
	}
	if c.LockTimeout < 0 {
		errs = append(errs, errors.New("lock timeout must not be negative"))
	}
	if c.Database.MinConns > c.Database.MaxConns && c.Database.MaxConns > 0 {
		errs = append(errs, errors.New("database min_conns exceeds max_conns"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// StorageOptions converte a configuração do banco para storage.Options
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Name:     c.Database.Name,
		MaxConns: c.Database.MaxConns,
		MinConns: c.Database.MinConns,
	}
}

// IsProduction indica se o serviço roda em produção
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
