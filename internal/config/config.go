package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// ErrInvalidConfig возвращается, если конфигурация содержит недопустимые значения
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Storage        StorageConfig        `toml:"storage"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Redis          RedisConfig          `toml:"redis"`
	Auth           AuthConfig           `toml:"auth"`
	AccountService AccountServiceConfig `toml:"account_service"`
	Notifications  NotificationsConfig  `toml:"notifications"`
	Assets         AssetsConfig         `toml:"assets"`
	Reconciler     ReconcilerConfig     `toml:"reconciler"`
	RateLimit      RateLimitConfig      `toml:"rate_limit"`
}

// ServerConfig HTTP сервер, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int      `toml:"http_port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	IdleTimeout     int      `toml:"idle_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	MaxUploadMB     int      `toml:"max_upload_mb"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// StorageConfig выбор хранилища: postgres или memory (для локального запуска)
type StorageConfig struct {
	Driver string `toml:"driver"`
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig кэш конфигурации календаря. Выключенный кэш означает чтение из БД на каждый запрос
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      int    `toml:"ttl"` // секунды
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	AdminRole string `toml:"admin_role"`
}

type AccountServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// NotificationsConfig публикация уведомлений в RabbitMQ. Выключенные уведомления пишутся в лог
type NotificationsConfig struct {
	Enabled    bool   `toml:"enabled"`
	AMQPURL    string `toml:"amqp_url"`
	Queue      string `toml:"queue"`
	AdminEmail string `toml:"admin_email"`
}

type AssetsConfig struct {
	Dir           string `toml:"dir"`
	PublicBaseURL string `toml:"public_base_url"`
}

type ReconcilerConfig struct {
	Enabled     bool `toml:"enabled"`
	Interval    int  `toml:"interval"` // секунды
	HorizonDays int  `toml:"horizon_days"`
}

// RateLimitConfig ограничение публичных эндпоинтов календаря по IP
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Load читает .env (если есть), затем TOML-файл, затем переопределения из окружения
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
			MaxUploadMB:     25,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Storage:        StorageConfig{Driver: StorageDriverPostgres},
		Logs:           LogsConfig{Level: "info"},
		Metrics:        MetricsConfig{Path: "/metrics", ServiceName: "slot-booking"},
		Redis:          RedisConfig{Addr: "localhost:6379", TTL: 60},
		Auth:           AuthConfig{AdminRole: "admin"},
		AccountService: AccountServiceConfig{Timeout: 5},
		Notifications:  NotificationsConfig{Queue: "notifications"},
		Assets:         AssetsConfig{Dir: "./data/assets"},
		Reconciler:     ReconcilerConfig{Interval: 3600, HorizonDays: 60},
		RateLimit:      RateLimitConfig{RequestsPerSecond: 5, Burst: 10},
	}
}

// applyEnv переопределяет секреты и адреса внешних сервисов из окружения
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DB_PASSWORD":         &c.Database.Password,
		"JWT_SECRET":          &c.Auth.JWTSecret,
		"AMQP_URL":            &c.Notifications.AMQPURL,
		"REDIS_PASSWORD":      &c.Redis.Password,
		"ACCOUNT_SERVICE_URL": &c.AccountService.URL,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}
}

// Validate отклоняет невозможные значения
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Server.MaxUploadMB <= 0 {
		problems = append(problems, "server.max_upload_mb must be positive")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for postgres storage")
		}
	case StorageDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver must be %q or %q", StorageDriverPostgres, StorageDriverMemory))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}
	if c.Redis.Enabled && (c.Redis.Addr == "" || c.Redis.TTL <= 0) {
		problems = append(problems, "redis.addr and a positive redis.ttl are required when redis is enabled")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.AccountService.URL == "" {
		problems = append(problems, "account_service.url (or ACCOUNT_SERVICE_URL) is required")
	}
	if c.AccountService.Timeout <= 0 {
		problems = append(problems, "account_service.timeout must be positive")
	}
	if c.Notifications.Enabled && (c.Notifications.AMQPURL == "" || c.Notifications.Queue == "") {
		problems = append(problems, "notifications.amqp_url (or AMQP_URL) and notifications.queue are required when notifications are enabled")
	}
	if c.Assets.Dir == "" || c.Assets.PublicBaseURL == "" {
		problems = append(problems, "assets.dir and assets.public_base_url are required")
	}
	if c.Reconciler.Enabled && (c.Reconciler.Interval <= 0 || c.Reconciler.HorizonDays < 0) {
		problems = append(problems, "reconciler.interval must be positive and reconciler.horizon_days not negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		problems = append(problems, "rate_limit.requests_per_second and rate_limit.burst must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Seconds переводит значение конфигурации в секундах в time.Duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
