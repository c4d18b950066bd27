package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	AppName  string
	LogLevel string

	HTTP  HTTP
	DB    DB
	Redis Redis
	Kafka Kafka
	Auth  Auth
	Jobs  Jobs
}

type HTTP struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type DB struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Kafka struct {
	Brokers     []string
	TopicPrefix string
}

type Auth struct {
	JWTSecret  string
	Issuer     string
	CookieName string

	// AdminEmail and AdminPassword seed the first admin account when none exists.
	AdminEmail    string
	AdminPassword string
}

const (
	DefaultJWTSecret   = "change-me"
	MinJWTSecretLength = 32
)

var devEnvs = map[string]bool{"dev": true, "development": true, "local": true, "test": true}

type Jobs struct {
	CouponSweep     string
	StaleOrderSweep string
	StaleOrderAfter time.Duration
}

var defaults = map[string]any{
	"app.env":                "dev",
	"app.name":               "techstore",
	"log.level":              "info",
	"http.port":              8080,
	"http.read_timeout":      15 * time.Second,
	"http.write_timeout":     15 * time.Second,
	"http.shutdown_timeout":  10 * time.Second,
	"http.cors_origins":      []string{"http://localhost:3000"},
	"db.host":                "localhost",
	"db.port":                5432,
	"db.user":                "shopping",
	"db.password":            "shoppingpassword",
	"db.name":                "shopping_db",
	"db.sslmode":             "disable",
	"db.max_open_conns":      20,
	"db.max_idle_conns":      5,
	"db.conn_max_lifetime":   30 * time.Minute,
	"db.auto_migrate":        false,
	"redis.enabled":          false,
	"redis.addr":             "localhost:6379",
	"redis.password":         "",
	"redis.db":               0,
	"redis.ttl":              time.Minute,
	"kafka.brokers":          []string{},
	"kafka.topic_prefix":     "techstore",
	"auth.jwt_secret":        DefaultJWTSecret,
	"auth.issuer":            "",
	"auth.cookie_name":       "access_token",
	"auth.admin_email":       "",
	"auth.admin_password":    "",
	"jobs.coupon_sweep":      "@every 5m",
	"jobs.stale_order_sweep": "@every 30m",
	"jobs.stale_order_after": 48 * time.Hour,
}

// Load reads .env (if any), config.yaml from ./ or ./configs, and STORE_* environment
// variables, in increasing order of precedence. Missing files are fine; unreadable ones are not.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	return load(".", "./configs")
}

func load(paths ...string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v), nil
}

// ValidateAuth refuses the built-in or a short JWT secret outside development environments.
func (c Config) ValidateAuth() error {
	if devEnvs[strings.ToLower(strings.TrimSpace(c.AppEnv))] {
		return nil
	}
	switch {
	case c.Auth.JWTSecret == DefaultJWTSecret:
		return fmt.Errorf("auth.jwt_secret is the built-in default in env %q", c.AppEnv)
	case len(c.Auth.JWTSecret) < MinJWTSecretLength:
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes in env %q", MinJWTSecretLength, c.AppEnv)
	}
	return nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppEnv:   v.GetString("app.env"),
		AppName:  v.GetString("app.name"),
		LogLevel: v.GetString("log.level"),
		HTTP: HTTP{
			Port:            v.GetInt("http.port"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			CORSOrigins:     splitList(v.GetStringSlice("http.cors_origins")),
		},
		DB: DB{
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			SSLMode:         v.GetString("db.sslmode"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("db.auto_migrate"),
		},
		Redis: Redis{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: Kafka{
			Brokers:     splitList(v.GetStringSlice("kafka.brokers")),
			TopicPrefix: v.GetString("kafka.topic_prefix"),
		},
		Auth: Auth{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			Issuer:        v.GetString("auth.issuer"),
			CookieName:    v.GetString("auth.cookie_name"),
			AdminEmail:    v.GetString("auth.admin_email"),
			AdminPassword: v.GetString("auth.admin_password"),
		},
		Jobs: Jobs{
			CouponSweep:     v.GetString("jobs.coupon_sweep"),
			StaleOrderSweep: v.GetString("jobs.stale_order_sweep"),
			StaleOrderAfter: v.GetDuration("jobs.stale_order_after"),
		},
	}
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
