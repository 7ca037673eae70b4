package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット（必須）

	RedisAddr     string // 空なら通知は送らない
	RedisPassword string
	RedisDB       int
	NotifyChannel string

	LogLevel  string // debug/info/warn/error
	LogFormat string // json/console
	GoEnv     string // dev/prod

	ShutdownTimeout time.Duration
}

var envKeys = map[string]string{
	"port":              "SERVER_PORT",
	"database_url":      "DATABASE_URL",
	"postgres_user":     "POSTGRES_USER",
	"postgres_password": "POSTGRES_PASSWORD",
	"postgres_db":       "POSTGRES_DB",
	"postgres_host":     "POSTGRES_HOST",
	"postgres_port":     "POSTGRES_PORT",
	"postgres_sslmode":  "POSTGRES_SSLMODE",
	"jwt_secret":        "JWT_SECRET",
	"redis_addr":        "REDIS_ADDR",
	"redis_password":    "REDIS_PASSWORD",
	"redis_db":          "REDIS_DB",
	"notify_channel":    "NOTIFY_CHANNEL",
	"log_level":         "LOG_LEVEL",
	"log_format":        "LOG_FORMAT",
	"go_env":            "GO_ENV",
	"shutdown_timeout":  "SHUTDOWN_TIMEOUT",
}

// Loadは .env（あれば）と環境変数から設定を読む
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		//無ければ環境変数だけで動かす
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "postgres")
	v.SetDefault("postgres_db", "portal")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("redis_db", 0)
	v.SetDefault("notify_channel", "portal.notifications")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("go_env", "dev")
	v.SetDefault("shutdown_timeout", "10s")

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := Config{
		Port: strings.TrimPrefix(v.GetString("port"), ":"),

		DatabaseURL:      v.GetString("database_url"),
		PostgresUser:     v.GetString("postgres_user"),
		PostgresPassword: v.GetString("postgres_password"),
		PostgresDB:       v.GetString("postgres_db"),
		PostgresHost:     v.GetString("postgres_host"),
		PostgresPort:     v.GetInt("postgres_port"),
		PostgresSSLMode:  v.GetString("postgres_sslmode"),

		JWTSecret: v.GetString("jwt_secret"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		NotifyChannel: v.GetString("notify_channel"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
		GoEnv:     v.GetString("go_env"),

		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PostgresPort <= 0 {
		return Config{}, fmt.Errorf("POSTGRES_PORT must be number")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or console")
	}

	return cfg, nil
}

// DSN は DATABASE_URL が無いときに POSTGRES_* から組み立てる
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) Addr() string {
	return ":" + c.Port
}
