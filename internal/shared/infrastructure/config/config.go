package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/saransh1220/flow-management/internal/shared/infrastructure/database"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database database.MySQLConfig
	Redis    database.RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Triggers TriggerConfig
	Poller   PollerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Timezone    string
	LogLevel    string
	LogFormat   string
	AutoMigrate bool
}

// TriggerConfig holds the cron trigger settings
type TriggerConfig struct {
	// Enabled runs the triggers inside the serve process as well.
	Enabled       bool
	DelayWindow   time.Duration
	NotesWindow   time.Duration
	CheckInterval time.Duration
	DailyInterval time.Duration
	LockDir       string
}

// PollerConfig holds settings for the watch client
type PollerConfig struct {
	BaseURL        string
	Token          string
	InitialDelay   time.Duration
	Interval       time.Duration
	RequestTimeout time.Duration
	AlertedCap     int
	UseRedis       bool
}

var defaults = map[string]any{
	"port":            "8080",
	"allowed_origins": "http://localhost:4200",

	"db_host":              "localhost",
	"db_port":              "3306",
	"db_user":              "root",
	"db_password":          "",
	"db_name":              "fms",
	"db_max_open_conns":    25,
	"db_max_idle_conns":    5,
	"db_conn_max_lifetime": "5m",
	"db_auto_migrate":      false,

	"redis_host":     "localhost",
	"redis_port":     "6379",
	"redis_password": "",
	"redis_db":       0,

	"jwt_secret":     "default-dev-secret",
	"jwt_expiration": "24h",

	"app_timezone": "Asia/Kolkata",
	"log_level":    "info",
	"log_format":   "json",

	"triggers_enabled":       false,
	"trigger_delay_window":   "5m",
	"trigger_notes_window":   "5m",
	"trigger_check_interval": "1m",
	"trigger_daily_interval": "1h",
	"trigger_lock_dir":       os.TempDir(),

	"poller_base_url":        "http://localhost:8080",
	"poller_token":           "",
	"poller_initial_delay":   "3s",
	"poller_interval":        "10s",
	"poller_request_timeout": "8s",
	"poller_alerted_cap":     100,
	"poller_use_redis":       false,
}

// Load reads configuration from environment variables and, when FMS_CONFIG
// points at a file, from that file. Environment variables win over the file.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("FMS_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return Config{
		Server: ServerConfig{
			Port:           v.GetString("port"),
			AllowedOrigins: v.GetString("allowed_origins"),
		},
		Database: database.MySQLConfig{
			Host:            v.GetString("db_host"),
			Port:            v.GetString("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			DBName:          v.GetString("db_name"),
			Timezone:        v.GetString("app_timezone"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: parseDuration(v.GetString("db_conn_max_lifetime"), 5*time.Minute),
		},
		Redis: database.RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			Expiry: parseDuration(v.GetString("jwt_expiration"), 24*time.Hour),
		},
		App: AppConfig{
			Timezone:    v.GetString("app_timezone"),
			LogLevel:    v.GetString("log_level"),
			LogFormat:   v.GetString("log_format"),
			AutoMigrate: v.GetBool("db_auto_migrate"),
		},
		Triggers: TriggerConfig{
			Enabled:       v.GetBool("triggers_enabled"),
			DelayWindow:   parseDuration(v.GetString("trigger_delay_window"), 5*time.Minute),
			NotesWindow:   parseDuration(v.GetString("trigger_notes_window"), 5*time.Minute),
			CheckInterval: parseDuration(v.GetString("trigger_check_interval"), time.Minute),
			DailyInterval: parseDuration(v.GetString("trigger_daily_interval"), time.Hour),
			LockDir:       v.GetString("trigger_lock_dir"),
		},
		Poller: PollerConfig{
			BaseURL:        v.GetString("poller_base_url"),
			Token:          v.GetString("poller_token"),
			InitialDelay:   parseDuration(v.GetString("poller_initial_delay"), 3*time.Second),
			Interval:       parseDuration(v.GetString("poller_interval"), 10*time.Second),
			RequestTimeout: parseDuration(v.GetString("poller_request_timeout"), 8*time.Second),
			AlertedCap:     v.GetInt("poller_alerted_cap"),
			UseRedis:       v.GetBool("poller_use_redis"),
		},
	}, nil
}

// Location resolves the configured time zone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	return defaultValue
}
