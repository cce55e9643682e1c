package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/flow-management/internal/shared/infrastructure/config"
	"github.com/saransh1220/flow-management/internal/shared/infrastructure/database"
)

type commandContext struct {
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(logLevelFlag *string) *commandContext {
	return &commandContext{logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.App.LogLevel = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

// logger builds a logger at the configured level. Long-running commands log
// JSON; one-shot commands log text unless LOG_FORMAT says otherwise.
func (c *commandContext) logger(w io.Writer, longRunning bool) *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return newLogger(w, "info", "text")
	}
	format := cfg.App.LogFormat
	if !longRunning && format == "json" {
		format = "text"
	}
	return newLogger(w, cfg.App.LogLevel, format)
}

func (c *commandContext) openDB() (*sqlx.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return database.NewMySQL(cfg.Database)
}

// openRedis connects when Redis is configured. A failed connection is logged
// and yields nil so callers fall back to MySQL only.
func (c *commandContext) openRedis(ctx context.Context, logger *slog.Logger) *redis.Client {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.Redis.Enabled() {
		return nil
	}
	rdb, err := database.NewRedis(ctx, cfg.Redis, 3*time.Second)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", "error", err)
		return nil
	}
	return rdb
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
