package database

import (
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// MySQLConfig holds MySQL connection configuration
type MySQLConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	Timezone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the driver DSN. DATETIME columns are parsed into the configured
// time zone so trigger windows compare in the same zone the rows were written in.
func (c MySQLConfig) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.User
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.Host, c.Port)
	dsn.DBName = c.DBName
	dsn.ParseTime = true
	dsn.Loc = c.location()
	dsn.Timeout = 5 * time.Second
	return dsn.FormatDSN()
}

// MigrationDSN is the DSN used by the migration runner, which needs
// multi-statement support for the schema files.
func (c MySQLConfig) MigrationDSN() string {
	cfg, err := mysql.ParseDSN(c.DSN())
	if err != nil {
		return c.DSN()
	}
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

func (c MySQLConfig) location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NewMySQL opens and verifies a pooled MySQL connection
func NewMySQL(cfg MySQLConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}
