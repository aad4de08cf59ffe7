package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/aw-admin-api/pkg/config"
)

// New returns a configured client for the driver named in cfg.
func New(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN builds the driver specific connection string. DATABASE_URL wins over
// the discrete settings; MySQL connections always parse times as UTC.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.URL != "" {
			return cfg.URL, nil
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		), nil
	case config.DriverMySQL:
		var myCfg *mysql.Config
		if cfg.URL != "" {
			parsed, err := mysql.ParseDSN(cfg.URL)
			if err != nil {
				return "", fmt.Errorf("parse mysql dsn: %w", err)
			}
			myCfg = parsed
		} else {
			myCfg = mysql.NewConfig()
			myCfg.User = cfg.User
			myCfg.Passwd = cfg.Password
			myCfg.Net = "tcp"
			myCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
			myCfg.DBName = cfg.Name
		}
		myCfg.ParseTime = true
		myCfg.Loc = time.UTC
		return myCfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Ping reports whether the store is reachable.
func Ping(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database not configured")
	}
	return db.PingContext(ctx)
}
