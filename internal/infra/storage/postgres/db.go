package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/vietddude/authkit/internal/metrics"
)

// Config holds the session database settings. Zero values take the defaults
// from WithDefaults.
type Config struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	StatsInterval   time.Duration `yaml:"stats_interval"`
}

// WithDefaults fills unset pool settings.
func (c Config) WithDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 1
	}
	c.MaxIdleConns = min(c.MaxIdleConns, c.MaxOpenConns)
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = 30 * time.Second
	}
	return c
}

// DB is the session database handle.
type DB struct {
	*sqlx.DB
	cfg Config
}

// NewDB connects over pgx and applies the pool settings from cfg.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.WithDefaults()

	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}
	return &DB{DB: db, cfg: cfg}, nil
}

// StartMetricsCollector publishes pool usage every StatsInterval until ctx is done.
func (db *DB) StartMetricsCollector(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(db.cfg.StatsInterval)
		defer ticker.Stop()

		for {
			if usage, ok := poolUsage(db.Stats()); ok {
				metrics.DBConnectionPoolUsage.Set(usage)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// poolUsage is the percentage of the open-connection cap in use. It reports
// false when the pool is unbounded.
func poolUsage(stats sql.DBStats) (float64, bool) {
	if stats.MaxOpenConnections <= 0 {
		return 0, false
	}
	return float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100, true
}

// Health pings the database.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
