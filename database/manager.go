/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

const memoryDBName = ":memory:"

// source returns the driver name, DSN and Bun dialect for a config.
type source func(cfg *ConnectionConfig) (driver string, dsn string, dialect schema.Dialect)

var sources = map[string]source{
	"mysql":      mysqlSource,
	"postgres":   postgresSource,
	"postgresql": postgresSource,
	"sqlite":     sqliteSource,
	"sqlite3":    sqliteSource,
}

func mysqlSource(cfg *ConnectionConfig) (string, string, schema.Dialect) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)
	return "mysql", dsn, mysqldialect.New()
}

func postgresSource(cfg *ConnectionConfig) (string, string, schema.Dialect) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		sslMode, int(cfg.ConnectTimeout.Seconds()))
	return "postgres", dsn, pgdialect.New()
}

func sqliteSource(cfg *ConnectionConfig) (string, string, schema.Dialect) {
	dsn := cfg.DBName + ".db"
	if cfg.DBName == memoryDBName {
		dsn = "file::memory:?cache=shared"
	}
	return sqliteshim.ShimName, dsn, sqlitedialect.New()
}

// manager holds a single *bun.DB from Connect until Close. database/sql
// redials broken connections itself, so the handle given to services never
// goes stale.
type manager struct {
	config *ConnectionConfig
	logger Logger

	mu sync.RWMutex
	db *bun.DB
}

// NewDatabaseManager returns a Manager for config, or for
// DefaultConnectionConfig when config is nil.
func NewDatabaseManager(config *ConnectionConfig) Manager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &manager{config: config, logger: GetLogger()}
}

func (m *manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return nil
	}

	open, ok := sources[m.config.Type]
	if !ok {
		return fmt.Errorf("unsupported database type: %s", m.config.Type)
	}
	if m.config.ConnectTimeout <= 0 {
		m.config.ConnectTimeout = 30 * time.Second
	}
	driver, dsn, dialect := open(m.config)
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.config.Type, err)
	}
	m.configurePool(sqlDB, driver)

	db := bun.NewDB(sqlDB, dialect)
	m.addHooks(db)

	pingCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping %s: %w", m.config.Type, err)
	}

	m.db = db
	m.logger.Info("Database connected", "type", m.config.Type, "host", m.config.Host)
	return nil
}

func (m *manager) configurePool(sqlDB *sql.DB, driver string) {
	if driver == sqliteshim.ShimName && m.config.DBName == memoryDBName {
		// a memory database lives as long as its last connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return
	}
	sqlDB.SetMaxIdleConns(m.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(m.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(m.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)
}

func (m *manager) addHooks(db *bun.DB) {
	if m.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if m.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(m.config.SlowQueryTime, m.logger))
	}
	if m.config.EnableMetrics {
		db.AddQueryHook(NewMetricsHook(m.config.Type))
	}
}

func (m *manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		m.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	m.logger.Info("Database connection closed")
	return nil
}

func (m *manager) Ping(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (m *manager) DB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *manager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	db := m.DB()
	if db == nil {
		status.LastError = "Database not initialized"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
		status.Connected = true
	}
	status.ResponseTime = time.Since(start)

	stats := db.DB.Stats()
	status.OpenConns = stats.OpenConnections
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

func (m *manager) RunMigrations(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, m.logger).RunMigrations(ctx)
}

func (m *manager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}
