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
	"fmt"

	"github.com/uptrace/bun"
)

var (
	globalManager Manager
	globalConfig  *Config
	DB            *bun.DB
)

// GetDB returns the global Bun database instance.
func GetDB() *bun.DB {
	if globalManager != nil {
		return globalManager.DB()
	}
	return DB
}

// InitDB connects the global database, applying DB_* environment overrides
// and running migrations when the config asks for it.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	OverrideFromEnv(&cfg.ConnectionConfig)
	if _, ok := sources[cfg.ConnectionConfig.Type]; !ok {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.ConnectionConfig.Type)
	}

	manager := NewDatabaseManager(&cfg.ConnectionConfig)
	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	globalConfig = cfg
	if cfg.DataMigrateConfig.EnableMigrateOnStartup {
		if err := manager.RunMigrations(ctx); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	globalManager = manager
	DB = manager.DB()
	DB.RegisterModel(RegisteredModelInstances()...)
	GetLogger().Info("Database initialization completed")
	return DB, nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalManager == nil {
		return nil
	}
	err := globalManager.Close()
	globalManager = nil
	DB = nil
	return err
}

// GetHealthStatus pings the global database.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalManager != nil {
		return globalManager.HealthCheck(ctx)
	}
	return &HealthStatus{LastError: "Database not initialized"}
}
