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
	"os"
	"strconv"
	"time"
)

var envOverrides = []struct {
	key   string
	apply func(cfg *ConnectionConfig, value string)
}{
	{"DB_TYPE", func(cfg *ConnectionConfig, v string) { cfg.Type = v }},
	{"DB_HOST", func(cfg *ConnectionConfig, v string) { cfg.Host = v }},
	{"DB_PORT", func(cfg *ConnectionConfig, v string) { setInt(&cfg.Port, v) }},
	{"DB_USERNAME", func(cfg *ConnectionConfig, v string) { cfg.Username = v }},
	{"DB_PASSWORD", func(cfg *ConnectionConfig, v string) { cfg.Password = v }},
	{"DB_NAME", func(cfg *ConnectionConfig, v string) { cfg.DBName = v }},
	{"DB_SSLMODE", func(cfg *ConnectionConfig, v string) { cfg.SSLMode = v }},
	{"DB_MAX_OPEN_CONNS", func(cfg *ConnectionConfig, v string) { setInt(&cfg.MaxOpenConns, v) }},
	{"DB_CONN_MAX_LIFETIME", func(cfg *ConnectionConfig, v string) {
		var seconds int
		if setInt(&seconds, v) {
			cfg.ConnMaxLifetime = time.Duration(seconds) * time.Second
		}
	}},
	{"DB_ENABLE_QUERY_LOG", func(cfg *ConnectionConfig, v string) { cfg.EnableQueryLog = v == "true" }},
	{"DB_ENABLE_METRICS", func(cfg *ConnectionConfig, v string) { cfg.EnableMetrics = v == "true" }},
}

// OverrideFromEnv overrides configuration values from DB_* environment
// variables. Unparsable numbers are ignored.
func OverrideFromEnv(cfg *ConnectionConfig) {
	for _, o := range envOverrides {
		if v := os.Getenv(o.key); v != "" {
			o.apply(cfg, v)
		}
	}
}

func setInt(dst *int, v string) bool {
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	*dst = n
	return true
}
