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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/utils"
	"gopkg.in/yaml.v3"
)

const (
	EnvFile    = ".env"
	ConfigFile = "config.yaml"
)

type AppConfig struct {
	Server   ServerConfig    `yaml:"server"`
	Auth     AuthConfig      `yaml:"auth"`
	Logging  LoggingConfig   `yaml:"logging"`
	Database database.Config `yaml:"database"`
	Admin    AdminConfig     `yaml:"admin"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	CORSOrigins []string      `yaml:"cors_origins"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// Playground enables GET /graphql with a query parameter.
	Playground bool `yaml:"playground"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTIssuer string        `yaml:"jwt_issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AdminConfig is the account the migrate command seeds. Seeding is skipped
// when Email is empty.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			ReadTimeout: 15 * time.Second,
		},
		Auth: AuthConfig{
			JWTIssuer: "hummer-gql",
			TokenTTL:  24 * time.Hour,
		},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: *database.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults, loads the .env file
// next to it and applies environment overrides. An empty path looks for
// config.yaml from the working directory upwards and falls back to defaults.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		if base := BasePath(); base != "" {
			path = filepath.Join(base, ConfigFile)
		}
	}

	envPath := EnvFile
	if path != "" {
		envPath = filepath.Join(filepath.Dir(path), EnvFile)
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	overrideFromEnv(cfg)
	return cfg, nil
}

func overrideFromEnv(cfg *AppConfig) {
	cfg.Server.Addr = utils.EnvDefaultString("HUMMER_ADDR", cfg.Server.Addr)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	cfg.Auth.JWTSecret = utils.EnvDefaultString("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTIssuer = utils.EnvDefaultString("JWT_ISSUER", cfg.Auth.JWTIssuer)
	cfg.Auth.TokenTTL = utils.EnvDefaultDuration("JWT_TTL", cfg.Auth.TokenTTL)
	cfg.Logging.Level = utils.EnvDefaultString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = utils.EnvDefaultString("LOG_FORMAT", cfg.Logging.Format)
	cfg.Admin.Email = utils.EnvDefaultString("ADMIN_EMAIL", cfg.Admin.Email)
	cfg.Admin.Password = utils.EnvDefaultString("ADMIN_PASSWORD", cfg.Admin.Password)
	database.OverrideFromEnv(&cfg.Database.ConnectionConfig)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks what serving requires.
func (c *AppConfig) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// BasePath returns the closest directory, from the working directory
// upwards, that contains config.yaml, or "".
func BasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil && !info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
