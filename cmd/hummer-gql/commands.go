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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/config"
	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/graph"
	"github.com/tomoncle/hummer-gql/server"
	"github.com/tomoncle/hummer-gql/user"
	"github.com/tomoncle/hummer-gql/utils"
	"github.com/uptrace/bun"
)

var logger = utils.NewLogger("main")

// loadConfig reads the configuration and applies the logging settings.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	utils.ConfigureLogLevel(cfg.Logging.Level)
	utils.ConfigureLogFormat(cfg.Logging.Format)
	return cfg, nil
}

// openDB connects the global database. migrate forces migrations regardless
// of the configured startup behavior.
func openDB(ctx context.Context, cfg *config.AppConfig, migrate bool) (*bun.DB, error) {
	dbCfg := cfg.Database
	if migrate {
		dbCfg.DataMigrateConfig.EnableMigrateOnStartup = true
	}
	if dbCfg.ConnectionConfig.EnableMetrics {
		database.RegisterMetrics(prometheus.DefaultRegisterer)
	}
	return database.InitDB(ctx, &dbCfg)
}

func seedAdmin(ctx context.Context, cfg *config.AppConfig, svc *user.Service) error {
	if cfg.Admin.Email == "" {
		logger.Debug("no admin account configured")
		return nil
	}
	name := cfg.Admin.Name
	if name == "" {
		name = "Administrator"
	}
	return svc.SeedAdmin(ctx, cfg.Admin.Email, name, cfg.Admin.Password)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			jwt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			svc := user.NewService(db)
			if err := seedAdmin(ctx, cfg, svc); err != nil {
				return err
			}
			schema, err := graph.NewSchema(user.NewResolver(svc))
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}

			if utils.ParseLogLevel(cfg.Logging.Level) != logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			handler := server.NewHandler(server.Options{
				Schema:      schema,
				JWT:         jwt,
				CORSOrigins: cfg.Server.CORSOrigins,
				AllowGET:    cfg.Server.Playground,
			})
			logger.WithField("dialect", db.Dialect().Name().String()).Info("database ready")
			return server.Run(ctx, cfg.Server.Addr, handler, cfg.Server.ReadTimeout)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes, then seed the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDB() }()

			if err := seedAdmin(cmd.Context(), cfg, user.NewService(db)); err != nil {
				return err
			}
			applied, err := database.NewMigrationManager(db, database.GetLogger()).GetAppliedMigrations(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject  string
		role     string
		email    string
		password string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token",
		Long: "Issue an access token, either for an explicit --sub and --role, " +
			"or for the account matching --email and --password.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			jwt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}

			if email != "" {
				db, err := openDB(cmd.Context(), cfg, false)
				if err != nil {
					return err
				}
				defer func() { _ = database.CloseDB() }()
				u, err := user.NewService(db).Authenticate(cmd.Context(), email, password)
				if err != nil {
					return fmt.Errorf("authenticate %s: %w", email, err)
				}
				subject, role = u.ID, string(u.Role)
			}
			if subject == "" {
				return errors.New("--sub or --email is required")
			}

			token, err := jwt.Sign(subject, auth.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "token subject (user id)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "token role: user or admin")
	cmd.Flags().StringVar(&email, "email", "", "issue the token for this account")
	cmd.Flags().StringVar(&password, "password", "", "password of --email")
	return cmd
}
