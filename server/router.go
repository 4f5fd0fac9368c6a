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

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/utils"
)

var logger = utils.NewLogger("server")

type Options struct {
	Schema graphql.Schema
	JWT    *auth.JWTManager
	// CORSOrigins lists allowed origins; empty allows none.
	CORSOrigins []string
	// AllowGET serves GET /graphql?query=... for manual exploration.
	AllowGET bool
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter registers the GraphQL endpoint, health and metrics.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		status := database.GetHealthStatus(c.Request.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	gql := r.Group("/graphql")
	if opts.JWT != nil {
		gql.Use(Authenticate(opts.JWT))
	}
	handler := graphQLHandler(opts.Schema, opts.AllowGET)
	gql.POST("", handler)
	gql.GET("", handler)
	return r
}

// NewHandler wraps the router with CORS handling.
func NewHandler(opts Options) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(NewRouter(opts))
}
