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
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

var (
	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hummer",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Duration of database queries by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dialect", "operation"})

	queryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hummer",
		Subsystem: "db",
		Name:      "query_errors_total",
		Help:      "Database queries that returned an error, excluding no rows.",
	}, []string{"dialect", "operation"})

	registerMetricsOnce sync.Once
)

// RegisterMetrics registers the database collectors with reg. Only the
// first call has an effect.
func RegisterMetrics(reg prometheus.Registerer) {
	registerMetricsOnce.Do(func() {
		reg.MustRegister(queryDuration, queryErrors)
	})
}

// MetricsHook records query latency and errors.
type MetricsHook struct {
	dialect string
}

var _ bun.QueryHook = (*MetricsHook)(nil)

func NewMetricsHook(dialect string) *MetricsHook {
	return &MetricsHook{dialect: dialect}
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *MetricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := event.Operation()
	queryDuration.WithLabelValues(h.dialect, op).Observe(time.Since(event.StartTime).Seconds())
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		queryErrors.WithLabelValues(h.dialect, op).Inc()
	}
}
