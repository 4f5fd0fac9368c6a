// Package database provides connection management, table migrations for
// registered models, query hooks (slow query log and Prometheus metrics),
// driver error classification, configuration types, logging and health checks
// built on top of Bun.
package database
