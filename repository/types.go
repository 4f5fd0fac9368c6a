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

package repository

import (
	"context"

	"github.com/tomoncle/hummer-gql/query"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	// FindByID returns nil, nil when no row has the primary key.
	FindByID(ctx context.Context, id any) (*T, error)

	Create(ctx context.Context, entity ...*T) error

	// Upsert inserts entities, updating fields on conflict with conflictKeys.
	Upsert(ctx context.Context, fields []string, conflictKeys []string, entity ...*T) error

	// Update writes the given properties of entity, or every column when none
	// are given, and returns the number of affected rows.
	Update(ctx context.Context, entity *T, properties ...string) (int64, error)

	Delete(ctx context.Context, id any) (int64, error)
}

// QueryRepository runs client driven queries described by types.RepoQuery.
type QueryRepository[T any] interface {
	// GetMany lists entities. selection is the raw query text of the
	// resolving operation and may be empty.
	GetMany(ctx context.Context, q *types.RepoQuery, selection string) (*types.GetData[T], error)

	// GetOne returns the first matching entity, or nil, nil.
	GetOne(ctx context.Context, q *types.OneRepoQuery, selection string) (*T, error)
}

// TransactionRepository defines CRUD operations executed within a transaction.
type TransactionRepository[T any] interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T, properties ...string) (int64, error)
	DeleteWithTx(ctx context.Context, tx bun.IDB, id any) (int64, error)
}

// Repository combines CRUD, client queries and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	QueryRepository[T]
	TransactionRepository[T]
	Metadata() *query.EntityMetadata
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
