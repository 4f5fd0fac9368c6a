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

package hummer

import (
	"context"
	"sync"

	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/repository"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier, or nil when absent.
	Get(ctx context.Context, id any) (*T, error)

	// GetMany runs a client list query. selection is the raw GraphQL text of
	// the resolving field and may be empty.
	GetMany(ctx context.Context, q *types.RepoQuery, selection string) (*types.GetData[T], error)

	// GetOne returns the first entity matching a client query.
	GetOne(ctx context.Context, q *types.OneRepoQuery, selection string) (*T, error)

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and conflict keys.
	SaveOrUpdate(ctx context.Context, fields []string, conflictKeys []string, model ...*T) error

	// Update writes the given properties, or all columns, and returns affected rows.
	Update(ctx context.Context, model *T, properties ...string) (int64, error)

	// Delete removes an entity by its identifier and returns affected rows.
	Delete(ctx context.Context, id any) (int64, error)

	// Transaction runs fn in a transaction that rolls back when fn fails.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error

	SaveWithTx(ctx context.Context, tx bun.IDB, model ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.IDB, model *T, properties ...string) (int64, error)
	DeleteWithTx(ctx context.Context, tx bun.IDB, id any) (int64, error)

	// Repository exposes the underlying repository and its query builders.
	Repository() repository.Repository[T]
}

type baseServiceImpl[T any] struct {
	db   *bun.DB
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a default Service implementation using the generic
// repository backed by the global database connection.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewServiceWithDB binds the service to an explicit connection.
func NewServiceWithDB[T any](db *bun.DB) Service[T] {
	return &baseServiceImpl[T]{db: db}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		db := s.db
		if db == nil {
			db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](db)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Repository() repository.Repository[T] {
	return s.baseRepo()
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().FindByID(ctx, id)
}

func (s *baseServiceImpl[T]) GetMany(ctx context.Context, q *types.RepoQuery, selection string) (*types.GetData[T], error) {
	return s.baseRepo().GetMany(ctx, q, selection)
}

func (s *baseServiceImpl[T]) GetOne(ctx context.Context, q *types.OneRepoQuery, selection string) (*T, error) {
	return s.baseRepo().GetOne(ctx, q, selection)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, conflictKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, conflictKeys, model...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T, properties ...string) (int64, error) {
	return s.baseRepo().Update(ctx, model, properties...)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) Transaction(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return s.baseRepo().RunInTx(ctx, fn)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx bun.IDB, model ...*T) error {
	return s.baseRepo().CreateWithTx(ctx, tx, model...)
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx bun.IDB, model *T, properties ...string) (int64, error) {
	return s.baseRepo().UpdateWithTx(ctx, tx, model, properties...)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx bun.IDB, id any) (int64, error) {
	return s.baseRepo().DeleteWithTx(ctx, tx, id)
}
