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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/query"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db     *bun.DB
	table  *schema.Table
	meta   *query.EntityMetadata
	logger database.Logger
}

// NewRepository returns a generic repository backed by the provided Bun DB.
// Entity metadata is derived once from the Bun table of T.
func NewRepository[T any](db *bun.DB) Repository[T] {
	table := db.Table(reflect.TypeOf((*T)(nil)).Elem())
	return &baseRepositoryImpl[T]{
		db:     db,
		table:  table,
		meta:   query.MetadataFromTable(table),
		logger: database.GetLogger(),
	}
}

func (r *baseRepositoryImpl[T]) Metadata() *query.EntityMetadata { return r.meta }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) pkColumn() (string, error) {
	if len(r.table.PKs) != 1 {
		return "", fmt.Errorf("%s must have exactly one primary key, has %d", r.meta.Name, len(r.table.PKs))
	}
	return r.table.PKs[0].Name, nil
}

// columns maps property names to column names.
func (r *baseRepositoryImpl[T]) columns(properties []string) ([]string, error) {
	cols := make([]string, 0, len(properties))
	for _, name := range properties {
		prop, ok := r.meta.Property(name)
		if !ok {
			return nil, types.NewBadRequest(name, fmt.Sprintf("Property %s is not in %s", name, r.meta.Name))
		}
		cols = append(cols, prop.Column)
	}
	return cols, nil
}

func (r *baseRepositoryImpl[T]) FindByID(ctx context.Context, id any) (*T, error) {
	pk, err := r.pkColumn()
	if err != nil {
		return nil, err
	}
	entity := new(T)
	err = r.db.NewSelect().Model(entity).Where("?TableAlias.? = ?", bun.Ident(pk), id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by id: %w", r.meta.Name, err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T, properties ...string) (int64, error) {
	return r.UpdateWithTx(ctx, r.db, entity, properties...)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	return r.DeleteWithTx(ctx, r.db, id)
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, fn)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	if _, err := tx.NewInsert().Model(&entities).Exec(ctx); err != nil {
		return fmt.Errorf("create %s: %w", r.meta.Name, err)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T, properties ...string) (int64, error) {
	q := tx.NewUpdate().Model(entity).WherePK()
	if len(properties) > 0 {
		cols, err := r.columns(properties)
		if err != nil {
			return 0, err
		}
		q = q.Column(cols...)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", r.meta.Name, err)
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx bun.IDB, id any) (int64, error) {
	pk, err := r.pkColumn()
	if err != nil {
		return 0, err
	}
	res, err := tx.NewDelete().Model((*T)(nil)).Where("? = ?", bun.Ident(pk), id).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.meta.Name, err)
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, conflictKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	cols, err := r.columns(fields)
	if err != nil {
		return err
	}
	keys, err := r.columns(conflictKeys)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		pk, err := r.pkColumn()
		if err != nil {
			return err
		}
		keys = []string{pk}
	}

	entities := make([]*T, len(entity))
	copy(entities, entity)

	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, cols, keys, entities)
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, cols, entities)
	default:
		return r.upsertFallback(ctx, entities)
	}
}

func (r *baseRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, cols []string, entities []*T) error {
	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", col, col))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertOnConflict(ctx context.Context, cols []string, keys []string, entities []*T) error {
	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	_, err := r.db.NewInsert().
		Model(&entities).
		On("CONFLICT (" + strings.Join(keys, ",") + ") DO UPDATE").
		Set(strings.Join(sets, ", ")).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		_, err := r.db.NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
