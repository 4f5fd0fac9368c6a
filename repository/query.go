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

	"github.com/tomoncle/hummer-gql/query"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
)

// loadPlan is what a query has to load besides its filters.
type loadPlan struct {
	// relations are bun relation paths such as "Posts.Author".
	relations []string
	// columns narrows the base entity columns; empty means all.
	columns []string
}

// plan derives relations and columns from the raw selection and merges the
// relations requested explicitly. Selected fields that are not relations of
// the entity are skipped, explicit relations must exist.
func (r *baseRepositoryImpl[T]) plan(selection string, list bool, relations []string) (*loadPlan, error) {
	p := &loadPlan{}
	seen := make(map[string]bool)
	add := func(goPath string) {
		if !seen[goPath] {
			seen[goPath] = true
			p.relations = append(p.relations, goPath)
		}
	}

	for _, name := range relations {
		goPath, err := r.meta.ResolveRelation(name)
		if err != nil {
			return nil, types.NewBadRequest("relations", fmt.Sprintf("Relation %s is not in %s: %v", name, r.meta.Name, err))
		}
		add(goPath)
	}

	sel, err := query.ParseSelection(selection, list)
	if err != nil {
		return nil, types.NewBadRequest("query", err.Error())
	}
	for _, path := range sel.Relations {
		if goPath, err := r.meta.ResolveRelation(path); err == nil {
			add(goPath)
		}
	}

	if sel.Select != nil {
		picked := make(map[string]bool)
		for _, name := range sel.Columns() {
			picked[name] = true
		}
		for _, prop := range r.meta.Properties() {
			if prop.IsPK || picked[prop.Name] {
				p.columns = append(p.columns, prop.Column)
			}
		}
	}
	return p, nil
}

func (p *loadPlan) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if len(p.columns) > 0 {
		q = q.Column(p.columns...)
	}
	for _, rel := range p.relations {
		q = q.Relation(rel)
	}
	return q
}

func (r *baseRepositoryImpl[T]) GetMany(ctx context.Context, q *types.RepoQuery, selection string) (*types.GetData[T], error) {
	if q == nil {
		q = &types.RepoQuery{}
	}
	if !q.DataType.IsValid() {
		return nil, types.NewBadRequest("dataType", fmt.Sprintf("dataType must be all or data or count, got %d", q.DataType))
	}
	order, err := query.ValidateOrder(q.Order, r.meta)
	if err != nil {
		return nil, err
	}
	cond, err := query.ProcessWhere(q.Where, r.meta)
	if err != nil {
		return nil, err
	}
	p, err := r.plan(selection, true, q.Relations)
	if err != nil {
		return nil, err
	}

	var entities []*T
	sq := r.db.NewSelect().Model(&entities)
	sq = p.apply(sq)
	sq = query.ApplyWhere(sq, cond)
	sq = order.Apply(sq)
	if q.Pagination != nil {
		if err := q.Pagination.Validate(); err != nil {
			return nil, err
		}
		sq = sq.Offset(q.Pagination.GetOffset()).Limit(q.Pagination.GetLimit())
	}

	r.logger.Debug("get many", "entity", r.meta.Name, "dataType", q.DataType.Name(),
		"relations", p.relations, "columns", len(p.columns))

	switch q.DataType {
	case types.DataTypeData:
		if err := sq.Scan(ctx); err != nil {
			return nil, fmt.Errorf("list %s: %w", r.meta.Name, err)
		}
		return types.NewDataResult(entities), nil
	case types.DataTypeCount:
		count, err := sq.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", r.meta.Name, err)
		}
		return types.NewCountResult[T](count), nil
	default:
		count, err := sq.ScanAndCount(ctx)
		if err != nil {
			return nil, fmt.Errorf("list and count %s: %w", r.meta.Name, err)
		}
		return types.NewAllResult(entities, count), nil
	}
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, q *types.OneRepoQuery, selection string) (*T, error) {
	if q == nil {
		q = &types.OneRepoQuery{}
	}
	cond, err := query.ProcessWhere(q.Where, r.meta)
	if err != nil {
		return nil, err
	}
	p, err := r.plan(selection, false, q.Relations)
	if err != nil {
		return nil, err
	}

	entity := new(T)
	sq := p.apply(r.db.NewSelect().Model(entity))
	sq = query.ApplyWhere(sq, cond).Limit(1)

	r.logger.Debug("get one", "entity", r.meta.Name, "relations", p.relations)

	if err := sq.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get one %s: %w", r.meta.Name, err)
	}
	return entity, nil
}
