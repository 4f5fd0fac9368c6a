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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
)

func TestGetManyAllPaginated(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		Pagination: types.NewPagination(2, 10),
		Order:      map[string]any{"name": "ASC"},
	}, "")
	require.NoError(t, err)

	require.NotNil(t, res.Count)
	assert.Equal(t, 25, *res.Count)
	require.Len(t, res.Data, 5)
	assert.Equal(t, "member-20", res.Data[0].Name)
	assert.Equal(t, "member-24", res.Data[4].Name)
}

func TestGetManyDataOnly(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		DataType: types.DataTypeData,
		Where:    map[string]any{"age": map[string]any{"gte": 40}},
		Order:    map[string]any{"age": "DESC"},
	}, "")
	require.NoError(t, err)

	assert.Nil(t, res.Count)
	require.Len(t, res.Data, 5)
	assert.Equal(t, 44, res.Data[0].Age)
}

func TestGetManyCountOnly(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		DataType: types.DataTypeCount,
		Where: []any{
			map[string]any{"name": "member-01"},
			map[string]any{"email": map[string]any{"endsWith": "03@example.com"}},
		},
	}, "")
	require.NoError(t, err)

	assert.Nil(t, res.Data)
	require.NotNil(t, res.Count)
	assert.Equal(t, 2, *res.Count)
}

func TestGetManyEmptyResult(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		Where: map[string]any{"name": map[string]any{"contains": "%"}},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, *res.Count)
}

func TestGetManySelectionLoadsRelations(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	raw := `{ getManyMemberList { data { name notes { title } } } }`
	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		DataType: types.DataTypeData,
		Where:    map[string]any{"name": "member-00"},
	}, raw)
	require.NoError(t, err)

	require.Len(t, res.Data, 1)
	m := res.Data[0]
	assert.NotZero(t, m.ID)
	assert.Equal(t, "member-00", m.Name)
	assert.Empty(t, m.Email)
	require.Len(t, m.Notes, 2)
}

func TestGetManyExplicitRelations(t *testing.T) {
	repo := NewRepository[note](newSQLiteDB(t))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		DataType:  types.DataTypeData,
		Relations: []string{"member"},
	}, "")
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	require.NotNil(t, res.Data[0].Member)
	assert.Equal(t, "member-00", res.Data[0].Member.Name)
}

func TestGetManyValidation(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))
	ctx := context.Background()

	cases := []struct {
		name string
		q    *types.RepoQuery
		msg  string
	}{
		{"order token", &types.RepoQuery{Order: map[string]any{"name": "SIDEWAYS"}}, "Order must be ASC or DESC"},
		{"order key", &types.RepoQuery{Order: map[string]any{"token": "ASC"}}, "Order key token is not in member"},
		{"where key", &types.RepoQuery{Where: map[string]any{"nickname": "x"}}, "Where key nickname is not in member"},
		{"page", &types.RepoQuery{Pagination: types.NewPagination(-1, 10)}, "Pagination page must be >= 0, got -1"},
		{"size", &types.RepoQuery{Pagination: types.NewPagination(0, 0)}, "Pagination size must be > 0, got 0"},
		{"data type", &types.RepoQuery{DataType: types.DataType(9)}, "dataType must be all or data or count, got 9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.GetMany(ctx, tc.q, "")
			require.Error(t, err)
			assert.True(t, types.IsBadRequest(err))
			assert.Equal(t, tc.msg, err.Error())
		})
	}

	_, err := repo.GetMany(ctx, &types.RepoQuery{Relations: []string{"friends"}}, "")
	require.Error(t, err)
	assert.True(t, types.IsBadRequest(err))
	assert.Contains(t, err.Error(), "Relation friends is not in member")
}

func TestGetManyIgnoresUnknownSelectedRelations(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	raw := `{ getManyMemberList { data { id profile { avatar } } } }`
	res, err := repo.GetMany(context.Background(), &types.RepoQuery{DataType: types.DataTypeData}, raw)
	require.NoError(t, err)
	assert.Len(t, res.Data, 25)
}

func TestGetManyPaginationSQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[member](db)

	mock.ExpectQuery(`SELECT .* FROM "members" AS "m" LIMIT 10 OFFSET 20`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		DataType:   types.DataTypeData,
		Pagination: types.NewPagination(2, 10),
	}, "")
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetManyCountIssuesOnlyCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[member](db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "members" AS "m" WHERE \("m"."age" > 30\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	res, err := repo.GetMany(context.Background(), &types.RepoQuery{
		DataType: types.DataTypeCount,
		Where:    map[string]any{"age": map[string]any{"gt": 30}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 7, *res.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOne(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))
	ctx := context.Background()

	m, err := repo.GetOne(ctx, &types.OneRepoQuery{Where: map[string]any{"email": "m07@example.com"}}, "")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "member-07", m.Name)

	missing, err := repo.GetOne(ctx, &types.OneRepoQuery{Where: map[string]any{"name": "nobody"}}, "")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetOne(ctx, &types.OneRepoQuery{Where: map[string]any{"token": "secret"}}, "")
	require.Error(t, err)
	assert.True(t, types.IsBadRequest(err))
}

func TestGetOneWithSelection(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))

	raw := `query { getOneMember { id notes { id title } } }`
	m, err := repo.GetOne(context.Background(), &types.OneRepoQuery{Where: map[string]any{"name": "member-00"}}, raw)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Empty(t, m.Name)
	assert.Len(t, m.Notes, 2)
}

func TestCrud(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))
	ctx := context.Background()

	m := &member{Name: "new", Age: 1, Email: "new@example.com"}
	require.NoError(t, repo.Create(ctx, m))
	require.NotZero(t, m.ID)

	found, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "new", found.Name)

	found.Name = "renamed"
	found.Age = 99
	n, err := repo.Update(ctx, found, "name")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err = repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Name)
	assert.Equal(t, 1, found.Age)

	_, err = repo.Update(ctx, found, "nickname")
	assert.True(t, types.IsBadRequest(err))

	n, err = repo.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err = repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	n, err = repo.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertOnConflict(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))
	ctx := context.Background()

	err := repo.Upsert(ctx, []string{"name"}, []string{"email"},
		&member{Name: "changed", Email: "m01@example.com"},
		&member{Name: "fresh", Email: "fresh@example.com"})
	require.NoError(t, err)

	changed, err := repo.GetOne(ctx, &types.OneRepoQuery{Where: map[string]any{"email": "m01@example.com"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "changed", changed.Name)
	assert.Equal(t, 21, changed.Age)

	res, err := repo.GetMany(ctx, &types.RepoQuery{DataType: types.DataTypeCount}, "")
	require.NoError(t, err)
	assert.Equal(t, 26, *res.Count)

	assert.Error(t, repo.Upsert(ctx, nil, nil, &member{}))
}

func TestRunInTxRollsBack(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := repo.DeleteWithTx(ctx, tx, 1); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestMetadata(t *testing.T) {
	repo := NewRepository[member](newSQLiteDB(t))
	meta := repo.Metadata()

	assert.Equal(t, "member", meta.Name)
	_, hidden := meta.Property("token")
	assert.False(t, hidden)
	goPath, err := meta.ResolveRelation("notes.member")
	require.NoError(t, err)
	assert.Equal(t, "Notes.Member", goPath)
}
