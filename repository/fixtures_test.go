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
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID    int64   `bun:"id,pk,autoincrement" json:"id"`
	Name  string  `bun:"name,notnull" json:"name"`
	Age   int     `bun:"age" json:"age"`
	Email string  `bun:"email,unique" json:"email"`
	Token string  `bun:"token" json:"-"`
	Notes []*note `bun:"rel:has-many,join:id=member_id" json:"notes"`
}

type note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID       int64   `bun:"id,pk,autoincrement" json:"id"`
	Title    string  `bun:"title" json:"title"`
	MemberID int64   `bun:"member_id" json:"memberId"`
	Member   *member `bun:"rel:belongs-to,join:member_id=id" json:"member"`
}

// newSQLiteDB opens a private in-memory database with 25 members named
// member-00 to member-24, aged 20 to 44, member-00 owning two notes.
func newSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*member)(nil), (*note)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	members := make([]*member, 0, 25)
	for i := 0; i < 25; i++ {
		members = append(members, &member{
			Name:  fmt.Sprintf("member-%02d", i),
			Age:   20 + i,
			Email: fmt.Sprintf("m%02d@example.com", i),
			Token: "secret",
		})
	}
	_, err = db.NewInsert().Model(&members).Exec(ctx)
	require.NoError(t, err)

	notes := []*note{
		{Title: "first", MemberID: members[0].ID},
		{Title: "second", MemberID: members[0].ID},
	}
	_, err = db.NewInsert().Model(&notes).Exec(ctx)
	require.NoError(t, err)
	return db
}

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
