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

package query

import (
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/schema"
)

type testAuthor struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int64       `bun:"id,pk,autoincrement" json:"id"`
	Name      string      `bun:"name" json:"name"`
	Age       int         `bun:"age" json:"age"`
	Email     string      `bun:"email" json:"email"`
	Secret    string      `bun:"secret" json:"-"`
	CreatedAt string      `bun:"created_at" json:"createdAt"`
	Books     []*testBook `bun:"rel:has-many,join:id=author_id" json:"books"`
}

type testBook struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID       int64       `bun:"id,pk,autoincrement" json:"id"`
	Title    string      `bun:"title" json:"title"`
	AuthorID int64       `bun:"author_id" json:"authorId"`
	Author   *testAuthor `bun:"rel:belongs-to,join:author_id=id" json:"author"`
}

func authorMeta() *EntityMetadata {
	var book *EntityMetadata
	author := NewEntityMetadata("Author",
		Property{Name: "id", Column: "id", IsPK: true},
		Property{Name: "name", Column: "name"},
		Property{Name: "age", Column: "age"},
		Property{Name: "email", Column: "email"},
		Property{Name: "createdAt", Column: "created_at"},
	)
	book = NewEntityMetadata("Book",
		Property{Name: "id", Column: "id", IsPK: true},
		Property{Name: "title", Column: "title"},
		Property{Name: "authorId", Column: "author_id"},
	).WithRelation("author", "Author", func() *EntityMetadata { return author })
	author.WithRelation("books", "Books", func() *EntityMetadata { return book })
	return author
}

func newTestDB(t *testing.T, d schema.Dialect) *bun.DB {
	t.Helper()
	sqldb, _, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, d)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newPgDB(t *testing.T) *bun.DB { return newTestDB(t, pgdialect.New()) }

func newMySQLDB(t *testing.T) *bun.DB { return newTestDB(t, mysqldialect.New()) }

func authorTable(db *bun.DB) *schema.Table {
	return db.Table(reflect.TypeOf((*testAuthor)(nil)).Elem())
}
