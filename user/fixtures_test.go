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

package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/database"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password-123"

type fixture struct {
	db    *bun.DB
	svc   *Service
	admin *User
	alice *User
	bob   *User
	carol *User
}

// newFixture migrates a private in-memory database and seeds one admin and
// three users. alice owns two posts.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:user_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	err = database.NewMigrationManager(db, database.GetLogger()).WithModels(Models()...).RunMigrations(ctx)
	require.NoError(t, err)

	svc := NewService(db)
	svc.cost = bcrypt.MinCost
	f := &fixture{db: db, svc: svc}

	create := func(email, name string, role auth.Role) *User {
		u, err := svc.Create(ctx, &CreateUserInput{Email: email, Name: name, Password: testPassword, Role: role})
		require.NoError(t, err)
		return u
	}
	f.admin = create("admin@example.com", "Admin", auth.RoleAdmin)
	f.alice = create("alice@example.com", "Alice", auth.RoleUser)
	f.bob = create("bob@example.com", "Bob", auth.RoleUser)
	f.carol = create("carol@example.com", "Carol", auth.RoleUser)

	posts := []*Post{
		{ID: uuid.NewString(), Title: "hello", AuthorID: f.alice.ID, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Title: "again", AuthorID: f.alice.ID, CreatedAt: time.Now()},
	}
	_, err = db.NewInsert().Model(&posts).Exec(ctx)
	require.NoError(t, err)
	return f
}

func (f *fixture) as(u *User) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Subject: u.ID, Role: u.Role})
}

func (f *fixture) countPosts(t *testing.T, authorID string) int {
	t.Helper()
	n, err := f.db.NewSelect().Model((*Post)(nil)).Where("author_id = ?", authorID).Count(context.Background())
	require.NoError(t, err)
	return n
}
