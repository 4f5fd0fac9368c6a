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
	"time"

	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string           `bun:"id,pk,type:varchar(36)" json:"id"`
	Email     string           `bun:"email,notnull,unique,type:varchar(255)" json:"email"`
	Name      string           `bun:"name,notnull" json:"name"`
	Role      auth.Role        `bun:"role,notnull,type:varchar(16)" json:"role"`
	Password  string           `bun:"password,notnull" json:"-"`
	Settings  types.JsonObject `bun:"settings,type:text" json:"settings"`
	CreatedAt time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`

	Posts []*Post `bun:"rel:has-many,join:id=author_id" json:"posts"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Body      string    `bun:"body" json:"body"`
	AuthorID  string    `bun:"author_id,notnull,type:varchar(36)" json:"authorId"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	Author *User `bun:"rel:belongs-to,join:author_id=id" json:"author"`
}

// Models returns the migration models of this package, users first.
func Models() []database.SQLModel {
	return []database.SQLModel{
		database.NewModelAdapter((*User)(nil), 10,
			database.Index{Name: "idx_users_role", Columns: []string{"role"}}),
		database.NewModelAdapter((*Post)(nil), 20,
			database.Index{Name: "idx_posts_author_id", Columns: []string{"author_id"}}),
	}
}

func init() {
	for _, model := range Models() {
		database.RegisterModel(model)
	}
}
