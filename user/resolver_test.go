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
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/hummer-gql/graph"
	"github.com/tomoncle/hummer-gql/types"
)

func (f *fixture) exec(t *testing.T, ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	schema, err := graph.NewSchema(NewResolver(f.svc))
	require.NoError(t, err)
	return graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: ctx, VariableValues: vars})
}

func field(t *testing.T, res *graphql.Result, name string) interface{} {
	t.Helper()
	require.Empty(t, res.Errors)
	return res.Data.(map[string]interface{})[name]
}

func TestGetManyUserList(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.admin), `{
		getManyUserList(input: {
			pagination: {page: 0, size: 2}
			where: {role: "user"}
			order: {email: ASC}
		}) {
			count
			data { email posts { title } }
		}
	}`, nil)

	list := field(t, res, "getManyUserList").(map[string]interface{})
	assert.Equal(t, 3, list["count"])
	data := list["data"].([]interface{})
	require.Len(t, data, 2)

	first := data[0].(map[string]interface{})
	assert.Equal(t, "alice@example.com", first["email"])
	assert.Len(t, first["posts"], 2)
	assert.Equal(t, "bob@example.com", data[1].(map[string]interface{})["email"])
}

func TestGetManyUserListCountOnly(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.admin), `query($input: GetManyInput) {
		getManyUserList(input: $input) { count data { id } }
	}`, map[string]interface{}{
		"input": map[string]interface{}{
			"dataType": "count",
			"where":    []interface{}{map[string]interface{}{"name": "Bob"}, map[string]interface{}{"name": "Carol"}},
		},
	})
	list := field(t, res, "getManyUserList").(map[string]interface{})
	assert.Equal(t, 2, list["count"])
	assert.Nil(t, list["data"])
}

func TestGetManyUserListRejectsHiddenProperty(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.admin), `{ getManyUserList(input: {where: {password: "x"}}) { count } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Where key password is not in User", res.Errors[0].Message)
	assert.Equal(t, "BAD_REQUEST", res.Errors[0].Extensions["code"])
}

func TestWhereLiteralWithVariables(t *testing.T) {
	f := newFixture(t)
	vars := map[string]interface{}{"email": "bob@example.com"}

	res := f.exec(t, f.as(f.admin), `query($email: String) {
		getManyUserList(input: {where: {email: $email}}) { count data { name } }
	}`, vars)
	list := field(t, res, "getManyUserList").(map[string]interface{})
	assert.Equal(t, 1, list["count"])
	data := list["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Bob", data[0].(map[string]interface{})["name"])

	res = f.exec(t, f.as(f.admin), `query($email: String) {
		getOneUser(input: {where: {email: {eq: $email}}}) { id }
	}`, vars)
	one := field(t, res, "getOneUser").(map[string]interface{})
	assert.Equal(t, f.bob.ID, one["id"])
}

func TestGetOneUser(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.admin), `{
		getOneUser(input: {where: {email: {startsWith: "ali"}}}) { id name posts { author { name } } }
	}`, nil)
	one := field(t, res, "getOneUser").(map[string]interface{})
	assert.Equal(t, f.alice.ID, one["id"])
	posts := one["posts"].([]interface{})
	require.Len(t, posts, 2)
	assert.Equal(t, "Alice", posts[0].(map[string]interface{})["author"].(map[string]interface{})["name"])

	res = f.exec(t, f.as(f.admin), `{ getOneUser(input: {where: {email: "nobody@example.com"}}) { id } }`, nil)
	assert.Nil(t, field(t, res, "getOneUser"))
}

func TestCreateUserMutation(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.admin), `mutation {
		createUser(input: {email: "erin@example.com", name: "Erin", password: "password-456", role: admin}) { id role }
	}`, nil)
	created := field(t, res, "createUser").(map[string]interface{})
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "admin", created["role"])

	res = f.exec(t, f.as(f.admin), `mutation {
		createUser(input: {email: "erin@example.com", name: "Erin", password: "password-456"}) { id }
	}`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "BAD_REQUEST", res.Errors[0].Extensions["code"])
}

func TestUpdateAndDeleteUserMutation(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.admin), `mutation($id: ID!) {
		updateUser(id: $id, input: {name: "Caroline", settings: {lang: "fr"}})
	}`, map[string]interface{}{"id": f.carol.ID})
	assert.Equal(t, types.JsonObject{"affected": int64(1)}, field(t, res, "updateUser"))

	res = f.exec(t, f.as(f.admin), `mutation($id: ID!) { deleteUser(id: $id) }`, map[string]interface{}{"id": f.alice.ID})
	assert.Equal(t, types.JsonObject{"affected": int64(1)}, field(t, res, "deleteUser"))
	assert.Zero(t, f.countPosts(t, f.alice.ID))
}

func TestGetMe(t *testing.T) {
	f := newFixture(t)
	res := f.exec(t, f.as(f.alice), `{ getMe { email role posts { title } } }`, nil)
	me := field(t, res, "getMe").(map[string]interface{})
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, "user", me["role"])
	assert.Len(t, me["posts"], 2)
}

func TestRoleGuards(t *testing.T) {
	f := newFixture(t)

	res := f.exec(t, context.Background(), `{ getMe { id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "UNAUTHENTICATED", res.Errors[0].Extensions["code"])

	res = f.exec(t, f.as(f.bob), `{ getManyUserList { count } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "FORBIDDEN", res.Errors[0].Extensions["code"])

	res = f.exec(t, f.as(f.bob), `mutation { deleteUser(id: "x") }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "FORBIDDEN", res.Errors[0].Extensions["code"])
}
