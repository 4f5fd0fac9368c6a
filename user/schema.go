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
	"github.com/graphql-go/graphql"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/graph"
)

type schemaTypes struct {
	role        *graphql.Enum
	user        *graphql.Object
	post        *graphql.Object
	list        *graphql.Object
	createInput *graphql.InputObject
	updateInput *graphql.InputObject
}

func newSchemaTypes() *schemaTypes {
	t := &schemaTypes{}
	t.role = graphql.NewEnum(graphql.EnumConfig{
		Name: "Role",
		Values: graphql.EnumValueConfigMap{
			string(auth.RoleUser):  &graphql.EnumValueConfig{Value: auth.RoleUser},
			string(auth.RoleAdmin): &graphql.EnumValueConfig{Value: auth.RoleAdmin},
		},
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role":      &graphql.Field{Type: graphql.NewNonNull(t.role)},
			"settings":  &graphql.Field{Type: graph.JSON},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})
	t.post = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"body":      &graphql.Field{Type: graphql.String},
			"authorId":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"author":    &graphql.Field{Type: t.user},
		},
	})
	t.user.AddFieldConfig("posts", &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(t.post))})
	t.list = graph.ListType("GetUserType", t.user)

	t.createInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"role":     &graphql.InputObjectFieldConfig{Type: t.role},
			"settings": &graphql.InputObjectFieldConfig{Type: graph.JSON},
		},
	})
	t.updateInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"role":     &graphql.InputObjectFieldConfig{Type: t.role},
			"settings": &graphql.InputObjectFieldConfig{Type: graph.JSON},
		},
	})
	return t
}
