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
	"github.com/tomoncle/hummer-gql/types"
)

// Resolver exposes the user operations. Everything but getMe requires the
// admin role.
type Resolver struct {
	svc   *Service
	types *schemaTypes
}

func NewResolver(svc *Service) *Resolver {
	return &Resolver{svc: svc, types: newSchemaTypes()}
}

func (r *Resolver) Queries() graphql.Fields {
	return graphql.Fields{
		"getManyUserList": &graphql.Field{
			Type: r.types.list,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graph.GetManyInput},
			},
			Resolve: graph.Guard(auth.RoleAdmin, graph.Resolve(r.getManyUserList)),
		},
		"getOneUser": &graphql.Field{
			Type: r.types.user,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graph.GetOneInput)},
			},
			Resolve: graph.Guard(auth.RoleAdmin, graph.Resolve(r.getOneUser)),
		},
		"getMe": &graphql.Field{
			Type:    r.types.user,
			Resolve: graph.Guard(auth.RoleUser, graph.Resolve(r.getMe)),
		},
	}
}

func (r *Resolver) Mutations() graphql.Fields {
	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	return graphql.Fields{
		"createUser": &graphql.Field{
			Type: r.types.user,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.types.createInput)},
			},
			Resolve: graph.Guard(auth.RoleAdmin, graph.Resolve(r.createUser)),
		},
		"updateUser": &graphql.Field{
			Type: graph.JSON,
			Args: graphql.FieldConfigArgument{
				"id":    idArg,
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.types.updateInput)},
			},
			Resolve: graph.Guard(auth.RoleAdmin, graph.Resolve(r.updateUser)),
		},
		"deleteUser": &graphql.Field{
			Type:    graph.JSON,
			Args:    graphql.FieldConfigArgument{"id": idArg},
			Resolve: graph.Guard(auth.RoleAdmin, graph.Resolve(r.deleteUser)),
		},
	}
}

func (r *Resolver) getManyUserList(p graphql.ResolveParams) (interface{}, error) {
	input, err := graph.InputArg(p)
	if err != nil {
		return nil, err
	}
	q, err := graph.DecodeGetManyInput(input)
	if err != nil {
		return nil, err
	}
	return r.svc.GetMany(p.Context, q, graph.CurrentQuery(p))
}

func (r *Resolver) getOneUser(p graphql.ResolveParams) (interface{}, error) {
	input, err := graph.InputArg(p)
	if err != nil {
		return nil, err
	}
	q, err := graph.DecodeGetOneInput(input)
	if err != nil {
		return nil, err
	}
	return orNil(r.svc.GetOne(p.Context, q, graph.CurrentQuery(p)))
}

func (r *Resolver) getMe(p graphql.ResolveParams) (interface{}, error) {
	principal, err := graph.CurrentUser(p.Context)
	if err != nil {
		return nil, err
	}
	return orNil(r.svc.Me(p.Context, principal, graph.CurrentQuery(p)))
}

func (r *Resolver) createUser(p graphql.ResolveParams) (interface{}, error) {
	input, err := graph.InputArg(p)
	if err != nil {
		return nil, err
	}
	return r.svc.Create(p.Context, decodeCreateInput(input))
}

func (r *Resolver) updateUser(p graphql.ResolveParams) (interface{}, error) {
	input, err := graph.InputArg(p)
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	affected, err := r.svc.Update(p.Context, id, decodeUpdateInput(input))
	if err != nil {
		return nil, err
	}
	return types.JsonObject{"affected": affected}, nil
}

func (r *Resolver) deleteUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	affected, err := r.svc.Delete(p.Context, id)
	if err != nil {
		return nil, err
	}
	return types.JsonObject{"affected": affected}, nil
}

// orNil keeps a missing user from reaching graphql as a typed nil.
func orNil(u *User, err error) (interface{}, error) {
	if err != nil || u == nil {
		return nil, err
	}
	return u, nil
}
