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

package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
)

// FieldProvider contributes root fields to the schema.
type FieldProvider interface {
	Queries() graphql.Fields
	Mutations() graphql.Fields
}

// NewSchema merges the root fields of every provider. Duplicate field names
// are rejected.
func NewSchema(providers ...FieldProvider) (graphql.Schema, error) {
	queries := graphql.Fields{}
	mutations := graphql.Fields{}
	for _, p := range providers {
		if err := merge(queries, p.Queries()); err != nil {
			return graphql.Schema{}, err
		}
		if err := merge(mutations, p.Mutations()); err != nil {
			return graphql.Schema{}, err
		}
	}
	if len(queries) == 0 {
		return graphql.Schema{}, fmt.Errorf("schema has no query fields")
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queries}),
	}
	if len(mutations) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations})
	}
	return graphql.NewSchema(cfg)
}

func merge(dst, src graphql.Fields) error {
	for name, field := range src {
		if _, ok := dst[name]; ok {
			return fmt.Errorf("duplicate root field %s", name)
		}
		dst[name] = field
	}
	return nil
}

type listResult interface {
	Items() any
	Total() *int
}

// ListType builds the {data, count} wrapper returned by list queries.
func ListType(name string, item *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"data": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(item)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if res, ok := p.Source.(listResult); ok {
						return res.Items(), nil
					}
					return nil, nil
				},
			},
			"count": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if res, ok := p.Source.(listResult); ok && res.Total() != nil {
						return *res.Total(), nil
					}
					return nil, nil
				},
			},
		},
	})
}
