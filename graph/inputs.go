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
	"github.com/tomoncle/hummer-gql/types"
)

var PaginationInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name:        "PaginationInput",
	Description: "Zero based page and page size.",
	Fields: graphql.InputObjectConfigFieldMap{
		"page": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"size": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var GetManyInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "GetManyInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"pagination": &graphql.InputObjectFieldConfig{Type: PaginationInput},
		"where": &graphql.InputObjectFieldConfig{
			Type:        JSON,
			Description: "An object of constraints, or a list of such objects joined with OR.",
		},
		"order": &graphql.InputObjectFieldConfig{
			Type:        JSON,
			Description: `Property to "ASC", "DESC" or {direction, nulls}.`,
		},
		"dataType": &graphql.InputObjectFieldConfig{
			Type:         DataType,
			DefaultValue: types.DataTypeAll,
		},
		"relations": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
	},
})

var GetOneInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "GetOneInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"where":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(JSON)},
		"relations": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
	},
})

// DecodeGetManyInput converts the input argument into a RepoQuery.
func DecodeGetManyInput(input map[string]interface{}) (*types.RepoQuery, error) {
	q := &types.RepoQuery{Where: input["where"]}

	if raw, ok := input["pagination"].(map[string]interface{}); ok {
		page, _ := raw["page"].(int)
		size, _ := raw["size"].(int)
		q.Pagination = types.NewPagination(page, size)
	}

	switch order := input["order"].(type) {
	case nil:
	case map[string]interface{}:
		q.Order = order
	default:
		return nil, types.NewBadRequest("order", fmt.Sprintf("Order must be an object, got %T", order))
	}

	switch dt := input["dataType"].(type) {
	case nil:
	case types.DataType:
		q.DataType = dt
	case string:
		parsed, err := types.ParseDataType(dt)
		if err != nil {
			return nil, err
		}
		q.DataType = parsed
	default:
		return nil, types.NewBadRequest("dataType", fmt.Sprintf("dataType must be all or data or count, got %v", dt))
	}

	q.Relations = stringList(input["relations"])
	return q, nil
}

// DecodeGetOneInput converts the input argument into a OneRepoQuery.
func DecodeGetOneInput(input map[string]interface{}) (*types.OneRepoQuery, error) {
	where := input["where"]
	if where == nil {
		return nil, types.NewBadRequest("where", "Where is required")
	}
	return &types.OneRepoQuery{Where: where, Relations: stringList(input["relations"])}, nil
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// InputArg returns the "input" argument as an object, with variables used
// inside JSON literals replaced by their request values.
func InputArg(p graphql.ResolveParams) (map[string]interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	if input == nil {
		return map[string]interface{}{}, nil
	}
	bound, err := bindVariables(input, p.Info.VariableValues)
	if err != nil {
		return nil, err
	}
	return bound.(map[string]interface{}), nil
}

func bindVariables(value interface{}, vars map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case variableRef:
		bound, ok := vars[v.name]
		if !ok {
			return nil, types.NewBadRequest(v.name, fmt.Sprintf("Variable $%s is not provided", v.name))
		}
		return bound, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			bound, err := bindVariables(item, vars)
			if err != nil {
				return nil, err
			}
			out[key] = bound
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			bound, err := bindVariables(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = bound
		}
		return out, nil
	}
	return value, nil
}
