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
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/tomoncle/hummer-gql/types"
)

// JSON carries loosely typed input such as where and order objects. Literals
// are converted to maps, slices and Go scalars; enum-like bare words (ASC)
// become strings. Variables nested in a literal are kept as references and
// bound by InputArg, since ParseLiteral never sees the variable values.
var JSON = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value.",
	Serialize: func(value interface{}) interface{} {
		return value
	},
	ParseValue: func(value interface{}) interface{} {
		return value
	},
	ParseLiteral: parseJSONLiteral,
})

// variableRef is a $name found inside a JSON literal.
type variableRef struct {
	name string
}

func parseJSONLiteral(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.Variable:
		return variableRef{name: v.Name.Value}
	case *ast.ObjectValue:
		obj := make(map[string]interface{}, len(v.Fields))
		for _, field := range v.Fields {
			obj[field.Name.Value] = parseJSONLiteral(field.Value)
		}
		return obj
	case *ast.ListValue:
		list := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			list = append(list, parseJSONLiteral(item))
		}
		return list
	case *ast.IntValue:
		if n, err := strconv.Atoi(v.Value); err == nil {
			return n
		}
		return v.Value
	case *ast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	default:
		return nil
	}
}

// DataType selects what list queries return.
var DataType = graphql.NewEnum(graphql.EnumConfig{
	Name:        "DataType",
	Description: "What a list query returns.",
	Values: graphql.EnumValueConfigMap{
		"all":   &graphql.EnumValueConfig{Value: types.DataTypeAll, Description: types.DataTypeAll.Desc()},
		"data":  &graphql.EnumValueConfig{Value: types.DataTypeData, Description: types.DataTypeData.Desc()},
		"count": &graphql.EnumValueConfig{Value: types.DataTypeCount, Description: types.DataTypeCount.Desc()},
	},
})
