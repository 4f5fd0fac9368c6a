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
	"fmt"
	"slices"
	"strings"

	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Direction is a sort direction token.
type Direction string

// Nulls places NULL values first or last.
type Nulls string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"

	NullsFirst Nulls = "FIRST"
	NullsLast  Nulls = "LAST"
)

const (
	orderOptionDirection = "direction"
	orderOptionNulls     = "nulls"
)

// valid plain direction tokens
var directionValues = []string{string(Asc), string(Desc)}

// valid option names of the object form
var orderOptions = []string{orderOptionDirection, orderOptionNulls}

// per-option whitelist of the object form
var orderOptionValues = map[string][]string{
	orderOptionDirection: directionValues,
	orderOptionNulls:     {string(NullsFirst), string(NullsLast)},
}

// OrderTerm is one validated ORDER BY item.
type OrderTerm struct {
	Property  Property
	Direction Direction
	Nulls     Nulls
}

// OrderSpec is a validated order, in entity property order.
type OrderSpec []OrderTerm

// ValidateOrder checks a client order spec against the entity metadata.
//
// Values are either a direction token ("ASC") or an object with direction
// and/or nulls ({"direction": "DESC", "nulls": "LAST"}).
func ValidateOrder(order map[string]any, meta *EntityMetadata) (OrderSpec, error) {
	if len(order) == 0 {
		return nil, nil
	}
	terms := make(map[string]OrderTerm, len(order))
	for _, key := range sortedKeys(order) {
		prop, ok := meta.Property(key)
		if !ok {
			return nil, types.NewBadRequest("order."+key, fmt.Sprintf("Order key %s is not in %s", key, meta.Name))
		}
		term, err := validateOrderValue(prop, order[key])
		if err != nil {
			return nil, err
		}
		terms[key] = term
	}

	spec := make(OrderSpec, 0, len(terms))
	for _, prop := range meta.properties {
		if term, ok := terms[prop.Name]; ok {
			spec = append(spec, term)
		}
	}
	return spec, nil
}

func validateOrderValue(prop Property, value any) (OrderTerm, error) {
	term := OrderTerm{Property: prop, Direction: Asc}
	field := "order." + prop.Name

	options, isObject := value.(map[string]any)
	if !isObject {
		token, _ := value.(string)
		if !slices.Contains(directionValues, token) {
			return term, types.NewBadRequest(field, fmt.Sprintf("Order must be %s", strings.Join(directionValues, " or ")))
		}
		term.Direction = Direction(token)
		return term, nil
	}

	for _, key := range sortedKeys(options) {
		allowed, ok := orderOptionValues[key]
		if !ok {
			return term, types.NewBadRequest(field, fmt.Sprintf("Order must be %s", strings.Join(orderOptions, " or ")))
		}
		token, _ := options[key].(string)
		if !slices.Contains(allowed, token) {
			return term, types.NewBadRequest(field+"."+key,
				fmt.Sprintf("Order %s must be %s", key, strings.Join(allowed, " or ")))
		}
		switch key {
		case orderOptionDirection:
			term.Direction = Direction(token)
		case orderOptionNulls:
			term.Nulls = Nulls(token)
		}
	}
	return term, nil
}

// Apply adds ORDER BY items to the query. MySQL has no NULLS FIRST/LAST, so
// null placement is emulated with an IS NULL sort key.
func (s OrderSpec) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	mysql := q.DB() != nil && q.DB().Dialect().Name() == dialect.MySQL
	for _, term := range s {
		col := bun.Ident(term.Property.Column)
		switch {
		case term.Nulls == "":
			q = q.OrderExpr("?TableAlias.? "+string(term.Direction), col)
		case mysql:
			nullsKey := "ASC"
			if term.Nulls == NullsFirst {
				nullsKey = "DESC"
			}
			q = q.OrderExpr("?TableAlias.? IS NULL "+nullsKey, col).
				OrderExpr("?TableAlias.? "+string(term.Direction), col)
		default:
			q = q.OrderExpr("?TableAlias.? "+string(term.Direction)+" NULLS "+string(term.Nulls), col)
		}
	}
	return q
}
