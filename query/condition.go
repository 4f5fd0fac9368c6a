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
	"reflect"
	"sort"
	"strings"

	"github.com/tomoncle/hummer-gql/types"
	"github.com/uptrace/bun"
)

// Operator is a filter operator accepted in where input.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpIn         Operator = "in"
	OpNotIn      Operator = "notIn"
	OpLike       Operator = "like"
	OpILike      Operator = "ilike"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpBetween    Operator = "between"
	OpIsNull     Operator = "isNull"
	OpNot        Operator = "not"
)

var operators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpIn: {}, OpNotIn: {}, OpLike: {}, OpILike: {}, OpContains: {},
	OpStartsWith: {}, OpEndsWith: {}, OpBetween: {}, OpIsNull: {}, OpNot: {},
}

var comparisons = map[Operator]string{
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Operators returns the supported operator names, sorted.
func Operators() []string {
	names := make([]string, 0, len(operators))
	for op := range operators {
		names = append(names, string(op))
	}
	sort.Strings(names)
	return names
}

// Condition is a node of a filter expression tree.
type Condition interface {
	// SQL renders the node as a bun WHERE fragment with positional args.
	SQL() (string, []any)
}

// Predicate constrains a single column.
type Predicate struct {
	Column string
	Op     Operator
	Value  any
}

// Logic joins the children of a Group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Group joins child conditions with AND or OR.
type Group struct {
	Logic    Logic
	Children []Condition
}

// Negation negates its child.
type Negation struct {
	Child Condition
}

func (p *Predicate) SQL() (string, []any) {
	col := bun.Ident(p.Column)
	switch p.Op {
	case OpEq:
		if p.Value == nil {
			return "?TableAlias.? IS NULL", []any{col}
		}
		return "?TableAlias.? = ?", []any{col, p.Value}
	case OpNe:
		if p.Value == nil {
			return "?TableAlias.? IS NOT NULL", []any{col}
		}
		return "?TableAlias.? <> ?", []any{col, p.Value}
	case OpGt, OpGte, OpLt, OpLte:
		return "?TableAlias.? " + comparisons[p.Op] + " ?", []any{col, p.Value}
	case OpIn:
		values := p.Value.([]any)
		if len(values) == 0 {
			return "1 = 0", nil
		}
		return "?TableAlias.? IN (?)", []any{col, bun.In(values)}
	case OpNotIn:
		values := p.Value.([]any)
		if len(values) == 0 {
			return "1 = 1", nil
		}
		return "?TableAlias.? NOT IN (?)", []any{col, bun.In(values)}
	case OpLike:
		return "?TableAlias.? LIKE ?", []any{col, p.Value}
	case OpILike:
		return "LOWER(?TableAlias.?) LIKE LOWER(?)", []any{col, p.Value}
	case OpContains, OpStartsWith, OpEndsWith:
		return "?TableAlias.? LIKE ? ESCAPE '!'", []any{col, likePattern(p.Op, p.Value.(string))}
	case OpBetween:
		bounds := p.Value.([]any)
		return "?TableAlias.? BETWEEN ? AND ?", []any{col, bounds[0], bounds[1]}
	case OpIsNull:
		if p.Value.(bool) {
			return "?TableAlias.? IS NULL", []any{col}
		}
		return "?TableAlias.? IS NOT NULL", []any{col}
	}
	panic(fmt.Sprintf("query: predicate with unsupported operator %q", p.Op))
}

func (g *Group) SQL() (string, []any) {
	if len(g.Children) == 0 {
		if g.Logic == LogicOr {
			return "1 = 0", nil
		}
		return "1 = 1", nil
	}
	if len(g.Children) == 1 {
		return g.Children[0].SQL()
	}
	parts := make([]string, 0, len(g.Children))
	var args []any
	for _, child := range g.Children {
		s, a := child.SQL()
		parts = append(parts, "("+s+")")
		args = append(args, a...)
	}
	return strings.Join(parts, " "+string(g.Logic)+" "), args
}

func (n *Negation) SQL() (string, []any) {
	s, args := n.Child.SQL()
	return "NOT (" + s + ")", args
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(op Operator, value string) string {
	escaped := likeEscaper.Replace(value)
	switch op {
	case OpStartsWith:
		return escaped + "%"
	case OpEndsWith:
		return "%" + escaped
	default:
		return "%" + escaped + "%"
	}
}

// ProcessWhere translates client where input into a condition tree.
//
// A map is an AND of per-property constraints, a list is an OR of maps.
// A nil or empty input returns a nil Condition, leaving the query unconstrained.
func ProcessWhere(where any, meta *EntityMetadata) (Condition, error) {
	switch w := where.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(w) == 0 {
			return nil, nil
		}
		return processObject(w, meta)
	case []any:
		if len(w) == 0 {
			return nil, nil
		}
		branches := make([]Condition, 0, len(w))
		for i, item := range w {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, types.NewBadRequest(fmt.Sprintf("where[%d]", i),
					fmt.Sprintf("Where branch %d must be an object, got %T", i, item))
			}
			cond, err := processObject(obj, meta)
			if err != nil {
				return nil, err
			}
			branches = append(branches, cond)
		}
		return &Group{Logic: LogicOr, Children: branches}, nil
	default:
		return nil, types.NewBadRequest("where", fmt.Sprintf("Where must be an object or a list of objects, got %T", where))
	}
}

func processObject(obj map[string]any, meta *EntityMetadata) (Condition, error) {
	group := &Group{Logic: LogicAnd}
	for _, key := range sortedKeys(obj) {
		prop, ok := meta.Property(key)
		if !ok {
			if _, isRel := meta.Relation(key); isRel {
				return nil, types.NewBadRequest("where."+key,
					fmt.Sprintf("Where key %s is a relation of %s, filtering through relations is not supported", key, meta.Name))
			}
			return nil, types.NewBadRequest("where."+key, fmt.Sprintf("Where key %s is not in %s", key, meta.Name))
		}
		conds, err := processValue(prop, obj[key], "where."+key)
		if err != nil {
			return nil, err
		}
		group.Children = append(group.Children, conds...)
	}
	return group, nil
}

func processValue(prop Property, value any, field string) ([]Condition, error) {
	ops, ok := value.(map[string]any)
	if !ok {
		if isList(value) {
			return nil, types.NewBadRequest(field,
				fmt.Sprintf("Where %s must be a value or an operator object, use in for lists", prop.Name))
		}
		return []Condition{&Predicate{Column: prop.Column, Op: OpEq, Value: value}}, nil
	}
	if len(ops) == 0 {
		return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s operator object is empty", prop.Name))
	}
	conds := make([]Condition, 0, len(ops))
	for _, key := range sortedKeys(ops) {
		cond, err := processOperator(prop, Operator(key), ops[key], field+"."+key)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func processOperator(prop Property, op Operator, operand any, field string) (Condition, error) {
	if _, ok := operators[op]; !ok {
		return nil, types.NewBadRequest(field,
			fmt.Sprintf("Where operator %s must be %s", op, strings.Join(Operators(), " or ")))
	}
	switch op {
	case OpNot:
		inner, err := processValue(prop, operand, field)
		if err != nil {
			return nil, err
		}
		return &Negation{Child: &Group{Logic: LogicAnd, Children: inner}}, nil
	case OpIn, OpNotIn:
		values, ok := toList(operand)
		if !ok {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.%s must be a list", prop.Name, op))
		}
		return &Predicate{Column: prop.Column, Op: op, Value: values}, nil
	case OpBetween:
		values, ok := toList(operand)
		if !ok || len(values) != 2 || values[0] == nil || values[1] == nil {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.between must be a list of two values", prop.Name))
		}
		return &Predicate{Column: prop.Column, Op: op, Value: values}, nil
	case OpIsNull:
		b, ok := operand.(bool)
		if !ok {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.isNull must be a boolean", prop.Name))
		}
		return &Predicate{Column: prop.Column, Op: op, Value: b}, nil
	case OpLike, OpILike, OpContains, OpStartsWith, OpEndsWith:
		s, ok := operand.(string)
		if !ok {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.%s must be a string", prop.Name, op))
		}
		return &Predicate{Column: prop.Column, Op: op, Value: s}, nil
	case OpGt, OpGte, OpLt, OpLte:
		if operand == nil || isList(operand) {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.%s must be a scalar value", prop.Name, op))
		}
		if _, isObj := operand.(map[string]any); isObj {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.%s must be a scalar value", prop.Name, op))
		}
	default:
		if isList(operand) {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.%s must be a scalar value", prop.Name, op))
		}
		if _, isObj := operand.(map[string]any); isObj {
			return nil, types.NewBadRequest(field, fmt.Sprintf("Where %s.%s must be a scalar value", prop.Name, op))
		}
	}
	return &Predicate{Column: prop.Column, Op: op, Value: operand}, nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func toList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	if !isList(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyWhere adds the condition to the query. A nil condition is a no-op.
// Bun parenthesizes every WHERE clause, so a top level OR stays grouped.
func ApplyWhere(q *bun.SelectQuery, cond Condition) *bun.SelectQuery {
	if cond == nil {
		return q
	}
	expr, args := cond.SQL()
	return q.Where(expr, args...)
}
