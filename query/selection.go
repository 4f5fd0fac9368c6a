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
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ListDataField is the field that holds records in list query results.
const ListDataField = "data"

// SelectTree is the requested field tree. Scalar leaves map to nil, relation
// fields map to their own tree.
type SelectTree map[string]SelectTree

// Selection is what a client query asked for.
type Selection struct {
	// Relations are dotted relation paths, parents before children.
	Relations []string
	// Select is nil when nothing narrows the columns, meaning load everything.
	Select SelectTree
}

// Columns returns the scalar fields at the root of the selection.
func (s *Selection) Columns() []string {
	if s == nil {
		return nil
	}
	var cols []string
	for name, sub := range s.Select {
		if sub == nil {
			cols = append(cols, name)
		}
	}
	return cols
}

// ParseSelection extracts relations and selected fields from the raw query
// text of the resolving operation. In list mode the root field is expected
// to wrap records in a data field.
func ParseSelection(raw string, list bool) (*Selection, error) {
	if strings.TrimSpace(raw) == "" {
		return &Selection{}, nil
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "selection", Input: raw})
	if err != nil {
		return nil, fmt.Errorf("parse query selection: %w", err)
	}
	if len(doc.Operations) == 0 {
		return &Selection{}, nil
	}

	w := &selectionWalker{fragments: doc.Fragments}
	root := w.firstField(doc.Operations[0].SelectionSet)
	if root == nil {
		return &Selection{}, nil
	}
	set := root.SelectionSet
	if list {
		data := w.field(set, ListDataField)
		if data == nil {
			return &Selection{}, nil
		}
		set = data.SelectionSet
	}

	tree := w.walk(set, "", make(map[string]bool))
	if len(tree) == 0 {
		return &Selection{}, nil
	}
	return &Selection{Relations: w.relations, Select: tree}, nil
}

type selectionWalker struct {
	fragments ast.FragmentDefinitionList
	relations []string
	seen      map[string]bool
}

func (w *selectionWalker) addRelation(path string) {
	if w.seen == nil {
		w.seen = make(map[string]bool)
	}
	if !w.seen[path] {
		w.seen[path] = true
		w.relations = append(w.relations, path)
	}
}

// walk builds the tree for a selection set. visiting guards against
// fragment cycles, which the parser does not reject.
func (w *selectionWalker) walk(set ast.SelectionSet, prefix string, visiting map[string]bool) SelectTree {
	tree := SelectTree{}
	for _, field := range w.fields(set, visiting) {
		name := field.Name
		if strings.HasPrefix(name, "__") {
			continue
		}
		if len(field.SelectionSet) == 0 {
			if _, exists := tree[name]; !exists {
				tree[name] = nil
			}
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		w.addRelation(path)
		if tree[name] == nil {
			tree[name] = SelectTree{}
		}
		for k, v := range w.walk(field.SelectionSet, path, visiting) {
			tree[name][k] = v
		}
	}
	return tree
}

// fields flattens inline fragments and fragment spreads into plain fields.
func (w *selectionWalker) fields(set ast.SelectionSet, visiting map[string]bool) []*ast.Field {
	var out []*ast.Field
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			out = append(out, s)
		case *ast.InlineFragment:
			out = append(out, w.fields(s.SelectionSet, visiting)...)
		case *ast.FragmentSpread:
			if visiting[s.Name] {
				continue
			}
			def := w.fragments.ForName(s.Name)
			if def == nil {
				continue
			}
			visiting[s.Name] = true
			out = append(out, w.fields(def.SelectionSet, visiting)...)
			delete(visiting, s.Name)
		}
	}
	return out
}

func (w *selectionWalker) firstField(set ast.SelectionSet) *ast.Field {
	for _, f := range w.fields(set, make(map[string]bool)) {
		if !strings.HasPrefix(f.Name, "__") {
			return f
		}
	}
	return nil
}

func (w *selectionWalker) field(set ast.SelectionSet, name string) *ast.Field {
	for _, f := range w.fields(set, make(map[string]bool)) {
		if f.Name == name {
			return f
		}
	}
	return nil
}
