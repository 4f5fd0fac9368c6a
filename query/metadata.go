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
	"strings"

	"github.com/uptrace/bun/schema"
)

// Property is a filterable/sortable entity attribute.
type Property struct {
	// Name is the client facing name (json tag).
	Name string
	// Column is the database column.
	Column string
	IsPK   bool
}

// Relation is a related entity that can be eager-loaded.
type Relation struct {
	// Name is the client facing name (json tag).
	Name string
	// GoName is the struct field name used by bun's Relation.
	GoName string
	target func() *EntityMetadata
}

// Target returns the metadata of the related entity, or nil when unknown.
func (r *Relation) Target() *EntityMetadata {
	if r == nil || r.target == nil {
		return nil
	}
	return r.target()
}

// EntityMetadata is the ordered property map of an entity plus its relations.
type EntityMetadata struct {
	Name       string
	properties []Property
	propIndex  map[string]int
	relations  map[string]*Relation
}

// NewEntityMetadata builds metadata by hand. Property order is preserved.
func NewEntityMetadata(name string, properties ...Property) *EntityMetadata {
	m := &EntityMetadata{
		Name:      name,
		propIndex: make(map[string]int, len(properties)),
		relations: make(map[string]*Relation),
	}
	for _, p := range properties {
		m.addProperty(p)
	}
	return m
}

// WithRelation registers a relation whose target is resolved lazily, which
// allows cyclic entity graphs.
func (m *EntityMetadata) WithRelation(name, goName string, target func() *EntityMetadata) *EntityMetadata {
	m.relations[name] = &Relation{Name: name, GoName: goName, target: target}
	return m
}

func (m *EntityMetadata) addProperty(p Property) {
	if _, exists := m.propIndex[p.Name]; exists {
		return
	}
	m.propIndex[p.Name] = len(m.properties)
	m.properties = append(m.properties, p)
}

// Properties returns the properties in declaration order.
func (m *EntityMetadata) Properties() []Property {
	out := make([]Property, len(m.properties))
	copy(out, m.properties)
	return out
}

// Property looks up a property by client facing name.
func (m *EntityMetadata) Property(name string) (Property, bool) {
	idx, ok := m.propIndex[name]
	if !ok {
		return Property{}, false
	}
	return m.properties[idx], true
}

// PrimaryKeys returns the primary key properties.
func (m *EntityMetadata) PrimaryKeys() []Property {
	var pks []Property
	for _, p := range m.properties {
		if p.IsPK {
			pks = append(pks, p)
		}
	}
	return pks
}

// Relation looks up a direct relation by client facing name.
func (m *EntityMetadata) Relation(name string) (*Relation, bool) {
	r, ok := m.relations[name]
	return r, ok
}

// ResolveRelation walks a dotted relation path ("posts.author") and returns
// the bun relation path ("Posts.Author").
func (m *EntityMetadata) ResolveRelation(path string) (string, error) {
	current := m
	goNames := make([]string, 0, strings.Count(path, ".")+1)
	for _, part := range strings.Split(path, ".") {
		if current == nil {
			return "", fmt.Errorf("relation %s cannot be resolved", path)
		}
		rel, ok := current.Relation(part)
		if !ok {
			return "", fmt.Errorf("relation %s is not in %s", part, current.Name)
		}
		goNames = append(goNames, rel.GoName)
		current = rel.Target()
	}
	return strings.Join(goNames, "."), nil
}

// MetadataFromTable derives metadata from a bun table, including every table
// reachable through relations. Fields tagged json:"-" are not exposed.
func MetadataFromTable(table *schema.Table) *EntityMetadata {
	return metadataFromTable(table, make(map[*schema.Table]*EntityMetadata))
}

func metadataFromTable(table *schema.Table, seen map[*schema.Table]*EntityMetadata) *EntityMetadata {
	if m, ok := seen[table]; ok {
		return m
	}
	m := NewEntityMetadata(table.Type.Name())
	seen[table] = m

	for _, f := range table.Fields {
		name, hidden := jsonName(f.StructField, f.Name)
		if hidden {
			continue
		}
		m.addProperty(Property{Name: name, Column: f.Name, IsPK: f.IsPK})
	}
	for goName, rel := range table.Relations {
		name, hidden := jsonName(rel.Field.StructField, goName)
		if hidden {
			continue
		}
		target := metadataFromTable(rel.JoinTable, seen)
		m.WithRelation(name, goName, func() *EntityMetadata { return target })
	}
	return m
}

func jsonName(sf reflect.StructField, fallback string) (name string, hidden bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ = strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return fallback, false
}
