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

package types

import "fmt"

// Pagination is the client page request. Page is zero based.
type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewPagination constructs a page request.
func NewPagination(page int, size int) *Pagination {
	return &Pagination{Page: page, Size: size}
}

// Validate rejects negative pages and non-positive page sizes.
func (p *Pagination) Validate() error {
	if p.Page < 0 {
		return NewBadRequest("pagination.page", fmt.Sprintf("Pagination page must be >= 0, got %d", p.Page))
	}
	if p.Size < 1 {
		return NewBadRequest("pagination.size", fmt.Sprintf("Pagination size must be > 0, got %d", p.Size))
	}
	return nil
}

// GetOffset returns the number of rows to skip.
func (p *Pagination) GetOffset() int {
	return p.Page * p.Size
}

// GetLimit returns the number of rows to take.
func (p *Pagination) GetLimit() int {
	return p.Size
}

// RepoQuery describes a list query: filters, ordering, paging and what to return.
type RepoQuery struct {
	Pagination *Pagination
	Where      any
	Order      map[string]any
	DataType   DataType
	Relations  []string
}

// OneRepoQuery describes a single record query.
type OneRepoQuery struct {
	Where     any
	Relations []string
}

// GetData holds list query results. Fields not requested by the DataType stay nil.
type GetData[T any] struct {
	Data  []*T `json:"data,omitempty"`
	Count *int `json:"count,omitempty"`
}

// NewDataResult wraps records only.
func NewDataResult[T any](data []*T) *GetData[T] {
	if data == nil {
		data = make([]*T, 0)
	}
	return &GetData[T]{Data: data}
}

// NewCountResult wraps a count only.
func NewCountResult[T any](count int) *GetData[T] {
	return &GetData[T]{Count: &count}
}

// NewAllResult wraps both records and the total count.
func NewAllResult[T any](data []*T, count int) *GetData[T] {
	res := NewDataResult(data)
	res.Count = &count
	return res
}

// Items returns the records as an untyped list, nil when none were requested.
func (g *GetData[T]) Items() any {
	if g.Data == nil {
		return nil
	}
	return g.Data
}

// Total returns the count, nil when it was not requested.
func (g *GetData[T]) Total() *int {
	return g.Count
}
