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

import (
	"fmt"
	"strings"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// DataType selects what a list query returns. The zero value is DataTypeAll.
type DataType int

const (
	DataTypeAll DataType = iota
	DataTypeData
	DataTypeCount
)

var _ BaseEnum = DataType(0)

var dataTypeNames = map[DataType]string{
	DataTypeAll:   "all",
	DataTypeData:  "data",
	DataTypeCount: "count",
}

var dataTypeDescs = map[DataType]string{
	DataTypeAll:   "records and total count",
	DataTypeData:  "records only",
	DataTypeCount: "total count only",
}

// DataTypes lists the valid values in declaration order.
func DataTypes() []DataType {
	return []DataType{DataTypeAll, DataTypeData, DataTypeCount}
}

// ParseDataType maps the client token to a DataType. An empty token means all.
func ParseDataType(s string) (DataType, error) {
	token := strings.TrimSpace(s)
	if token == "" {
		return DataTypeAll, nil
	}
	for _, dt := range DataTypes() {
		if dt.Name() == token {
			return dt, nil
		}
	}
	names := make([]string, 0, len(dataTypeNames))
	for _, dt := range DataTypes() {
		names = append(names, dt.Name())
	}
	return DataType(IllegalValue), NewBadRequest("dataType",
		fmt.Sprintf("dataType must be %s, got %q", strings.Join(names, " or "), s))
}

func (d DataType) IsValid() bool {
	_, ok := dataTypeNames[d]
	return ok
}

func (d DataType) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d DataType) String() string { return d.Name() }

func (d DataType) Name() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return IllegalName
}

func (d DataType) Desc() string {
	if desc, ok := dataTypeDescs[d]; ok {
		return desc
	}
	return IllegalDesc
}

// WantsData reports whether records are fetched.
func (d DataType) WantsData() bool { return d == DataTypeAll || d == DataTypeData }

// WantsCount reports whether the total count is fetched.
func (d DataType) WantsCount() bool { return d == DataTypeAll || d == DataTypeCount }
