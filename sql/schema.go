// Copyright 2025 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

// Column is the definition of a plan schema column.
type Column struct {
	// Name of the column as seen by the caller.
	Name string
	// Type of the column values.
	Type Type
	// Source is the name of the relation the column belongs to, if any.
	Source string
	// Nullable is true if the column can contain NULL.
	Nullable bool
}

// Equals reports whether the column definitions match on name, source and
// type.
func (c *Column) Equals(other *Column) bool {
	return c.Name == other.Name &&
		c.Source == other.Source &&
		c.Type.Equals(other.Type)
}

// Schema is the definition of a relation's columns.
type Schema []*Column

// Equals reports whether the schemas have the same columns in the same
// order.
func (s Schema) Equals(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Equals(other[i]) {
			return false
		}
	}
	return true
}

// IndexOf returns the index of the column with the given name and source,
// or -1 if the schema has no such column.
func (s Schema) IndexOf(name, source string) int {
	for i, col := range s {
		if col.Name == name && (source == "" || col.Source == source) {
			return i
		}
	}
	return -1
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}
