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

package expression

import (
	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

// GetField is a reference to a column of a relation.
type GetField struct {
	table string
	name  string
	typ   sql.Type
}

var _ sql.Expression = (*GetField)(nil)

// NewGetField creates an unqualified column reference.
func NewGetField(name string, typ sql.Type) *GetField {
	return &GetField{name: name, typ: typ}
}

// NewGetFieldWithTable creates a column reference qualified with a table
// (cube) name.
func NewGetFieldWithTable(table, name string, typ sql.Type) *GetField {
	return &GetField{table: table, name: name, typ: typ}
}

// Name returns the column name.
func (g *GetField) Name() string { return g.name }

// Table returns the qualifying relation name, if any.
func (g *GetField) Table() string { return g.table }

// Type implements sql.Expression.
func (g *GetField) Type() sql.Type {
	if g.typ == nil {
		return types.Text
	}
	return g.typ
}

// Children implements sql.Expression.
func (g *GetField) Children() []sql.Expression { return nil }

// WithChildren implements sql.Expression.
func (g *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return g, nil
}

// WithTable returns a copy of the reference qualified with the given table.
func (g *GetField) WithTable(table string) *GetField {
	cp := *g
	cp.table = table
	return &cp
}

func (g *GetField) String() string {
	if g.table == "" {
		return g.name
	}
	return g.table + "." + g.name
}
