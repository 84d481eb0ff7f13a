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

package plan

import (
	"strings"

	"github.com/dolthub/go-cubesql/sql"
)

// Sort orders its child rows by the sort fields.
type Sort struct {
	UnaryNode
	SortFields []sql.SortField
}

var _ sql.Node = (*Sort)(nil)
var _ sql.Expressioner = (*Sort)(nil)

// NewSort creates a sort node.
func NewSort(fields []sql.SortField, child sql.Node) *Sort {
	return &Sort{UnaryNode{Child: child}, fields}
}

// WithChildren implements sql.Node.
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewSort(s.SortFields, children[0]), nil
}

// Expressions implements sql.Expressioner.
func (s *Sort) Expressions() []sql.Expression {
	exprs := make([]sql.Expression, len(s.SortFields))
	for i, f := range s.SortFields {
		exprs[i] = f.Column
	}
	return exprs
}

// WithExpressions implements sql.Expressioner.
func (s *Sort) WithExpressions(exprs ...sql.Expression) (sql.Node, error) {
	if len(exprs) != len(s.SortFields) {
		return nil, sql.ErrInvalidChildren.New(len(exprs), len(s.SortFields))
	}
	fields := make([]sql.SortField, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = sql.SortField{Column: exprs[i], Order: f.Order, NullOrdering: f.NullOrdering}
	}
	return NewSort(fields, s.Child), nil
}

func (s *Sort) String() string {
	pr := sql.NewTreePrinter()
	fields := make([]string, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = f.String()
	}
	_ = pr.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	_ = pr.WriteChildren(s.Child.String())
	return pr.String()
}
