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
	"fmt"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

// Subquery is a scalar subquery in expression position. It produces the
// single column of its single row.
type Subquery struct {
	Query sql.Node
}

var _ sql.Expression = (*Subquery)(nil)

// NewSubquery creates a scalar subquery.
func NewSubquery(query sql.Node) *Subquery {
	return &Subquery{Query: query}
}

// Type implements sql.Expression.
func (s *Subquery) Type() sql.Type {
	schema := s.Query.Schema()
	if len(schema) == 1 {
		return schema[0].Type
	}
	return types.Text
}

// Children implements sql.Expression.
func (s *Subquery) Children() []sql.Expression { return nil }

// WithChildren implements sql.Expression.
func (s *Subquery) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return s, nil
}

// WithQuery returns a copy of the subquery over a different plan.
func (s *Subquery) WithQuery(query sql.Node) *Subquery {
	return NewSubquery(query)
}

func (s *Subquery) String() string {
	return fmt.Sprintf("(%s)", s.Query)
}

// Star is the * projection placeholder used only transiently during
// binding.
type Star struct{}

var _ sql.Expression = (*Star)(nil)

// NewStar creates a * placeholder.
func NewStar() *Star { return &Star{} }

// Type implements sql.Expression.
func (*Star) Type() sql.Type { return types.Text }

// Children implements sql.Expression.
func (*Star) Children() []sql.Expression { return nil }

// WithChildren implements sql.Expression.
func (s *Star) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return s, nil
}

func (*Star) String() string { return "*" }
