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
)

// Alias gives a name to an expression.
type Alias struct {
	UnaryExpression
	name string
}

var _ sql.Expression = (*Alias)(nil)

// NewAlias creates an aliased expression.
func NewAlias(name string, expr sql.Expression) *Alias {
	return &Alias{UnaryExpression{Child: expr}, name}
}

// Name returns the alias name.
func (a *Alias) Name() string { return a.name }

// Type implements sql.Expression.
func (a *Alias) Type() sql.Type { return a.Child.Type() }

// WithChildren implements sql.Expression.
func (a *Alias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewAlias(a.name, children[0]), nil
}

func (a *Alias) String() string {
	return fmt.Sprintf("%s as %s", a.Child, a.name)
}

// UnaryExpression is the base for expressions with exactly one child.
type UnaryExpression struct {
	Child sql.Expression
}

// Children implements sql.Expression.
func (p *UnaryExpression) Children() []sql.Expression {
	return []sql.Expression{p.Child}
}

// BinaryExpression is the base for expressions with exactly two children.
type BinaryExpression struct {
	Left  sql.Expression
	Right sql.Expression
}

// Children implements sql.Expression.
func (p *BinaryExpression) Children() []sql.Expression {
	return []sql.Expression{p.Left, p.Right}
}
