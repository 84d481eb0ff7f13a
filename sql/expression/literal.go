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

// Literal is a constant value.
type Literal struct {
	value interface{}
	typ   sql.Type
}

var _ sql.Expression = (*Literal)(nil)

// NewLiteral creates a literal of the given type.
func NewLiteral(value interface{}, typ sql.Type) *Literal {
	return &Literal{value: value, typ: typ}
}

// Value returns the literal value.
func (l *Literal) Value() interface{} { return l.value }

// Type implements sql.Expression.
func (l *Literal) Type() sql.Type { return l.typ }

// Children implements sql.Expression.
func (l *Literal) Children() []sql.Expression { return nil }

// WithChildren implements sql.Expression.
func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return l, nil
}

func (l *Literal) String() string {
	switch v := l.value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

// BindVar is a positional query parameter placeholder.
type BindVar struct {
	// Position is the 1-based position of the parameter.
	Position int
	typ      sql.Type
}

var _ sql.Expression = (*BindVar)(nil)

// NewBindVar creates a parameter placeholder.
func NewBindVar(position int, typ sql.Type) *BindVar {
	return &BindVar{Position: position, typ: typ}
}

// Type implements sql.Expression.
func (b *BindVar) Type() sql.Type { return b.typ }

// Children implements sql.Expression.
func (b *BindVar) Children() []sql.Expression { return nil }

// WithChildren implements sql.Expression.
func (b *BindVar) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return b, nil
}

func (b *BindVar) String() string {
	return fmt.Sprintf("$%d", b.Position)
}
