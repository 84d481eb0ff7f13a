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
	"github.com/dolthub/go-cubesql/sql"
)

// Limit caps the number of rows produced by its child.
type Limit struct {
	UnaryNode
	Limit int64
}

var _ sql.Node = (*Limit)(nil)

// NewLimit creates a limit node.
func NewLimit(limit int64, child sql.Node) *Limit {
	return &Limit{UnaryNode{Child: child}, limit}
}

// WithChildren implements sql.Node.
func (l *Limit) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewLimit(l.Limit, children[0]), nil
}

func (l *Limit) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Limit(%d)", l.Limit)
	_ = pr.WriteChildren(l.Child.String())
	return pr.String()
}

// Offset skips the first rows produced by its child.
type Offset struct {
	UnaryNode
	Offset int64
}

var _ sql.Node = (*Offset)(nil)

// NewOffset creates an offset node.
func NewOffset(offset int64, child sql.Node) *Offset {
	return &Offset{UnaryNode{Child: child}, offset}
}

// WithChildren implements sql.Node.
func (o *Offset) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewOffset(o.Offset, children[0]), nil
}

func (o *Offset) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Offset(%d)", o.Offset)
	_ = pr.WriteChildren(o.Child.String())
	return pr.String()
}

// Distinct removes duplicate rows from its child.
type Distinct struct {
	UnaryNode
}

var _ sql.Node = (*Distinct)(nil)

// NewDistinct creates a distinct node.
func NewDistinct(child sql.Node) *Distinct {
	return &Distinct{UnaryNode{Child: child}}
}

// WithChildren implements sql.Node.
func (d *Distinct) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildren.New(len(children), 1)
	}
	return NewDistinct(children[0]), nil
}

func (d *Distinct) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Distinct")
	_ = pr.WriteChildren(d.Child.String())
	return pr.String()
}
