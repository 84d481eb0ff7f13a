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
	"github.com/dolthub/go-cubesql/sql/cube"
)

// CubeTable is a leaf relation backed by a semantic cube. It is the only
// table kind the rewriter resolves members against; information_schema and
// pg_catalog relations never reach the rewrite core.
type CubeTable struct {
	Cube *cube.Cube
	// Alias is the name the query knows the relation by, defaulting to the
	// cube name.
	Alias string
}

var _ sql.Node = (*CubeTable)(nil)
var _ sql.Nameable = (*CubeTable)(nil)

// NewCubeTable creates a leaf over the given cube.
func NewCubeTable(c *cube.Cube) *CubeTable {
	return &CubeTable{Cube: c, Alias: c.Name}
}

// NewCubeTableWithAlias creates an aliased leaf over the given cube.
func NewCubeTableWithAlias(c *cube.Cube, alias string) *CubeTable {
	if alias == "" {
		alias = c.Name
	}
	return &CubeTable{Cube: c, Alias: alias}
}

// Name implements sql.Nameable.
func (t *CubeTable) Name() string { return t.Alias }

// Schema implements sql.Node.
func (t *CubeTable) Schema() sql.Schema {
	schema := t.Cube.Schema()
	if t.Alias == t.Cube.Name {
		return schema
	}
	aliased := make(sql.Schema, len(schema))
	for i, col := range schema {
		cp := *col
		cp.Source = t.Alias
		aliased[i] = &cp
	}
	return aliased
}

// Children implements sql.Node.
func (t *CubeTable) Children() []sql.Node { return nil }

// WithChildren implements sql.Node.
func (t *CubeTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return t, nil
}

func (t *CubeTable) String() string {
	if t.Alias != t.Cube.Name {
		return "CubeTable(" + t.Cube.Name + " as " + t.Alias + ")"
	}
	return "CubeTable(" + t.Cube.Name + ")"
}
