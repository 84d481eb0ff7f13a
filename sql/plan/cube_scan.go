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
	"fmt"

	"github.com/dolthub/go-cubesql/sql"
)

// CubeScan is the extension leaf a successful rewrite produces: a semantic
// request the backend answers directly.
type CubeScan struct {
	Request *sql.Request
	schema  sql.Schema
}

var _ sql.Node = (*CubeScan)(nil)

// NewCubeScan creates a semantic scan with the schema the request's member
// list produces.
func NewCubeScan(request *sql.Request, schema sql.Schema) *CubeScan {
	return &CubeScan{Request: request, schema: schema}
}

// Schema implements sql.Node.
func (s *CubeScan) Schema() sql.Schema { return s.schema }

// Children implements sql.Node.
func (s *CubeScan) Children() []sql.Node { return nil }

// WithChildren implements sql.Node.
func (s *CubeScan) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return s, nil
}

func (s *CubeScan) String() string {
	return fmt.Sprintf("CubeScan(%s)", s.Request.MustJSON())
}

// CubeScanWrappedSql is the extension leaf produced when the plan could not
// resolve purely to cube members: SQL the backend executes against the
// source warehouse, with cube member placeholders of the form
// ${Cube.member} and 1-based positional parameters $N.
type CubeScanWrappedSql struct {
	SQL    string
	Params []interface{}
	// Request is the semantic request scoping the wrapped SQL, used by the
	// backend to resolve member placeholders and joins.
	Request *sql.Request
	schema  sql.Schema
}

var _ sql.Node = (*CubeScanWrappedSql)(nil)

// NewCubeScanWrappedSql creates a wrapped-SQL scan.
func NewCubeScanWrappedSql(sqlText string, params []interface{}, request *sql.Request, schema sql.Schema) *CubeScanWrappedSql {
	return &CubeScanWrappedSql{SQL: sqlText, Params: params, Request: request, schema: schema}
}

// Schema implements sql.Node.
func (s *CubeScanWrappedSql) Schema() sql.Schema { return s.schema }

// Children implements sql.Node.
func (s *CubeScanWrappedSql) Children() []sql.Node { return nil }

// WithChildren implements sql.Node.
func (s *CubeScanWrappedSql) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildren.New(len(children), 0)
	}
	return s, nil
}

func (s *CubeScanWrappedSql) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("CubeScanWrappedSql")
	_ = pr.WriteChildren(s.SQL)
	return pr.String()
}
