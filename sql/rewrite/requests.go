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

package rewrite

import (
	"fmt"
	"strings"

	"github.com/dolthub/go-cubesql/sql"
)

// requestRef is the leaf payload of a CubeScan e-node: an index into the
// graph's request table. Entries are immutable once interned, so rules
// derive new requests by interning modified copies.
type requestRef int64

// OutputColumn describes one output column of a cube scan, in selection
// order.
type OutputColumn struct {
	// Name is the column name the caller sees, alias-preserving.
	Name string
	// Member is the member path producing the column. Time dimensions use
	// the "path:granularity" spelling.
	Member string
	// Type is the column type.
	Type sql.Type
}

// PendingJoin is a subquery join recognized by the rule set but not yet
// rendered: the inner request still needs the transport to produce its SQL
// at reconstruction time.
type PendingJoin struct {
	Inner    requestRef
	On       *Term
	JoinType string
	Alias    string
}

// RequestEntry is an interned cube-scan payload: the request body, its
// single cube scope, its output schema, and any pending subquery joins.
type RequestEntry struct {
	Cube    string
	Request *sql.Request
	Columns []OutputColumn
	Joins   []PendingJoin

	// IsWrapped marks entries ingested from already-wrapped SQL leaves;
	// they reconstruct verbatim.
	IsWrapped     bool
	WrappedSQL    string
	WrappedParams []interface{}
}

// clone returns a derived copy safe to mutate before interning.
func (e *RequestEntry) clone() *RequestEntry {
	return &RequestEntry{
		Cube:          e.Cube,
		Request:       e.Request.Clone(),
		Columns:       append([]OutputColumn(nil), e.Columns...),
		Joins:         append([]PendingJoin(nil), e.Joins...),
		IsWrapped:     e.IsWrapped,
		WrappedSQL:    e.WrappedSQL,
		WrappedParams: append([]interface{}(nil), e.WrappedParams...),
	}
}

// fingerprint renders the entry canonically. Interning is content-keyed so
// a rule that fires twice on the same match lands on the same ref and the
// saturation loop reaches a fixed point.
func (e *RequestEntry) fingerprint() string {
	var sb strings.Builder
	sb.WriteString(e.Cube)
	sb.WriteByte('|')
	sb.WriteString(e.Request.MustJSON())
	for _, c := range e.Columns {
		fmt.Fprintf(&sb, "|c:%s:%s:%s", c.Name, c.Member, c.Type)
	}
	for _, j := range e.Joins {
		fmt.Fprintf(&sb, "|j:%d:%s:%s:%s", j.Inner, j.JoinType, j.Alias, j.On)
	}
	if e.IsWrapped {
		fmt.Fprintf(&sb, "|w:%s:%d", e.WrappedSQL, len(e.WrappedParams))
	}
	return sb.String()
}

// Schema renders the entry's output schema.
func (e *RequestEntry) Schema() sql.Schema {
	schema := make(sql.Schema, len(e.Columns))
	for i, col := range e.Columns {
		schema[i] = &sql.Column{Name: col.Name, Type: col.Type, Source: e.Cube, Nullable: true}
	}
	return schema
}

// requestTable interns request entries for the lifetime of one graph.
type requestTable struct {
	entries []*RequestEntry
	byKey   map[string]requestRef
}

func newRequestTable() *requestTable {
	return &requestTable{byKey: make(map[string]requestRef)}
}

func (t *requestTable) intern(e *RequestEntry) requestRef {
	key := e.fingerprint()
	if ref, ok := t.byKey[key]; ok {
		return ref
	}
	t.entries = append(t.entries, e)
	ref := requestRef(len(t.entries) - 1)
	t.byKey[key] = ref
	return ref
}

func (t *requestTable) get(ref requestRef) *RequestEntry {
	if int(ref) < 0 || int(ref) >= len(t.entries) {
		return nil
	}
	return t.entries[ref]
}

func (t *requestTable) clone() *requestTable {
	out := &requestTable{
		entries: append([]*RequestEntry(nil), t.entries...),
		byKey:   make(map[string]requestRef, len(t.byKey)),
	}
	for k, v := range t.byKey {
		out.byKey[k] = v
	}
	return out
}
