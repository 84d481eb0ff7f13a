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

import (
	"encoding/json"
)

// Request is the semantic request dispatched to the analytics backend. All
// member strings are fully qualified paths of the form "Cube.member". The
// JSON shape is a stable wire contract.
type Request struct {
	Measures       []string         `json:"measures,omitempty"`
	Dimensions     []string         `json:"dimensions,omitempty"`
	TimeDimensions []TimeDimension  `json:"timeDimensions,omitempty"`
	Segments       []string         `json:"segments,omitempty"`
	Filters        []*RequestFilter `json:"filters,omitempty"`
	Order          [][2]string      `json:"order,omitempty"`
	Limit          *int64           `json:"limit,omitempty"`
	Offset         *int64           `json:"offset,omitempty"`
	Ungrouped      bool             `json:"ungrouped,omitempty"`
	SubqueryJoins  []SubqueryJoin   `json:"subqueryJoins,omitempty"`
	JoinHints      [][]string       `json:"joinHints,omitempty"`
}

// TimeDimension is a time dimension with an optional granularity and an
// optional date range. A nil Granularity requests raw values.
type TimeDimension struct {
	Dimension   string   `json:"dimension"`
	Granularity *string  `json:"granularity,omitempty"`
	DateRange   []string `json:"dateRange,omitempty"`
}

// RequestFilter is one node of the filter tree: either a leaf operation on a
// member, or a boolean combination of sub-filters.
type RequestFilter struct {
	Member   string           `json:"member,omitempty"`
	Operator string           `json:"operator,omitempty"`
	Values   []*string        `json:"values,omitempty"`
	And      []*RequestFilter `json:"and,omitempty"`
	Or       []*RequestFilter `json:"or,omitempty"`
}

// SubqueryJoin attaches a grouped sub-select to an otherwise ungrouped
// request. SQL carries the rendered inner query verbatim; On is written in
// member syntax against the outer cube.
type SubqueryJoin struct {
	SQL      string `json:"sql"`
	On       string `json:"on"`
	JoinType string `json:"joinType"`
	Alias    string `json:"alias"`
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := &Request{
		Measures:   append([]string(nil), r.Measures...),
		Dimensions: append([]string(nil), r.Dimensions...),
		Segments:   append([]string(nil), r.Segments...),
		Order:      append([][2]string(nil), r.Order...),
		Ungrouped:  r.Ungrouped,
	}
	for _, td := range r.TimeDimensions {
		cp := td
		if td.Granularity != nil {
			g := *td.Granularity
			cp.Granularity = &g
		}
		cp.DateRange = append([]string(nil), td.DateRange...)
		out.TimeDimensions = append(out.TimeDimensions, cp)
	}
	for _, f := range r.Filters {
		out.Filters = append(out.Filters, f.Clone())
	}
	if r.Limit != nil {
		l := *r.Limit
		out.Limit = &l
	}
	if r.Offset != nil {
		o := *r.Offset
		out.Offset = &o
	}
	out.SubqueryJoins = append([]SubqueryJoin(nil), r.SubqueryJoins...)
	for _, h := range r.JoinHints {
		out.JoinHints = append(out.JoinHints, append([]string(nil), h...))
	}
	return out
}

// Clone returns a deep copy of the filter node.
func (f *RequestFilter) Clone() *RequestFilter {
	if f == nil {
		return nil
	}
	out := &RequestFilter{Member: f.Member, Operator: f.Operator}
	for _, v := range f.Values {
		if v == nil {
			out.Values = append(out.Values, nil)
			continue
		}
		s := *v
		out.Values = append(out.Values, &s)
	}
	for _, a := range f.And {
		out.And = append(out.And, a.Clone())
	}
	for _, o := range f.Or {
		out.Or = append(out.Or, o.Clone())
	}
	return out
}

// JSON renders the request in its wire shape.
func (r *Request) JSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MustJSON is JSON for contexts that cannot fail in practice, like String
// methods and log lines.
func (r *Request) MustJSON() string {
	s, err := r.JSON()
	if err != nil {
		return "{}"
	}
	return s
}

// IsEmpty reports whether the request selects nothing at all.
func (r *Request) IsEmpty() bool {
	return len(r.Measures) == 0 && len(r.Dimensions) == 0 &&
		len(r.TimeDimensions) == 0 && len(r.Segments) == 0
}

// AllMembers returns every member path referenced by the request body, in
// selection order.
func (r *Request) AllMembers() []string {
	var out []string
	out = append(out, r.Dimensions...)
	for _, td := range r.TimeDimensions {
		out = append(out, td.Dimension)
	}
	out = append(out, r.Measures...)
	return out
}
