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
	"strings"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
)

// scanRules compile canonical plan shapes into CubeScan requests. Each
// rule consumes a scan and produces a derived scan, so saturation folds an
// entire Filter/Aggregate/Sort/Limit tower into one request bottom-up.
func scanRules(meta *cube.MetaContext) []Rule {
	return []Rule{
		// A cube relation is an ungrouped scan of the cube.
		NewTransformingRewrite("cube-scan-table",
			cubeTablePat("?cube"),
			cubeScanPat("?scan"),
			func(g *EGraph, s *Subst) bool {
				name, _ := s.Leaf("?cube")
				cubeName, ok := name.(string)
				if !ok || meta == nil || !meta.HasCube(cubeName) {
					return false
				}
				ref := g.requests.intern(&RequestEntry{
					Cube:    cubeName,
					Request: &sql.Request{Ungrouped: true},
				})
				s.BindLeaf("?scan", ref)
				return true
			}),

		// Filter over a scan folds the predicate into the request when the
		// whole predicate compiles to member operations.
		NewTransformingRewrite("cube-scan-filter",
			filterPat("?pred", cubeScanPat("?ref")),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped {
					return false
				}
				filter, ok := compileFilter(g, s.MustClass("?pred"))
				if !ok {
					return false
				}
				out := entry.clone()
				attachFilter(out.Request, filter)
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),

		// Aggregate over an ungrouped scan becomes the grouped request.
		NewTransformingRewrite("cube-scan-aggregate",
			aggregatePat(cubeScanPat("?ref"), "?groups", "?aggs"),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped || !entry.Request.Ungrouped {
					return false
				}
				groups, ok := listChildren(g, s.MustClass("?groups"), SymExprList)
				if !ok {
					return false
				}
				selected, ok := listChildren(g, s.MustClass("?aggs"), SymExprList)
				if !ok {
					return false
				}
				// Every grouping expression must itself be a dimension.
				for _, grp := range groups {
					m, ok := memberOf(g, grp)
					if !ok || m.Kind == SymMeasureMember {
						return false
					}
				}

				out := entry.clone()
				out.Request.Ungrouped = false
				out.Columns = nil
				taken := map[string]bool{}
				for _, sel := range selected {
					col, m, ok := selectedColumn(g, sel)
					if !ok {
						return false
					}
					if col.Name == "" {
						col.Name = uniqueAlias(g.Class(sel).facts.OriginalExpr, taken)
					} else {
						taken[col.Name] = true
					}
					switch m.Kind {
					case SymMeasureMember:
						out.Request.Measures = appendUnique(out.Request.Measures, m.Path)
					case SymTimeDimensionMember:
						addTimeDimension(out.Request, m.Path, m.Granularity)
					case SymDimensionMember:
						out.Request.Dimensions = appendUnique(out.Request.Dimensions, m.Path)
					default:
						return false
					}
					out.Columns = append(out.Columns, col)
				}
				if out.Request.IsEmpty() {
					return false
				}
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),

		// Projection over a scan renames and reorders the outputs; over an
		// ungrouped base scan it also defines the selected members.
		NewTransformingRewrite("cube-scan-projection",
			projectionPat("?exprs", cubeScanPat("?ref")),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped {
					return false
				}
				exprs, ok := listChildren(g, s.MustClass("?exprs"), SymExprList)
				if !ok {
					return false
				}
				out := entry.clone()
				out.Columns = nil
				defining := entry.Request.Ungrouped && entry.Request.IsEmpty()
				taken := map[string]bool{}
				for _, sel := range exprs {
					col, m, ok := selectedColumn(g, sel)
					if !ok {
						return false
					}
					if !defining && !entryHasMember(entry, m) {
						return false
					}
					if col.Name == "" {
						col.Name = uniqueAlias(g.Class(sel).facts.OriginalExpr, taken)
					} else {
						taken[col.Name] = true
					}
					if defining {
						switch m.Kind {
						case SymMeasureMember:
							out.Request.Measures = appendUnique(out.Request.Measures, m.Path)
						case SymTimeDimensionMember:
							addTimeDimension(out.Request, m.Path, m.Granularity)
						case SymDimensionMember:
							out.Request.Dimensions = appendUnique(out.Request.Dimensions, m.Path)
						default:
							return false
						}
					}
					out.Columns = append(out.Columns, col)
				}
				if len(out.Columns) == 0 {
					return false
				}
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),

		// Sort over a scan becomes the request ordering.
		NewTransformingRewrite("cube-scan-sort",
			sortPat(cubeScanPat("?ref"), "?keys"),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped {
					return false
				}
				keys, ok := listChildren(g, s.MustClass("?keys"), SymSortList)
				if !ok {
					return false
				}
				out := entry.clone()
				out.Request.Order = nil
				for _, key := range keys {
					sortKey, ok := nodeOfOp(g, key, SymSortKey)
					if !ok {
						return false
					}
					m, ok := memberOf(g, sortKey.Children[0])
					if !ok || !entryHasMember(entry, m) {
						return false
					}
					dir := "asc"
					if sortKey.Leaf == "desc" {
						dir = "desc"
					}
					out.Request.Order = append(out.Request.Order, [2]string{m.Path, dir})
				}
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),

		NewTransformingRewrite("cube-scan-limit",
			limitPat("?n", cubeScanPat("?ref")),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped {
					return false
				}
				n, _ := s.Leaf("?n")
				limit, ok := n.(int64)
				if !ok || limit < 0 {
					return false
				}
				out := entry.clone()
				if out.Request.Limit != nil && *out.Request.Limit <= limit {
					return false
				}
				out.Request.Limit = &limit
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),

		NewTransformingRewrite("cube-scan-offset",
			offsetPat("?n", cubeScanPat("?ref")),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped || entry.Request.Offset != nil {
					return false
				}
				n, _ := s.Leaf("?n")
				offset, ok := n.(int64)
				if !ok || offset < 0 {
					return false
				}
				out := entry.clone()
				out.Request.Offset = &offset
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),

		// DISTINCT over a dimensions-only ungrouped scan is the grouped
		// request over those dimensions.
		NewTransformingRewrite("cube-scan-distinct",
			distinctPat(cubeScanPat("?ref")),
			cubeScanPat("?out"),
			func(g *EGraph, s *Subst) bool {
				refLeaf, _ := s.Leaf("?ref")
				entry := g.requests.get(refLeaf.(requestRef))
				if entry == nil || entry.IsWrapped || !entry.Request.Ungrouped {
					return false
				}
				if len(entry.Request.Measures) > 0 || len(entry.Request.Dimensions) == 0 {
					return false
				}
				out := entry.clone()
				out.Request.Ungrouped = false
				s.BindLeaf("?out", g.requests.intern(out))
				return true
			}),
	}
}

// entryHasMember reports whether the request already selects the member.
func entryHasMember(entry *RequestEntry, m memberInfo) bool {
	switch m.Kind {
	case SymMeasureMember:
		for _, x := range entry.Request.Measures {
			if x == m.Path {
				return true
			}
		}
	case SymDimensionMember:
		for _, x := range entry.Request.Dimensions {
			if x == m.Path {
				return true
			}
		}
	case SymTimeDimensionMember:
		for _, td := range entry.Request.TimeDimensions {
			if td.Dimension == m.Path {
				if td.Granularity == nil || m.Granularity == "" || strings.EqualFold(*td.Granularity, m.Granularity) {
					return true
				}
			}
		}
	}
	return false
}

func addTimeDimension(req *sql.Request, path, granularity string) {
	for _, td := range req.TimeDimensions {
		if td.Dimension == path && td.Granularity != nil && *td.Granularity == granularity {
			return
		}
	}
	td := sql.TimeDimension{Dimension: path}
	if granularity != "" {
		g := granularity
		td.Granularity = &g
	}
	req.TimeDimensions = append(req.TimeDimensions, td)
}
