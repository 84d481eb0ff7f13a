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

	"github.com/dolthub/go-cubesql/sql/cube"
)

// memberRules identify column accesses and aggregate applications as cube
// members. Everything downstream (filters, scans, joins, wrappers) works
// on member nodes, never raw columns.
func memberRules(meta *cube.MetaContext, cfg Config) []Rule {
	resolve := func(s *Subst) (*cube.Member, bool) {
		v, ok := s.Leaf("?column")
		if !ok || meta == nil {
			return nil, false
		}
		ref, ok := v.(ColumnRef)
		if !ok {
			return nil, false
		}
		return meta.ResolveColumn(ref.Table, ref.Name)
	}

	return []Rule{
		NewTransformingRewrite("member-dimension",
			columnExpr("?column"),
			dimensionMember("?path"),
			func(g *EGraph, s *Subst) bool {
				member, ok := resolve(s)
				if !ok || (member.Kind != cube.KindDimension && member.Kind != cube.KindTimeDimension) {
					return false
				}
				s.BindLeaf("?path", member.Path())
				return true
			}),

		NewTransformingRewrite("member-measure",
			columnExpr("?column"),
			measureMember("?path"),
			func(g *EGraph, s *Subst) bool {
				member, ok := resolve(s)
				if !ok || member.Kind != cube.KindMeasure {
					return false
				}
				s.BindLeaf("?path", member.Path())
				return true
			}),

		NewTransformingRewrite("member-segment",
			columnExpr("?column"),
			segmentMember("?path"),
			func(g *EGraph, s *Subst) bool {
				member, ok := resolve(s)
				if !ok || member.Kind != cube.KindSegment {
					return false
				}
				s.BindLeaf("?path", member.Path())
				return true
			}),

		// DATE_TRUNC over a time dimension is a time dimension at that
		// granularity.
		NewTransformingRewrite("time-dimension-date-trunc",
			funExpr("DATE_TRUNC", literalExpr("?granularity"), "?col"),
			timeDimensionMember("?td"),
			func(g *EGraph, s *Subst) bool {
				gv, _ := s.Leaf("?granularity")
				gran, ok := gv.(string)
				if !ok {
					return false
				}
				gran = strings.ToLower(gran)
				if _, ok := granularityOrder[gran]; !ok {
					return false
				}
				m, ok := memberOf(g, s.MustClass("?col"))
				if !ok || m.Kind != SymDimensionMember {
					return false
				}
				if meta == nil {
					return false
				}
				member, err := meta.Member(m.Path)
				if err != nil || member.Kind != cube.KindTimeDimension {
					return false
				}
				s.BindLeaf("?td", TimeDimValue{Path: m.Path, Granularity: gran})
				return true
			}),

		// An aggregate application over a measure collapses to the measure
		// when the aggregation kinds agree. MEASURE() is the explicit
		// semantic spelling and always collapses.
		NewTransformingRewrite("measure-agg-collapse",
			aggFunExpr("?agg", "?arg"),
			measureMember("?path"),
			func(g *EGraph, s *Subst) bool {
				aggName, _ := s.Leaf("?agg")
				agg, ok := aggName.(string)
				if !ok {
					return false
				}
				m, ok := memberOf(g, s.MustClass("?arg"))
				if !ok || m.Kind != SymMeasureMember {
					return false
				}
				if meta == nil {
					return false
				}
				member, err := meta.Member(m.Path)
				if err != nil {
					return false
				}
				distinct := false
				if d, ok := s.Class("?distinct"); ok {
					if v, isLit := literalOf(g, d); isLit {
						distinct, _ = v.(bool)
					}
				}
				if !aggMatchesMeasure(agg, distinct, member.Agg, cfg.DisableStrictAggTypeMatch) {
					return false
				}
				s.BindLeaf("?path", m.Path)
				return true
			}),

		// COUNT(*) resolves to a count measure when the whole schema
		// declares exactly one candidate across all cubes; the query's own
		// cube scope is not consulted.
		NewTransformingRewrite("count-star-measure",
			aggFunExpr("COUNT", nothing()),
			measureMember("?path"),
			func(g *EGraph, s *Subst) bool {
				if meta == nil {
					return false
				}
				var candidate string
				for _, c := range meta.Cubes {
					for _, measure := range c.Measures {
						if measure.Type == cube.Count {
							if candidate != "" {
								return false
							}
							candidate = c.Name + "." + measure.Name
						}
					}
				}
				if candidate == "" {
					return false
				}
				s.BindLeaf("?path", candidate)
				return true
			}),
	}
}

// aggMatchesMeasure decides whether an outer SQL aggregate may stand in
// for a cube measure of the given kind. Mismatches change semantics
// (re-aggregating an average, summing a distinct count), so pairings are
// exact unless strict matching is disabled.
func aggMatchesMeasure(agg string, distinct bool, measureAgg cube.AggType, relaxed bool) bool {
	if agg == "MEASURE" {
		return true
	}
	if distinct {
		return agg == "COUNT" && measureAgg == cube.CountDistinct
	}
	switch agg {
	case "SUM":
		if measureAgg == cube.Sum || measureAgg == cube.Count {
			return true
		}
		return relaxed && measureAgg != cube.CountDistinct
	case "MIN":
		return measureAgg == cube.Min
	case "MAX":
		return measureAgg == cube.Max
	case "AVG":
		return measureAgg == cube.Avg || (relaxed && measureAgg == cube.Number)
	case "COUNT":
		return measureAgg == cube.Count
	default:
		return false
	}
}
