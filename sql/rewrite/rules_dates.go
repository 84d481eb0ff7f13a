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
)

// dateRules normalize vendor-specific date math down to DATE_TRUNC, the
// single spelling the member-recognition rules understand. The vendor
// shapes mirror what Superset, DataStudio and Metabase actually emit.
func dateRules() []Rule {
	return []Rule{
		// DataStudio emits nested truncations; the outer one wins when the
		// merge is legal.
		NewTransformingRewrite("date-trunc-merge",
			funExpr("DATE_TRUNC", literalExpr("?outer"), funExpr("DATE_TRUNC", literalExpr("?inner"), "?col")),
			funExpr("DATE_TRUNC", literalExpr("?merged"), "?col"),
			func(g *EGraph, s *Subst) bool {
				outer, _ := s.Leaf("?outer")
				inner, _ := s.Leaf("?inner")
				og, ok1 := outer.(string)
				ig, ok2 := inner.(string)
				if !ok1 || !ok2 {
					return false
				}
				merged, ok := coarserGranularity(strings.ToLower(og), strings.ToLower(ig))
				if !ok {
					return false
				}
				s.BindLeaf("?merged", merged)
				return true
			}),

		// DATE(expr) is truncation to day.
		NewRewrite("date-to-date-trunc",
			funExpr("DATE", "?col"),
			funExpr("DATE_TRUNC", literalString("day"), "?col")),

		// Superset month bucketing:
		// DATE(DATE_SUB(col, INTERVAL (DAYOFMONTH(col) - 1) DAY))
		NewRewrite("superset-month-to-date-trunc",
			funExpr("DATE",
				funExpr("DATE_SUB", "?col",
					intervalExpr(binaryExpr(funExpr("DAYOFMONTH", "?col"), "-", literalInt(1)), "DAY"))),
			funExpr("DATE_TRUNC", literalString("month"), "?col")),

		// Superset year bucketing, same shape over DAYOFYEAR.
		NewRewrite("superset-year-to-date-trunc",
			funExpr("DATE",
				funExpr("DATE_SUB", "?col",
					intervalExpr(binaryExpr(funExpr("DAYOFYEAR", "?col"), "-", literalInt(1)), "DAY"))),
			funExpr("DATE_TRUNC", literalString("year"), "?col")),

		// Superset week bucketing over DAYOFWEEK.
		NewRewrite("superset-week-to-date-trunc",
			funExpr("DATE",
				funExpr("DATE_SUB", "?col",
					intervalExpr(binaryExpr(funExpr("DAYOFWEEK", "?col"), "-", literalInt(1)), "DAY"))),
			funExpr("DATE_TRUNC", literalString("week"), "?col")),

		// Metabase spells day truncation as a no-op CAST chain.
		NewRewrite("cast-date-to-date-trunc",
			castExpr(castExpr("?col", "DATE"), "TIMESTAMP"),
			funExpr("DATE_TRUNC", literalString("day"), "?col")),

		// Shifting a date by a zero-day interval is the identity, so the
		// shift drops away and the bare column stays visible to the
		// truncation rules.
		NewRewrite("date-add-zero",
			funExpr("DATE_ADD", "?col", intervalExpr(literalInt(0), "DAY")),
			pvar("?col")),

		NewRewrite("date-sub-zero",
			funExpr("DATE_SUB", "?col", intervalExpr(literalInt(0), "DAY")),
			pvar("?col")),

		// to_timestamp(to_char(col, 'YYYY-MM-DD')) is a Thoughtspot day
		// truncation.
		NewRewrite("to-char-day-to-date-trunc",
			funExpr("TO_TIMESTAMP", funExpr("TO_CHAR", "?col", literalString("YYYY-MM-DD"))),
			funExpr("DATE_TRUNC", literalString("day"), "?col")),
	}
}
