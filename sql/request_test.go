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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestJSONShape(t *testing.T) {
	require := require.New(t)

	granularity := "month"
	limit := int64(1000)
	req := &Request{
		Measures:   []string{"Cube.m"},
		Dimensions: []string{"Cube.d"},
		TimeDimensions: []TimeDimension{{
			Dimension:   "Cube.t",
			Granularity: &granularity,
			DateRange:   []string{"2024-01-01", "2024-03-31"},
		}},
		Filters: []*RequestFilter{{
			Member:   "Cube.d",
			Operator: "equals",
			Values:   []*string{strPtr("x")},
		}},
		Order: [][2]string{{"Cube.m", "desc"}},
		Limit: &limit,
		SubqueryJoins: []SubqueryJoin{{
			SQL:      "SELECT 1",
			On:       "${Cube.d} = \"t0\".\"d\"",
			JoinType: "INNER",
			Alias:    "t0",
		}},
	}

	out, err := req.JSON()
	require.NoError(err)
	require.Contains(out, `"measures":["Cube.m"]`)
	require.Contains(out, `"dimensions":["Cube.d"]`)
	require.Contains(out, `"timeDimensions":[{"dimension":"Cube.t","granularity":"month","dateRange":["2024-01-01","2024-03-31"]}]`)
	require.Contains(out, `"order":[["Cube.m","desc"]]`)
	require.Contains(out, `"limit":1000`)
	require.Contains(out, `"subqueryJoins":[{"sql":"SELECT 1"`)
	require.NotContains(out, `"ungrouped"`)
	require.NotContains(out, `"offset"`)
}

func TestRequestCloneIsDeep(t *testing.T) {
	require := require.New(t)

	limit := int64(5)
	req := &Request{
		Measures: []string{"Cube.m"},
		Filters:  []*RequestFilter{{Member: "Cube.d", Operator: "equals", Values: []*string{strPtr("x")}}},
		Limit:    &limit,
	}
	cp := req.Clone()
	cp.Measures[0] = "Cube.other"
	*cp.Limit = 99
	cp.Filters[0].Operator = "notEquals"

	require.Equal("Cube.m", req.Measures[0])
	require.Equal(int64(5), *req.Limit)
	require.Equal("equals", req.Filters[0].Operator)
}

func TestRequestAllMembers(t *testing.T) {
	req := &Request{
		Measures:       []string{"C.m"},
		Dimensions:     []string{"C.d"},
		TimeDimensions: []TimeDimension{{Dimension: "C.t"}},
	}
	require.Equal(t, []string{"C.d", "C.t", "C.m"}, req.AllMembers())
	require.False(t, req.IsEmpty())
	require.True(t, (&Request{}).IsEmpty())
}

func strPtr(s string) *string { return &s }
