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

package cube

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

const testSchema = `
schemaVersion: "42"
cubes:
  - name: Ecommerce
    dimensions:
      - name: customer_gender
        type: string
      - name: order_date
        type: time
    measures:
      - name: avgPrice
        type: avg
        sql: price
      - name: count
        type: count
    segments:
      - name: female_customers
        sql: "customer_gender = 'female'"
    joins:
      - name: Customers
        relationship: belongsTo
        sql: "customer_id = id"
`

func loadTestMeta(t *testing.T) *MetaContext {
	t.Helper()
	meta, err := LoadYAML(strings.NewReader(testSchema))
	require.NoError(t, err)
	return meta
}

func TestLoadYAML(t *testing.T) {
	require := require.New(t)
	meta := loadTestMeta(t)

	require.Equal("42", meta.SchemaVersion)
	require.Len(meta.Cubes, 1)

	c, err := meta.Cube("Ecommerce")
	require.NoError(err)
	require.Len(c.Dimensions, 2)
	require.Len(c.Measures, 2)
	require.Len(c.Segments, 1)
	require.Len(c.Joins, 1)
}

func TestCubeLookupIsCaseInsensitive(t *testing.T) {
	meta := loadTestMeta(t)
	_, err := meta.Cube("ecommerce")
	require.NoError(t, err)
}

func TestMemberResolution(t *testing.T) {
	require := require.New(t)
	meta := loadTestMeta(t)

	tests := []struct {
		path string
		kind MemberKind
		typ  sql.Type
	}{
		{"Ecommerce.customer_gender", KindDimension, types.Text},
		{"Ecommerce.order_date", KindTimeDimension, types.Timestamp},
		{"Ecommerce.avgPrice", KindMeasure, types.Float64},
		{"Ecommerce.count", KindMeasure, types.Int64},
		{"Ecommerce.female_customers", KindSegment, types.Boolean},
	}
	for _, tt := range tests {
		member, err := meta.Member(tt.path)
		require.NoError(err, tt.path)
		require.Equal(tt.kind, member.Kind, tt.path)
		require.True(tt.typ.Equals(member.Type), tt.path)
		require.Equal(tt.path, member.Path())
	}

	_, err := meta.Member("Ecommerce.not_a_member")
	require.Error(err)
	require.True(sql.ErrMemberNotFound.Is(err))

	_, err = meta.Member("NotACube.x")
	require.Error(err)
	require.True(sql.ErrCubeNotFound.Is(err))

	_, err = meta.Member("noseparator")
	require.Error(err)
}

func TestResolveColumnUnqualified(t *testing.T) {
	require := require.New(t)
	meta := loadTestMeta(t)

	member, ok := meta.ResolveColumn("", "avgPrice")
	require.True(ok)
	require.Equal("Ecommerce.avgPrice", member.Path())

	_, ok = meta.ResolveColumn("", "nope")
	require.False(ok)

	_, ok = meta.ResolveColumn("WrongCube", "avgPrice")
	require.False(ok)
}

func TestCubeSchemaShape(t *testing.T) {
	require := require.New(t)
	meta := loadTestMeta(t)
	c, err := meta.Cube("Ecommerce")
	require.NoError(err)

	schema := c.Schema()
	require.Equal([]string{"customer_gender", "order_date", "avgPrice", "count"}, schema.Names())
	for _, col := range schema {
		require.Equal("Ecommerce", col.Source)
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in     string
		cube   string
		member string
		ok     bool
	}{
		{"Ecommerce.avgPrice", "Ecommerce", "avgPrice", true},
		{"A.b.c", "A", "b.c", true},
		{"noseparator", "", "", false},
		{".leading", "", "", false},
		{"trailing.", "", "", false},
	}
	for _, tt := range tests {
		c, m, ok := SplitPath(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if ok {
			require.Equal(t, tt.cube, c)
			require.Equal(t, tt.member, m)
		}
	}
}
