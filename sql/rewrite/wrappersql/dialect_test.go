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

package wrappersql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialectQuoting(t *testing.T) {
	require := require.New(t)

	pg := Postgres()
	require.Equal(`"a b"`, pg.QuoteIdent("a b"))
	require.Equal(`"wei""rd"`, pg.QuoteIdent(`wei"rd`))
	require.Equal(`'it''s'`, pg.QuoteString("it's"))
	require.Equal("$3", pg.Param(3))
	require.Equal("${Ecommerce.avgPrice}", pg.MemberRef("Ecommerce.avgPrice"))

	my := MySQL()
	require.Equal("`a b`", my.QuoteIdent("a b"))
	require.Equal("?", my.Param(3))
}

func TestRenderSelect(t *testing.T) {
	require := require.New(t)
	pg := Postgres()

	out, err := pg.RenderSelect(selectData{
		Columns: `${Ecommerce.customer_gender} "g"`,
		From:    "${Ecommerce}",
		Where:   "${Ecommerce.customer_gender} = $1",
		GroupBy: "1",
		OrderBy: `"g" DESC`,
		Limit:   "10",
	})
	require.NoError(err)
	require.Equal(
		`SELECT ${Ecommerce.customer_gender} "g" FROM ${Ecommerce}`+
			` WHERE ${Ecommerce.customer_gender} = $1 GROUP BY 1 ORDER BY "g" DESC LIMIT 10`,
		out)
}

func TestRenderSelectDistinct(t *testing.T) {
	require := require.New(t)
	out, err := Postgres().RenderSelect(selectData{
		Distinct: true,
		Columns:  `${C.a} "a"`,
		From:     "${C}",
	})
	require.NoError(err)
	require.Equal(`SELECT DISTINCT ${C.a} "a" FROM ${C}`, out)
}

func TestSlugAlias(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"case_when_${E.g} = $1", "case_when_e_g_1"},
		{"DATE_TRUNC", "date_trunc"},
		{"", "expr"},
		{"___", "expr"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, slugAlias(tt.in))
	}
}
