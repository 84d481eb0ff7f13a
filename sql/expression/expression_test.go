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

package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

func TestSplitConjunction(t *testing.T) {
	require := require.New(t)

	a := NewEquals(NewGetField("a", types.Text), NewLiteral("1", types.Text))
	b := NewEquals(NewGetField("b", types.Text), NewLiteral("2", types.Text))
	c := NewEquals(NewGetField("c", types.Text), NewLiteral("3", types.Text))

	parts := SplitConjunction(NewAnd(NewAnd(a, b), c))
	require.Len(parts, 3)
	require.Equal(a, parts[0])
	require.Equal(b, parts[1])
	require.Equal(c, parts[2])

	require.Equal([]sql.Expression{a}, SplitConjunction(a))
}

func TestJoinAnd(t *testing.T) {
	require := require.New(t)
	a := NewIsNull(NewGetField("a", types.Text))
	b := NewIsNull(NewGetField("b", types.Text))

	require.Nil(JoinAnd())
	require.Equal(sql.Expression(a), JoinAnd(a))

	joined := JoinAnd(a, b)
	and, ok := joined.(*And)
	require.True(ok)
	require.Equal(sql.Expression(a), and.Left)
	require.Equal(sql.Expression(b), and.Right)
}

func TestFlippedOp(t *testing.T) {
	tests := []struct {
		in      string
		flipped string
		ok      bool
	}{
		{"=", "=", true},
		{"<", ">", true},
		{"<=", ">=", true},
		{">", "<", true},
		{"LIKE", "", false},
	}
	for _, tt := range tests {
		got, ok := FlippedOp(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if ok {
			require.Equal(t, tt.flipped, got)
		}
	}
}

func TestWithChildrenArity(t *testing.T) {
	require := require.New(t)

	lit := NewLiteral(int64(1), types.Int64)
	_, err := lit.WithChildren(lit)
	require.Error(err)
	require.True(sql.ErrInvalidChildren.Is(err))

	not := NewNot(lit)
	replaced, err := not.WithChildren(NewLiteral(int64(2), types.Int64))
	require.NoError(err)
	require.Equal("NOT(2)", replaced.String())
}

func TestCaseChildrenRoundTrip(t *testing.T) {
	require := require.New(t)

	caseExpr := NewCase(nil, []CaseBranch{
		{
			Cond:  NewEquals(NewGetField("g", types.Text), NewLiteral("f", types.Text)),
			Value: NewLiteral("female", types.Text),
		},
	}, NewLiteral("other", types.Text))

	children := caseExpr.Children()
	require.Len(children, 3)

	rebuilt, err := caseExpr.WithChildren(children...)
	require.NoError(err)
	require.Equal(caseExpr.String(), rebuilt.String())
}

func TestFunctionTypeInference(t *testing.T) {
	col := NewGetFieldWithTable("C", "ts", types.Timestamp)
	require.True(t, types.Timestamp.Equals(NewFunction("date_trunc", NewLiteral("day", types.Text), col).Type()))
	require.True(t, types.Int64.Equals(NewFunction("year", col).Type()))
	require.True(t, types.Text.Equals(NewFunction("lower", col).Type()))
	require.True(t, types.Int64.Equals(NewAggregation("COUNT", nil).Type()))
}
