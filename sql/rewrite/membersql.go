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

// renderOnCondition renders a subquery-join ON condition in member syntax:
// outer cube references become ${Cube.member} placeholders and inner
// references stay plain "alias"."column" accesses.
func renderOnCondition(t *Term, alias string) (string, error) {
	switch t.Op {
	case SymDimensionMember, SymMeasureMember, SymSegmentMember:
		return fmt.Sprintf("${%s}", t.Leaf.(string)), nil

	case SymTimeDimensionMember:
		td := t.Leaf.(TimeDimValue)
		return fmt.Sprintf("${%s}", td.Path), nil

	case SymColumn:
		ref := t.Leaf.(ColumnRef)
		if ref.Table == alias || ref.Table == "" {
			return fmt.Sprintf("%q.%q", alias, ref.Name), nil
		}
		return fmt.Sprintf("${%s.%s}", ref.Table, ref.Name), nil

	case SymLiteral:
		return renderLiteralSQL(t.Leaf), nil

	case SymQueryParam:
		return fmt.Sprintf("$%d", t.Leaf.(int64)), nil

	case SymBinary:
		l, err := renderOnCondition(t.Child(0), alias)
		if err != nil {
			return "", err
		}
		r, err := renderOnCondition(t.Child(1), alias)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, t.Leaf.(string), r), nil

	case SymCast:
		inner, err := renderOnCondition(t.Child(0), alias)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(%s AS %s)", inner, t.Leaf.(string)), nil

	case SymScalarFunc:
		args := make([]string, len(t.Children))
		for i, c := range t.Children {
			a, err := renderOnCondition(c, alias)
			if err != nil {
				return "", err
			}
			args[i] = a
		}
		return fmt.Sprintf("%s(%s)", t.Leaf.(string), strings.Join(args, ", ")), nil

	case SymAlias:
		return renderOnCondition(t.Child(0), alias)

	case SymNot:
		inner, err := renderOnCondition(t.Child(0), alias)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", inner), nil

	default:
		return "", sql.ErrWrapperGenerate.New(fmt.Sprintf("join condition %s", t.Op))
	}
}

// renderLiteralSQL renders a literal in SQL source form with single-quote
// escaping for strings.
func renderLiteralSQL(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}
