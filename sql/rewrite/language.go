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

// Package rewrite implements the logical-plan rewrite core: a typed term
// language over an e-graph, equality saturation driven by a declarative
// rule set, and lowest-cost extraction into plans whose leaves are either
// semantic cube scans or wrapped SQL.
package rewrite

import (
	"fmt"
	"strings"
)

// Symbol identifies the operator of an e-node. The declaration order is the
// deterministic tie-break used by the extractor, so new symbols go at the
// end of their group.
type Symbol uint16

const (
	// Semantic operators come first: the ordinal doubles as the extractor
	// tie-break, and at equal cost a semantic form wins over the raw plan
	// shape, keeping push-down maximal.
	SymCubeScan Symbol = iota
	SymCubeScanWrapper
	SymDimensionMember
	SymMeasureMember
	SymSegmentMember
	SymTimeDimensionMember

	// Plan operators.
	SymProjection
	SymFilter
	SymAggregate
	SymJoin
	SymSort
	SymLimit
	SymOffset
	SymUnion
	SymSubqueryAlias
	SymDistinct
	SymCubeTable

	// Scalar expressions.
	SymColumn
	SymLiteral
	SymQueryParam
	SymBinary
	SymNot
	SymIsNull
	SymNegative
	SymCast
	SymScalarFunc
	SymAggFunc
	SymWindowFunc
	SymCase
	SymCaseBranch
	SymInList
	SymBetween
	SymScalarSubquery
	SymAlias
	SymInterval
	SymSortKey

	// Structural operators.
	SymExprList
	SymSortList
	SymNothing

	symbolCount
)

var symbolNames = [symbolCount]string{
	SymProjection:          "Projection",
	SymFilter:              "Filter",
	SymAggregate:           "Aggregate",
	SymJoin:                "Join",
	SymSort:                "Sort",
	SymLimit:               "Limit",
	SymOffset:              "Offset",
	SymUnion:               "Union",
	SymSubqueryAlias:       "SubqueryAlias",
	SymDistinct:            "Distinct",
	SymCubeTable:           "CubeTable",
	SymCubeScan:            "CubeScan",
	SymCubeScanWrapper:     "CubeScanWrapper",
	SymDimensionMember:     "DimensionMember",
	SymMeasureMember:       "MeasureMember",
	SymSegmentMember:       "SegmentMember",
	SymTimeDimensionMember: "TimeDimensionMember",
	SymColumn:              "Column",
	SymLiteral:             "Literal",
	SymQueryParam:          "QueryParam",
	SymBinary:              "Binary",
	SymNot:                 "Not",
	SymIsNull:              "IsNull",
	SymNegative:            "Negative",
	SymCast:                "Cast",
	SymScalarFunc:          "ScalarFunc",
	SymAggFunc:             "AggFunc",
	SymWindowFunc:          "WindowFunc",
	SymCase:                "Case",
	SymCaseBranch:          "CaseBranch",
	SymInList:              "InList",
	SymBetween:             "Between",
	SymScalarSubquery:      "ScalarSubquery",
	SymAlias:               "Alias",
	SymInterval:            "Interval",
	SymSortKey:             "SortKey",
	SymExprList:            "ExprList",
	SymSortList:            "SortList",
	SymNothing:             "Nothing",
}

func (s Symbol) String() string {
	if int(s) < len(symbolNames) {
		return symbolNames[s]
	}
	return fmt.Sprintf("Symbol(%d)", uint16(s))
}

// ClassID identifies an e-class. IDs are arena indexes, canonical only
// after Find.
type ClassID uint32

// ColumnRef is a (relation, column) pair referenced beneath an e-class.
type ColumnRef struct {
	Table string
	Name  string
}

func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// TimeDimValue is the leaf payload of a TimeDimensionMember: a member path
// plus a granularity.
type TimeDimValue struct {
	Path        string
	Granularity string
}

func (t TimeDimValue) String() string {
	return t.Path + ":" + t.Granularity
}

// ColumnValue is the leaf payload of a Column node.
type ColumnValue = ColumnRef

// ENode is one operator application: a symbol, an optional leaf payload,
// and child e-class ids. ENodes are immutable once added to a graph.
type ENode struct {
	Op       Symbol
	Leaf     interface{}
	Children []ClassID
}

// leafKey renders a leaf payload into the canonical form used for
// hash-consing. Payload kinds must render unambiguously.
func leafKey(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return "s:" + x
	case int64:
		return fmt.Sprintf("i:%d", x)
	case int:
		return fmt.Sprintf("i:%d", x)
	case float64:
		return fmt.Sprintf("f:%g", x)
	case bool:
		return fmt.Sprintf("b:%t", x)
	case ColumnRef:
		return "c:" + x.Table + "\x00" + x.Name
	case TimeDimValue:
		return "t:" + x.Path + "\x00" + x.Granularity
	case fmt.Stringer:
		return "x:" + x.String()
	default:
		return fmt.Sprintf("v:%v", x)
	}
}

// key returns the hash-consing key of the node given already-canonical
// children.
func (n *ENode) key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%s|", n.Op, leafKey(n.Leaf))
	for _, c := range n.Children {
		fmt.Fprintf(&sb, "%d,", c)
	}
	return sb.String()
}

func (n *ENode) String() string {
	var sb strings.Builder
	sb.WriteString(n.Op.String())
	if n.Leaf != nil {
		fmt.Fprintf(&sb, "[%v]", n.Leaf)
	}
	if len(n.Children) > 0 {
		sb.WriteRune('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", c)
		}
		sb.WriteRune(')')
	}
	return sb.String()
}

// Term is an extracted concrete tree over the language, the output of the
// extractor and the input of plan reconstruction.
type Term struct {
	Op       Symbol
	Leaf     interface{}
	Children []*Term
}

func (t *Term) String() string {
	var sb strings.Builder
	sb.WriteString(t.Op.String())
	if t.Leaf != nil {
		fmt.Fprintf(&sb, "[%v]", t.Leaf)
	}
	if len(t.Children) > 0 {
		sb.WriteRune('(')
		for i, c := range t.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
		sb.WriteRune(')')
	}
	return sb.String()
}

// Child returns the i-th child, or nil when absent.
func (t *Term) Child(i int) *Term {
	if i < 0 || i >= len(t.Children) {
		return nil
	}
	return t.Children[i]
}
