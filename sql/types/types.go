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

package types

import (
	"github.com/dolthub/go-cubesql/sql"
)

type typeID byte

const (
	nullID typeID = iota
	booleanID
	int64ID
	float64ID
	decimalID
	textID
	dateID
	timestampID
	intervalID
)

// baseType is the single implementation behind the exported type values.
// The dialect surface the rewriter cares about only needs type identity and
// coarse families, not display widths or collations.
type baseType struct {
	id   typeID
	name string
	// precision and scale only apply to decimals.
	precision uint8
	scale     uint8
}

var (
	// Null is the type of NULL literals.
	Null sql.Type = baseType{id: nullID, name: "NULL"}
	// Boolean is a true/false type.
	Boolean sql.Type = baseType{id: booleanID, name: "BOOLEAN"}
	// Int64 is a 64-bit signed integer type.
	Int64 sql.Type = baseType{id: int64ID, name: "BIGINT"}
	// Float64 is a 64-bit floating point type.
	Float64 sql.Type = baseType{id: float64ID, name: "DOUBLE"}
	// Text is a variable-length string type.
	Text sql.Type = baseType{id: textID, name: "TEXT"}
	// Date is a calendar date type.
	Date sql.Type = baseType{id: dateID, name: "DATE"}
	// Timestamp is a date-and-time type.
	Timestamp sql.Type = baseType{id: timestampID, name: "TIMESTAMP"}
	// Interval is a date-time interval type.
	Interval sql.Type = baseType{id: intervalID, name: "INTERVAL"}
	// InternalDecimalType is the decimal type used when precision is
	// unknown.
	InternalDecimalType sql.Type = baseType{id: decimalID, name: "DECIMAL", precision: 65, scale: 30}
)

// MustCreateDecimalType returns a decimal type with the given precision and
// scale.
func MustCreateDecimalType(precision, scale uint8) sql.Type {
	return baseType{id: decimalID, name: "DECIMAL", precision: precision, scale: scale}
}

func (t baseType) String() string {
	return t.name
}

func (t baseType) Equals(other sql.Type) bool {
	o, ok := other.(baseType)
	return ok && o.id == t.id
}

func (t baseType) IsNumeric() bool {
	return t.id == int64ID || t.id == float64ID || t.id == decimalID
}

func (t baseType) IsText() bool {
	return t.id == textID
}

func (t baseType) IsTemporal() bool {
	return t.id == dateID || t.id == timestampID
}

// IsNull reports whether t is the NULL type.
func IsNull(t sql.Type) bool {
	b, ok := t.(baseType)
	return ok && b.id == nullID
}

// IsDecimal reports whether t is a decimal type.
func IsDecimal(t sql.Type) bool {
	b, ok := t.(baseType)
	return ok && b.id == decimalID
}

// IsInteger reports whether t is an integer type.
func IsInteger(t sql.Type) bool {
	b, ok := t.(baseType)
	return ok && b.id == int64ID
}

// FromSQLName maps a SQL type spelling to a type value. Unknown spellings
// map to Text, the widest type the dialect surface needs.
func FromSQLName(name string) sql.Type {
	switch normalizeTypeName(name) {
	case "boolean", "bool":
		return Boolean
	case "bigint", "int", "integer", "smallint", "tinyint", "int2", "int4", "int8":
		return Int64
	case "double", "float", "real", "float4", "float8", "double precision":
		return Float64
	case "decimal", "numeric":
		return InternalDecimalType
	case "date":
		return Date
	case "timestamp", "datetime", "timestamptz", "timestamp with time zone", "timestamp without time zone":
		return Timestamp
	case "interval":
		return Interval
	default:
		return Text
	}
}
