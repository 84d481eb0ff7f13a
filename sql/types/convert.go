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
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/dolthub/go-cubesql/sql"
)

const dateLayout = "2006-01-02"
const timestampLayout = "2006-01-02 15:04:05"

func normalizeTypeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Convert coerces a value to the given type. The second return value is
// true only when the conversion is lossless: constant folding refuses to
// fold across lossy conversions, so a decimal that truncates to an integer
// converts but reports lossy.
func Convert(v interface{}, t sql.Type) (interface{}, bool, error) {
	if v == nil {
		return nil, true, nil
	}
	b, ok := t.(baseType)
	if !ok {
		return nil, false, fmt.Errorf("unknown type %s", t)
	}
	switch b.id {
	case nullID:
		return nil, v == nil, nil
	case booleanID:
		out, err := cast.ToBoolE(v)
		return out, err == nil, err
	case int64ID:
		switch x := v.(type) {
		case float64:
			out := int64(x)
			return out, float64(out) == x, nil
		case decimal.Decimal:
			out := x.IntPart()
			return out, x.Equal(decimal.NewFromInt(out)), nil
		default:
			out, err := cast.ToInt64E(v)
			return out, err == nil, err
		}
	case float64ID:
		out, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, false, err
		}
		if x, ok := v.(int64); ok && int64(out) != x {
			return out, false, nil
		}
		return out, true, nil
	case decimalID:
		out, err := toDecimal(v)
		if err != nil {
			return nil, false, err
		}
		if b.scale < 30 {
			rounded := out.Round(int32(b.scale))
			return rounded, rounded.Equal(out), nil
		}
		return out, true, nil
	case textID:
		out, err := cast.ToStringE(v)
		return out, err == nil, err
	case dateID:
		ts, err := toTime(v)
		if err != nil {
			return nil, false, err
		}
		truncated := ts.Truncate(24 * time.Hour)
		return truncated, truncated.Equal(ts), nil
	case timestampID:
		ts, err := toTime(v)
		return ts, err == nil, err
	case intervalID:
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("unknown type %s", t)
	}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromFloat(f), nil
	}
}

func toTime(v interface{}) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range []string{timestampLayout, dateLayout, time.RFC3339} {
			if ts, err := time.Parse(layout, x); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse %q as a timestamp", x)
	default:
		return cast.ToTimeE(v)
	}
}

// TypeOfValue infers the type of a literal value.
func TypeOfValue(v interface{}) sql.Type {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Boolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int64
	case float32, float64:
		return Float64
	case decimal.Decimal:
		return InternalDecimalType
	case time.Time:
		return Timestamp
	default:
		return Text
	}
}

// FormatValue renders a literal value the way the dialect surface prints
// constants in generated SQL and request filters.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(dateLayout)
		}
		return x.Format(timestampLayout)
	case decimal.Decimal:
		return x.String()
	case string:
		return x
	default:
		return cast.ToString(x)
	}
}
