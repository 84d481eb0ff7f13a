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
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
)

func TestConvertLossless(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		to   sql.Type
		out  interface{}
	}{
		{"int to float", int64(3), Float64, 3.0},
		{"float whole to int", 4.0, Int64, int64(4)},
		{"string passthrough", "x", Text, "x"},
		{"int to text", int64(7), Text, "7"},
		{"bool", true, Boolean, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			out, lossless, err := Convert(tt.in, tt.to)
			require.NoError(err)
			require.True(lossless)
			require.Equal(tt.out, out)
		})
	}
}

func TestConvertLossy(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		to   sql.Type
	}{
		{"fractional float to int", 3.7, Int64},
		{"decimal to int truncates", decimal.RequireFromString("10.25"), Int64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, lossless, err := Convert(tt.in, tt.to)
			require.NoError(t, err)
			require.False(t, lossless)
		})
	}
}

func TestConvertTemporal(t *testing.T) {
	require := require.New(t)

	out, lossless, err := Convert("2024-01-02", Timestamp)
	require.NoError(err)
	require.True(lossless)
	ts, ok := out.(time.Time)
	require.True(ok)
	require.Equal(2024, ts.Year())

	_, _, err = Convert("not a date", Timestamp)
	require.Error(err)
}

func TestFormatValue(t *testing.T) {
	day := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2024, 3, 31, 13, 30, 5, 0, time.UTC)
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "NULL"},
		{day, "2024-03-31"},
		{stamp, "2024-03-31 13:30:05"},
		{int64(5), "5"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestFromSQLName(t *testing.T) {
	tests := []struct {
		in   string
		want sql.Type
	}{
		{"bigint", Int64},
		{"INTEGER", Int64},
		{"double precision", Float64},
		{"timestamp with time zone", Timestamp},
		{"varchar", Text},
		{"numeric", InternalDecimalType},
	}
	for _, tt := range tests {
		require.True(t, tt.want.Equals(FromSQLName(tt.in)), tt.in)
	}
}

func TestTypeFamilies(t *testing.T) {
	require := require.New(t)
	require.True(Int64.IsNumeric())
	require.True(InternalDecimalType.IsNumeric())
	require.True(Text.IsText())
	require.True(Date.IsTemporal())
	require.True(Timestamp.IsTemporal())
	require.False(Boolean.IsNumeric())
	require.True(IsNull(Null))
	require.False(IsNull(Text))
}
