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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-cubesql/sql"
)

func TestCostLexicographic(t *testing.T) {
	tests := []struct {
		name string
		a, b Cost
		less bool
	}{
		{"representable beats unrepresentable", Cost{Unrepresentable: 0, Size: 100}, Cost{Unrepresentable: 1, Size: 1}, true},
		{"fewer wrappers beats smaller size", Cost{Wrapper: 0, Size: 100}, Cost{Wrapper: 1, Size: 1}, true},
		{"smaller size wins", Cost{Size: 2}, Cost{Size: 3}, true},
		{"tie break on symbol", Cost{Size: 2, Tie: 0}, Cost{Size: 2, Tie: 5}, true},
		{"equal is not less", Cost{Size: 2}, Cost{Size: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.less, tt.a.Less(tt.b))
		})
	}
}

// A class holding both a raw table and a compiled scan extracts the scan.
func TestExtractPrefersCubeScan(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())

	table := g.add(SymCubeTable, "Ecommerce")
	ref := g.requests.intern(&RequestEntry{Cube: "Ecommerce", Request: &sql.Request{Ungrouped: true}})
	scan := g.add(SymCubeScan, ref)
	g.Union(table, scan)
	g.Rebuild()

	term, err := NewExtractor(g).Extract(table)
	require.NoError(err)
	require.Equal(SymCubeScan, term.Op)
}

// An unrepresentable root fails extraction with a user-visible error.
func TestExtractUnrepresentableRoot(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())

	table := g.add(SymCubeTable, "Ecommerce")
	_, err := NewExtractor(g).Extract(table)
	require.Error(err)
	require.True(sql.ErrUnrepresentableRoot.Is(err))
}

// Wrapper promotion makes an otherwise unrepresentable class extractable,
// with the wrapper boundary at the class itself.
func TestExtractWrapperAbsorbsUnrepresentable(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())

	table := g.add(SymCubeTable, "Ecommerce")
	wrapper := g.add(SymCubeScanWrapper, nil, table)
	g.Union(wrapper, table)
	g.Rebuild()

	ex := NewExtractor(g)
	term, err := ex.Extract(table)
	require.NoError(err)
	require.Equal(SymCubeScanWrapper, term.Op)
	require.Equal(SymCubeTable, term.Child(0).Op)

	cost, ok := ex.Cost(table)
	require.True(ok)
	require.Equal(uint64(0), cost.Unrepresentable)
	require.Equal(uint64(1), cost.Wrapper)
}

// A pure CubeScan in the class always beats the wrapper alternative.
func TestExtractScanBeatsWrapper(t *testing.T) {
	require := require.New(t)
	g := NewEGraph(testMeta())

	table := g.add(SymCubeTable, "Ecommerce")
	wrapper := g.add(SymCubeScanWrapper, nil, table)
	g.Union(wrapper, table)
	ref := g.requests.intern(&RequestEntry{Cube: "Ecommerce", Request: &sql.Request{Ungrouped: true}})
	scan := g.add(SymCubeScan, ref)
	g.Union(scan, table)
	g.Rebuild()

	term, err := NewExtractor(g).Extract(table)
	require.NoError(err)
	require.Equal(SymCubeScan, term.Op)
}
