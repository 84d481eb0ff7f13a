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

func TestRulePackCacheSharesCompiledPacks(t *testing.T) {
	require := require.New(t)
	cache := NewRulePackCache()

	builds := 0
	build := func() ([]Rule, error) {
		builds++
		return algebraRules(), nil
	}

	cfg := DefaultConfig()
	p1, err := cache.Get("v1", cfg, build)
	require.NoError(err)
	p2, err := cache.Get("v1", cfg, build)
	require.NoError(err)
	require.Same(p1, p2)
	require.Equal(1, builds)

	// A different configuration compiles its own pack.
	cfg.SQLPushDown = !cfg.SQLPushDown
	p3, err := cache.Get("v1", cfg, build)
	require.NoError(err)
	require.NotSame(p1, p3)
	require.Equal(2, builds)

	// A schema bump does too.
	_, err = cache.Get("v2", cfg, build)
	require.NoError(err)
	require.Equal(3, builds)
}

func TestFinalizedGraphCacheReturnsClones(t *testing.T) {
	require := require.New(t)
	cache := NewFinalizedGraphCache(1 << 20)

	g := NewEGraph(testMeta())
	root := g.add(SymCubeTable, "Ecommerce")
	final := &FinalizedGraph{Graph: g, Root: root}

	key, err := cache.Key(sql.AuthScope{Tenant: "t1"}, "postgres", "plan-a")
	require.NoError(err)
	cache.Put(key, final)

	hit1, ok := cache.Get(key)
	require.True(ok)
	hit2, ok := cache.Get(key)
	require.True(ok)
	require.NotSame(hit1.Graph, hit2.Graph)

	// Mutating one clone leaves the other untouched.
	hit1.Graph.add(SymLiteral, int64(1))
	require.NotEqual(hit1.Graph.NodeCount(), hit2.Graph.NodeCount())
}

func TestFinalizedGraphCacheScopesKeys(t *testing.T) {
	require := require.New(t)
	cache := NewFinalizedGraphCache(1 << 20)

	k1, err := cache.Key(sql.AuthScope{Tenant: "t1"}, "postgres", "plan")
	require.NoError(err)
	k2, err := cache.Key(sql.AuthScope{Tenant: "t2"}, "postgres", "plan")
	require.NoError(err)
	k3, err := cache.Key(sql.AuthScope{Tenant: "t1"}, "mysql", "plan")
	require.NoError(err)
	require.NotEqual(k1, k2)
	require.NotEqual(k1, k3)
}

func TestFinalizedGraphCacheInvalidation(t *testing.T) {
	require := require.New(t)
	cache := NewFinalizedGraphCache(1 << 20)

	g := NewEGraph(testMeta())
	root := g.add(SymCubeTable, "Ecommerce")
	key, err := cache.Key(sql.AuthScope{}, "postgres", "plan")
	require.NoError(err)
	cache.Put(key, &FinalizedGraph{Graph: g, Root: root})

	cache.Invalidate("v1")
	_, ok := cache.Get(key)
	require.False(ok)

	// Same version again does not drop entries.
	cache.Put(key, &FinalizedGraph{Graph: g, Root: root})
	cache.Invalidate("v1")
	_, ok = cache.Get(key)
	require.True(ok)
}

func TestRequestTableInternsByContent(t *testing.T) {
	require := require.New(t)
	table := newRequestTable()

	a := table.intern(&RequestEntry{Cube: "C", Request: &sql.Request{Ungrouped: true}})
	b := table.intern(&RequestEntry{Cube: "C", Request: &sql.Request{Ungrouped: true}})
	require.Equal(a, b)

	c := table.intern(&RequestEntry{Cube: "C", Request: &sql.Request{Measures: []string{"C.m"}}})
	require.NotEqual(a, c)
}
