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
	"sync"

	"github.com/mitchellh/hashstructure"

	"github.com/dolthub/go-cubesql/sql"
)

// RulePackCache shares compiled rule packs across rewrites. Compiling a
// pack is expensive (pattern validation over hundreds of rules), and packs
// are immutable, so one compilation per configuration fingerprint serves
// the whole process.
type RulePackCache struct {
	mu    sync.RWMutex
	packs map[uint64]*RulePack
}

// NewRulePackCache creates an empty pack cache.
func NewRulePackCache() *RulePackCache {
	return &RulePackCache{packs: make(map[uint64]*RulePack)}
}

type packKey struct {
	Config        Config
	SchemaVersion string
}

// Get returns the compiled pack for the configuration, compiling it on the
// first request.
func (c *RulePackCache) Get(schemaVersion string, cfg Config, build func() ([]Rule, error)) (*RulePack, error) {
	key, err := hashstructure.Hash(packKey{Config: cfg, SchemaVersion: schemaVersion}, nil)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	pack, ok := c.packs[key]
	c.mu.RUnlock()
	if ok {
		return pack, nil
	}

	rules, err := build()
	if err != nil {
		return nil, err
	}
	pack, err = CompileRules(rules)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.packs[key]; ok {
		pack = existing
	} else {
		c.packs[key] = pack
	}
	c.mu.Unlock()
	return pack, nil
}

// FinalizedGraph is a saturated e-graph plus the query-parameter table it
// was built with, ready for extraction.
type FinalizedGraph struct {
	Graph  *EGraph
	Root   ClassID
	Params []ParamInfo
	Report RunReport
}

// clone returns an independent copy so each rewrite mutates its own graph.
func (f *FinalizedGraph) clone() *FinalizedGraph {
	return &FinalizedGraph{
		Graph:  f.Graph.Clone(),
		Root:   f.Root,
		Params: append([]ParamInfo(nil), f.Params...),
		Report: f.Report,
	}
}

// FinalizedGraphCache memoizes saturated graphs keyed by auth scope,
// dialect and canonical plan hash. Hits return clones; the cached copy is
// never handed out mutable.
type FinalizedGraphCache struct {
	cache         sql.KeyValueCache
	schemaVersion string
	mu            sync.RWMutex
}

// NewFinalizedGraphCache creates a cache with the given byte budget.
func NewFinalizedGraphCache(budget uint64) *FinalizedGraphCache {
	return &FinalizedGraphCache{cache: sql.NewLRUCache(budget)}
}

type graphKey struct {
	Scope   string
	Dialect string
	Plan    string
}

// Key computes the cache key for a plan.
func (c *FinalizedGraphCache) Key(scope sql.AuthScope, dialect, planFingerprint string) (uint64, error) {
	return hashstructure.Hash(graphKey{Scope: scope.Key(), Dialect: dialect, Plan: planFingerprint}, nil)
}

// Get returns a clone of the cached graph, if present.
func (c *FinalizedGraphCache) Get(key uint64) (*FinalizedGraph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}
	return v.(*FinalizedGraph).clone(), true
}

// Put stores a clone of the finalized graph.
func (c *FinalizedGraphCache) Put(key uint64, f *FinalizedGraph) {
	size := uint64(f.Graph.NodeCount())*256 + 1024
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.cache.Put(key, f.clone(), size)
}

// Invalidate drops every entry when the semantic schema version changes.
func (c *FinalizedGraphCache) Invalidate(schemaVersion string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schemaVersion != schemaVersion {
		c.cache.Free()
		c.schemaVersion = schemaVersion
	}
}
