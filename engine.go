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

// Package cubesql rewrites BI-tool SQL into semantic requests against a
// cube schema. The Engine is the front door: it parses, canonicalizes,
// saturates an e-graph against the rule pack, and extracts a plan whose
// leaves are either CubeScan or CubeScanWrappedSql.
package cubesql

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/analyzer"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/parse"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/rewrite"
	"github.com/dolthub/go-cubesql/sql/rewrite/wrappersql"
)

// Config for the Engine.
type Config struct {
	// Rewrite carries the driver budgets and feature toggles.
	Rewrite rewrite.Config
	// Dialect selects the wrapper SQL dialect: "postgres" (default) or
	// "mysql".
	Dialect string
	// GraphCacheBytes is the byte budget of the finalized-graph cache.
	GraphCacheBytes uint64
}

// Engine is a rewrite engine over one semantic schema. It is safe for
// concurrent use; each rewrite gets its own e-graph.
type Engine struct {
	Meta      *cube.MetaContext
	Analyzer  *analyzer.Analyzer
	Transport sql.Transport

	cfg        Config
	pack       *rewrite.RulePack
	packCache  *rewrite.RulePackCache
	graphCache *rewrite.FinalizedGraphCache
	generator  rewrite.SQLGenerator
	sem        *semaphore.Weighted
}

// New creates an Engine. Rule compilation failures are returned here and
// are fatal: an engine with a malformed rule pack must not serve queries.
func New(meta *cube.MetaContext, transport sql.Transport, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Rewrite.MaxIterations == 0 {
		cfg.Rewrite = rewrite.DefaultConfig()
	}
	if cfg.GraphCacheBytes == 0 {
		cfg.GraphCacheBytes = 64 << 20
	}
	cfg.Rewrite.SchemaVersion = meta.SchemaVersion

	dialect := wrappersql.Postgres()
	if cfg.Dialect == "mysql" {
		dialect = wrappersql.MySQL()
	}

	packCache := rewrite.NewRulePackCache()
	pack, err := packCache.Get(meta.SchemaVersion, cfg.Rewrite, func() ([]rewrite.Rule, error) {
		return rewrite.RewriteRules(meta, cfg.Rewrite), nil
	})
	if err != nil {
		return nil, err
	}

	graphCache := rewrite.NewFinalizedGraphCache(cfg.GraphCacheBytes)
	graphCache.Invalidate(meta.SchemaVersion)

	concurrency := cfg.Rewrite.MaxConcurrentRewrites
	if concurrency <= 0 {
		concurrency = 8
	}

	return &Engine{
		Meta:       meta,
		Analyzer:   analyzer.NewDefault(meta),
		Transport:  transport,
		cfg:        *cfg,
		pack:       pack,
		packCache:  packCache,
		graphCache: graphCache,
		generator:  wrappersql.NewGenerator(dialect),
		sem:        semaphore.NewWeighted(int64(concurrency)),
	}, nil
}

// NewDefault creates an Engine with default configuration.
func NewDefault(meta *cube.MetaContext, transport sql.Transport) (*Engine, error) {
	return New(meta, transport, nil)
}

// RewriteQuery parses the query and rewrites the resulting plan.
func (e *Engine) RewriteQuery(ctx *sql.Context, query string) (sql.Node, error) {
	parsed, err := parse.Parse(ctx, e.Meta, query)
	if err != nil {
		return nil, err
	}
	return e.RewritePlan(ctx, parsed)
}

// RewritePlan canonicalizes, saturates and extracts. A wrapper rendering
// failure retries once with SQL push-down disabled before surfacing.
func (e *Engine) RewritePlan(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, sql.ErrRewriteCancelled.New(err)
	}
	defer e.sem.Release(1)

	analyzed, err := e.Analyzer.Analyze(ctx, n)
	if err != nil {
		return nil, err
	}

	out, err := e.rewriteOnce(ctx, analyzed, e.cfg.Rewrite, e.pack)
	if err != nil && sql.ErrWrapperGenerate.Is(err) && e.cfg.Rewrite.SQLPushDown {
		ctx.GetLogger().WithError(err).Info("wrapper SQL generation failed, retrying without SQL push-down")
		cfg := e.cfg.Rewrite
		cfg.SQLPushDown = false
		pack, packErr := e.packCache.Get(e.Meta.SchemaVersion, cfg, func() ([]rewrite.Rule, error) {
			return rewrite.RewriteRules(e.Meta, cfg), nil
		})
		if packErr != nil {
			return nil, packErr
		}
		return e.rewriteOnce(ctx, analyzed, cfg, pack)
	}
	return out, err
}

func (e *Engine) rewriteOnce(ctx *sql.Context, analyzed sql.Node, cfg rewrite.Config, pack *rewrite.RulePack) (sql.Node, error) {
	final, converter, err := e.saturate(ctx, analyzed, cfg, pack)
	if err != nil {
		return nil, err
	}

	span, ctx := ctx.Span("rewrite.extract")
	defer span.Finish()

	extractor := rewrite.NewExtractor(final.Graph)
	term, err := extractor.Extract(final.Root)
	if err != nil {
		return nil, err
	}
	out, err := converter.Reconstruct(ctx, term, e.generator, e.Transport)
	if err != nil {
		return nil, err
	}

	if in, outSchema := analyzed.Schema(), out.Schema(); len(in) != len(outSchema) {
		ctx.GetLogger().Debugf("schema arity changed across rewrite: %d -> %d", len(in), len(outSchema))
	}
	return out, nil
}

// saturate returns a finalized graph for the plan, from cache when a
// saturated copy exists for this scope and schema version.
func (e *Engine) saturate(ctx *sql.Context, analyzed sql.Node, cfg rewrite.Config, pack *rewrite.RulePack) (*rewrite.FinalizedGraph, *rewrite.Converter, error) {
	key, keyErr := e.graphCache.Key(ctx.Scope, e.cfg.Dialect, analyzed.String())
	if keyErr == nil {
		if cached, ok := e.graphCache.Get(key); ok {
			return cached, rewrite.NewConverterWithParams(cached.Graph, cached.Params), nil
		}
	}

	graph := rewrite.NewEGraph(e.Meta)
	converter := rewrite.NewConverter(graph)
	root, err := converter.Ingest(analyzed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to convert plan to the term language")
	}
	graph.Rebuild()

	driver := rewrite.NewRewriter(graph, pack, cfg)
	report := driver.Run(ctx)

	final := &rewrite.FinalizedGraph{
		Graph:  graph,
		Root:   graph.Find(root),
		Params: converter.Params(),
		Report: report,
	}
	if keyErr == nil && report.Stop == rewrite.StopSaturated {
		e.graphCache.Put(key, final)
	}
	return final, converter, nil
}

// WrappedLeaves returns the wrapped-SQL leaves of a rewritten plan, a
// convenience for callers dispatching to the warehouse path.
func WrappedLeaves(n sql.Node) []*plan.CubeScanWrappedSql {
	var out []*plan.CubeScanWrappedSql
	collectWrapped(n, &out)
	return out
}

func collectWrapped(n sql.Node, out *[]*plan.CubeScanWrappedSql) {
	if w, ok := n.(*plan.CubeScanWrappedSql); ok {
		*out = append(*out, w)
	}
	for _, c := range n.Children() {
		collectWrapped(c, out)
	}
}
