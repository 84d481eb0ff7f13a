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
	"sort"

	"github.com/dolthub/go-cubesql/sql"
)

// Extractor chooses the minimum-cost term of each e-class by bottom-up
// dynamic programming over the graph.
//
// Every class carries two solutions. The outside solution is the ordinary
// best term; the inside solution is the best term as seen from within a
// wrapper, where everything is emittable as SQL (no representability
// debt, no further wrappers). A wrapper node's cost and body come from
// its child's inside solution, which also cuts the self reference that
// wrapper promotion creates by unioning CubeScanWrapper(c) into c.
type Extractor struct {
	graph   *EGraph
	outside map[ClassID]choice
	inside  map[ClassID]choice
}

type choice struct {
	cost Cost
	node *ENode
}

// NewExtractor computes best choices for every class of the graph.
func NewExtractor(g *EGraph) *Extractor {
	e := &Extractor{
		graph:   g,
		outside: make(map[ClassID]choice, len(g.classes)),
		inside:  make(map[ClassID]choice, len(g.classes)),
	}
	e.solve()
	return e
}

// solve iterates to a fixed point: classes in cycles settle once some
// member node has all children solved. Node order within a class is made
// deterministic by sorting on the hash-cons key.
func (e *Extractor) solve() {
	ids := e.graph.ClassIDs()
	ordered := make(map[ClassID][]*ENode, len(ids))
	for _, id := range ids {
		nodes := append([]*ENode(nil), e.graph.classes[id].nodes...)
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].key() < nodes[j].key() })
		ordered[id] = nodes
	}

	for changed := true; changed; {
		changed = false
		for _, id := range ids {
			for _, n := range ordered[id] {
				if cost, ok := e.outsideCost(n); ok {
					if cur, has := e.outside[id]; !has || cost.Less(cur.cost) {
						e.outside[id] = choice{cost: cost, node: n}
						changed = true
					}
				}
				if n.Op == SymCubeScanWrapper {
					continue
				}
				if cost, ok := e.insideCost(n); ok {
					if cur, has := e.inside[id]; !has || cost.Less(cur.cost) {
						e.inside[id] = choice{cost: cost, node: n}
						changed = true
					}
				}
			}
		}
	}
}

// outsideCost prices a node in normal position. A wrapper node prices its
// body from the inside table.
func (e *Extractor) outsideCost(n *ENode) (Cost, bool) {
	if n.Op == SymCubeScanWrapper {
		body, ok := e.inside[e.graph.Find(n.Children[0])]
		if !ok {
			return Cost{}, false
		}
		return Cost{Wrapper: satAdd(body.cost.Wrapper, 1), Size: satAdd(body.cost.Size, 1), Tie: uint64(n.Op)}, true
	}
	children := make([]Cost, len(n.Children))
	for i, c := range n.Children {
		b, ok := e.outside[e.graph.Find(c)]
		if !ok {
			return Cost{}, false
		}
		children[i] = b.cost
	}
	return nodeCost(n, children), true
}

// insideCost prices a node beneath a wrapper: everything renders as SQL,
// so only the size matters. A grouped scan leaf keeps its own wrapper
// count at zero as well; the backend renders it for us.
func (e *Extractor) insideCost(n *ENode) (Cost, bool) {
	out := Cost{Size: 1, Tie: uint64(n.Op)}
	for _, c := range n.Children {
		b, ok := e.inside[e.graph.Find(c)]
		if !ok {
			return Cost{}, false
		}
		out.Size = satAdd(out.Size, b.cost.Size)
	}
	return out, true
}

// Cost returns the best outside cost of a class.
func (e *Extractor) Cost(id ClassID) (Cost, bool) {
	b, ok := e.outside[e.graph.Find(id)]
	if !ok {
		return Cost{}, false
	}
	return b.cost, true
}

// Extract builds the minimum-cost term of the class rooted at id. It fails
// when no finite-cost (representable) term exists.
func (e *Extractor) Extract(id ClassID) (*Term, error) {
	root := e.graph.Find(id)
	b, ok := e.outside[root]
	if !ok || !b.cost.Finite() {
		detail := e.graph.Class(root).facts.OriginalExpr
		if detail == "" {
			detail = "plan root"
		}
		return nil, sql.ErrUnrepresentableRoot.New(detail)
	}
	return e.buildTerm(root, false), nil
}

// ExtractAny builds the minimum-cost term regardless of representability,
// used for diagnostics.
func (e *Extractor) ExtractAny(id ClassID) (*Term, bool) {
	root := e.graph.Find(id)
	if _, ok := e.outside[root]; !ok {
		return nil, false
	}
	return e.buildTerm(root, false), true
}

func (e *Extractor) buildTerm(id ClassID, inside bool) *Term {
	root := e.graph.Find(id)
	b, ok := e.outside[root]
	if inside {
		b, ok = e.inside[root]
	}
	if !ok {
		return nil
	}
	t := &Term{Op: b.node.Op, Leaf: b.node.Leaf}
	childInside := inside || b.node.Op == SymCubeScanWrapper
	for _, c := range b.node.Children {
		t.Children = append(t.Children, e.buildTerm(c, childInside))
	}
	return t
}
