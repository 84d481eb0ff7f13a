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
	"sort"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
)

// parentRef records that node, owned by class, references a child class.
type parentRef struct {
	node  *ENode
	class ClassID
}

// EClass is an equivalence class of e-nodes plus its analysis facts.
type EClass struct {
	id      ClassID
	nodes   []*ENode
	parents []parentRef
	facts   Facts
}

// ID returns the class id as allocated; callers should canonicalize with
// EGraph.Find before comparing.
func (c *EClass) ID() ClassID { return c.id }

// Nodes returns the e-nodes of the class.
func (c *EClass) Nodes() []*ENode { return c.nodes }

// Facts returns the analysis facts of the class.
func (c *EClass) Facts() *Facts { return &c.facts }

// EGraph is a hash-consed e-graph with congruence closure, the arena every
// rewrite works in. An EGraph belongs to a single rewrite and is never
// shared across tasks.
type EGraph struct {
	uf       unionFind
	classes  map[ClassID]*EClass
	memo     map[string]ClassID
	worklist []ClassID

	meta     *cube.MetaContext
	requests *requestTable

	nodeCount int
}

// NewEGraph creates an empty e-graph resolving members against meta.
func NewEGraph(meta *cube.MetaContext) *EGraph {
	return &EGraph{
		classes:  make(map[ClassID]*EClass),
		memo:     make(map[string]ClassID),
		meta:     meta,
		requests: newRequestTable(),
	}
}

// Meta returns the semantic schema the graph resolves members against.
func (g *EGraph) Meta() *cube.MetaContext { return g.meta }

// RequestEntry resolves a CubeScan leaf payload to its interned entry, or
// nil when the leaf is not a request reference.
func (g *EGraph) RequestEntry(leaf interface{}) *RequestEntry {
	ref, ok := leaf.(requestRef)
	if !ok {
		return nil
	}
	return g.requests.get(ref)
}

// NodeCount returns the number of e-nodes added so far, the quantity the
// driver's node budget caps.
func (g *EGraph) NodeCount() int { return g.nodeCount }

// ClassCount returns the number of live e-classes.
func (g *EGraph) ClassCount() int { return len(g.classes) }

// Find returns the canonical id of the class containing id.
func (g *EGraph) Find(id ClassID) ClassID {
	return g.uf.find(id)
}

// Class returns the canonical class for id.
func (g *EGraph) Class(id ClassID) *EClass {
	return g.classes[g.Find(id)]
}

// ClassIDs returns the canonical class ids in ascending order.
func (g *EGraph) ClassIDs() []ClassID {
	ids := make([]ClassID, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Add inserts an e-node, returning the id of its class. Identical nodes
// share a class (hash-consing); node payload and children are captured, so
// callers must not reuse the child slice.
func (g *EGraph) Add(node ENode) (ClassID, error) {
	for i, c := range node.Children {
		if int(c) >= g.uf.size() {
			return 0, sql.ErrPlanConversion.New(fmt.Sprintf("e-node %s references invalid class %d", node.Op, c))
		}
		node.Children[i] = g.Find(c)
	}
	key := node.key()
	if id, ok := g.memo[key]; ok {
		return g.Find(id), nil
	}

	id := g.uf.makeSet()
	n := &ENode{Op: node.Op, Leaf: node.Leaf, Children: node.Children}
	class := &EClass{id: id, nodes: []*ENode{n}}
	g.classes[id] = class
	g.memo[key] = id
	g.nodeCount++

	for _, c := range n.Children {
		child := g.classes[g.Find(c)]
		child.parents = append(child.parents, parentRef{node: n, class: id})
	}

	class.facts = makeFacts(g, n)
	g.modify(class)
	return id, nil
}

// add is Add for internal callers holding well-formed ids.
func (g *EGraph) add(op Symbol, leaf interface{}, children ...ClassID) ClassID {
	id, err := g.Add(ENode{Op: op, Leaf: leaf, Children: children})
	if err != nil {
		panic(err)
	}
	return id
}

// Union merges the classes of a and b and returns the canonical id. The
// merged class carries the semilattice join of both fact records.
func (g *EGraph) Union(a, b ClassID) ClassID {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return ra
	}
	root := g.uf.union(ra, rb)
	other := ra
	if root == ra {
		other = rb
	}

	winner, loser := g.classes[root], g.classes[other]
	winner.nodes = append(winner.nodes, loser.nodes...)
	winner.parents = append(winner.parents, loser.parents...)
	winner.facts = mergeFacts(winner.facts, loser.facts)
	delete(g.classes, other)

	g.worklist = append(g.worklist, root)
	g.modify(winner)
	return root
}

// modify applies analysis-driven node injection: a class whose constant
// fact is a scalar also contains the literal spelling it.
func (g *EGraph) modify(class *EClass) {
	if class.facts.Constant == nil || class.facts.Constant.IsList {
		return
	}
	for _, n := range class.nodes {
		if n.Op == SymLiteral {
			return
		}
	}
	lit := &ENode{Op: SymLiteral, Leaf: literalLeaf(class.facts.Constant.Value)}
	key := lit.key()
	if existing, ok := g.memo[key]; ok {
		if g.Find(existing) != g.Find(class.id) {
			g.Union(existing, class.id)
		}
		return
	}
	g.memo[key] = class.id
	class.nodes = append(class.nodes, lit)
	g.nodeCount++
}

// Rebuild restores the graph invariants after a batch of unions: parent
// nodes are re-canonicalized, newly congruent nodes are merged, and facts
// are re-joined, repeating until a fixed point. It terminates because the
// class count only decreases.
func (g *EGraph) Rebuild() {
	for len(g.worklist) > 0 {
		todo := g.worklist
		g.worklist = nil

		seen := make(map[ClassID]bool)
		for _, id := range todo {
			root := g.Find(id)
			if seen[root] {
				continue
			}
			seen[root] = true
			g.repair(root)
		}
	}
}

func (g *EGraph) repair(id ClassID) {
	class := g.classes[id]
	if class == nil {
		return
	}

	// Re-canonicalize parent nodes and union newly congruent ones.
	parents := class.parents
	class.parents = nil
	seenParents := make(map[string]ClassID, len(parents))
	for _, p := range parents {
		delete(g.memo, p.node.key())
		for i, c := range p.node.Children {
			p.node.Children[i] = g.Find(c)
		}
		key := p.node.key()
		pclass := g.Find(p.class)
		if prev, ok := seenParents[key]; ok {
			if g.Find(prev) != pclass {
				pclass = g.Union(prev, pclass)
			}
		} else if memoClass, ok := g.memo[key]; ok && g.Find(memoClass) != pclass {
			pclass = g.Union(memoClass, pclass)
		}
		seenParents[key] = pclass
		g.memo[key] = pclass
		class = g.classes[g.Find(id)]
		class.parents = append(class.parents, parentRef{node: p.node, class: pclass})
	}

	// Dedupe this class's own nodes after canonicalization.
	class = g.classes[g.Find(id)]
	if class == nil {
		return
	}
	byKey := make(map[string]*ENode, len(class.nodes))
	nodes := class.nodes[:0]
	for _, n := range class.nodes {
		for i, c := range n.Children {
			n.Children[i] = g.Find(c)
		}
		key := n.key()
		if _, ok := byKey[key]; ok {
			continue
		}
		byKey[key] = n
		nodes = append(nodes, n)
	}
	class.nodes = nodes

	// Re-join facts from the canonical nodes; a change propagates to
	// parents.
	facts := class.facts
	for _, n := range class.nodes {
		facts = mergeFacts(facts, makeFacts(g, n))
	}
	if !factsEqual(class.facts, facts) {
		class.facts = facts
		g.modify(class)
		for _, p := range class.parents {
			g.worklist = append(g.worklist, p.class)
		}
	}
}

// Lookup returns the class containing an identical node, if any.
func (g *EGraph) Lookup(node ENode) (ClassID, bool) {
	for i, c := range node.Children {
		node.Children[i] = g.Find(c)
	}
	id, ok := g.memo[node.key()]
	if !ok {
		return 0, false
	}
	return g.Find(id), true
}

// Clone returns an independent copy of the graph. Cached finalized graphs
// are cloned on every hit so rewrites never share mutable state.
func (g *EGraph) Clone() *EGraph {
	out := &EGraph{
		uf:        g.uf.clone(),
		classes:   make(map[ClassID]*EClass, len(g.classes)),
		memo:      make(map[string]ClassID, len(g.memo)),
		meta:      g.meta,
		requests:  g.requests.clone(),
		nodeCount: g.nodeCount,
	}
	// Clone nodes once, preserving sharing between class node lists and
	// parent lists.
	nodeMap := make(map[*ENode]*ENode)
	cloneNode := func(n *ENode) *ENode {
		if cp, ok := nodeMap[n]; ok {
			return cp
		}
		cp := &ENode{Op: n.Op, Leaf: n.Leaf, Children: append([]ClassID(nil), n.Children...)}
		nodeMap[n] = cp
		return cp
	}
	for id, class := range g.classes {
		cp := &EClass{id: class.id, facts: class.facts.clone()}
		for _, n := range class.nodes {
			cp.nodes = append(cp.nodes, cloneNode(n))
		}
		for _, p := range class.parents {
			cp.parents = append(cp.parents, parentRef{node: cloneNode(p.node), class: p.class})
		}
		out.classes[id] = cp
	}
	for k, v := range g.memo {
		out.memo[k] = v
	}
	out.worklist = append([]ClassID(nil), g.worklist...)
	return out
}
