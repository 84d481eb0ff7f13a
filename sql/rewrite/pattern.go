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
	"strings"
)

// Pattern is a term over the language extended with ?variables. A pattern
// either is a variable, or names an operator with sub-patterns for each
// child. Leaf payloads match exactly, bind to a leaf variable, or are left
// unconstrained.
type Pattern struct {
	// Var is non-empty for a variable pattern, spelled "?name".
	Var string
	// Op is the operator this pattern matches.
	Op Symbol
	// Leaf requires an exact payload when non-nil.
	Leaf interface{}
	// LeafVar binds the payload to a leaf variable, spelled "?name".
	LeafVar string
	// Children are sub-patterns, one per operand.
	Children []*Pattern
}

func (p *Pattern) String() string {
	if p.Var != "" {
		return p.Var
	}
	var sb strings.Builder
	sb.WriteString(p.Op.String())
	switch {
	case p.LeafVar != "":
		fmt.Fprintf(&sb, "[%s]", p.LeafVar)
	case p.Leaf != nil:
		fmt.Fprintf(&sb, "[%v]", p.Leaf)
	}
	if len(p.Children) > 0 {
		sb.WriteRune('(')
		for i, c := range p.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
		sb.WriteRune(')')
	}
	return sb.String()
}

// vars returns every variable the pattern mentions, sorted.
func (p *Pattern) vars() []string {
	set := map[string]bool{}
	var walk func(*Pattern)
	walk = func(q *Pattern) {
		if q.Var != "" {
			set[q.Var] = true
			return
		}
		if q.LeafVar != "" {
			set[q.LeafVar] = true
		}
		for _, c := range q.Children {
			walk(c)
		}
	}
	walk(p)
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Subst is a substitution: variable bindings produced by matching, plus
// leaf-variable bindings. Appliers may add derived bindings before the RHS
// is instantiated.
type Subst struct {
	vars   map[string]ClassID
	leaves map[string]interface{}
}

func newSubst() *Subst {
	return &Subst{vars: map[string]ClassID{}, leaves: map[string]interface{}{}}
}

func (s *Subst) clone() *Subst {
	out := newSubst()
	for k, v := range s.vars {
		out.vars[k] = v
	}
	for k, v := range s.leaves {
		out.leaves[k] = v
	}
	return out
}

// Class returns the class bound to a variable.
func (s *Subst) Class(name string) (ClassID, bool) {
	id, ok := s.vars[name]
	return id, ok
}

// MustClass returns the class bound to a variable that the pattern
// guarantees is bound.
func (s *Subst) MustClass(name string) ClassID {
	id, ok := s.vars[name]
	if !ok {
		panic(fmt.Sprintf("unbound pattern variable %s", name))
	}
	return id
}

// Leaf returns the payload bound to a leaf variable.
func (s *Subst) Leaf(name string) (interface{}, bool) {
	v, ok := s.leaves[name]
	return v, ok
}

// Bind adds or replaces a class binding.
func (s *Subst) Bind(name string, id ClassID) {
	s.vars[name] = id
}

// BindLeaf adds or replaces a leaf binding.
func (s *Subst) BindLeaf(name string, v interface{}) {
	s.leaves[name] = v
}

// fingerprint renders the substitution deterministically for match
// ordering.
func (s *Subst) fingerprint() string {
	keys := make([]string, 0, len(s.vars)+len(s.leaves))
	for k := range s.vars {
		keys = append(keys, "v"+k)
	}
	for k := range s.leaves {
		keys = append(keys, "l"+k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		if k[0] == 'v' {
			fmt.Fprintf(&sb, "%s=%d;", k, s.vars[k[1:]])
		} else {
			fmt.Fprintf(&sb, "%s=%s;", k, leafKey(s.leaves[k[1:]]))
		}
	}
	return sb.String()
}

// match finds every substitution under which the pattern matches the given
// class, appending onto out. Matching never sees non-canonical ids.
func (p *Pattern) match(g *EGraph, id ClassID, s *Subst, out []*Subst) []*Subst {
	id = g.Find(id)
	if p.Var != "" {
		if bound, ok := s.vars[p.Var]; ok {
			if g.Find(bound) != id {
				return out
			}
			return append(out, s.clone())
		}
		next := s.clone()
		next.vars[p.Var] = id
		return append(out, next)
	}

	class := g.classes[id]
	if class == nil {
		return out
	}
	for _, n := range class.nodes {
		if n.Op != p.Op || len(n.Children) != len(p.Children) {
			continue
		}
		if p.Leaf != nil && leafKey(p.Leaf) != leafKey(n.Leaf) {
			continue
		}
		base := s.clone()
		if p.LeafVar != "" {
			if bound, ok := base.leaves[p.LeafVar]; ok {
				if leafKey(bound) != leafKey(n.Leaf) {
					continue
				}
			} else {
				base.leaves[p.LeafVar] = n.Leaf
			}
		}
		out = p.matchChildren(g, n, 0, base, out)
	}
	return out
}

func (p *Pattern) matchChildren(g *EGraph, n *ENode, i int, s *Subst, out []*Subst) []*Subst {
	if i == len(p.Children) {
		return append(out, s)
	}
	subs := p.Children[i].match(g, n.Children[i], s, nil)
	for _, sub := range subs {
		out = p.matchChildren(g, n, i+1, sub, out)
	}
	return out
}

// instantiate adds the pattern under the substitution to the graph and
// returns the resulting class.
func (p *Pattern) instantiate(g *EGraph, s *Subst) (ClassID, error) {
	if p.Var != "" {
		id, ok := s.vars[p.Var]
		if !ok {
			return 0, fmt.Errorf("unbound pattern variable %s", p.Var)
		}
		return g.Find(id), nil
	}
	leaf := p.Leaf
	if p.LeafVar != "" {
		bound, ok := s.leaves[p.LeafVar]
		if !ok {
			return 0, fmt.Errorf("unbound leaf variable %s", p.LeafVar)
		}
		leaf = bound
	}
	children := make([]ClassID, len(p.Children))
	for i, c := range p.Children {
		id, err := c.instantiate(g, s)
		if err != nil {
			return 0, err
		}
		children[i] = id
	}
	return g.Add(ENode{Op: p.Op, Leaf: leaf, Children: children})
}

// compile validates a rule's patterns: every RHS variable must be bound by
// the LHS (appliers can bind extras, checked at apply time), and variable
// spellings must start with '?'.
func compilePattern(p *Pattern) error {
	if p.Var != "" {
		if !strings.HasPrefix(p.Var, "?") {
			return fmt.Errorf("variable %q must start with '?'", p.Var)
		}
		return nil
	}
	if p.LeafVar != "" && !strings.HasPrefix(p.LeafVar, "?") {
		return fmt.Errorf("leaf variable %q must start with '?'", p.LeafVar)
	}
	if int(p.Op) >= int(symbolCount) {
		return fmt.Errorf("unknown symbol %d", p.Op)
	}
	for _, c := range p.Children {
		if err := compilePattern(c); err != nil {
			return err
		}
	}
	return nil
}
