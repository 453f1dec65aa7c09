// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package codegen

import (
	"slices"

	"github.com/hashicorp/go-set/v3"
	"github.com/j2kun/isl/pkg/options"
	"github.com/j2kun/isl/pkg/relation"
)

// atom is a region of the schedule prefix (c0..cd) which must be generated
// within a single loop, together with the statements it covers.
type atom struct {
	stmts  *set.Set[int]
	region relation.Map
	// Option under which this atom was formed, or empty for the default.
	tag string
}

// component is a set of atoms which interleave, and hence share a loop.
type component struct {
	atoms []*atom
}

// piece is part of the schedule of a statement, restricted to the schedule
// points being generated.
type piece struct {
	stmt  *statement
	sched relation.Map
}

// atoms determines the atoms at a given level.  Statement instances tagged
// atomic are combined into a single atom.  Those tagged separate
// are split into the disjoint regions of a Venn diagram over the statements.
// All others form one atom per basic piece of their projection.
func (g *generator) atoms(d uint, build relation.Map, pieces []piece) []*atom {
	var (
		atoms    []*atom
		atomic   []projection
		separate []projection
		plain    []projection
		space    = g.levelSpace(d + 1)
		lifted   = extend(build, space)
	)
	//
	for _, p := range pieces {
		var (
			at    = g.active(options.Atomic, d, p.stmt)
			sp    = g.active(options.Separate, d, p.stmt)
			none  = relation.EmptyMap(p.sched.Space())
			aPart = none
			sPart = none
			rest  = p.sched
		)
		// rest is the schedule outside both option ranges
		if !at.IsEmpty() {
			aPart = must(p.sched.IntersectRange(at))
			rest = must(rest.IntersectRange(at.Complement()))
			sp = must(sp.Subtract(at))
		}
		//
		if !sp.IsEmpty() {
			sPart = must(p.sched.IntersectRange(sp))
			rest = must(rest.IntersectRange(sp.Complement()))
		}
		//
		var (
			index  = p.stmt.index
			parts  = []relation.Map{aPart, sPart, rest}
			target = []*[]projection{&atomic, &separate, &plain}
		)
		//
		for i, part := range parts {
			if part.IsEmpty() {
				continue
			} else if proj := must(g.prefix(part, d+1).Intersect(lifted)).Coalesce(); !proj.IsEmpty() {
				*target[i] = append(*target[i], projection{index, proj})
			}
		}
	}
	// Atomic
	if len(atomic) > 0 {
		a := &atom{set.New[int](len(atomic)), relation.EmptyMap(space), options.Atomic.String()}
		//
		for _, p := range atomic {
			a.stmts.Insert(p.stmt)
			a.region = must(a.region.Union(p.region))
		}
		//
		a.region = a.region.Coalesce()
		atoms = append(atoms, a)
	}
	// Separate
	for _, r := range venn(separate) {
		for _, b := range r.region.Basics() {
			atoms = append(atoms, &atom{r.stmts, relation.FromBasic(b), options.Separate.String()})
		}
	}
	// Default
	for _, p := range plain {
		for _, b := range p.region.Basics() {
			atoms = append(atoms, &atom{set.From([]int{p.stmt}), relation.FromBasic(b), ""})
		}
	}
	//
	return atoms
}

// projection is the projection of (part of) a statement's schedule onto a
// schedule prefix.
type projection struct {
	stmt   int
	region relation.Map
}

type vennRegion struct {
	stmts  *set.Set[int]
	region relation.Map
}

// venn splits a set of (possibly overlapping) projections into disjoint
// regions, each identifying the statements it covers.
func venn(projs []projection) []vennRegion {
	var regions []vennRegion
	//
	for _, p := range projs {
		var (
			next []vennRegion
			rest = p.region
		)
		//
		for _, r := range regions {
			in := must(r.region.Intersect(p.region)).Coalesce()
			out := must(r.region.Subtract(p.region)).Coalesce()
			//
			if !in.IsEmpty() {
				stmts := r.stmts.Copy()
				stmts.Insert(p.stmt)
				next = append(next, vennRegion{stmts, in})
			}
			//
			if !out.IsEmpty() {
				next = append(next, vennRegion{r.stmts, out})
			}
			//
			rest = must(rest.Subtract(r.region))
		}
		//
		if rest = rest.Coalesce(); !rest.IsEmpty() {
			next = append(next, vennRegion{set.From([]int{p.stmt}), rest})
		}
		//
		regions = next
	}
	//
	return regions
}

// components groups atoms which interleave at a given level into components,
// and orders them such that every atom of a component precedes every atom of
// the next.
func (g *generator) components(d uint, atoms []*atom) []*component {
	var (
		n      = len(atoms)
		parent = make([]int, n)
		before = make([][]bool, n)
	)
	//
	for i := range atoms {
		parent[i] = i
		before[i] = make([]bool, n)
	}
	//
	for i := range atoms {
		for j := range atoms {
			if i != j {
				before[i][j] = g.before(d, atoms[i], atoms[j])
			}
		}
	}
	//
	find := func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		//
		return i
	}
	// Merge interleaving atoms
	for i := range atoms {
		for j := i + 1; j < n; j++ {
			if !before[i][j] && !before[j][i] {
				parent[find(j)] = find(i)
			}
		}
	}
	//
	var (
		roots []int
		comps = make(map[int]*component)
	)
	//
	for i, a := range atoms {
		r := find(i)
		//
		if _, ok := comps[r]; !ok {
			comps[r] = &component{}
			roots = append(roots, r)
		}
		//
		comps[r].atoms = append(comps[r].atoms, a)
	}
	// Order components, merging any which cannot be ordered.
	var (
		ordered   []*component
		remaining = slices.Clone(roots)
	)
	//
	precedes := func(l, r int) bool {
		for i := range atoms {
			for j := range atoms {
				if find(i) == l && find(j) == r && !before[i][j] {
					return false
				}
			}
		}
		//
		return true
	}
	//
	for len(remaining) > 0 {
		next := -1
		//
		for i, r := range remaining {
			first := true
			//
			for _, o := range remaining {
				first = first && (o == r || !precedes(o, r))
			}
			//
			if first {
				next = i
				break
			}
		}
		//
		if next < 0 {
			// Cyclic ordering, so generate the remainder together.
			merged := &component{}
			for _, r := range remaining {
				merged.atoms = append(merged.atoms, comps[r].atoms...)
			}
			//
			return append(ordered, merged)
		}
		//
		ordered = append(ordered, comps[remaining[next]])
		remaining = slices.Delete(remaining, next, next+1)
	}
	//
	return ordered
}

// before determines whether every point of one atom precedes every point of
// another at a given level, for the same values of the outer dimensions.
func (g *generator) before(d uint, a *atom, b *atom) bool {
	var (
		np     = uint(len(g.params))
		target = relation.NewSetSpace(g.params, relation.AnonTuple("x", d+2))
		bmap   = identity(np + d + 1)
	)
	//
	bmap[np+d] = np + d + 1
	//
	pairs := must(a.region.Remap(target, identity(np+d+1)).Intersect(b.region.Remap(target, bmap)))
	pairs = pairs.AddConstraint(relation.Ge(target.Var(relation.Out, d), target.Var(relation.Out, d+1)))
	//
	return pairs.IsEmpty()
}

// region returns the union of the regions of every atom in this component.
func (c *component) region() relation.Map {
	r := c.atoms[0].region
	//
	for _, a := range c.atoms[1:] {
		r = must(r.Union(a.region))
	}
	//
	return r.Coalesce()
}

// stmts returns the statements covered by this component.
func (c *component) stmts() *set.Set[int] {
	s := set.New[int](len(c.atoms))
	//
	for _, a := range c.atoms {
		s.InsertSet(a.stmts)
	}
	//
	return s
}

// tag returns the option under which this component was formed, if any.
func (c *component) tag() string {
	for _, a := range c.atoms {
		if a.tag != "" {
			return a.tag
		}
	}
	//
	return ""
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err.Error())
	}
	//
	return val
}
