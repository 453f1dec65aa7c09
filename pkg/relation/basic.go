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
package relation

import (
	"slices"
	"strings"
)

// Basic is a single convex relation: the integer points of a space satisfying
// a conjunction of equalities, inequalities and congruences.  Each congruence
// owns one existentially quantified local dimension.  A Basic is immutable;
// every operation returns a new value.
type Basic struct {
	space Space
	cons  []Constraint
	empty bool
}

// UniverseBasic returns the basic relation containing every point of a space.
func UniverseBasic(space Space) Basic {
	return Basic{space: space}
}

// EmptyBasic returns the basic relation containing no points of a space.
func EmptyBasic(space Space) Basic {
	return Basic{space: space, empty: true}
}

// NewBasic constructs a basic relation over a given space from a set of
// constraints.  The constraints are normalised on construction.
func NewBasic(space Space, cons ...Constraint) Basic {
	for _, c := range cons {
		if c.expr.Len() != space.Columns() {
			panic("constraint does not match space")
		}
	}
	//
	return Basic{space, slices.Clone(cons), false}.simplify()
}

// Space returns the space of this basic relation.
func (b Basic) Space() Space {
	return b.space
}

// Constraints returns the (normalised) constraints of this basic relation.
// An obviously empty relation is represented by the constraint -1 >= 0.
func (b Basic) Constraints() []Constraint {
	if b.empty {
		return []Constraint{NewInequality(b.space.Const(-1))}
	}
	//
	return slices.Clone(b.cons)
}

// AddConstraint returns this basic relation with an additional constraint.
func (b Basic) AddConstraint(c Constraint) Basic {
	return NewBasic(b.space, append(slices.Clone(b.cons), c)...).withEmpty(b.empty)
}

// Intersect returns the intersection of two basic relations over compatible
// spaces.  The local dimensions of the two operands are kept apart, since
// each congruence owns its own local.
func (b Basic) Intersect(o Basic) Basic {
	if b.empty || o.empty {
		return EmptyBasic(b.space)
	}
	//
	cons := append(slices.Clone(b.cons), o.cons...)
	//
	return Basic{b.space, cons, false}.simplify()
}

// Contains determines whether a given point (which assigns a value to every
// column of the space) is contained in this basic relation.
func (b Basic) Contains(point []int64) bool {
	if b.empty {
		return false
	}
	//
	for _, c := range b.cons {
		if !c.Holds(point) {
			return false
		}
	}
	//
	return true
}

// IsEmpty determines whether this basic relation contains any integer point.
// This check is exact.
func (b Basic) IsEmpty() bool {
	if b.empty {
		return true
	}
	//
	return newSystem(b.space.Columns(), b.cons, make([]bool, b.space.Columns())).isEmpty()
}

// Subtract returns a list of disjoint basic relations covering the points of
// this relation not contained in another.  The i-th piece satisfies the first
// i-1 constraints of the subtrahend and violates the i-th.  Constraints already
// implied by this relation produce no piece, and every piece returned is
// non-empty.
func (b Basic) Subtract(o Basic) []Basic {
	if b.IsEmpty() {
		return nil
	} else if o.empty || b.Intersect(o).IsEmpty() {
		return []Basic{b}
	}
	//
	var (
		pieces []Basic
		acc    = b
	)
	//
	for _, c := range o.cons {
		var violated bool
		//
		for _, neg := range c.Negate() {
			if p := acc.AddConstraint(neg); !p.IsEmpty() {
				pieces = append(pieces, p)
				violated = true
			}
		}
		//
		if violated {
			acc = acc.AddConstraint(c)
		}
	}
	//
	return pieces
}

// Implies determines whether a given constraint holds at every integer point
// of this basic relation.
func (b Basic) Implies(c Constraint) bool {
	for _, neg := range c.Negate() {
		if !b.AddConstraint(neg).IsEmpty() {
			return false
		}
	}
	//
	return true
}

// IsSubset determines whether every point of this basic relation is contained
// in another.
func (b Basic) IsSubset(o Basic) bool {
	if b.empty {
		return true
	} else if o.empty {
		return b.IsEmpty()
	}
	//
	for _, c := range o.cons {
		if !b.Implies(c) {
			return false
		}
	}
	//
	return true
}

// eliminate existentially quantifies a set of columns, producing a union of
// basic relations over the given target space.  The mapping identifies, for
// each kept column, its column in the target space.
func (b Basic) eliminate(elim []bool, target Space, mapping func(uint) (uint, bool)) []Basic {
	if b.empty {
		return nil
	}
	//
	var (
		pieces []Basic
		s      = newSystem(b.space.Columns(), b.cons, elim)
	)
	//
	for _, r := range s.run() {
		cons := r.constraints(target.Columns(), mapping)
		//
		if p := (Basic{target, cons, false}).simplify(); !p.empty {
			pieces = append(pieces, p)
		}
	}
	//
	return pieces
}

// remap moves this basic relation into a new space, where each column i of
// this space is mapped to column mapping(i) of the target.
func (b Basic) remap(target Space, mapping func(uint) (uint, bool)) Basic {
	if b.empty {
		return EmptyBasic(target)
	}
	//
	cons := make([]Constraint, len(b.cons))
	//
	for i, c := range b.cons {
		cons[i] = Constraint{c.kind, c.expr.Remap(target.Columns(), mapping), c.modulus}
	}
	//
	return Basic{target, cons, false}
}

func (b Basic) withEmpty(empty bool) Basic {
	if empty {
		return EmptyBasic(b.space)
	}
	//
	return b
}

// simplify normalises all constraints, removing duplicates and detecting
// obvious contradictions.
func (b Basic) simplify() Basic {
	if b.empty {
		return b
	}
	//
	s := newSystem(b.space.Columns(), b.cons, make([]bool, b.space.Columns()))
	if !s.normalise() {
		return EmptyBasic(b.space)
	}
	//
	cons := s.constraints(b.space.Columns(), func(i uint) (uint, bool) { return i, true })
	// Canonical ordering
	slices.SortFunc(cons, func(l, r Constraint) int {
		if l.kind != r.kind {
			return int(l.kind) - int(r.kind)
		} else if c := l.expr.Cmp(r.expr); c != 0 {
			return c
		}
		//
		return int(l.modulus - r.modulus)
	})
	//
	return Basic{b.space, cons, false}
}

// Equal determines whether two basic relations have identical (normalised)
// constraints.  This is a structural test; see Map.IsEqual for the semantic
// one.
func (b Basic) Equal(o Basic) bool {
	if b.empty || o.empty {
		return b.empty == o.empty
	}
	//
	return slices.EqualFunc(b.cons, o.cons, func(l, r Constraint) bool {
		return l.kind == r.kind && l.modulus == r.modulus && l.expr.Equal(r.expr)
	})
}

func (b Basic) String() string {
	var (
		sb  strings.Builder
		env = b.space.ColumnName
	)
	//
	sb.WriteString(b.space.String())
	//
	if b.empty {
		sb.WriteString(" : false")
		return sb.String()
	}
	//
	for i, c := range b.cons {
		if i == 0 {
			sb.WriteString(" : ")
		} else {
			sb.WriteString(" and ")
		}
		//
		sb.WriteString(c.String(env))
	}
	//
	return sb.String()
}
