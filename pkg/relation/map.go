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

// Map is a finite union of basic relations over a single space.  A Map over a
// set space is a set.  Maps have value semantics: every operation returns a new
// Map and leaves its operands unchanged.
type Map struct {
	space  Space
	basics []Basic
}

// EmptyMap returns the relation containing no points of a given space.
func EmptyMap(space Space) Map {
	return Map{space, nil}
}

// Universe returns the relation containing every point of a given space.
func Universe(space Space) Map {
	return Map{space, []Basic{UniverseBasic(space)}}
}

// FromBasic constructs a relation from a single basic relation.
func FromBasic(b Basic) Map {
	if b.empty {
		return EmptyMap(b.space)
	}
	//
	return Map{b.space, []Basic{b}}
}

// FromConstraints constructs a (convex) relation from a set of constraints.
func FromConstraints(space Space, cons ...Constraint) Map {
	return FromBasic(NewBasic(space, cons...))
}

// Space returns the space of this relation.
func (m Map) Space() Space {
	return m.space
}

// Basics returns the basic relations making up this relation.
func (m Map) Basics() []Basic {
	return slices.Clone(m.basics)
}

// IsSet determines whether this relation is a set.
func (m Map) IsSet() bool {
	return m.space.IsSet()
}

func (m Map) check(o Map) error {
	if !m.space.Compatible(o.space) {
		return NewError(SpaceMismatch, "%s vs %s", m.space.String(), o.space.String())
	}
	//
	return nil
}

// Union returns the union of two relations over compatible spaces.  Basic
// relations are concatenated without coalescing.
func (m Map) Union(o Map) (Map, error) {
	if err := m.check(o); err != nil {
		return Map{}, err
	}
	//
	return Map{m.space, append(slices.Clone(m.basics), o.basics...)}, nil
}

// Intersect returns the intersection of two relations over compatible spaces.
func (m Map) Intersect(o Map) (Map, error) {
	if err := m.check(o); err != nil {
		return Map{}, err
	}
	//
	var basics []Basic
	//
	for _, b := range m.basics {
		for _, c := range o.basics {
			if p := b.Intersect(c); !p.empty {
				basics = append(basics, p)
			}
		}
	}
	//
	return Map{m.space, basics}, nil
}

// Subtract returns the points of this relation not contained in another.  The
// negation of each basic relation of the subtrahend is expanded into a
// disjoint union (De Morgan) and intersected with this relation.  Pieces
// found empty are dropped after each step.
func (m Map) Subtract(o Map) (Map, error) {
	if err := m.check(o); err != nil {
		return Map{}, err
	}
	//
	var basics []Basic
	//
	for _, b := range m.basics {
		if b.IsEmpty() {
			continue
		}
		//
		pieces := []Basic{b}
		//
		for _, c := range o.basics {
			var next []Basic
			//
			for _, p := range pieces {
				next = append(next, p.Subtract(c)...)
			}
			//
			if pieces = next; len(pieces) == 0 {
				break
			}
		}
		//
		basics = append(basics, pieces...)
	}
	//
	return Map{m.space, basics}, nil
}

// Complement returns the points of the space not contained in this relation.
func (m Map) Complement() Map {
	r, _ := Universe(m.space).Subtract(m)
	return r
}

// AddConstraint intersects every basic relation with a given constraint.
func (m Map) AddConstraint(c Constraint) Map {
	var basics []Basic
	//
	for _, b := range m.basics {
		if p := b.AddConstraint(c); !p.empty {
			basics = append(basics, p)
		}
	}
	//
	return Map{m.space, basics}
}

// IsEmpty determines whether this relation contains any integer point.
func (m Map) IsEmpty() bool {
	for _, b := range m.basics {
		if !b.IsEmpty() {
			return false
		}
	}
	//
	return true
}

// Contains determines whether a given point (assigning a value to every
// column) is contained in this relation.
func (m Map) Contains(point []int64) bool {
	for _, b := range m.basics {
		if b.Contains(point) {
			return true
		}
	}
	//
	return false
}

// IsSubset determines whether every point of this relation is contained in
// another.
func (m Map) IsSubset(o Map) (bool, error) {
	diff, err := m.Subtract(o)
	if err != nil {
		return false, err
	}
	//
	return diff.IsEmpty(), nil
}

// IsEqual determines whether two relations contain exactly the same points.
func (m Map) IsEqual(o Map) (bool, error) {
	if l, err := m.IsSubset(o); err != nil || !l {
		return false, err
	}
	//
	return o.IsSubset(m)
}

// ProjectOut existentially quantifies n dimensions of a given kind, starting
// at a given position, and removes them from the space.  The projection is
// exact over the integers.
func (m Map) ProjectOut(kind DimKind, first uint, n uint) Map {
	var (
		offset = m.space.Offset(kind) + first
		target = m.space.removeDims(kind, first, n)
		elim   = make([]bool, m.space.Columns())
	)
	//
	for i := offset; i < offset+n; i++ {
		elim[i] = true
	}
	//
	mapping := func(i uint) (uint, bool) {
		switch {
		case i < offset:
			return i, true
		case i < offset+n:
			return 0, false
		default:
			return i - n, true
		}
	}
	//
	var basics []Basic
	//
	for _, b := range m.basics {
		basics = append(basics, b.eliminate(elim, target, mapping)...)
	}
	//
	return Map{target, basics}
}

// ProjectDomain returns the domain of this relation, obtained by eliminating
// the output dimensions.  For a set this is the set of parameter values for
// which the set is non-empty.
func (m Map) ProjectDomain() Map {
	r := m.ProjectOut(Out, 0, m.space.Dim(Out))
	//
	r.space = r.space.Domain()
	// Same columns, different interpretation
	return r.rewrap()
}

// ProjectRange returns the range of this relation, obtained by eliminating
// the input dimensions.  For a set this is the set itself.
func (m Map) ProjectRange() Map {
	r := m.ProjectOut(In, 0, m.space.Dim(In))
	r.space = r.space.Range()
	//
	return r.rewrap()
}

// Params returns the set of parameter values for which this relation is
// non-empty.
func (m Map) Params() Map {
	r := m.ProjectOut(In, 0, m.space.Dim(In)).ProjectOut(Out, 0, m.space.Dim(Out))
	r.space = NewParamSpace(m.space.params...)
	//
	return r.rewrap()
}

// Wrap returns the set whose dimensions are the input dimensions followed by
// the output dimensions of this relation.
func (m Map) Wrap() Map {
	r := Map{m.space.Wrap(), slices.Clone(m.basics)}
	return r.rewrap()
}

// Remap moves this relation into a new space, where column i of this relation
// becomes column mapping[i] of the target.  Target columns not in the image of
// the mapping are unconstrained.
func (m Map) Remap(target Space, mapping []uint) Map {
	fn := func(i uint) (uint, bool) { return mapping[i], true }
	basics := make([]Basic, len(m.basics))
	//
	for i, b := range m.basics {
		basics[i] = b.remap(target, fn).simplify()
	}
	//
	return Map{target, basics}
}

// AlignParams moves this relation into the same space extended with the given
// list of parameters, which must contain all existing parameters.
func (m Map) AlignParams(params []string) Map {
	if slices.Equal(params, m.space.params) {
		return m
	}
	//
	var (
		target  = m.space.WithParams(params)
		mapping = make([]uint, m.space.Columns())
		np      = uint(len(m.space.params))
	)
	//
	for i, p := range m.space.params {
		j := slices.Index(params, p)
		if j < 0 {
			panic("parameter alignment drops parameter " + p)
		}
		//
		mapping[i] = uint(j)
	}
	//
	for i := np; i < m.space.Columns(); i++ {
		mapping[i] = i - np + uint(len(params))
	}
	//
	return m.Remap(target, mapping)
}

// IntersectParams restricts this relation to those parameter values contained
// in a given parameter set (e.g. a context).
func (m Map) IntersectParams(params Map) (Map, error) {
	if params.space.Columns() != params.space.Dim(Param) {
		return Map{}, NewError(SpaceMismatch, "expected a parameter set, got %s", params.space.String())
	}
	//
	names := MergeParams(m.space.params, params.space.params)
	m = m.AlignParams(names)
	params = params.AlignParams(names)
	//
	mapping := make([]uint, params.space.Columns())
	for i := range mapping {
		mapping[i] = uint(i)
	}
	//
	return m.Intersect(params.Remap(m.space, mapping))
}

// IntersectDomain restricts the domain of this relation to a given set.
func (m Map) IntersectDomain(set Map) (Map, error) {
	if !set.space.Compatible(m.space.Domain()) {
		return Map{}, NewError(SpaceMismatch, "%s vs %s", set.space.String(), m.space.Domain().String())
	}
	//
	mapping := make([]uint, set.space.Columns())
	for i := range mapping {
		mapping[i] = uint(i)
	}
	//
	return m.Intersect(set.Remap(m.space, mapping))
}

// IntersectRange restricts the range of this relation to a given set.
func (m Map) IntersectRange(set Map) (Map, error) {
	if !set.space.Compatible(m.space.Range()) {
		return Map{}, NewError(SpaceMismatch, "%s vs %s", set.space.String(), m.space.Range().String())
	}
	//
	var (
		mapping = make([]uint, set.space.Columns())
		np      = m.space.Dim(Param)
	)
	//
	for i := range mapping {
		if uint(i) < np {
			mapping[i] = uint(i)
		} else {
			mapping[i] = uint(i) + m.space.Dim(In)
		}
	}
	//
	return m.Intersect(set.Remap(m.space, mapping))
}

// FromDomainAndRange constructs the relation mapping every point of a domain
// set to every point of a range set.
func FromDomainAndRange(domain Map, rng Map) (Map, error) {
	if !slices.Equal(domain.space.params, rng.space.params) {
		names := MergeParams(domain.space.params, rng.space.params)
		domain, rng = domain.AlignParams(names), rng.AlignParams(names)
	}
	//
	var (
		space = MapFromDomainAndRange(domain.space, rng.space)
		np    = space.Dim(Param)
		dmap  = make([]uint, domain.space.Columns())
		rmap  = make([]uint, rng.space.Columns())
	)
	//
	for i := range dmap {
		dmap[i] = uint(i)
	}
	//
	for i := range rmap {
		if uint(i) < np {
			rmap[i] = uint(i)
		} else {
			rmap[i] = uint(i) + space.Dim(In)
		}
	}
	//
	return domain.Remap(space, dmap).Intersect(rng.Remap(space, rmap))
}

// Coalesce removes empty basic relations and basic relations contained in a
// sibling.  The set of points is unchanged.
func (m Map) Coalesce() Map {
	var (
		basics = m.dropEmpty().basics
		keep   = make([]bool, len(basics))
	)
	//
	for i := range basics {
		keep[i] = true
	}
	//
	for i, b := range basics {
		for j, c := range basics {
			if i != j && keep[j] && keep[i] && b.IsSubset(c) {
				keep[i] = false
			}
		}
	}
	//
	var result []Basic
	//
	for i, b := range basics {
		if keep[i] {
			result = append(result, b)
		}
	}
	//
	return Map{m.space, result}
}

func (m Map) dropEmpty() Map {
	var basics []Basic
	//
	for _, b := range m.basics {
		if !b.IsEmpty() {
			basics = append(basics, b)
		}
	}
	//
	return Map{m.space, basics}
}

// rewrap updates every basic relation to carry the space of this relation.
func (m Map) rewrap() Map {
	basics := make([]Basic, len(m.basics))
	//
	for i, b := range m.basics {
		b.space = m.space
		basics[i] = b
	}
	//
	m.basics = basics
	//
	return m
}

func (m Map) String() string {
	var sb strings.Builder
	//
	sb.WriteString("{ ")
	//
	if len(m.basics) == 0 {
		sb.WriteString(m.space.String())
		sb.WriteString(" : false")
	}
	//
	for i, b := range m.basics {
		if i != 0 {
			sb.WriteString("; ")
		}
		//
		sb.WriteString(b.String())
	}
	//
	sb.WriteString(" }")
	//
	return sb.String()
}

// MergeParams returns the first list of parameters extended with those
// parameters of the second not already present.
func MergeParams(left, right []string) []string {
	names := slices.Clone(left)
	//
	for _, p := range right {
		if !slices.Contains(names, p) {
			names = append(names, p)
		}
	}
	//
	return names
}
