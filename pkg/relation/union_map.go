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
	"maps"
	"slices"
	"strings"
)

// UnionMap is a union of relations over distinct spaces, indexed by their
// tuple names and arities.  All relations in a union map share the same list
// of parameters.  Like Map, UnionMap has value semantics.
type UnionMap struct {
	params []string
	maps   map[string]Map
}

// NewUnionMap constructs an empty union map over a given list of parameters.
func NewUnionMap(params ...string) UnionMap {
	return UnionMap{slices.Clone(params), make(map[string]Map)}
}

// FromMap constructs a union map containing a single relation.
func FromMap(m Map) UnionMap {
	return NewUnionMap(m.space.params...).Add(m)
}

// Params returns the parameters shared by every relation of this union map.
func (u UnionMap) Params() []string {
	return slices.Clone(u.params)
}

// Add returns this union map with a given relation added.  Parameters are
// aligned by name, and a relation over a space already present is combined
// with the existing relation by union.
func (u UnionMap) Add(m Map) UnionMap {
	r := u.AlignParams(MergeParams(u.params, m.space.params))
	m = m.AlignParams(r.params)
	//
	if existing, ok := r.maps[m.space.Key()]; ok {
		m = Map{existing.space, append(slices.Clone(existing.basics), m.basics...)}.rewrap()
	}
	//
	r.maps[m.space.Key()] = m
	//
	return r
}

// Maps returns the relations of this union map, ordered by space key.
func (u UnionMap) Maps() []Map {
	result := make([]Map, 0, len(u.maps))
	//
	for _, k := range slices.Sorted(maps.Keys(u.maps)) {
		result = append(result, u.maps[k])
	}
	//
	return result
}

// Find returns the relation of this union map over a space compatible with
// the given space, or false if there is none.
func (u UnionMap) Find(space Space) (Map, bool) {
	m, ok := u.maps[space.Key()]
	return m, ok
}

// IsEmpty determines whether every relation of this union map is empty.
func (u UnionMap) IsEmpty() bool {
	for _, m := range u.maps {
		if !m.IsEmpty() {
			return false
		}
	}
	//
	return true
}

// IsEqual determines whether two union maps contain the same points.
func (u UnionMap) IsEqual(o UnionMap) (bool, error) {
	l, err := u.Subtract(o)
	if err != nil {
		return false, err
	}
	//
	r, err := o.Subtract(u)
	if err != nil {
		return false, err
	}
	//
	return l.IsEmpty() && r.IsEmpty(), nil
}

// Union returns the union of two union maps.
func (u UnionMap) Union(o UnionMap) (UnionMap, error) {
	if err := u.check(o); err != nil {
		return UnionMap{}, err
	}
	//
	r := u.clone()
	//
	for _, m := range o.Maps() {
		r = r.Add(m)
	}
	//
	return r, nil
}

// Intersect returns the intersection of two union maps.  Only relations over
// the same space can overlap.
func (u UnionMap) Intersect(o UnionMap) (UnionMap, error) {
	if err := u.check(o); err != nil {
		return UnionMap{}, err
	}
	//
	u, o = alignUnion(u, o)
	r := NewUnionMap(u.params...)
	//
	for k, m := range u.maps {
		if n, ok := o.maps[k]; ok {
			i, err := m.Intersect(n)
			if err != nil {
				return UnionMap{}, err
			}
			//
			r.maps[k] = i
		}
	}
	//
	return r, nil
}

// Subtract returns the points of this union map not contained in another.
func (u UnionMap) Subtract(o UnionMap) (UnionMap, error) {
	if err := u.check(o); err != nil {
		return UnionMap{}, err
	}
	//
	u, o = alignUnion(u, o)
	r := NewUnionMap(u.params...)
	//
	for k, m := range u.maps {
		if n, ok := o.maps[k]; ok {
			d, err := m.Subtract(n)
			if err != nil {
				return UnionMap{}, err
			}
			//
			m = d
		}
		//
		r.maps[k] = m
	}
	//
	return r, nil
}

// SubtractRange removes from this union map every pair whose range point is
// contained in a given union of sets.
func (u UnionMap) SubtractRange(sets UnionMap) (UnionMap, error) {
	if err := u.check(sets); err != nil {
		return UnionMap{}, err
	}
	//
	u, sets = alignUnion(u, sets)
	r := NewUnionMap(u.params...)
	//
	for k, m := range u.maps {
		if set, ok := sets.maps[m.space.Range().Key()]; ok {
			pairs, err := FromDomainAndRange(Universe(m.space.Domain()), set)
			if err != nil {
				return UnionMap{}, err
			}
			//
			if m, err = m.Subtract(pairs); err != nil {
				return UnionMap{}, err
			}
		}
		//
		r.maps[k] = m
	}
	//
	return r, nil
}

// IntersectParams restricts every relation of this union map to those
// parameter values contained in a given parameter set.
func (u UnionMap) IntersectParams(params Map) (UnionMap, error) {
	r := u.AlignParams(MergeParams(u.params, params.space.params))
	//
	for k, m := range r.maps {
		i, err := m.IntersectParams(params)
		if err != nil {
			return UnionMap{}, err
		}
		//
		r.maps[k] = i
	}
	//
	return r, nil
}

// Domain returns the union of the domains of every relation.
func (u UnionMap) Domain() UnionMap {
	r := NewUnionMap(u.params...)
	//
	for _, m := range u.Maps() {
		r = r.Add(m.ProjectDomain())
	}
	//
	return r
}

// Range returns the union of the ranges of every relation.
func (u UnionMap) Range() UnionMap {
	r := NewUnionMap(u.params...)
	//
	for _, m := range u.Maps() {
		r = r.Add(m.ProjectRange())
	}
	//
	return r
}

// Universe returns the union of the universes of the spaces of every
// relation.
func (u UnionMap) Universe() UnionMap {
	r := NewUnionMap(u.params...)
	//
	for k, m := range u.maps {
		r.maps[k] = Universe(m.space)
	}
	//
	return r
}

// UnionFromDomainAndRange constructs the union map relating every point of
// every domain set to every point of every range set.
func UnionFromDomainAndRange(domain UnionMap, rng UnionMap) (UnionMap, error) {
	if err := domain.check(rng); err != nil {
		return UnionMap{}, err
	}
	//
	domain, rng = alignUnion(domain, rng)
	r := NewUnionMap(domain.params...)
	//
	for _, d := range domain.Maps() {
		for _, e := range rng.Maps() {
			m, err := FromDomainAndRange(d, e)
			if err != nil {
				return UnionMap{}, err
			}
			//
			r = r.Add(m)
		}
	}
	//
	return r, nil
}

// Coalesce coalesces every relation of this union map, dropping those which
// become empty.
func (u UnionMap) Coalesce() UnionMap {
	r := NewUnionMap(u.params...)
	//
	for k, m := range u.maps {
		if c := m.Coalesce(); len(c.basics) > 0 {
			r.maps[k] = c
		}
	}
	//
	return r
}

func (u UnionMap) String() string {
	var parts []string
	//
	for _, m := range u.Maps() {
		parts = append(parts, m.String())
	}
	//
	return strings.Join(parts, " ∪ ")
}

// check reports EmptyInput when either operand was never constructed.
func (u UnionMap) check(o UnionMap) error {
	if u.maps == nil || o.maps == nil {
		return NewError(EmptyInput, "uninitialised union map")
	}
	//
	return nil
}

func (u UnionMap) clone() UnionMap {
	return UnionMap{slices.Clone(u.params), maps.Clone(u.maps)}
}

// AlignParams moves every relation of this union map into the same space
// extended with the given list of parameters, which must contain all existing
// parameters.
func (u UnionMap) AlignParams(params []string) UnionMap {
	r := NewUnionMap(params...)
	//
	for k, m := range u.maps {
		r.maps[k] = m.AlignParams(params)
	}
	//
	return r
}

func alignUnion(l UnionMap, r UnionMap) (UnionMap, UnionMap) {
	if slices.Equal(l.params, r.params) {
		return l, r
	}
	//
	params := MergeParams(l.params, r.params)
	//
	return l.AlignParams(params), r.AlignParams(params)
}
