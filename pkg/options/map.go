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
package options

import (
	"slices"

	"github.com/j2kun/isl/pkg/relation"
)

// Map associates schedule points with tags.  It is a union map from schedule
// range spaces to tag spaces of the form tag[x], where x identifies the
// schedule level at which the tag applies.
type Map struct {
	rules relation.UnionMap
}

// Empty returns an options map with no rules.
func Empty(params ...string) Map {
	return Map{relation.NewUnionMap(params...)}
}

// NewMap constructs an options map from a union map, checking that every
// relation maps into a tag space.
func NewMap(rules relation.UnionMap) (Map, error) {
	for _, m := range rules.Maps() {
		s := m.Space()
		//
		if s.IsSet() {
			return Map{}, relation.NewError(relation.InvalidOption, "expected option map, found set %s", s.String())
		} else if _, err := ParseTag(s.OutTuple().Name); err != nil {
			return Map{}, err
		} else if s.OutTuple().Arity() != 1 {
			return Map{}, relation.NewError(relation.InvalidOption, "option %s is not one-dimensional", s.String())
		}
	}
	//
	return Map{rules}, nil
}

// UnionMap returns the rules of this options map.
func (m Map) UnionMap() relation.UnionMap {
	return m.rules
}

// AlignParams extends every rule of this options map with the given list of
// parameters, which must contain all existing parameters.
func (m Map) AlignParams(params []string) Map {
	return Map{m.rules.AlignParams(params)}
}

// Active returns the set of points of a given schedule range space on which a
// given tag applies at a given level.  The result is defined over the
// parameters of this options map.
func (m Map) Active(tag Tag, level uint, rng relation.Space) relation.Map {
	key := relation.NewMapSpace(rng.Params(), rng.OutTuple(), tag.Tuple())
	rules, ok := m.rules.Find(key)
	//
	if !ok {
		return relation.EmptyMap(relation.NewSetSpace(m.rules.Params(), rng.OutTuple()))
	}
	//
	s := rules.Space()
	x := s.Var(relation.Out, 0)
	//
	return rules.AddConstraint(relation.Eq(x, s.Const(int64(level)))).ProjectDomain()
}

func (m Map) String() string {
	return m.rules.String()
}

// Merge applies the tags requested by a given configuration to every point of
// the range of a schedule, on top of a set of base rules.  Existing rules for a
// requested tag over the schedule range are replaced.  Rules for tags which
// are not requested are more specific than global tags, and are never
// overridden.  Where two requested tags overlap, the one registered later in
// the configuration's order wins.  Afterwards, at most one tag claims any
// schedule point and level.
func Merge(base Map, config Config, schedule relation.UnionMap) (Map, error) {
	if err := config.Validate(); err != nil {
		return Map{}, err
	}
	//
	tags := config.Requested()
	if len(tags) == 0 {
		return base, nil
	}
	//
	var (
		rng     = schedule.Range().Universe()
		params  = rng.Params()
		rules   = base.rules
		claimed = relation.NewUnionMap(params...)
	)
	//
	levels, err := relation.UnionFromDomainAndRange(rng, relation.FromMap(relation.Universe(levelSpace(params))))
	if err != nil {
		return Map{}, err
	}
	// Remove existing claims of any requested tag.
	for _, t := range tags {
		universe := relation.FromMap(relation.Universe(t.Space(params)))
		//
		pairs, err := relation.UnionFromDomainAndRange(rng, universe)
		if err != nil {
			return Map{}, err
		} else if rules, err = rules.Subtract(pairs); err != nil {
			return Map{}, err
		}
	}
	// Determine points claimed by more specific rules.
	for _, m := range rules.Maps() {
		if tag, err := ParseTag(m.Space().OutTuple().Name); err == nil && !slices.Contains(tags, tag) {
			claimed = claimed.Add(retag(m, relation.NewTuple("", "x")))
		}
	}
	//
	for i, t := range tags {
		global, err := levels.Subtract(claimed)
		if err != nil {
			return Map{}, err
		}
		// Later tags override earlier ones
		for _, u := range tags[:i] {
			if rules, err = rules.Subtract(retagUnion(global, u)); err != nil {
				return Map{}, err
			}
		}
		//
		if rules, err = rules.Union(retagUnion(global, t)); err != nil {
			return Map{}, err
		}
	}
	//
	return Map{rules.Coalesce()}, nil
}

// levelSpace returns the space of schedule levels.
func levelSpace(params []string) relation.Space {
	return relation.NewSetSpace(params, relation.NewTuple("", "x"))
}

// retag reinterprets a map into a one-dimensional tuple as a map into a
// different one-dimensional tuple.
func retag(m relation.Map, tuple relation.Tuple) relation.Map {
	var (
		s       = m.Space()
		target  = relation.NewMapSpace(s.Params(), s.InTuple(), tuple)
		mapping = make([]uint, s.Columns())
	)
	//
	for i := range mapping {
		mapping[i] = uint(i)
	}
	//
	return m.Remap(target, mapping)
}

func retagUnion(u relation.UnionMap, tag Tag) relation.UnionMap {
	r := relation.NewUnionMap(u.Params()...)
	//
	for _, m := range u.Maps() {
		r = r.Add(retag(m, tag.Tuple()))
	}
	//
	return r
}
