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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/j2kun/isl/pkg/relation"
)

func Test_ParseTag_01(t *testing.T) {
	for _, tag := range Tags {
		if r, err := ParseTag(tag.String()); err != nil || r != tag {
			t.Errorf("failed parsing %s", tag.String())
		}
	}
	//
	if _, err := ParseTag("unroll"); !errors.Is(err, relation.ErrInvalidOption) {
		t.Errorf("expected invalid option, got %v", err)
	}
}

func Test_Config_01(t *testing.T) {
	checkRequested(t, Config{}, nil)
	checkRequested(t, Config{Atomic: true}, []Tag{Atomic})
	checkRequested(t, Config{Atomic: true, Separate: true}, []Tag{Separate, Atomic})
	checkRequested(t, Config{Atomic: true, Separate: true, Order: []Tag{Atomic, Separate}}, []Tag{Atomic, Separate})
	checkRequested(t, Config{Separate: true, Order: []Tag{Atomic, Separate}}, []Tag{Separate})
}

func Test_Config_02(t *testing.T) {
	invalid := []Config{
		{Atomic: true, Order: []Tag{Separate}},
		{Atomic: true, Order: []Tag{Atomic, Atomic}},
		{Order: []Tag{Tag(7)}},
	}
	//
	for _, c := range invalid {
		if err := c.Validate(); !errors.Is(err, relation.ErrInvalidOption) {
			t.Errorf("expected invalid option for %v, got %v", c, err)
		}
	}
}

func Test_NewMap_01(t *testing.T) {
	var (
		s   = relation.NewMapSpace(nil, relation.NewTuple("", "t"), relation.NewTuple("unroll", "x"))
		set = relation.NewSetSpace(nil, Atomic.Tuple())
	)
	//
	for _, sp := range []relation.Space{s, set} {
		if _, err := NewMap(relation.FromMap(relation.Universe(sp))); !errors.Is(err, relation.ErrInvalidOption) {
			t.Errorf("expected invalid option for %s, got %v", sp.String(), err)
		}
	}
}

func Test_Merge_01(t *testing.T) {
	// Atomic registered after separate wins
	m := merge(t, Empty(), Config{Atomic: true, Separate: true})
	checkActive(t, m, Atomic, 0, []int64{0, 1, 2, 3})
	checkActive(t, m, Atomic, 1, []int64{0, 1, 2, 3})
	checkActive(t, m, Separate, 0, nil)
}

func Test_Merge_02(t *testing.T) {
	// Separate registered after atomic wins
	m := merge(t, Empty(), Config{Atomic: true, Separate: true, Order: []Tag{Atomic, Separate}})
	checkActive(t, m, Separate, 0, []int64{0, 1, 2, 3})
	checkActive(t, m, Atomic, 0, nil)
}

func Test_Merge_03(t *testing.T) {
	// A narrower user rule for another tag is never overridden
	m := merge(t, userRule(t, Separate), Config{Atomic: true})
	checkActive(t, m, Separate, 0, []int64{0, 1})
	checkActive(t, m, Atomic, 0, []int64{2, 3})
	checkActive(t, m, Atomic, 1, []int64{0, 1, 2, 3})
}

func Test_Merge_04(t *testing.T) {
	// A narrower user rule for a requested tag is replaced
	m := merge(t, userRule(t, Separate), Config{Separate: true})
	checkActive(t, m, Separate, 0, []int64{0, 1, 2, 3})
	checkActive(t, m, Separate, 1, []int64{0, 1, 2, 3})
}

func Test_Merge_05(t *testing.T) {
	// Nothing requested
	base := userRule(t, Atomic)
	m := merge(t, base, Config{})
	checkActive(t, m, Atomic, 0, []int64{0, 1})
	checkActive(t, m, Atomic, 1, nil)
	//
	if _, err := Merge(base, Config{Atomic: true, Order: []Tag{Separate}}, schedule()); !errors.Is(err, relation.ErrInvalidOption) {
		t.Errorf("expected invalid option, got %v", err)
	}
}

// ============================================================================
// Helpers
// ============================================================================

// S[i] -> [i] : 0 <= i < 4
func schedule() relation.UnionMap {
	s := relation.NewMapSpace(nil, relation.NewTuple("S", "i"), relation.NewTuple("", "t"))
	i, o := s.Var(relation.In, 0), s.Var(relation.Out, 0)
	//
	return relation.FromMap(relation.FromConstraints(s, relation.Eq(o, i),
		relation.Ge(i, s.Const(0)), relation.Lt(i, s.Const(4))))
}

func rangeSpace() relation.Space {
	return relation.NewSetSpace(nil, relation.NewTuple("", "t"))
}

// [t] -> tag[0] : t < 2
func userRule(t *testing.T, tag Tag) Map {
	s := relation.NewMapSpace(nil, relation.NewTuple("", "t"), tag.Tuple())
	r := relation.FromConstraints(s, relation.Lt(s.Var(relation.In, 0), s.Const(2)),
		relation.Eq(s.Var(relation.Out, 0), s.Const(0)))
	//
	m, err := NewMap(relation.FromMap(r))
	if err != nil {
		t.Fatal(err)
	}
	//
	return m
}

func merge(t *testing.T, base Map, config Config) Map {
	m, err := Merge(base, config, schedule())
	if err != nil {
		t.Fatal(err)
	}
	//
	return m
}

// checkActive checks which points 0..3 of the schedule range a tag applies to
// at a given level.
func checkActive(t *testing.T, m Map, tag Tag, level uint, expected []int64) {
	t.Helper()
	//
	var (
		active = m.Active(tag, level, rangeSpace())
		actual []int64
	)
	//
	for v := int64(0); v < 4; v++ {
		if active.Contains([]int64{v}) {
			actual = append(actual, v)
		}
	}
	//
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("%s at level %d differs (-expected +actual):\n%s", tag.String(), level, diff)
	}
}

func checkRequested(t *testing.T, c Config, expected []Tag) {
	t.Helper()
	//
	if diff := cmp.Diff(expected, c.Requested()); diff != "" {
		t.Errorf("requested tags differ (-expected +actual):\n%s", diff)
	}
}
