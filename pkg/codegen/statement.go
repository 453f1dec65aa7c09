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
	"github.com/j2kun/isl/pkg/relation"
)

// statement captures the (completed) schedule of a single statement.
type statement struct {
	// Name of the statement (i.e. the domain tuple name).
	name string
	// Position of this statement in the schedule, used to order statements
	// executed at the same schedule point.
	index int
	// Range space of the original schedule, against which options are given.
	rng relation.Space
	// Schedule completed to be injective and padded to the common depth, as a
	// map S[i...] -> [c0,...].
	sched relation.Map
}

// completeSchedule makes the schedule of a statement injective by appending
// its domain dimensions when required.
func completeSchedule(m relation.Map) relation.Map {
	if isInjective(m) {
		return m
	}
	//
	var (
		s      = m.Space()
		nin    = s.Dim(relation.In)
		nout   = s.Dim(relation.Out)
		target = relation.NewMapSpace(s.Params(), s.InTuple(), relation.AnonTuple("c", nout+nin))
		r      = m.Remap(target, identity(s.Columns()))
	)
	//
	for j := range nin {
		r = r.AddConstraint(relation.Eq(target.Var(relation.Out, nout+j), target.Var(relation.In, j)))
	}
	//
	return r
}

// padSchedule extends the schedule of a statement to a given depth, with
// additional dimensions fixed at zero.
func padSchedule(m relation.Map, depth uint) relation.Map {
	var (
		s      = m.Space()
		nout   = s.Dim(relation.Out)
		target = relation.NewMapSpace(s.Params(), s.InTuple(), relation.AnonTuple("c", depth))
		r      = m.Remap(target, identity(s.Columns()))
	)
	//
	for j := nout; j < depth; j++ {
		r = r.AddConstraint(relation.Eq(target.Var(relation.Out, j), target.Const(0)))
	}
	//
	return r
}

// isInjective determines whether a schedule maps distinct statement instances
// to distinct schedule points.  This holds when no pair of instances i < i'
// (lexicographically) shares a schedule point.
func isInjective(m relation.Map) bool {
	var (
		s      = m.Space()
		np     = s.Dim(relation.Param)
		nin    = s.Dim(relation.In)
		nout   = s.Dim(relation.Out)
		target = relation.NewSetSpace(s.Params(), relation.AnonTuple("x", 2*nin+nout))
		first  = make([]uint, s.Columns())
		second = make([]uint, s.Columns())
	)
	//
	if nin == 0 {
		return true
	}
	//
	for i := range s.Columns() {
		switch {
		case i < np:
			first[i], second[i] = i, i
		case i < np+nin:
			first[i], second[i] = i, i+nin
		default:
			first[i], second[i] = i+nin, i+nin
		}
	}
	//
	pairs, _ := m.Remap(target, first).Intersect(m.Remap(target, second))
	//
	for j := range nin {
		lex := pairs
		//
		for k := range j {
			lex = lex.AddConstraint(relation.Eq(target.Var(relation.Out, k), target.Var(relation.Out, nin+k)))
		}
		//
		lex = lex.AddConstraint(relation.Lt(target.Var(relation.Out, j), target.Var(relation.Out, nin+j)))
		//
		if !lex.IsEmpty() {
			return false
		}
	}
	//
	return true
}

// extend moves a relation into a space with additional trailing columns,
// which are unconstrained.
func extend(m relation.Map, target relation.Space) relation.Map {
	return m.Remap(target, identity(m.Space().Columns()))
}

func identity(n uint) []uint {
	mapping := make([]uint, n)
	for i := range mapping {
		mapping[i] = uint(i)
	}
	//
	return mapping
}
