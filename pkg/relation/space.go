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
	"fmt"
	"slices"
	"strings"

	"github.com/j2kun/isl/pkg/affine"
)

// DimKind identifies a group of dimensions within a space.
type DimKind uint8

const (
	// Param identifies the global parameters of a space.
	Param DimKind = iota
	// In identifies the input (domain) tuple of a map space.
	In
	// Out identifies the output (range) tuple of a map space, or the tuple of
	// a set space.
	Out
)

// Tuple is a (possibly anonymous) named list of dimensions, such as S[i,j].
type Tuple struct {
	Name string
	Dims []string
}

// NewTuple constructs a tuple with a given name and dimension names.
func NewTuple(name string, dims ...string) Tuple {
	return Tuple{name, slices.Clone(dims)}
}

// AnonTuple constructs an unnamed tuple of n dimensions, using a given prefix
// to name the dimensions.
func AnonTuple(prefix string, n uint) Tuple {
	dims := make([]string, n)
	for i := range dims {
		dims[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	//
	return Tuple{"", dims}
}

// Arity returns the number of dimensions in this tuple.
func (t Tuple) Arity() uint {
	return uint(len(t.Dims))
}

func (t Tuple) String() string {
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(t.Dims, ","))
}

// Space describes the dimensions over which a relation is defined: a list of
// parameters and, for maps, an input tuple followed by an output tuple.  Sets
// have only an output tuple.  Constraints over a space range over its columns,
// which are laid out as the parameters, then the input dimensions, then the
// output dimensions.
type Space struct {
	params []string
	in     Tuple
	out    Tuple
	set    bool
}

// NewSetSpace constructs the space of a set with a given tuple.
func NewSetSpace(params []string, tuple Tuple) Space {
	return Space{slices.Clone(params), Tuple{}, tuple, true}
}

// NewMapSpace constructs the space of a map from one tuple to another.
func NewMapSpace(params []string, in Tuple, out Tuple) Space {
	return Space{slices.Clone(params), in, out, false}
}

// NewParamSpace constructs the zero-dimensional set space over a given list of
// parameters, as used for contexts.
func NewParamSpace(params ...string) Space {
	return NewSetSpace(params, Tuple{})
}

// IsSet determines whether this is the space of a set (rather than a map).
func (s Space) IsSet() bool {
	return s.set
}

// Params returns the parameter names of this space.
func (s Space) Params() []string {
	return slices.Clone(s.params)
}

// InTuple returns the input tuple of this space (empty for sets).
func (s Space) InTuple() Tuple {
	return s.in
}

// OutTuple returns the output tuple of this space.
func (s Space) OutTuple() Tuple {
	return s.out
}

// Dim returns the number of dimensions of a given kind.
func (s Space) Dim(kind DimKind) uint {
	switch kind {
	case Param:
		return uint(len(s.params))
	case In:
		return s.in.Arity()
	default:
		return s.out.Arity()
	}
}

// Offset returns the first column occupied by dimensions of a given kind.
func (s Space) Offset(kind DimKind) uint {
	switch kind {
	case Param:
		return 0
	case In:
		return uint(len(s.params))
	default:
		return uint(len(s.params)) + s.in.Arity()
	}
}

// Columns returns the total number of columns of this space.
func (s Space) Columns() uint {
	return uint(len(s.params)) + s.in.Arity() + s.out.Arity()
}

// ColumnName returns the name of a given column.
func (s Space) ColumnName(col uint) string {
	switch {
	case col < s.Offset(In):
		return s.params[col]
	case col < s.Offset(Out):
		return s.in.Dims[col-s.Offset(In)]
	case col < s.Columns():
		return s.out.Dims[col-s.Offset(Out)]
	default:
		return fmt.Sprintf("e%d", col-s.Columns())
	}
}

// Zero returns the zero affine expression over the columns of this space.
func (s Space) Zero() affine.Aff {
	return affine.NewAff(s.Columns())
}

// Const returns a constant affine expression over the columns of this space.
func (s Space) Const(val int64) affine.Aff {
	return affine.Const(s.Columns(), val)
}

// Var returns the affine expression consisting of the dimension at a given
// position of a given kind.
func (s Space) Var(kind DimKind, pos uint) affine.Aff {
	if pos >= s.Dim(kind) {
		panic(fmt.Sprintf("dimension %d out of bounds", pos))
	}
	//
	return affine.Var(s.Columns(), s.Offset(kind)+pos)
}

// Compatible determines whether relations over these two spaces can be
// combined.  Dimension names are labels only and need not agree.
func (s Space) Compatible(o Space) bool {
	return s.set == o.set && slices.Equal(s.params, o.params) &&
		s.in.Name == o.in.Name && s.in.Arity() == o.in.Arity() &&
		s.out.Name == o.out.Name && s.out.Arity() == o.out.Arity()
}

// Key returns a string uniquely identifying the tuples of this space (ignoring
// parameters and dimension names), as used to index union maps.
func (s Space) Key() string {
	if s.set {
		return fmt.Sprintf("%s/%d", s.out.Name, s.out.Arity())
	}
	//
	return fmt.Sprintf("%s/%d->%s/%d", s.in.Name, s.in.Arity(), s.out.Name, s.out.Arity())
}

// Domain returns the set space of the input tuple of this (map) space.
func (s Space) Domain() Space {
	return NewSetSpace(s.params, s.in)
}

// Range returns the set space of the output tuple of this space.
func (s Space) Range() Space {
	return NewSetSpace(s.params, s.out)
}

// WithParams returns this space with its parameters replaced.
func (s Space) WithParams(params []string) Space {
	s.params = slices.Clone(params)
	return s
}

// Wrap returns the set space whose dimensions are the input dimensions
// followed by the output dimensions of this space.  The columns of the two
// spaces coincide.
func (s Space) Wrap() Space {
	dims := append(slices.Clone(s.in.Dims), s.out.Dims...)
	return NewSetSpace(s.params, Tuple{s.in.Name + "->" + s.out.Name, dims})
}

// MapFromDomainAndRange constructs the map space between two set spaces.
func MapFromDomainAndRange(domain Space, rng Space) Space {
	return NewMapSpace(domain.params, domain.out, rng.out)
}

func (s Space) String() string {
	var prefix string
	//
	if len(s.params) > 0 {
		prefix = fmt.Sprintf("[%s] -> ", strings.Join(s.params, ","))
	}
	//
	if s.set {
		return prefix + s.out.String()
	}
	//
	return prefix + s.in.String() + " -> " + s.out.String()
}

// removeDims returns this space with n dimensions of a given kind removed,
// starting from a given position.
func (s Space) removeDims(kind DimKind, first uint, n uint) Space {
	if first+n > s.Dim(kind) {
		panic(fmt.Sprintf("dimensions %d..%d out of bounds", first, first+n))
	}
	//
	switch kind {
	case Param:
		s.params = slices.Delete(slices.Clone(s.params), int(first), int(first+n))
	case In:
		s.in = Tuple{s.in.Name, slices.Delete(slices.Clone(s.in.Dims), int(first), int(first+n))}
	default:
		s.out = Tuple{s.out.Name, slices.Delete(slices.Clone(s.out.Dims), int(first), int(first+n))}
	}
	//
	return s
}
