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

	"github.com/j2kun/isl/pkg/affine"
	"github.com/j2kun/isl/pkg/util/math"
)

// ConstraintKind distinguishes the three forms of constraint.
type ConstraintKind uint8

const (
	// Equality requires expr = 0.
	Equality ConstraintKind = iota
	// Inequality requires expr >= 0.
	Inequality
	// Congruence requires expr = m*q for some integer q, i.e. expr ≡ 0 (mod
	// m).  The witness q is a local dimension owned by the constraint and is
	// never visible to callers.
	Congruence
)

// Constraint is a single affine constraint over the columns of some space.
type Constraint struct {
	kind    ConstraintKind
	expr    affine.Aff
	modulus int64
}

// NewEquality constructs the constraint expr = 0.
func NewEquality(expr affine.Aff) Constraint {
	return Constraint{Equality, expr, 0}
}

// NewInequality constructs the constraint expr >= 0.
func NewInequality(expr affine.Aff) Constraint {
	return Constraint{Inequality, expr, 0}
}

// NewCongruence constructs the constraint expr ≡ residue (mod modulus).  The
// modulus must be positive.
func NewCongruence(expr affine.Aff, modulus int64, residue int64) Constraint {
	if modulus <= 0 {
		panic(fmt.Sprintf("invalid modulus %d", modulus))
	}
	//
	return Constraint{Congruence, expr.AddConstant(-residue), modulus}
}

// Eq constructs the constraint lhs = rhs.
func Eq(lhs, rhs affine.Aff) Constraint {
	return NewEquality(lhs.Sub(rhs))
}

// Ge constructs the constraint lhs >= rhs.
func Ge(lhs, rhs affine.Aff) Constraint {
	return NewInequality(lhs.Sub(rhs))
}

// Gt constructs the constraint lhs > rhs.
func Gt(lhs, rhs affine.Aff) Constraint {
	return NewInequality(lhs.Sub(rhs).AddConstant(-1))
}

// Le constructs the constraint lhs <= rhs.
func Le(lhs, rhs affine.Aff) Constraint {
	return Ge(rhs, lhs)
}

// Lt constructs the constraint lhs < rhs.
func Lt(lhs, rhs affine.Aff) Constraint {
	return Gt(rhs, lhs)
}

// Kind returns the kind of this constraint.
func (c Constraint) Kind() ConstraintKind {
	return c.kind
}

// Expr returns the affine expression constrained by this constraint.
func (c Constraint) Expr() affine.Aff {
	return c.expr
}

// Modulus returns the modulus of a congruence (or zero otherwise).
func (c Constraint) Modulus() int64 {
	return c.modulus
}

// Holds checks whether this constraint is satisfied at a given point.
func (c Constraint) Holds(point []int64) bool {
	v := c.expr.Eval(point)
	//
	switch c.kind {
	case Equality:
		return v == 0
	case Inequality:
		return v >= 0
	default:
		return math.Mod(v, c.modulus) == 0
	}
}

// Negate returns a disjoint list of constraints whose union is the complement
// of this constraint.
func (c Constraint) Negate() []Constraint {
	switch c.kind {
	case Inequality:
		// !(e >= 0) <=> -e-1 >= 0
		return []Constraint{NewInequality(c.expr.Neg().AddConstant(-1))}
	case Equality:
		// !(e == 0) <=> e >= 1 || e <= -1
		return []Constraint{
			NewInequality(c.expr.AddConstant(-1)),
			NewInequality(c.expr.Neg().AddConstant(-1)),
		}
	default:
		// !(e ≡ 0) <=> e ≡ r for some 0 < r < m
		negs := make([]Constraint, 0, c.modulus-1)
		//
		for r := int64(1); r < c.modulus; r++ {
			negs = append(negs, NewCongruence(c.expr, c.modulus, r))
		}
		//
		return negs
	}
}

// status of a constraint after normalisation.
type status uint8

const (
	normal status = iota
	tautology
	contradiction
)

// Normalise a constraint by dividing through by the gcd of its coefficients
// (tightening the constant of inequalities), reducing congruences to their
// simplest form and detecting constraints which are trivially true or false.
func (c Constraint) normalise() (Constraint, status) {
	switch c.kind {
	case Equality:
		return normaliseEquality(c.expr)
	case Inequality:
		return normaliseInequality(c.expr)
	default:
		return normaliseCongruence(c.expr, c.modulus)
	}
}

func normaliseEquality(e affine.Aff) (Constraint, status) {
	g := e.Gcd()
	//
	if g == 0 && e.Constant() == 0 {
		return Constraint{}, tautology
	} else if g == 0 || e.Constant()%g != 0 {
		return Constraint{}, contradiction
	} else if g != 1 {
		e = e.DivExact(g)
	}
	// Canonical sign: leading coefficient positive
	if leadingCoeff(e) < 0 {
		e = e.Neg()
	}
	//
	return NewEquality(e), normal
}

func normaliseInequality(e affine.Aff) (Constraint, status) {
	g := e.Gcd()
	//
	if g == 0 && e.Constant() >= 0 {
		return Constraint{}, tautology
	} else if g == 0 {
		return Constraint{}, contradiction
	} else if g != 1 {
		// Tighten the constant over the integers.
		c := math.FloorDiv(e.Constant(), g)
		e = e.SetConstant(0).DivExact(g).SetConstant(c)
	}
	//
	return NewInequality(e), normal
}

func normaliseCongruence(e affine.Aff, m int64) (Constraint, status) {
	// Reduce all terms into [0,m)
	r := affine.NewAff(e.Len())
	g := m
	//
	for i := range e.Len() {
		c := math.Mod(e.Coeff(i), m)
		r = r.SetCoeff(i, c)
		g = math.Gcd(g, c)
	}
	//
	k := math.Mod(e.Constant(), m)
	// Solvable only if the gcd divides the constant.
	if k%g != 0 {
		return Constraint{}, contradiction
	} else if g == m {
		return Constraint{}, tautology
	}
	//
	r, m = r.SetConstant(k).DivExact(g), m/g
	// Make the leading coefficient one, when it is invertible.
	if inv, ok := math.ModInverse(leadingCoeff(r), m); ok && inv != 1 {
		r = r.Scale(inv)
		// Reduce again
		for i := range r.Len() {
			r = r.SetCoeff(i, math.Mod(r.Coeff(i), m))
		}
		//
		r = r.SetConstant(math.Mod(r.Constant(), m))
	}
	//
	return Constraint{Congruence, r, m}, normal
}

func leadingCoeff(e affine.Aff) int64 {
	for i := range e.Len() {
		if c := e.Coeff(i); c != 0 {
			return c
		}
	}
	//
	return 0
}

// String returns a human readable form of this constraint, given the names of
// columns.
func (c Constraint) String(env func(uint) string) string {
	switch c.kind {
	case Equality:
		return fmt.Sprintf("%s = 0", c.expr.String(env))
	case Inequality:
		return fmt.Sprintf("%s >= 0", c.expr.String(env))
	default:
		return fmt.Sprintf("(%s) mod %d = 0", c.expr.String(env), c.modulus)
	}
}
