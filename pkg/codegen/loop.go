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

	"github.com/j2kun/isl/pkg/affine"
	"github.com/j2kun/isl/pkg/ast"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/j2kun/isl/pkg/util/math"
)

// loop describes the bounds of a loop generated for a component.
type loop struct {
	lower  ast.Expr
	upper  ast.Expr
	stride int64
	// Set of schedule prefixes enumerated by this loop.
	build relation.Map
}

// stride describes a congruence c ≡ offset (mod modulus) on a loop iterator.
type stride struct {
	modulus int64
	offset  affine.Aff
}

// loop determines the bounds and stride of the loop at a given level over a
// region.  Where the region consists of several pieces, their bounds are
// merged with min/max.  Pieces with different strides share a loop over the
// gcd of their strides.
func (g *generator) loop(d uint, region relation.Map, lifted relation.Map, env []ast.Expr) (*loop, error) {
	var (
		space   = g.levelSpace(d + 1)
		col     = uint(len(g.params)) + d
		lowers  []ast.Expr
		uppers  []ast.Expr
		lcons   [][]relation.Constraint
		ucons   [][]relation.Constraint
		strides []stride
		lbAffs  []affine.Aff
	)
	//
	for _, b := range region.Basics() {
		lo, up, rest := splitBounds(b.Constraints(), col)
		lo = irredundant(lo, slices.Concat(rest, up), lifted)
		up = irredundant(up, slices.Concat(rest, lo), lifted)
		//
		if len(lo) == 0 || len(up) == 0 {
			return nil, relation.NewError(relation.NonAffineSchedule, "unbounded schedule dimension c%d", d)
		}
		//
		var los, ups []ast.Expr
		//
		for _, c := range lo {
			a, f := c.Expr().Coeff(col), c.Expr().SetCoeff(col, 0)
			los = append(los, ceilDiv(f.Neg(), a, env))
			//
			if a == 1 {
				lbAffs = append(lbAffs, f.Neg())
			}
		}
		//
		for _, c := range up {
			a, f := c.Expr().Coeff(col), c.Expr().SetCoeff(col, 0)
			ups = append(ups, floorDiv(f, -a, env))
		}
		//
		lowers = append(lowers, ast.NewMinMax(ast.Max, los...))
		uppers = append(uppers, ast.NewMinMax(ast.Min, ups...))
		lcons, ucons = append(lcons, lo), append(ucons, up)
		strides = append(strides, findStride(rest, col))
	}
	//
	var (
		st    = mergeStrides(strides)
		lower = ast.NewMinMax(ast.Min, lowers...)
		upper = ast.NewMinMax(ast.Max, uppers...)
		build = relation.EmptyMap(space)
	)
	// Points enumerated by the loop
	for _, lo := range lcons {
		for _, up := range ucons {
			piece := lifted
			//
			for _, c := range slices.Concat(lo, up) {
				piece = piece.AddConstraint(c)
			}
			//
			build = must(build.Union(piece))
		}
	}
	//
	if st.modulus > 1 {
		c := space.Var(relation.Out, d).Sub(st.offset)
		build = build.AddConstraint(relation.NewCongruence(c, st.modulus, 0))
		// Align the lower bound with the stride
		if len(lbAffs) == 1 && len(lcons) == 1 && len(lcons[0]) == 1 {
			lower = offset(lower, &lbAffs[0], st.offset, st.modulus, env)
		} else {
			lower = offset(lower, nil, st.offset, st.modulus, env)
		}
	}
	//
	return &loop{lower, upper, st.modulus, build.Coalesce()}, nil
}

// splitBounds splits a set of constraints into the lower bounds and upper
// bounds on a given column, and the remainder.  Equalities on the column
// contribute both a lower and an upper bound.
func splitBounds(cons []relation.Constraint, col uint) ([]relation.Constraint, []relation.Constraint,
	[]relation.Constraint) {
	var lower, upper, rest []relation.Constraint
	//
	for _, c := range cons {
		var (
			e = c.Expr()
			a = e.Coeff(col)
		)
		//
		switch {
		case a == 0 || c.Kind() == relation.Congruence:
			rest = append(rest, c)
		case c.Kind() == relation.Equality && a > 0:
			lower = append(lower, relation.NewInequality(e))
			upper = append(upper, relation.NewInequality(e.Neg()))
		case c.Kind() == relation.Equality:
			lower = append(lower, relation.NewInequality(e.Neg()))
			upper = append(upper, relation.NewInequality(e))
		case a > 0:
			lower = append(lower, c)
		default:
			upper = append(upper, c)
		}
	}
	//
	return lower, upper, rest
}

// irredundant removes those bounds which are implied by the remaining bounds,
// the other constraints and the enclosing build.
func irredundant(bounds []relation.Constraint, others []relation.Constraint, build relation.Map) []relation.Constraint {
	kept := slices.Clone(bounds)
	//
	for i := 0; i < len(kept); {
		ctx := build
		//
		for _, c := range others {
			ctx = ctx.AddConstraint(c)
		}
		//
		for j, c := range kept {
			if j != i {
				ctx = ctx.AddConstraint(c)
			}
		}
		//
		if implied(ctx, kept[i]) {
			kept = append(kept[:i], kept[i+1:]...)
		} else {
			i++
		}
	}
	//
	return kept
}

// findStride looks for a congruence a*c + f ≡ 0 (mod m) on a given column with
// a invertible modulo m, giving c ≡ -f/a (mod m).
func findStride(cons []relation.Constraint, col uint) stride {
	for _, c := range cons {
		if c.Kind() != relation.Congruence || c.Expr().Coeff(col) == 0 {
			continue
		}
		//
		m := c.Modulus()
		//
		if inv, ok := math.ModInverse(c.Expr().Coeff(col), m); ok {
			f := c.Expr().SetCoeff(col, 0)
			return stride{m, reduce(f.Neg().Scale(inv), m)}
		}
	}
	//
	return stride{1, affine.NewAff(0)}
}

// mergeStrides determines a single stride for a loop over several pieces.
// When all pieces agree, their stride is used.  Otherwise, the gcd of their
// strides is used provided the offsets agree modulo the gcd, with guards
// enforcing the original strides.  Failing that, the loop has unit stride.
func mergeStrides(strides []stride) stride {
	m := strides[0].modulus
	//
	for _, s := range strides[1:] {
		m = math.Gcd(m, s.modulus)
	}
	//
	if m == 1 {
		return stride{1, affine.NewAff(0)}
	}
	//
	r := reduce(strides[0].offset, m)
	//
	for _, s := range strides[1:] {
		if !reduce(s.offset, m).Equal(r) {
			return stride{1, affine.NewAff(0)}
		}
	}
	//
	return stride{m, r}
}

// guard determines the condition under which a region holds within a build,
// i.e. the constraints of the region not already implied by the build.  This
// returns nil when no guard is required, along with the refined build.
func (g *generator) guard(region relation.Map, build relation.Map, env []ast.Expr) (ast.Expr, relation.Map) {
	if must(build.IsSubset(region)) {
		return nil, build
	}
	//
	var disjuncts []ast.Expr
	//
	for _, b := range region.Basics() {
		var conjuncts []ast.Expr
		//
		for _, c := range b.Constraints() {
			if !implied(build, c) {
				conjuncts = append(conjuncts, condition(c, env))
			}
		}
		//
		disjuncts = append(disjuncts, ast.NewAnd(conjuncts...))
	}
	//
	return ast.NewOr(disjuncts...), must(build.Intersect(region)).Coalesce()
}

// implied determines whether a constraint holds at every point of a relation.
func implied(m relation.Map, c relation.Constraint) bool {
	for _, b := range m.Basics() {
		if !b.Implies(c) {
			return false
		}
	}
	//
	return true
}

// degenerate determines whether a region fixes the value of the dimension at
// a given level to an affine expression of the outer dimensions.
func (g *generator) degenerate(d uint, region relation.Map) (affine.Aff, bool) {
	var (
		space  = region.Space()
		col    = uint(len(g.params)) + d
		basics = region.Basics()
	)
	//
	if len(basics) == 0 {
		return affine.Aff{}, false
	}
	//
	for _, c := range basics[0].Constraints() {
		a := c.Expr().Coeff(col)
		//
		if c.Kind() != relation.Equality || (a != 1 && a != -1) {
			continue
		}
		//
		v := c.Expr().SetCoeff(col, 0).Scale(-a)
		fixed := relation.FromConstraints(space, relation.Eq(space.Var(relation.Out, d), v))
		//
		if must(region.IsSubset(fixed)) {
			return v, true
		}
	}
	//
	return affine.Aff{}, false
}
