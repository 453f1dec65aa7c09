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
	"github.com/j2kun/isl/pkg/affine"
	"github.com/j2kun/isl/pkg/ast"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/j2kun/isl/pkg/util/math"
)

// expr converts an affine expression into an AST expression, where env gives
// the expression for each column.
func expr(a affine.Aff, env []ast.Expr) ast.Expr {
	var terms []ast.Expr
	//
	for i, c := range a.Coeffs() {
		if c != 0 {
			terms = append(terms, ast.NewMul(c, env[i]))
		}
	}
	//
	return ast.NewAdd(append(terms, ast.NewInt(a.Constant()))...)
}

// sides splits an expression e into two expressions l and r such that e =
// l - r, where l holds the terms with positive coefficients.
func sides(e affine.Aff, env []ast.Expr) (ast.Expr, ast.Expr, bool) {
	var (
		pos = affine.NewAff(e.Len())
		neg = affine.NewAff(e.Len())
	)
	//
	for i, c := range e.Coeffs() {
		if c > 0 {
			pos = pos.SetCoeff(uint(i), c)
		} else if c < 0 {
			neg = neg.SetCoeff(uint(i), -c)
		}
	}
	//
	if pos.IsConstant() {
		// Variables on the left
		return expr(neg, env), expr(pos.SetConstant(e.Constant()), env), true
	}
	//
	return expr(pos, env), expr(neg.SetConstant(-e.Constant()), env), false
}

// condition converts a constraint into a condition.
func condition(c relation.Constraint, env []ast.Expr) ast.Expr {
	e := c.Expr()
	//
	switch c.Kind() {
	case relation.Equality:
		l, r, _ := sides(e, env)
		return ast.NewOp(ast.Eq, l, r)
	case relation.Inequality:
		l, r, flipped := sides(e, env)
		//
		if flipped {
			return ast.NewOp(ast.Le, l, r)
		}
		//
		return ast.NewOp(ast.Ge, l, r)
	default:
		m := c.Modulus()
		r := math.Mod(-e.Constant(), m)
		//
		return ast.NewOp(ast.Eq, ast.NewOp(ast.PMod, expr(e.SetConstant(0), env), ast.NewInt(m)), ast.NewInt(r))
	}
}

// ceilDiv returns the expression ceil(e / k) for positive k.
func ceilDiv(e affine.Aff, k int64, env []ast.Expr) ast.Expr {
	if k == 1 {
		return expr(e, env)
	} else if e.IsConstant() {
		return ast.NewInt(math.CeilDiv(e.Constant(), k))
	}
	//
	return ast.NewOp(ast.FDiv, expr(e.AddConstant(k-1), env), ast.NewInt(k))
}

// floorDiv returns the expression floor(e / k) for positive k.
func floorDiv(e affine.Aff, k int64, env []ast.Expr) ast.Expr {
	if k == 1 {
		return expr(e, env)
	} else if e.IsConstant() {
		return ast.NewInt(math.FloorDiv(e.Constant(), k))
	}
	//
	return ast.NewOp(ast.FDiv, expr(e, env), ast.NewInt(k))
}

// reduce every coefficient and the constant of an expression modulo m.  The
// result agrees with the original modulo m at every point.
func reduce(e affine.Aff, m int64) affine.Aff {
	r := affine.NewAff(e.Len())
	//
	for i, c := range e.Coeffs() {
		r = r.SetCoeff(uint(i), math.Mod(c, m))
	}
	//
	return r.SetConstant(math.Mod(e.Constant(), m))
}

// offset returns the expression lb + ((r - lb) mod m), i.e. the smallest value
// no less than lb which is congruent to r modulo m.
func offset(lb ast.Expr, lbAff *affine.Aff, r affine.Aff, m int64, env []ast.Expr) ast.Expr {
	if lbAff != nil {
		d := reduce(r.Sub(*lbAff), m)
		//
		if d.IsConstant() {
			return ast.NewAdd(lb, ast.NewInt(d.Constant()))
		}
		//
		return ast.NewAdd(lb, ast.NewOp(ast.PMod, expr(d, env), ast.NewInt(m)))
	} else if c, ok := lb.(*ast.Int); ok && r.IsConstant() {
		return ast.NewInt(c.Value + math.Mod(r.Constant()-c.Value, m))
	}
	//
	return ast.NewAdd(lb, ast.NewOp(ast.PMod, ast.NewSub(expr(r, env), lb), ast.NewInt(m)))
}
