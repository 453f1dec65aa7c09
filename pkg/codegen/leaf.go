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
	"cmp"
	"slices"

	"github.com/j2kun/isl/pkg/affine"
	"github.com/j2kun/isl/pkg/ast"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/j2kun/isl/pkg/util/math"
)

// leaves generates the statement instances executed at a fully enumerated
// schedule point.  Statements are executed in schedule order, each guarded by
// whatever part of its schedule is not implied by the enclosing loops.
func (g *generator) leaves(build relation.Map, values []ast.Expr, pieces []piece) ([]ast.Node, error) {
	var (
		env    = g.env(values)
		order  []*statement
		scheds = make(map[int]relation.Map)
		nodes  []ast.Node
	)
	//
	for _, p := range pieces {
		if s, ok := scheds[p.stmt.index]; ok {
			scheds[p.stmt.index] = must(s.Union(p.sched))
		} else {
			scheds[p.stmt.index] = p.sched
			order = append(order, p.stmt)
		}
	}
	//
	slices.SortFunc(order, func(l, r *statement) int { return cmp.Compare(l.index, r.index) })
	//
	for _, st := range order {
		sched := scheds[st.index].Coalesce()
		cond, body := g.guard(sched.ProjectRange(), build, env)
		//
		args, err := g.resolve(sched, body, env)
		if err != nil {
			return nil, err
		}
		//
		var node ast.Node = &ast.User{Name: st.name, Args: args}
		//
		if cond != nil {
			node = &ast.If{Cond: cond, Then: node}
		}
		//
		nodes = append(nodes, node)
	}
	//
	return nodes, nil
}

// resolve determines an expression over the parameters and schedule
// dimensions for each domain dimension of a statement, given the schedule
// points at which it executes.
func (g *generator) resolve(sched relation.Map, build relation.Map, env []ast.Expr) ([]ast.Expr, error) {
	var (
		space   = sched.Space()
		np      = space.Dim(relation.Param)
		nin     = space.Dim(relation.In)
		wrapped = sched.Wrap()
		mapping = make([]uint, build.Space().Columns())
		args    = make([]ast.Expr, nin)
	)
	//
	for i := range mapping {
		if uint(i) < np {
			mapping[i] = uint(i)
		} else {
			mapping[i] = uint(i) + nin
		}
	}
	//
	wrapped = must(wrapped.Intersect(build.Remap(wrapped.Space(), mapping)))
	// Column np holds the dimension being resolved
	envj := slices.Insert(slices.Clone(env), int(np), nil)
	//
	for j := range nin {
		m := wrapped.ProjectOut(relation.Out, j+1, nin-j-1).ProjectOut(relation.Out, 0, j).Coalesce()
		//
		arg, err := resolveDim(m, np, envj)
		if err != nil {
			return nil, relation.NewError(relation.NonAffineSchedule, "%s dimension %s: %s",
				space.InTuple().Name, space.InTuple().Dims[j], err.Error())
		}
		//
		args[j] = arg
	}
	//
	return args, nil
}

func resolveDim(m relation.Map, col uint, env []ast.Expr) (ast.Expr, error) {
	var result ast.Expr
	//
	for _, b := range m.Basics() {
		e, ok := resolveBasic(b, col, env)
		//
		if !ok {
			return nil, relation.NewError(relation.NonAffineSchedule, "no affine expression")
		} else if result != nil && !ast.Equal(result, e) {
			return nil, relation.NewError(relation.NonAffineSchedule, "%s differs from %s", e, result)
		}
		//
		result = e
	}
	//
	if result == nil {
		return nil, relation.NewError(relation.NonAffineSchedule, "no instances")
	}
	//
	return result, nil
}

// resolveBasic determines the unique value of a column within a basic set,
// either from an equality or from a congruence whose residues are confined to
// a window of at most one period.
func resolveBasic(b relation.Basic, col uint, env []ast.Expr) (ast.Expr, bool) {
	cons := b.Constraints()
	//
	for _, c := range cons {
		a, f := c.Expr().Coeff(col), c.Expr().SetCoeff(col, 0)
		//
		if c.Kind() != relation.Equality || a == 0 {
			continue
		} else if a < 0 {
			a = -a
		} else {
			f = f.Neg()
		}
		//
		if a == 1 {
			return expr(f, env), true
		}
		//
		return ast.NewOp(ast.Div, expr(f, env), ast.NewInt(a)), true
	}
	//
	for _, c := range cons {
		a := c.Expr().Coeff(col)
		//
		if c.Kind() != relation.Congruence || a == 0 {
			continue
		}
		//
		m := c.Modulus()
		//
		inv, ok := math.ModInverse(a, m)
		if !ok {
			continue
		}
		//
		r := reduce(c.Expr().SetCoeff(col, 0).Neg().Scale(inv), m)
		//
		if lb, ok := window(cons, col, m); ok {
			return offset(expr(lb, env), &lb, r, m, env), true
		}
	}
	//
	return nil, false
}

// window finds a unit lower bound L on a column together with a unit upper
// bound no more than m-1 above it, returning L.
func window(cons []relation.Constraint, col uint, m int64) (lb affine.Aff, ok bool) {
	for _, l := range cons {
		if l.Kind() != relation.Inequality || l.Expr().Coeff(col) != 1 {
			continue
		}
		//
		for _, u := range cons {
			if u.Kind() != relation.Inequality || u.Expr().Coeff(col) != -1 {
				continue
			}
			// (x + f) + (-x + h) = h - L
			if w := l.Expr().Add(u.Expr()); w.IsConstant() && w.Constant() < m {
				return l.Expr().SetCoeff(col, 0).Neg(), true
			}
		}
	}
	//
	return affine.Aff{}, false
}
