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
	"fmt"
	"slices"

	"github.com/j2kun/isl/pkg/ast"
	"github.com/j2kun/isl/pkg/options"
	"github.com/j2kun/isl/pkg/relation"
	log "github.com/sirupsen/logrus"
)

// Config provides configuration options for code generation which are not
// attached to schedule points.
type Config struct {
	// Marks determines whether loops generated under an option are wrapped in
	// a mark node labelled with that option.
	Marks bool
}

// generator holds the state shared across the levels of code generation.
type generator struct {
	params  []string
	depth   uint
	stmts   []*statement
	options options.Map
	config  Config
}

// Generate synthesises a loop nest which executes every statement instance in
// the domain of a schedule, in the lexicographic order of their schedule
// points, under a given context on the parameters.  Loops iterate over the
// schedule dimensions c0, c1, etc.  Options determine, per schedule point and
// level, whether instances are kept in a single loop (atomic) or split into
// separate loops (separate).
func Generate(context relation.Map, schedule relation.UnionMap, opts options.Map, config Config) (ast.Node, error) {
	maps := schedule.Maps()
	//
	if len(maps) == 0 {
		return nil, relation.NewError(relation.EmptyInput, "no schedule")
	} else if cs := context.Space(); cs.Columns() != cs.Dim(relation.Param) {
		return nil, relation.NewError(relation.SpaceMismatch, "context %s is not a parameter set", cs.String())
	}
	//
	params := relation.MergeParams(schedule.Params(), context.Space().Params())
	params = relation.MergeParams(params, opts.UnionMap().Params())
	context = context.AlignParams(params)
	//
	schedule, err := schedule.AlignParams(params).IntersectParams(context)
	if err != nil {
		return nil, err
	}
	//
	g := &generator{params: params, options: opts.AlignParams(params), config: config}
	//
	for i, m := range schedule.Maps() {
		if m.IsSet() {
			return nil, relation.NewError(relation.SpaceMismatch, "schedule %s is not a map", m.Space().String())
		}
		//
		sched := completeSchedule(m.Coalesce())
		g.depth = max(g.depth, sched.Space().Dim(relation.Out))
		g.stmts = append(g.stmts, &statement{m.Space().InTuple().Name, i, m.Space().Range(), sched})
	}
	//
	pieces := make([]piece, len(g.stmts))
	//
	for i, st := range g.stmts {
		st.sched = padSchedule(st.sched, g.depth)
		pieces[i] = piece{st, st.sched}
	}
	//
	log.Debugf("generating %d statements over %d schedule dimensions", len(g.stmts), g.depth)
	//
	nodes, err := g.level(0, context, nil, pieces)
	if err != nil {
		return nil, err
	}
	//
	return ast.NewBlock(nodes...), nil
}

// level generates the nodes for schedule dimension d, given the set of
// schedule prefixes enumerated by the enclosing loops, the expressions for the
// outer dimensions and the statement pieces still to be generated.
func (g *generator) level(d uint, build relation.Map, values []ast.Expr, pieces []piece) ([]ast.Node, error) {
	if d == g.depth {
		return g.leaves(build, values, pieces)
	}
	//
	atoms := g.atoms(d, build, pieces)
	comps := g.components(d, atoms)
	//
	log.Debugf("level %d: %d pieces, %d atoms, %d components", d, len(pieces), len(atoms), len(comps))
	//
	var nodes []ast.Node
	//
	for _, c := range comps {
		node, err := g.component(d, build, values, pieces, c)
		if err != nil {
			return nil, err
		} else if node != nil {
			nodes = append(nodes, node)
		}
	}
	//
	return nodes, nil
}

// component generates a loop (or, for a degenerate dimension, no loop) over
// the region of a component at a given level.
func (g *generator) component(d uint, build relation.Map, values []ast.Expr, pieces []piece,
	c *component) (ast.Node, error) {
	var (
		region = c.region()
		stmts  = c.stmts()
		lifted = extend(build, g.levelSpace(d+1))
		inner  []piece
		vals   = append(slices.Clone(values), nil)
		body   relation.Map
		node   *ast.For
	)
	// Restrict pieces to this component
	for _, p := range pieces {
		if stmts.Contains(p.stmt.index) {
			sched := must(p.sched.IntersectRange(extend(region, g.levelSpace(g.depth))))
			//
			if !sched.IsEmpty() {
				inner = append(inner, piece{p.stmt, sched})
			}
		}
	}
	//
	if len(inner) == 0 {
		return nil, nil
	}
	//
	if v, ok := g.degenerate(d, region); ok {
		vals[d] = expr(v, g.env(vals))
		body = lifted.AddConstraint(relation.Eq(lifted.Space().Var(relation.Out, d), v))
	} else {
		vals[d] = ast.NewId(iterator(d))
		//
		l, err := g.loop(d, region, lifted, g.env(vals))
		if err != nil {
			return nil, err
		}
		//
		node = &ast.For{Iterator: iterator(d), Lower: l.lower, Upper: l.upper, Stride: l.stride}
		body = l.build
	}
	// Hoist the guard of a single statement
	var cond ast.Expr
	//
	if stmts.Size() == 1 {
		cond, body = g.guard(region, body, g.env(vals))
	}
	//
	nodes, err := g.level(d+1, body, vals, inner)
	if err != nil {
		return nil, err
	} else if len(nodes) == 0 {
		return nil, nil
	}
	//
	var result = ast.NewBlock(nodes...)
	//
	if cond != nil {
		result = &ast.If{Cond: cond, Then: result}
	}
	//
	if node != nil {
		node.Body = result
		result = node
	}
	//
	if tag := c.tag(); g.config.Marks && tag != "" && node != nil {
		result = &ast.Mark{Label: tag, Child: result}
	}
	//
	return result, nil
}

// active returns the schedule points (over the padded schedule space) on which
// a given tag applies at a given level for a given statement.
func (g *generator) active(tag options.Tag, d uint, st *statement) relation.Map {
	return extend(g.options.Active(tag, d, st.rng), g.levelSpace(g.depth))
}

// prefix projects a statement schedule onto the first d schedule dimensions.
func (g *generator) prefix(sched relation.Map, d uint) relation.Map {
	return sched.ProjectRange().ProjectOut(relation.Out, d, g.depth-d)
}

// levelSpace returns the set space of schedule prefixes of length d.
func (g *generator) levelSpace(d uint) relation.Space {
	return relation.NewSetSpace(g.params, relation.AnonTuple("c", d))
}

// env returns the expressions for the columns of a schedule prefix space,
// given the expressions for the schedule dimensions.
func (g *generator) env(values []ast.Expr) []ast.Expr {
	env := make([]ast.Expr, 0, len(g.params)+len(values))
	//
	for _, p := range g.params {
		env = append(env, ast.NewId(p))
	}
	//
	return append(env, values...)
}

func iterator(d uint) string {
	return fmt.Sprintf("c%d", d)
}
