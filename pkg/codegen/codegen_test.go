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
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/j2kun/isl/pkg/ast"
	"github.com/j2kun/isl/pkg/options"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/j2kun/isl/pkg/util/math"
)

func Test_Generate_01(t *testing.T) {
	// S[i] -> [i] : 0 <= i <= 7
	sched := relation.FromMap(simple("S", 0, 7, 1, 0))
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	loop, ok := root.(*ast.For)
	if !ok {
		t.Fatalf("expected loop, got %T", root)
	}
	//
	checkString(t, "lower", loop.Lower, "0")
	checkString(t, "upper", loop.Upper, "7")
	//
	if loop.Stride != 1 {
		t.Errorf("expected unit stride, got %d", loop.Stride)
	}
	//
	user, ok := loop.Body.(*ast.User)
	if !ok {
		t.Fatalf("expected user statement, got %T", loop.Body)
	}
	//
	checkString(t, "call", user.Expr(), "S(c0)")
	checkExecute(t, root, sched, nil)
}

func Test_Generate_02(t *testing.T) {
	// [N] -> S[i] -> [i] : 0 <= i < N, with N >= 1
	var (
		s  = relation.NewMapSpace([]string{"N"}, relation.NewTuple("S", "i"), relation.AnonTuple("t", 1))
		i  = s.Var(relation.In, 0)
		n  = s.Var(relation.Param, 0)
		cs = relation.NewParamSpace("N")
	)
	//
	sched := relation.FromMap(relation.FromConstraints(s, relation.Eq(s.Var(relation.Out, 0), i),
		relation.Ge(i, s.Const(0)), relation.Lt(i, n)))
	context := relation.FromConstraints(cs, relation.Ge(cs.Var(relation.Param, 0), cs.Const(1)))
	root := generate(t, &context, sched, options.Config{}, Config{})
	//
	loop := root.(*ast.For)
	checkString(t, "upper", loop.Upper, "N - 1")
	//
	for v := int64(1); v <= 6; v++ {
		checkExecute(t, root, sched, ast.Env{"N": v})
	}
}

func Test_Generate_03(t *testing.T) {
	// Overlapping statements share one loop by default
	sched := twoStatements()
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	checkLoops(t, root, 1)
	checkExecute(t, root, sched, nil)
}

func Test_Generate_04(t *testing.T) {
	// Separation splits the overlap into its own loop
	sched := twoStatements()
	root := generate(t, nil, sched, options.Config{Separate: true}, Config{})
	//
	checkLoops(t, root, 3)
	checkExecute(t, root, sched, nil)
	// Loops contain no guards
	if n := ast.Count[*ast.If](root); n != 0 {
		t.Errorf("expected no guards, found %d", n)
	}
}

func Test_Generate_05(t *testing.T) {
	// Atomic wins over separate when both are requested
	sched := twoStatements()
	root := generate(t, nil, sched, options.Config{Atomic: true, Separate: true}, Config{})
	// One loop per level, with guards choosing the statement
	checkLoops(t, root, 2)
	//
	if n := ast.Count[*ast.If](root); n != 2 {
		t.Errorf("expected 2 guards, found %d", n)
	}
	checkExecute(t, root, sched, nil)
	// Separate wins when registered last
	root = generate(t, nil, sched, options.Config{Atomic: true, Separate: true,
		Order: []options.Tag{options.Atomic, options.Separate}}, Config{})
	//
	checkLoops(t, root, 3)
	checkExecute(t, root, sched, nil)
}

func Test_Generate_06(t *testing.T) {
	// S[i] -> [2i + 1] : 0 <= i <= 5
	sched := relation.FromMap(simple("S", 0, 5, 2, 1))
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	loop := root.(*ast.For)
	//
	if loop.Stride != 2 {
		t.Errorf("expected stride 2, got %d", loop.Stride)
	}
	//
	checkString(t, "lower", loop.Lower, "1")
	checkString(t, "upper", loop.Upper, "11")
	checkExecute(t, root, sched, nil)
}

func Test_Generate_07(t *testing.T) {
	// Different strides over overlapping ranges share one loop
	sched := relation.FromMap(simple("S", 0, 5, 2, 0)).Add(simple("T", 0, 3, 3, 0))
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	checkLoops(t, root, 1)
	//
	if loop := root.(*ast.For); loop.Stride != 1 {
		t.Errorf("expected unit stride, got %d", loop.Stride)
	}
	//
	checkExecute(t, root, sched, nil)
}

func Test_Generate_08(t *testing.T) {
	// Strides agreeing modulo their gcd keep that stride
	sched := relation.FromMap(simple("S", 0, 5, 4, 0)).Add(simple("T", 0, 5, 2, 0))
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	if loop := root.(*ast.For); loop.Stride != 2 {
		t.Errorf("expected stride 2, got %d", loop.Stride)
	}
	//
	checkExecute(t, root, sched, nil)
}

func Test_Generate_09(t *testing.T) {
	// S[i,j] -> [i] : 0 <= i,j <= 2 is completed with j
	var (
		s = relation.NewMapSpace(nil, relation.NewTuple("S", "i", "j"), relation.AnonTuple("t", 1))
		i = s.Var(relation.In, 0)
		j = s.Var(relation.In, 1)
	)
	//
	sched := relation.FromMap(relation.FromConstraints(s, relation.Eq(s.Var(relation.Out, 0), i),
		relation.Ge(i, s.Const(0)), relation.Le(i, s.Const(2)),
		relation.Ge(j, s.Const(0)), relation.Le(j, s.Const(2))))
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	checkLoops(t, root, 2)
	checkExecute(t, root, sched, nil)
}

func Test_Generate_10(t *testing.T) {
	// Triangular domain S[i,j] -> [i,j] : 0 <= j <= i <= 5
	var (
		s = relation.NewMapSpace(nil, relation.NewTuple("S", "i", "j"), relation.AnonTuple("t", 2))
		i = s.Var(relation.In, 0)
		j = s.Var(relation.In, 1)
	)
	//
	sched := relation.FromMap(relation.FromConstraints(s,
		relation.Eq(s.Var(relation.Out, 0), i), relation.Eq(s.Var(relation.Out, 1), j),
		relation.Ge(j, s.Const(0)), relation.Le(j, i), relation.Le(i, s.Const(5))))
	root := generate(t, nil, sched, options.Config{}, Config{})
	//
	inner := root.(*ast.For).Body.(*ast.For)
	checkString(t, "upper", inner.Upper, "c0")
	checkExecute(t, root, sched, nil)
}

func Test_Generate_11(t *testing.T) {
	// Halevi-Shoup diagonal packing
	var (
		s    = relation.NewMapSpace(nil, relation.NewTuple("S", "row", "col", "ct", "slot"), relation.AnonTuple("t", 2))
		row  = s.Var(relation.In, 0)
		col  = s.Var(relation.In, 1)
		ct   = s.Var(relation.In, 2)
		slot = s.Var(relation.In, 3)
	)
	//
	m := relation.FromConstraints(s,
		relation.Eq(s.Var(relation.Out, 0), ct), relation.Eq(s.Var(relation.Out, 1), slot),
		relation.Ge(row, s.Const(0)), relation.Lt(row, s.Const(4)),
		relation.Ge(col, s.Const(0)), relation.Lt(col, s.Const(8)),
		relation.Ge(ct, s.Const(0)), relation.Lt(ct, s.Const(4)),
		relation.Ge(slot, s.Const(0)), relation.Lt(slot, s.Const(32)),
		relation.NewCongruence(slot.Sub(row), 4, 0),
		relation.NewCongruence(ct.Add(slot).Sub(col), 8, 0))
	root := generate(t, nil, relation.FromMap(m), options.Config{}, Config{})
	//
	checkLoops(t, root, 2)
	// Brute force reference
	var expected []string
	//
	for c := range int64(4) {
		for sl := range int64(32) {
			for r := range int64(4) {
				for cl := range int64(8) {
					if (sl-r)%4 == 0 && (c+sl-cl)%8 == 0 {
						expected = append(expected, instance("S", []int64{r, cl, c, sl}))
					}
				}
			}
		}
	}
	//
	checkTrace(t, root, nil, expected)
}

func Test_Generate_12(t *testing.T) {
	// Marks record the option under which loops were generated
	sched := twoStatements()
	root := generate(t, nil, sched, options.Config{Separate: true}, Config{Marks: true})
	//
	if n := ast.Count[*ast.Mark](root); n != 3 {
		t.Errorf("expected 3 marks, found %d", n)
	}
	//
	for _, n := range root.Children() {
		if m, ok := n.(*ast.Mark); !ok || m.Label != "separate" {
			t.Errorf("expected separate mark, got %v", n)
		}
	}
	//
	checkExecute(t, root, sched, nil)
}

func Test_Generate_13(t *testing.T) {
	// Statements at distinct points of the same loop run in schedule order
	var (
		s = relation.NewMapSpace(nil, relation.NewTuple("S", "i"), relation.AnonTuple("t", 2))
		u = relation.NewMapSpace(nil, relation.NewTuple("T", "i"), relation.AnonTuple("t", 2))
	)
	//
	sched := relation.FromMap(relation.FromConstraints(s,
		relation.Eq(s.Var(relation.Out, 0), s.Var(relation.In, 0)), relation.Eq(s.Var(relation.Out, 1), s.Const(1)),
		relation.Ge(s.Var(relation.In, 0), s.Const(0)), relation.Le(s.Var(relation.In, 0), s.Const(4))))
	sched = sched.Add(relation.FromConstraints(u,
		relation.Eq(u.Var(relation.Out, 0), u.Var(relation.In, 0).AddConstant(1)), relation.Eq(u.Var(relation.Out, 1), u.Const(0)),
		relation.Ge(u.Var(relation.In, 0), u.Const(0)), relation.Le(u.Var(relation.In, 0), u.Const(4))))
	//
	for _, cfg := range []options.Config{{}, {Separate: true}, {Atomic: true}} {
		checkExecute(t, generate(t, nil, sched, cfg, Config{}), sched, nil)
	}
}

func Test_Generate_14(t *testing.T) {
	// A single statement separated everywhere is a single loop
	sched := relation.FromMap(simple("S", 0, 3, 1, 0))
	root := generate(t, nil, sched, options.Config{Separate: true}, Config{})
	//
	if _, ok := root.(*ast.For); !ok {
		t.Fatalf("expected loop, got %T", root)
	}
	//
	checkLoops(t, root, 1)
	//
	if n := ast.Count[*ast.If](root); n != 0 {
		t.Errorf("expected no guards, found %d", n)
	}
	//
	checkExecute(t, root, sched, nil)
}

func Test_Generate_15(t *testing.T) {
	// [N] -> S[i] -> [i+2, 0] : 2 <= i <= N and T[i] -> [2i+2, 1] : 1 <= i <= N+1, i = 0 mod 3
	var (
		s = relation.NewMapSpace([]string{"N"}, relation.NewTuple("S", "i"), relation.AnonTuple("t", 2))
		u = relation.NewMapSpace([]string{"N"}, relation.NewTuple("T", "i"), relation.AnonTuple("t", 2))
		i = s.Var(relation.In, 0)
		n = s.Var(relation.Param, 0)
		k = u.Var(relation.In, 0)
		m = u.Var(relation.Param, 0)
	)
	//
	sched := relation.FromMap(relation.FromConstraints(s,
		relation.Eq(s.Var(relation.Out, 0), i.AddConstant(2)), relation.Eq(s.Var(relation.Out, 1), s.Const(0)),
		relation.Ge(i, s.Const(2)), relation.Le(i, n)))
	sched = sched.Add(relation.FromConstraints(u,
		relation.Eq(u.Var(relation.Out, 0), k.Scale(2).AddConstant(2)), relation.Eq(u.Var(relation.Out, 1), u.Const(1)),
		relation.Ge(k, u.Const(1)), relation.Le(k, m.AddConstant(1)), relation.NewCongruence(k, 3, 0)))
	//
	for _, cfg := range []options.Config{{}, {Separate: true}, {Atomic: true}} {
		root := generate(t, nil, sched, cfg, Config{})
		//
		for v := int64(0); v <= 8; v++ {
			checkExecute(t, root, sched, ast.Env{"N": v})
		}
	}
}

func Test_Generate_16(t *testing.T) {
	// Two-dimensional statements with congruences under every option:
	// S[i,j] -> [3i, i+j] : 0 <= i,j <= 5, i+j = 1 mod 4
	// T[i,j] -> [3i+1, j] : 0 <= i,j <= 4, j = 0 mod 2
	var (
		s = relation.NewMapSpace(nil, relation.NewTuple("S", "i", "j"), relation.AnonTuple("t", 2))
		u = relation.NewMapSpace(nil, relation.NewTuple("T", "i", "j"), relation.AnonTuple("t", 2))
		i = s.Var(relation.In, 0)
		j = s.Var(relation.In, 1)
		k = u.Var(relation.In, 0)
		l = u.Var(relation.In, 1)
	)
	//
	sched := relation.FromMap(relation.FromConstraints(s,
		relation.Eq(s.Var(relation.Out, 0), i.Scale(3)), relation.Eq(s.Var(relation.Out, 1), i.Add(j)),
		relation.Ge(i, s.Const(0)), relation.Le(i, s.Const(5)),
		relation.Ge(j, s.Const(0)), relation.Le(j, s.Const(5)),
		relation.NewCongruence(i.Add(j), 4, 1)))
	sched = sched.Add(relation.FromConstraints(u,
		relation.Eq(u.Var(relation.Out, 0), k.Scale(3).AddConstant(1)), relation.Eq(u.Var(relation.Out, 1), l),
		relation.Ge(k, u.Const(0)), relation.Le(k, u.Const(4)),
		relation.Ge(l, u.Const(0)), relation.Le(l, u.Const(4)),
		relation.NewCongruence(l, 2, 0)))
	//
	for _, cfg := range []options.Config{{}, {Separate: true}, {Atomic: true}, {Atomic: true, Separate: true}} {
		checkExecute(t, generate(t, nil, sched, cfg, Config{}), sched, nil)
	}
	// The first statement alone
	single := relation.FromMap(sched.Maps()[0])
	//
	for _, cfg := range []options.Config{{}, {Atomic: true}} {
		checkExecute(t, generate(t, nil, single, cfg, Config{}), single, nil)
	}
}

func Test_Generate_Error_01(t *testing.T) {
	checkError(t, nil, relation.NewUnionMap(), relation.ErrEmptyInput)
}

func Test_Generate_Error_02(t *testing.T) {
	// A set is not a schedule
	s := relation.NewSetSpace(nil, relation.NewTuple("S", "i"))
	checkError(t, nil, relation.FromMap(relation.Universe(s)), relation.ErrSpaceMismatch)
	// Context must be a parameter set
	context := relation.Universe(s)
	checkError(t, &context, relation.FromMap(simple("S", 0, 3, 1, 0)), relation.ErrSpaceMismatch)
}

func Test_Generate_Error_03(t *testing.T) {
	// S[i] -> [i] : i >= 0 is unbounded
	s := relation.NewMapSpace(nil, relation.NewTuple("S", "i"), relation.AnonTuple("t", 1))
	m := relation.FromConstraints(s, relation.Eq(s.Var(relation.Out, 0), s.Var(relation.In, 0)),
		relation.Ge(s.Var(relation.In, 0), s.Const(0)))
	//
	checkError(t, nil, relation.FromMap(m), relation.ErrNonAffineSchedule)
}

// ============================================================================
// Helpers
// ============================================================================

// simple constructs the schedule name[i] -> [k*i + c] : lo <= i <= hi.
func simple(name string, lo, hi, k, c int64) relation.Map {
	var (
		s = relation.NewMapSpace(nil, relation.NewTuple(name, "i"), relation.AnonTuple("t", 1))
		i = s.Var(relation.In, 0)
	)
	//
	return relation.FromConstraints(s, relation.Eq(s.Var(relation.Out, 0), i.Scale(k).AddConstant(c)),
		relation.Ge(i, s.Const(lo)), relation.Le(i, s.Const(hi)))
}

// S[i] -> [i,0] : 0 <= i <= 3 and T[i] -> [i,1] : 2 <= i <= 5
func twoStatements() relation.UnionMap {
	var sched = relation.NewUnionMap()
	//
	for k, name := range []string{"S", "T"} {
		var (
			s  = relation.NewMapSpace(nil, relation.NewTuple(name, "i"), relation.AnonTuple("t", 2))
			i  = s.Var(relation.In, 0)
			lo = int64(2 * k)
		)
		//
		sched = sched.Add(relation.FromConstraints(s,
			relation.Eq(s.Var(relation.Out, 0), i), relation.Eq(s.Var(relation.Out, 1), s.Const(int64(k))),
			relation.Ge(i, s.Const(lo)), relation.Le(i, s.Const(lo+3))))
	}
	//
	return sched
}

func generate(t *testing.T, context *relation.Map, sched relation.UnionMap, cfg options.Config,
	config Config) ast.Node {
	t.Helper()
	//
	root, err := tryGenerate(context, sched, cfg, config)
	if err != nil {
		t.Fatal(err)
	}
	//
	return root
}

func tryGenerate(context *relation.Map, sched relation.UnionMap, cfg options.Config, config Config) (ast.Node, error) {
	opts, err := options.Merge(options.Empty(), cfg, sched)
	if err != nil {
		return nil, err
	}
	//
	ctx := relation.Universe(relation.NewParamSpace(sched.Params()...))
	if context != nil {
		ctx = *context
	}
	//
	return Generate(ctx, sched, opts, config)
}

func checkError(t *testing.T, context *relation.Map, sched relation.UnionMap, expected error) {
	t.Helper()
	//
	if _, err := tryGenerate(context, sched, options.Config{}, Config{}); !errors.Is(err, expected) {
		t.Errorf("expected %v, got %v", expected, err)
	}
}

func checkString(t *testing.T, what string, e ast.Expr, expected string) {
	t.Helper()
	//
	if actual := e.String(); actual != expected {
		t.Errorf("%s: expected %s, got %s", what, expected, actual)
	}
}

func checkLoops(t *testing.T, root ast.Node, expected uint) {
	t.Helper()
	//
	if n := ast.Count[*ast.For](root); n != expected {
		t.Errorf("expected %d loops, found %d", expected, n)
	}
}

// checkExecute checks that executing a tree visits exactly the instances of a
// schedule in schedule order, for given parameter values.
func checkExecute(t *testing.T, root ast.Node, sched relation.UnionMap, env ast.Env) {
	t.Helper()
	checkTrace(t, root, env, reference(t, sched, env))
}

func checkTrace(t *testing.T, root ast.Node, env ast.Env, expected []string) {
	t.Helper()
	//
	var actual []string
	//
	err := ast.Execute(root, env, func(name string, args []int64) {
		actual = append(actual, instance(name, args))
	})
	//
	if err != nil {
		t.Fatal(err)
	} else if diff := gocmp.Diff(expected, actual); diff != "" {
		t.Errorf("execution differs for %v (-expected +actual):\n%s", env, diff)
	}
}

// limit bounds the values enumerated by reference.
const limit = 64

type timed struct {
	time  []int64
	stmt  int
	args  []int64
	label string
}

// reference enumerates the instances of a schedule by brute force, ordered by
// schedule point, then statement, then instance.  Every instance must lie
// within the enumeration window.
func reference(t *testing.T, sched relation.UnionMap, env ast.Env) []string {
	t.Helper()
	//
	var (
		instances []timed
		box       = math.NewInterval64(-limit, limit)
	)
	//
	for k, m := range sched.Maps() {
		var (
			s   = m.Space()
			np  = s.Dim(relation.Param)
			nin = s.Dim(relation.In)
			w   = m.Wrap()
		)
		//
		for p, name := range s.Params() {
			ws := w.Space()
			w = w.AddConstraint(relation.Eq(ws.Var(relation.Param, uint(p)), ws.Const(env[name])))
		}
		//
		for col := range w.Space().Columns() {
			if b := w.Bounds(col); !b.Within(box) {
				t.Fatalf("%s exceeds enumeration window %s at column %d (%s)", w.String(), box.String(), col, b.String())
			}
		}
		//
		for _, pt := range w.Points(-limit, limit) {
			args := pt[np : np+nin]
			instances = append(instances, timed{pt[np+nin:], k, args, instance(s.InTuple().Name, args)})
		}
	}
	//
	slices.SortStableFunc(instances, func(l, r timed) int {
		if c := compareTimes(l.time, r.time); c != 0 {
			return c
		} else if c := cmp.Compare(l.stmt, r.stmt); c != 0 {
			return c
		}
		//
		return slices.Compare(l.args, r.args)
	})
	//
	var result []string
	for _, i := range instances {
		result = append(result, i.label)
	}
	//
	return result
}

// compareTimes compares schedule points lexicographically, padding the shorter
// with zeros.
func compareTimes(l, r []int64) int {
	for i := range max(len(l), len(r)) {
		var a, b int64
		//
		if i < len(l) {
			a = l[i]
		}
		//
		if i < len(r) {
			b = r[i]
		}
		//
		if c := cmp.Compare(a, b); c != 0 {
			return c
		}
	}
	//
	return 0
}

func instance(name string, args []int64) string {
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = fmt.Sprintf("%d", a)
	}
	//
	return fmt.Sprintf("%s(%s)", name, strings.Join(strs, ","))
}
