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
package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func Test_ExprString_01(t *testing.T) {
	var (
		c0 = NewId("c0")
		c1 = NewId("c1")
		n  = NewId("N")
	)
	//
	checkString(t, NewAdd(c0, NewInt(1), NewInt(-3)), "c0 - 2")
	checkString(t, NewAdd(NewInt(2), NewInt(-2)), "0")
	checkString(t, NewSub(c0, NewAdd(c1, n)), "c0 - (c1 + N)")
	checkString(t, NewAdd(c0, NewNeg(c1)), "c0 - c1")
	checkString(t, NewMul(2, NewAdd(c0, c1)), "2 * (c0 + c1)")
	checkString(t, NewMul(-1, NewMul(-1, c0)), "c0")
	checkString(t, NewOp(PMod, NewAdd(c0, c1), NewInt(8)), "(c0 + c1) % 8")
	checkString(t, NewOp(FDiv, NewAdd(c0, NewInt(1)), NewInt(2)), "floord(c0 + 1, 2)")
	checkString(t, NewMinMax(Min, n, NewInt(7), n), "min(N, 7)")
	checkString(t, NewMinMax(Max, n, n), "N")
	checkString(t, NewMinMax(Min, NewInt(0), NewInt(5)), "0")
	checkString(t, NewMinMax(Max, NewInt(3), n, NewInt(9)), "max(N, 9)")
	checkString(t, NewAnd(NewOp(Ge, c0, n), NewOp(Eq, c1, NewInt(0))), "c0 >= N && c1 == 0")
	checkString(t, NewAnd(), "1")
}

func Test_Eval_01(t *testing.T) {
	env := Env{"a": 7, "b": -3}
	a, b := NewId("a"), NewId("b")
	//
	checkEval(t, NewAdd(a, b, NewInt(1)), env, 5)
	checkEval(t, NewSub(b, a), env, -10)
	checkEval(t, NewMul(3, b), env, -9)
	checkEval(t, NewOp(FDiv, b, NewInt(2)), env, -2)
	checkEval(t, NewOp(PMod, b, NewInt(4)), env, 1)
	checkEval(t, NewOp(Div, NewMul(2, b), NewInt(2)), env, -3)
	checkEval(t, NewMinMax(Min, a, b), env, -3)
	checkEval(t, NewMinMax(Max, a, b, NewInt(9)), env, 9)
	checkEval(t, NewOr(NewOp(Lt, a, b), NewOp(Gt, a, b)), env, 1)
	checkEval(t, NewAnd(NewOp(Le, a, b), NewOp(Gt, a, b)), env, 0)
	//
	if _, err := Eval(NewOp(Div, a, NewInt(2)), env); err == nil {
		t.Errorf("expected inexact division to fail")
	}
	//
	if _, err := Eval(NewId("c"), env); err == nil {
		t.Errorf("expected unknown identifier to fail")
	}
}

func Test_Execute_01(t *testing.T) {
	// for c0 = 0 to N-1 step 2: if c0 % 4 == 0 then S(c0) else T(c0, 1)
	var (
		c0   = NewId("c0")
		cond = NewOp(Eq, NewOp(PMod, c0, NewInt(4)), NewInt(0))
		loop = &For{"c0", NewInt(0), NewAdd(NewId("N"), NewInt(-1)), 2,
			&If{cond, &User{"S", []Expr{c0}}, &User{"T", []Expr{c0, NewInt(1)}}}}
		trace []string
	)
	//
	err := Execute(&Mark{"separate", loop}, Env{"N": 9}, func(name string, args []int64) {
		trace = append(trace, (&User{name, toInts(args)}).Expr().String())
	})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	expected := []string{"S(0)", "T(2, 1)", "S(4)", "T(6, 1)", "S(8)"}
	if diff := cmp.Diff(expected, trace); diff != "" {
		t.Errorf("unexpected execution (-expected +actual):\n%s", diff)
	}
	//
	if Count[*User](loop) != 2 || Count[*For](loop) != 1 {
		t.Errorf("unexpected node counts")
	}
}

func Test_Execute_02(t *testing.T) {
	// Nested loops without parameters, using a nil environment.
	var (
		c0, c1 = NewId("c0"), NewId("c1")
		inner  = &For{"c1", c0, NewInt(2), 1, &User{"S", []Expr{c0, c1}}}
		loop   = &For{"c0", NewInt(1), NewInt(2), 1, inner}
		trace  []string
	)
	//
	err := Execute(loop, nil, func(name string, args []int64) {
		trace = append(trace, (&User{name, toInts(args)}).Expr().String())
	})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	expected := []string{"S(1, 1)", "S(1, 2)", "S(2, 2)"}
	if diff := cmp.Diff(expected, trace); diff != "" {
		t.Errorf("unexpected execution (-expected +actual):\n%s", diff)
	}
}

func Test_Execute_03(t *testing.T) {
	// The caller's environment is left untouched.
	var (
		c0   = NewId("c0")
		loop = &For{"c0", NewInt(0), NewId("N"), 1, &User{"S", []Expr{c0}}}
		env  = Env{"N": 3, "c0": 42}
		n    int
	)
	//
	if err := Execute(loop, env, func(string, []int64) { n++ }); err != nil {
		t.Fatal(err)
	}
	//
	if n != 4 {
		t.Errorf("expected 4 instances, got %d", n)
	}
	//
	if diff := cmp.Diff(Env{"N": 3, "c0": 42}, env); diff != "" {
		t.Errorf("environment modified (-expected +actual):\n%s", diff)
	}
}

func Test_Dump_01(t *testing.T) {
	c0 := NewId("c0")
	loop := &For{"c0", NewInt(0), NewInt(7), 1, &User{"S", []Expr{c0}}}
	//
	bytes, err := Dump(loop)
	if err != nil {
		t.Fatal(err)
	}
	//
	var actual any
	if err := yaml.Unmarshal(bytes, &actual); err != nil {
		t.Fatal(err)
	}
	//
	expected := map[string]any{
		"iterator": map[string]any{"id": "c0"},
		"init":     map[string]any{"val": 0},
		"cond": map[string]any{"op": "le", "args": []any{
			map[string]any{"id": "c0"}, map[string]any{"val": 7}}},
		"inc": map[string]any{"val": 1},
		"body": map[string]any{"user": map[string]any{"op": "call", "args": []any{
			map[string]any{"id": "S"}, map[string]any{"id": "c0"}}}},
	}
	//
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("unexpected dump (-expected +actual):\n%s", diff)
	}
}

func Test_Dump_02(t *testing.T) {
	block := NewBlock(&User{"S", nil}, NewBlock(&User{"T", nil}, &Mark{"atomic", &User{"U", nil}}))
	//
	if Count[*User](block) != 3 || len(block.Children()) != 3 {
		t.Fatalf("expected flattened block")
	}
	//
	bytes, err := Dump(block)
	if err != nil {
		t.Fatal(err)
	}
	//
	var actual []any
	if err := yaml.Unmarshal(bytes, &actual); err != nil {
		t.Fatal(err)
	} else if len(actual) != 3 {
		t.Errorf("expected sequence of three nodes, got %v", actual)
	}
}

func checkString(t *testing.T, e Expr, expected string) {
	t.Helper()
	//
	if actual := e.String(); actual != expected {
		t.Errorf("incorrect expression (was %s, expected %s)", actual, expected)
	}
}

func checkEval(t *testing.T, e Expr, env Env, expected int64) {
	t.Helper()
	//
	if actual, err := Eval(e, env); err != nil {
		t.Error(err)
	} else if actual != expected {
		t.Errorf("incorrect evaluation of %s (was %d, expected %d)", e.String(), actual, expected)
	}
}

func toInts(args []int64) []Expr {
	exprs := make([]Expr, len(args))
	for i, a := range args {
		exprs[i] = NewInt(a)
	}
	//
	return exprs
}
