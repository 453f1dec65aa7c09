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
	"fmt"

	"github.com/j2kun/isl/pkg/util/math"
)

// Env maps identifiers to their values during interpretation.
type Env map[string]int64

// Eval evaluates an expression in a given environment.  Conditions evaluate
// to 1 (true) or 0 (false).
func Eval(e Expr, env Env) (int64, error) {
	switch e := e.(type) {
	case *Int:
		return e.Value, nil
	case *Id:
		if v, ok := env[e.Name]; ok {
			return v, nil
		}
		//
		return 0, fmt.Errorf("unknown identifier %s", e.Name)
	case *Op:
		return evalOp(e, env)
	default:
		return 0, fmt.Errorf("unknown expression %s", e.String())
	}
}

func evalOp(e *Op, env Env) (int64, error) {
	if e.Kind == Call {
		return 0, fmt.Errorf("cannot evaluate call %s", e.String())
	}
	//
	args := make([]int64, len(e.Args))
	//
	for i, arg := range e.Args {
		v, err := Eval(arg, env)
		if err != nil {
			return 0, err
		}
		//
		args[i] = v
	}
	//
	switch e.Kind {
	case Add:
		return fold(args, math.Add), nil
	case Mul:
		return fold(args, math.Mul), nil
	case Min:
		return fold(args, func(l, r int64) int64 { return min(l, r) }), nil
	case Max:
		return fold(args, func(l, r int64) int64 { return max(l, r) }), nil
	case And:
		return fold(args, func(l, r int64) int64 { return bool2int(l != 0 && r != 0) }), nil
	case Or:
		return fold(args, func(l, r int64) int64 { return bool2int(l != 0 || r != 0) }), nil
	case Neg:
		return math.Sub(0, args[0]), nil
	}
	// Binary operators
	l, r := args[0], args[1]
	//
	switch e.Kind {
	case Sub:
		return math.Sub(l, r), nil
	case Div, FDiv, PMod:
		if r <= 0 {
			return 0, fmt.Errorf("invalid divisor in %s", e.String())
		} else if e.Kind == PMod {
			return math.Mod(l, r), nil
		} else if e.Kind == Div && l%r != 0 {
			return 0, fmt.Errorf("inexact division in %s", e.String())
		}
		//
		return math.FloorDiv(l, r), nil
	case Eq:
		return bool2int(l == r), nil
	case Le:
		return bool2int(l <= r), nil
	case Lt:
		return bool2int(l < r), nil
	case Ge:
		return bool2int(l >= r), nil
	default:
		return bool2int(l > r), nil
	}
}

// Execute interprets a tree in a given environment (which must assign every
// parameter), calling a visitor for each statement instance in execution
// order.  The given environment is not modified, and may be nil when there are
// no parameters.
func Execute(root Node, env Env, visit func(name string, args []int64)) error {
	local := make(Env, len(env))
	//
	for k, v := range env {
		local[k] = v
	}
	//
	return execute(root, local, visit)
}

func execute(root Node, env Env, visit func(name string, args []int64)) error {
	switch n := root.(type) {
	case *For:
		return executeFor(n, env, visit)
	case *If:
		c, err := Eval(n.Cond, env)
		if err != nil {
			return err
		} else if c != 0 {
			return execute(n.Then, env, visit)
		} else if n.Else != nil {
			return execute(n.Else, env, visit)
		}
	case *Block:
		for _, child := range n.Nodes {
			if err := execute(child, env, visit); err != nil {
				return err
			}
		}
	case *Mark:
		return execute(n.Child, env, visit)
	case *User:
		args := make([]int64, len(n.Args))
		//
		for i, arg := range n.Args {
			v, err := Eval(arg, env)
			if err != nil {
				return err
			}
			//
			args[i] = v
		}
		//
		visit(n.Name, args)
	default:
		return fmt.Errorf("unknown node %T", root)
	}
	//
	return nil
}

func executeFor(n *For, env Env, visit func(name string, args []int64)) error {
	lower, err := Eval(n.Lower, env)
	if err != nil {
		return err
	}
	//
	upper, err := Eval(n.Upper, env)
	if err != nil {
		return err
	} else if n.Stride <= 0 {
		return fmt.Errorf("invalid stride %d", n.Stride)
	}
	//
	old, bound := env[n.Iterator]
	//
	for i := lower; i <= upper; i += n.Stride {
		env[n.Iterator] = i
		//
		if err := execute(n.Body, env, visit); err != nil {
			return err
		}
	}
	// Restore shadowed iterator
	if bound {
		env[n.Iterator] = old
	} else {
		delete(env, n.Iterator)
	}
	//
	return nil
}

func fold(args []int64, fn func(int64, int64) int64) int64 {
	acc := args[0]
	for _, v := range args[1:] {
		acc = fn(acc, v)
	}
	//
	return acc
}

func bool2int(b bool) int64 {
	if b {
		return 1
	}
	//
	return 0
}
