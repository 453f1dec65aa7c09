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
	"strconv"
	"strings"
)

// Expr represents an integer (or boolean) expression appearing in loop
// bounds, guards and statement instances.
type Expr interface {
	fmt.Stringer
	// precedence used for parenthesisation when printing.
	precedence() uint
}

// Int is an integer literal.
type Int struct {
	Value int64
}

// Id is a reference to a loop iterator or parameter.
type Id struct {
	Name string
}

// OpKind identifies the operator of an Op expression.
type OpKind uint8

const (
	// Add is n-ary addition.
	Add OpKind = iota
	// Sub is binary subtraction.
	Sub
	// Mul is binary multiplication.
	Mul
	// Neg is unary negation.
	Neg
	// Div is exact division, where the dividend is known to be a multiple of
	// the divisor.
	Div
	// FDiv is division rounding towards negative infinity.
	FDiv
	// PMod is the (non-negative) remainder for a positive divisor.
	PMod
	// Min is the n-ary minimum.
	Min
	// Max is the n-ary maximum.
	Max
	// Eq is equality.
	Eq
	// Le is less-than-or-equal.
	Le
	// Lt is strictly less-than.
	Lt
	// Ge is greater-than-or-equal.
	Ge
	// Gt is strictly greater-than.
	Gt
	// And is n-ary conjunction.
	And
	// Or is n-ary disjunction.
	Or
	// Call is a function call, whose first argument is the callee.
	Call
)

var opNames = []string{"add", "sub", "mul", "minus", "div", "fdiv_q", "pdiv_r", "min", "max",
	"eq", "le", "lt", "ge", "gt", "and", "or", "call"}

var opSymbols = []string{"+", "-", "*", "-", "/", "", "%", "", "", "==", "<=", "<", ">=", ">", "&&", "||", ""}

func (k OpKind) String() string {
	return opNames[k]
}

// Op is the application of an operator to a list of arguments.
type Op struct {
	Kind OpKind
	Args []Expr
}

// NewInt constructs an integer literal.
func NewInt(val int64) Expr {
	return &Int{val}
}

// NewId constructs an identifier.
func NewId(name string) Expr {
	return &Id{name}
}

// NewAdd constructs the sum of zero or more expressions, folding constants.
func NewAdd(args ...Expr) Expr {
	var (
		terms []Expr
		c     int64
	)
	//
	for _, arg := range args {
		switch e := arg.(type) {
		case *Int:
			c += e.Value
		case *Op:
			if e.Kind == Add {
				terms = append(terms, e.Args...)
			} else {
				terms = append(terms, e)
			}
		default:
			terms = append(terms, e)
		}
	}
	//
	if c != 0 || len(terms) == 0 {
		terms = append(terms, NewInt(c))
	}
	//
	if len(terms) == 1 {
		return terms[0]
	}
	//
	return &Op{Add, terms}
}

// NewSub constructs the difference of two expressions.
func NewSub(lhs Expr, rhs Expr) Expr {
	if r, ok := rhs.(*Int); ok {
		return NewAdd(lhs, NewInt(-r.Value))
	} else if l, ok := lhs.(*Int); ok && l.Value == 0 {
		return NewNeg(rhs)
	}
	//
	return &Op{Sub, []Expr{lhs, rhs}}
}

// NewMul constructs the product of a constant and an expression.
func NewMul(k int64, e Expr) Expr {
	switch {
	case k == 0:
		return NewInt(0)
	case k == 1:
		return e
	case k == -1:
		return NewNeg(e)
	}
	//
	if c, ok := e.(*Int); ok {
		return NewInt(k * c.Value)
	}
	//
	return &Op{Mul, []Expr{NewInt(k), e}}
}

// NewNeg constructs the negation of an expression.
func NewNeg(e Expr) Expr {
	switch x := e.(type) {
	case *Int:
		return NewInt(-x.Value)
	case *Op:
		if x.Kind == Neg {
			return x.Args[0]
		}
	}
	//
	return &Op{Neg, []Expr{e}}
}

// NewOp constructs an arbitrary operation.
func NewOp(kind OpKind, args ...Expr) Expr {
	return &Op{kind, args}
}

// NewMinMax constructs the minimum (or maximum) of one or more expressions,
// removing duplicates and folding integer literals.
func NewMinMax(kind OpKind, args ...Expr) Expr {
	var (
		unique []Expr
		lit    *Int
	)
	//
	for _, arg := range args {
		if c, ok := arg.(*Int); ok {
			if lit == nil || (kind == Min && c.Value < lit.Value) || (kind == Max && c.Value > lit.Value) {
				lit = c
			}
			//
			continue
		}
		//
		dup := false
		//
		for _, u := range unique {
			dup = dup || Equal(u, arg)
		}
		//
		if !dup {
			unique = append(unique, arg)
		}
	}
	//
	if lit != nil {
		unique = append(unique, lit)
	}
	//
	if len(unique) == 1 {
		return unique[0]
	}
	//
	return &Op{kind, unique}
}

// NewAnd constructs the conjunction of zero or more conditions.  The empty
// conjunction is true (i.e. 1).
func NewAnd(args ...Expr) Expr {
	switch len(args) {
	case 0:
		return NewInt(1)
	case 1:
		return args[0]
	}
	//
	return &Op{And, args}
}

// NewOr constructs the disjunction of one or more conditions.
func NewOr(args ...Expr) Expr {
	if len(args) == 1 {
		return args[0]
	}
	//
	return &Op{Or, args}
}

// Equal determines whether two expressions are structurally identical.
func Equal(l Expr, r Expr) bool {
	return l.String() == r.String()
}

func (e *Int) String() string {
	return strconv.FormatInt(e.Value, 10)
}

func (e *Int) precedence() uint {
	if e.Value < 0 {
		return 3
	}
	//
	return 0
}

func (e *Id) String() string {
	return e.Name
}

func (e *Id) precedence() uint {
	return 0
}

func (e *Op) String() string {
	switch e.Kind {
	case FDiv:
		return fmt.Sprintf("floord(%s, %s)", e.Args[0].String(), e.Args[1].String())
	case Min, Max:
		return fmt.Sprintf("%s(%s)", e.Kind.String(), joinArgs(e.Args))
	case Call:
		return fmt.Sprintf("%s(%s)", e.Args[0].String(), joinArgs(e.Args[1:]))
	case Neg:
		return "-" + wrap(e.Args[0], e.precedence()-1)
	}
	//
	var sb strings.Builder
	//
	for i, arg := range e.Args {
		if i != 0 && e.Kind == Add {
			// Print negated terms as subtraction
			if c, ok := arg.(*Int); ok && c.Value < 0 {
				sb.WriteString(" - ")
				sb.WriteString(strconv.FormatInt(-c.Value, 10))
				//
				continue
			} else if o, ok := arg.(*Op); ok && o.Kind == Neg {
				sb.WriteString(" - ")
				sb.WriteString(wrap(o.Args[0], e.precedence()-1))
				//
				continue
			}
		}
		//
		if i != 0 {
			sb.WriteString(" ")
			sb.WriteString(opSymbols[e.Kind])
			sb.WriteString(" ")
		}
		// Left associative
		if i == 0 {
			sb.WriteString(wrap(arg, e.precedence()))
		} else {
			sb.WriteString(wrap(arg, e.precedence()-1))
		}
	}
	//
	return sb.String()
}

func (e *Op) precedence() uint {
	switch e.Kind {
	case FDiv, Min, Max, Call:
		return 0
	case Neg:
		return 2
	case Mul, Div, PMod:
		return 3
	case Add, Sub:
		return 4
	case Eq, Le, Lt, Ge, Gt:
		return 6
	case And:
		return 7
	default:
		return 8
	}
}

// wrap an expression in brackets if it binds less tightly than required.
func wrap(e Expr, prec uint) string {
	if e.precedence() > prec {
		return "(" + e.String() + ")"
	}
	//
	return e.String()
}

func joinArgs(args []Expr) string {
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = arg.String()
	}
	//
	return strings.Join(strs, ", ")
}
