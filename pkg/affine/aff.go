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
package affine

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/j2kun/isl/pkg/util/math"
)

// Aff represents an affine expression c0 + c1*x1 + ... + cn*xn over a fixed
// number of integer columns.  Columns are identified by their index only; the
// meaning of each column (parameter, input, output or local dimension) is
// determined by the enclosing space.  An Aff is a value: every operation
// returns a fresh expression and never modifies its receiver.
type Aff struct {
	coeffs   []int64
	constant int64
}

// NewAff constructs the zero expression over a given number of columns.
func NewAff(n uint) Aff {
	return Aff{make([]int64, n), 0}
}

// FromCoeffs constructs an affine expression from a constant and a given set
// of column coefficients.
func FromCoeffs(constant int64, coeffs ...int64) Aff {
	return Aff{slices.Clone(coeffs), constant}
}

// Var constructs the expression consisting of a single column with
// coefficient one.
func Var(n uint, column uint) Aff {
	a := NewAff(n)
	a.coeffs[column] = 1
	//
	return a
}

// Const constructs a constant expression over a given number of columns.
func Const(n uint, constant int64) Aff {
	a := NewAff(n)
	a.constant = constant
	//
	return a
}

// Len returns the number of columns this expression ranges over.
func (p Aff) Len() uint {
	return uint(len(p.coeffs))
}

// Coeff returns the coefficient of the ith column.
func (p Aff) Coeff(i uint) int64 {
	return p.coeffs[i]
}

// Coeffs returns a copy of the column coefficients.
func (p Aff) Coeffs() []int64 {
	return slices.Clone(p.coeffs)
}

// Constant returns the constant term of this expression.
func (p Aff) Constant() int64 {
	return p.constant
}

// SetCoeff returns a copy of this expression with the coefficient of the ith
// column replaced.
func (p Aff) SetCoeff(i uint, val int64) Aff {
	q := p.Clone()
	q.coeffs[i] = val
	//
	return q
}

// SetConstant returns a copy of this expression with its constant replaced.
func (p Aff) SetConstant(val int64) Aff {
	q := p.Clone()
	q.constant = val
	//
	return q
}

// Clone returns a deep copy of this expression.
func (p Aff) Clone() Aff {
	return Aff{slices.Clone(p.coeffs), p.constant}
}

// IsConstant determines whether every column coefficient is zero.
func (p Aff) IsConstant() bool {
	for _, c := range p.coeffs {
		if c != 0 {
			return false
		}
	}
	//
	return true
}

// IsZero determines whether this expression is identically zero.
func (p Aff) IsZero() bool {
	return p.constant == 0 && p.IsConstant()
}

// Involves determines whether a given column has a non-zero coefficient.
func (p Aff) Involves(i uint) bool {
	return p.coeffs[i] != 0
}

// InvolvesAny determines whether any column in the half-open range [first,
// first+n) has a non-zero coefficient.
func (p Aff) InvolvesAny(first uint, n uint) bool {
	for i := first; i < first+n; i++ {
		if p.coeffs[i] != 0 {
			return true
		}
	}
	//
	return false
}

// Add another expression onto this expression.
func (p Aff) Add(q Aff) Aff {
	p.checkLen(q)
	//
	r := NewAff(p.Len())
	for i := range p.coeffs {
		r.coeffs[i] = math.Add(p.coeffs[i], q.coeffs[i])
	}
	//
	r.constant = math.Add(p.constant, q.constant)
	//
	return r
}

// Sub subtracts another expression from this expression.
func (p Aff) Sub(q Aff) Aff {
	return p.Add(q.Neg())
}

// Neg negates this expression.
func (p Aff) Neg() Aff {
	return p.Scale(-1)
}

// Scale multiplies every term of this expression by a given constant.
func (p Aff) Scale(k int64) Aff {
	r := NewAff(p.Len())
	for i, c := range p.coeffs {
		r.coeffs[i] = math.Mul(c, k)
	}
	//
	r.constant = math.Mul(p.constant, k)
	//
	return r
}

// AddConstant adds a given constant onto this expression.
func (p Aff) AddConstant(k int64) Aff {
	return p.SetConstant(math.Add(p.constant, k))
}

// DivExact divides every term of this expression by a given constant, which
// must divide every term exactly.
func (p Aff) DivExact(k int64) Aff {
	r := NewAff(p.Len())
	for i, c := range p.coeffs {
		if c%k != 0 {
			panic("inexact division of affine expression")
		}
		//
		r.coeffs[i] = c / k
	}
	//
	if p.constant%k != 0 {
		panic("inexact division of affine expression")
	}
	//
	r.constant = p.constant / k
	//
	return r
}

// Gcd returns the greatest common divisor of the column coefficients (which
// is zero for a constant expression).
func (p Aff) Gcd() int64 {
	var g int64
	for _, c := range p.coeffs {
		g = math.Gcd(g, c)
	}
	//
	return g
}

// Eval evaluates this expression at a given point, which must provide a
// value for every column.
func (p Aff) Eval(point []int64) int64 {
	val := p.constant
	for i, c := range p.coeffs {
		if c != 0 {
			val = math.Add(val, math.Mul(c, point[i]))
		}
	}
	//
	return val
}

// Substitute replaces column i by the expression (by / div), where div is
// positive.  To keep the result integral the remaining terms are multiplied by
// div, hence the returned expression is div times the substituted expression.
func (p Aff) Substitute(i uint, by Aff, div int64) Aff {
	c := p.coeffs[i]
	//
	if c == 0 {
		return p.Scale(div)
	}
	//
	r := p.SetCoeff(i, 0).Scale(div)
	//
	return r.Add(by.Scale(c))
}

// Remap constructs a new expression over n columns, where column i of this
// expression is moved to column mapping(i).  Columns for which the mapping
// returns false must have a zero coefficient.
func (p Aff) Remap(n uint, mapping func(uint) (uint, bool)) Aff {
	r := NewAff(n)
	r.constant = p.constant
	//
	for i, c := range p.coeffs {
		if c == 0 {
			continue
		} else if j, ok := mapping(uint(i)); ok {
			r.coeffs[j] = math.Add(r.coeffs[j], c)
		} else {
			panic("remapping drops a non-zero coefficient")
		}
	}
	//
	return r
}

// Equal determines whether two expressions are structurally identical.
func (p Aff) Equal(q Aff) bool {
	return p.constant == q.constant && slices.Equal(p.coeffs, q.coeffs)
}

// Cmp provides a total order on expressions of the same length, comparing
// coefficients first and the constant last.
func (p Aff) Cmp(q Aff) int {
	if c := slices.Compare(p.coeffs, q.coeffs); c != 0 {
		return c
	}
	//
	switch {
	case p.constant < q.constant:
		return -1
	case p.constant > q.constant:
		return 1
	default:
		return 0
	}
}

// String returns a human readable form of this expression, where env supplies
// the names of columns.
func (p Aff) String(env func(uint) string) string {
	var (
		buf   bytes.Buffer
		first = true
	)
	//
	for i, c := range p.coeffs {
		if c == 0 {
			continue
		}
		//
		switch {
		case first && c == -1:
			buf.WriteString("-")
		case first:
			if c != 1 {
				buf.WriteString(strconv.FormatInt(c, 10))
			}
		case c < 0:
			buf.WriteString(" - ")
			if c != -1 {
				buf.WriteString(strconv.FormatInt(-c, 10))
			}
		default:
			buf.WriteString(" + ")
			if c != 1 {
				buf.WriteString(strconv.FormatInt(c, 10))
			}
		}
		//
		buf.WriteString(env(uint(i)))
		//
		first = false
	}
	//
	switch {
	case first:
		buf.WriteString(strconv.FormatInt(p.constant, 10))
	case p.constant > 0:
		buf.WriteString(" + ")
		buf.WriteString(strconv.FormatInt(p.constant, 10))
	case p.constant < 0:
		buf.WriteString(" - ")
		buf.WriteString(strconv.FormatInt(-p.constant, 10))
	}
	//
	return buf.String()
}

func (p Aff) checkLen(q Aff) {
	if len(p.coeffs) != len(q.coeffs) {
		panic("affine expressions of differing length")
	}
}
