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
package math

import (
	"fmt"
	"math"
)

// Abs returns the absolute value of a given integer.  This will panic for
// math.MinInt64, which has no positive counterpart.
func Abs(x int64) int64 {
	if x == math.MinInt64 {
		panic("integer overflow (abs)")
	} else if x < 0 {
		return -x
	}
	//
	return x
}

// Gcd returns the (non-negative) greatest common divisor of two integers.
// Observe that Gcd(0,0) == 0.
func Gcd(a, b int64) int64 {
	a, b = Abs(a), Abs(b)
	//
	for b != 0 {
		a, b = b, a%b
	}
	//
	return a
}

// Lcm returns the (non-negative) least common multiple of two integers.
func Lcm(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	//
	return Abs(Mul(a/Gcd(a, b), b))
}

// FloorDiv divides a by b rounding towards negative infinity.
func FloorDiv(a, b int64) int64 {
	if b == 0 {
		panic("division by zero")
	}
	//
	q := a / b
	// Go division truncates towards zero, so adjust when signs differ and the
	// division was inexact.
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	//
	return q
}

// CeilDiv divides a by b rounding towards positive infinity.
func CeilDiv(a, b int64) int64 {
	return -FloorDiv(-a, b)
}

// Mod returns the non-negative remainder of a modulo m, where m must be
// positive.
func Mod(a, m int64) int64 {
	if m <= 0 {
		panic(fmt.Sprintf("invalid modulus %d", m))
	}
	//
	r := a % m
	if r < 0 {
		r += m
	}
	//
	return r
}

// ModHat returns the symmetric remainder of a modulo m, i.e. the value r
// congruent to a modulo m with -m/2 < r <= m/2.  This is the "mod-hat"
// operation used for exact equality elimination in the Omega test.
func ModHat(a, m int64) int64 {
	r := Mod(a, m)
	if 2*r > m {
		r -= m
	}
	//
	return r
}

// ModInverse returns the multiplicative inverse of a modulo m, or false if
// none exists (i.e. when a and m are not coprime).
func ModInverse(a, m int64) (int64, bool) {
	if m == 1 {
		return 0, true
	}
	// Extended Euclid
	var (
		oldR, r = Mod(a, m), m
		oldS, s = int64(1), int64(0)
	)
	//
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	//
	if oldR != 1 {
		return 0, false
	}
	//
	return Mod(oldS, m), true
}

// Add two integers together, panicking on overflow.
func Add(a, b int64) int64 {
	c := a + b
	if (c > a) != (b > 0) {
		panic(fmt.Sprintf("integer overflow (%d+%d)", a, b))
	}
	//
	return c
}

// Sub subtracts b from a, panicking on overflow.
func Sub(a, b int64) int64 {
	if b == math.MinInt64 {
		panic(fmt.Sprintf("integer overflow (%d-%d)", a, b))
	}
	//
	return Add(a, -b)
}

// Mul multiplies two integers together, panicking on overflow.
func Mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	//
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		panic(fmt.Sprintf("integer overflow (%d*%d)", a, b))
	}
	//
	return c
}
