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
	"strconv"
)

const notAnInfinity = 0
const negativeInfinity = 1
const positiveInfinity = 2

// PosInfinity represents positive infinity
var PosInfinity = InfInt{0, positiveInfinity}

// NegInfinity represents negative infinity
var NegInfinity = InfInt{0, negativeInfinity}

// InfInt represents a 64-bit integer value which can, additionally, be either
// negative infinity or positive infinity.  These are used to describe the
// bounds of a dimension which may be unbounded in one (or both) directions.
type InfInt struct {
	// value of this integer, or zero when this is an infinity.
	val int64
	// sign indicates whether we are not an infinity, or are negative or
	// positive infinity.
	sign uint8
}

// NewInfInt constructs a finite value.
func NewInfInt(val int64) InfInt {
	return InfInt{val, notAnInfinity}
}

// Cmp performs a comparison of two (potentially infinite) integer values.
func (p InfInt) Cmp(o InfInt) int {
	switch {
	case p.sign == notAnInfinity && o.sign == notAnInfinity:
		switch {
		case p.val < o.val:
			return -1
		case p.val > o.val:
			return 1
		default:
			return 0
		}
	case p.sign == o.sign:
		return 0
	case p.sign == negativeInfinity || o.sign == positiveInfinity:
		return -1
	default:
		return 1
	}
}

// IntVal converts a potentially infinite integer into a finite value.  This
// will panic if this value is an infinity.
func (p InfInt) IntVal() int64 {
	if p.sign != notAnInfinity {
		panic("cannot cast infinity into an integer")
	}
	//
	return p.val
}

// IsNotAnInfinity returns true if this represents a finite integer value.
func (p InfInt) IsNotAnInfinity() bool {
	return p.sign == notAnInfinity
}

// Min determines the least of two values.
func (p InfInt) Min(o InfInt) InfInt {
	if p.Cmp(o) <= 0 {
		return p
	}
	//
	return o
}

// Max determines the greatest of two values.
func (p InfInt) Max(o InfInt) InfInt {
	if p.Cmp(o) >= 0 {
		return p
	}
	//
	return o
}

func (p InfInt) String() string {
	switch p.sign {
	case negativeInfinity:
		return "-∞"
	case positiveInfinity:
		return "+∞"
	default:
		return strconv.FormatInt(p.val, 10)
	}
}
