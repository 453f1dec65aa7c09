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
)

// INFINITY represents the interval which encloses all other intervals.
var INFINITY Interval = Interval{NegInfinity, PosInfinity}

// Interval provides a discrete range of integers, such as 0..1, 1..18, etc.
// Either end may be infinite.  An interval whose lower bound exceeds its upper
// bound is empty.  Intervals are used to describe the constant bounds of a
// dimension, for example when enumerating the points of a bounded set.
type Interval struct {
	min InfInt
	max InfInt
}

// NewInterval creates an interval representing a given (inclusive) range.
func NewInterval(lower InfInt, upper InfInt) Interval {
	return Interval{lower, upper}
}

// NewInterval64 creates a finite interval representing a given (inclusive)
// range.
func NewInterval64(lower int64, upper int64) Interval {
	return Interval{NewInfInt(lower), NewInfInt(upper)}
}

// IsFinite determines whether or not both ends of this interval are finite.
func (p Interval) IsFinite() bool {
	return p.min.IsNotAnInfinity() && p.max.IsNotAnInfinity()
}

// IsEmpty determines whether or not this interval contains no values.
func (p Interval) IsEmpty() bool {
	return p.min.Cmp(p.max) > 0
}

// MinValue returns the minimum value that this interval includes.
func (p Interval) MinValue() InfInt {
	return p.min
}

// MaxValue returns the maximum value that this interval includes.
func (p Interval) MaxValue() InfInt {
	return p.max
}

// Contains checks whether a given value is contained with this interval
func (p Interval) Contains(val int64) bool {
	v := NewInfInt(val)
	return p.min.Cmp(v) <= 0 && p.max.Cmp(v) >= 0
}

// Within checks whether this interval is contained within the given bounds.
func (p Interval) Within(val Interval) bool {
	return p.min.Cmp(val.min) >= 0 && p.max.Cmp(val.max) <= 0
}

// Intersect returns the largest interval contained in both intervals.
func (p Interval) Intersect(q Interval) Interval {
	return Interval{p.min.Max(q.min), p.max.Min(q.max)}
}

// Union returns the smallest interval enclosing both intervals.
func (p Interval) Union(q Interval) Interval {
	return Interval{p.min.Min(q.min), p.max.Max(q.max)}
}

// RaiseLower tightens the lower bound of this interval.
func (p Interval) RaiseLower(lower int64) Interval {
	return Interval{p.min.Max(NewInfInt(lower)), p.max}
}

// LowerUpper tightens the upper bound of this interval.
func (p Interval) LowerUpper(upper int64) Interval {
	return Interval{p.min, p.max.Min(NewInfInt(upper))}
}

func (p Interval) String() string {
	return fmt.Sprintf("(%s..%s)", p.min.String(), p.max.String())
}
