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
package relation

import "github.com/j2kun/isl/pkg/util/math"

// Bounds returns the constant bounds of a given column of this relation, as
// obtained by projecting out every other column.  The result is empty if the
// relation is empty, and has infinite ends where the column is unbounded.
func (m Map) Bounds(col uint) math.Interval {
	var (
		first  = true
		bounds = math.NewInterval64(1, 0)
		target = NewSetSpace(nil, AnonTuple("x", 1))
		elim   = make([]bool, m.space.Columns())
	)
	//
	for i := range elim {
		elim[i] = uint(i) != col
	}
	//
	mapping := func(i uint) (uint, bool) { return 0, i == col }
	//
	for _, b := range m.basics {
		for _, p := range b.eliminate(elim, target, mapping) {
			iv := p.bounds()
			//
			if first {
				bounds, first = iv, false
			} else {
				bounds = bounds.Union(iv)
			}
		}
	}
	//
	return bounds
}

// bounds returns the constant bounds of a one-dimensional basic relation.
// Congruences are ignored.
func (b Basic) bounds() math.Interval {
	iv := math.INFINITY
	//
	for _, c := range b.cons {
		var (
			a = c.expr.Coeff(0)
			k = c.expr.Constant()
		)
		//
		switch {
		case c.kind == Congruence:
			continue
		case c.kind == Equality:
			iv = iv.RaiseLower(-k / a).LowerUpper(-k / a)
		case a > 0:
			iv = iv.RaiseLower(math.CeilDiv(-k, a))
		case a < 0:
			iv = iv.LowerUpper(math.FloorDiv(k, -a))
		}
	}
	//
	return iv
}

// Points returns every point of this relation whose columns all lie within a
// given (inclusive) range, in lexicographic order.  Constant bounds of each
// column are used to prune the search.
func (m Map) Points(lo int64, hi int64) [][]int64 {
	var (
		n      = m.space.Columns()
		box    = make([]math.Interval, n)
		points [][]int64
	)
	//
	for i := range box {
		box[i] = m.Bounds(uint(i)).Intersect(math.NewInterval64(lo, hi))
		//
		if box[i].IsEmpty() {
			return nil
		}
	}
	//
	m.enumerate(box, make([]int64, 0, n), func(point []int64) {
		points = append(points, point)
	})
	//
	return points
}

func (m Map) enumerate(box []math.Interval, prefix []int64, fn func([]int64)) {
	if len(prefix) == len(box) {
		if m.Contains(prefix) {
			fn(append([]int64(nil), prefix...))
		}
		//
		return
	}
	//
	iv := box[len(prefix)]
	//
	for v := iv.MinValue().IntVal(); v <= iv.MaxValue().IntVal(); v++ {
		m.enumerate(box, append(prefix, v), fn)
	}
}
