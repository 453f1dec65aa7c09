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

import (
	"slices"
	"strconv"
	"strings"

	"github.com/j2kun/isl/pkg/affine"
	"github.com/j2kun/isl/pkg/util/math"
)

// system is the working form of a constraint system during exact integer
// elimination.  Columns flagged as existential are to be eliminated; the
// remaining columns are kept.  Congruences are only ever held over kept
// columns: a congruence involving an existential column is converted into an
// equality with a fresh existential witness.
type system struct {
	n     uint
	exist []bool
	eqs   []affine.Aff
	ineqs []affine.Aff
	congs []Constraint
}

// newSystem constructs a system over n columns from a set of constraints,
// where columns flagged in elim are existential.
func newSystem(n uint, cons []Constraint, elim []bool) *system {
	s := &system{n: n, exist: slices.Clone(elim)}
	//
	for _, c := range cons {
		switch c.kind {
		case Equality:
			s.eqs = append(s.eqs, c.expr)
		case Inequality:
			s.ineqs = append(s.ineqs, c.expr)
		default:
			s.congs = append(s.congs, c)
		}
	}
	// Convert congruences involving existentials into witness equalities.
	congs := s.congs
	s.congs = nil
	//
	for _, c := range congs {
		if s.involvesExistential(c.expr) {
			q := s.grow()
			s.eqs = append(s.eqs, s.extend(c.expr).SetCoeff(q, -c.modulus))
		} else {
			s.congs = append(s.congs, Constraint{Congruence, s.extend(c.expr), c.modulus})
		}
	}
	//
	return s
}

func (s *system) clone() *system {
	return &system{s.n, slices.Clone(s.exist), slices.Clone(s.eqs), slices.Clone(s.ineqs), slices.Clone(s.congs)}
}

// extend an expression (which may have been constructed before a column was
// added) to cover all columns of this system.
func (s *system) extend(e affine.Aff) affine.Aff {
	if e.Len() == s.n {
		return e
	}
	//
	return e.Remap(s.n, func(i uint) (uint, bool) { return i, true })
}

// grow adds a fresh existential column, returning its index.
func (s *system) grow() uint {
	col := s.n
	s.n++
	s.exist = append(s.exist, true)
	//
	for i := range s.eqs {
		s.eqs[i] = s.extend(s.eqs[i])
	}
	//
	for i := range s.ineqs {
		s.ineqs[i] = s.extend(s.ineqs[i])
	}
	//
	for i := range s.congs {
		s.congs[i].expr = s.extend(s.congs[i].expr)
	}
	//
	return col
}

func (s *system) involvesExistential(e affine.Aff) bool {
	for i := range e.Len() {
		if s.exist[i] && e.Coeff(i) != 0 {
			return true
		}
	}
	//
	return false
}

// normalise every constraint, remove duplicates, combine opposing
// inequalities and detect contradictions.  Returns false if the system is
// infeasible.
func (s *system) normalise() bool {
	for changed := true; changed; {
		changed = false
		//
		eqs, ok := s.normaliseEqualities()
		if !ok {
			return false
		}
		//
		ineqs, promoted, ok := s.normaliseInequalities()
		if !ok {
			return false
		}
		//
		s.eqs, s.ineqs = append(eqs, promoted...), ineqs
		// Promoted equalities must themselves be normalised.
		changed = len(promoted) > 0
	}
	//
	return s.normaliseCongruences()
}

func (s *system) normaliseEqualities() ([]affine.Aff, bool) {
	var (
		eqs  = make([]affine.Aff, 0, len(s.eqs))
		seen = make(map[string]bool)
	)
	//
	for _, e := range s.eqs {
		c, st := normaliseEquality(e)
		//
		switch st {
		case contradiction:
			return nil, false
		case normal:
			if k := key(c.expr, true); !seen[k] {
				seen[k] = true
				eqs = append(eqs, c.expr)
			}
		}
	}
	//
	return eqs, true
}

func (s *system) normaliseInequalities() ([]affine.Aff, []affine.Aff, bool) {
	var (
		ineqs    []affine.Aff
		promoted []affine.Aff
		// index of inequality with given coefficients
		index = make(map[string]int)
	)
	//
	for _, e := range s.ineqs {
		c, st := normaliseInequality(e)
		//
		if st == contradiction {
			return nil, nil, false
		} else if st == tautology {
			continue
		}
		// Keep only the tightest of parallel inequalities.
		k := key(c.expr, false)
		if i, ok := index[k]; ok {
			if c.expr.Constant() < ineqs[i].Constant() {
				ineqs[i] = c.expr
			}
		} else {
			index[k] = len(ineqs)
			ineqs = append(ineqs, c.expr)
		}
	}
	// Check opposing pairs
	var (
		result  = make([]affine.Aff, 0, len(ineqs))
		removed = make([]bool, len(ineqs))
	)
	//
	for i, e := range ineqs {
		if removed[i] {
			continue
		}
		//
		if j, ok := index[key(e.Neg(), false)]; ok && !removed[j] {
			sum := math.Add(e.Constant(), ineqs[j].Constant())
			//
			if sum < 0 {
				return nil, nil, false
			} else if sum == 0 {
				removed[i], removed[j] = true, true
				promoted = append(promoted, e)
				//
				continue
			}
		}
		//
		result = append(result, e)
	}
	//
	return result, promoted, true
}

func (s *system) normaliseCongruences() bool {
	var (
		congs = make([]Constraint, 0, len(s.congs))
		seen  = make(map[string]bool)
	)
	//
	for _, c := range s.congs {
		n, st := c.normalise()
		//
		switch st {
		case contradiction:
			return false
		case normal:
			if k := key(n.expr, true) + "%" + strconv.FormatInt(n.modulus, 10); !seen[k] {
				seen[k] = true
				congs = append(congs, n)
			}
		}
	}
	//
	s.congs = congs
	//
	return true
}

// key constructs a string key from the coefficients (and optionally the
// constant) of an expression.
func key(e affine.Aff, constant bool) string {
	var b strings.Builder
	//
	for i := range e.Len() {
		b.WriteString(strconv.FormatInt(e.Coeff(i), 10))
		b.WriteByte(',')
	}
	//
	if constant {
		b.WriteString(strconv.FormatInt(e.Constant(), 10))
	}
	//
	return b.String()
}

// run eliminates every existential column, producing a union of systems over
// the kept columns whose integer points are exactly the projection of the
// integer points of this system.  Infeasible pieces are discarded, so an empty
// result signals an empty projection.
func (s *system) run() []*system {
	var (
		done []*system
		work = []*system{s}
	)
	//
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		//
		if !cur.normalise() {
			continue
		} else if cur.eliminateEquality() {
			work = append(work, cur)
			continue
		}
		//
		if col, ok := cur.pickInequalityColumn(); ok {
			work = append(work, cur.fourierMotzkin(col)...)
		} else {
			done = append(done, cur)
		}
	}
	//
	return done
}

// isEmpty determines whether this system has any integer solution, treating
// every column as existential.
func (s *system) isEmpty() bool {
	t := s.clone()
	//
	for i := range t.exist {
		t.exist[i] = true
	}
	// Congruences are now over existential columns, so convert them.
	congs := t.congs
	t.congs = nil
	//
	for _, c := range congs {
		q := t.grow()
		t.eqs = append(t.eqs, t.extend(c.expr).SetCoeff(q, -c.modulus))
	}
	//
	return len(t.run()) == 0
}

// eliminateEquality eliminates one existential column using an equality,
// returning false if no equality involves an existential column.
func (s *system) eliminateEquality() bool {
	var (
		eq   = -1
		col  uint
		coef int64
	)
	// Find existential column with smallest coefficient in any equality.
	for i, e := range s.eqs {
		for j := range e.Len() {
			if c := math.Abs(e.Coeff(j)); s.exist[j] && c != 0 && (eq < 0 || c < coef) {
				eq, col, coef = i, j, c
			}
		}
	}
	//
	if eq < 0 {
		return false
	}
	//
	e := s.eqs[eq]
	if e.Coeff(col) < 0 {
		e = e.Neg()
	}
	//
	if s.existentialsDivisibleBy(e, col, coef) {
		s.eqs = slices.Delete(s.eqs, eq, eq+1)
		s.solve(e, col, coef)
	} else {
		s.reduce(e, col, coef)
	}
	//
	return true
}

func (s *system) existentialsDivisibleBy(e affine.Aff, col uint, coef int64) bool {
	for j := range e.Len() {
		if j != col && s.exist[j] && e.Coeff(j)%coef != 0 {
			return false
		}
	}
	//
	return true
}

// solve uses the equality a*y + r = 0 (a > 0) to eliminate column y.  This
// requires r ≡ 0 (mod a), which (since all existential coefficients of r are
// multiples of a) is a congruence over the kept columns only.
func (s *system) solve(e affine.Aff, col uint, a int64) {
	rest := e.SetCoeff(col, 0)
	// Congruence over kept part
	if a != 1 {
		kept := rest
		for j := range kept.Len() {
			if s.exist[j] {
				kept = kept.SetCoeff(j, 0)
			}
		}
		//
		s.congs = append(s.congs, Constraint{Congruence, kept, a})
	}
	// y = -rest / a
	by := rest.Neg()
	//
	for i := range s.eqs {
		s.eqs[i] = s.eqs[i].Substitute(col, by, a)
	}
	//
	for i := range s.ineqs {
		s.ineqs[i] = s.ineqs[i].Substitute(col, by, a)
	}
	//
	s.exist[col] = false
}

// reduce applies the symmetric-modulo substitution of the Omega test to an
// equality a*y + r = 0 (a > 1), which introduces a fresh existential and
// strictly reduces the existential coefficients of the equality.
func (s *system) reduce(e affine.Aff, col uint, a int64) {
	m := a + 1
	sigma := s.grow()
	e = s.extend(e)
	// y = -m*sigma + sum_{j != y} modhat(c_j, m)*x_j + modhat(c0, m)
	by := affine.NewAff(s.n).SetConstant(math.ModHat(e.Constant(), m))
	//
	for j := range e.Len() {
		if j != col {
			by = by.SetCoeff(j, math.ModHat(e.Coeff(j), m))
		}
	}
	//
	by = by.SetCoeff(sigma, -m)
	//
	for i := range s.eqs {
		s.eqs[i] = s.eqs[i].Substitute(col, by, 1)
	}
	//
	for i := range s.ineqs {
		s.ineqs[i] = s.ineqs[i].Substitute(col, by, 1)
	}
	//
	s.exist[col] = false
}

// pickInequalityColumn selects the next existential column to eliminate via
// Fourier-Motzkin, preferring columns which are unbounded in one direction,
// then exact eliminations, then the smallest number of combinations.
func (s *system) pickInequalityColumn() (uint, bool) {
	var (
		best      uint
		bestScore = -1
	)
	//
	for j := range s.n {
		if !s.exist[j] {
			continue
		}
		//
		var (
			lowers, uppers int
			unitL, unitU   = true, true
		)
		//
		for _, e := range s.ineqs {
			switch c := e.Coeff(j); {
			case c > 0:
				lowers++
				unitL = unitL && c == 1
			case c < 0:
				uppers++
				unitU = unitU && c == -1
			}
		}
		//
		if lowers == 0 && uppers == 0 {
			// Unconstrained existential, which can simply be dropped.
			s.exist[j] = false
			continue
		}
		//
		score := lowers * uppers
		if !unitL && !unitU {
			score += 1 << 20
		}
		//
		if bestScore < 0 || score < bestScore {
			best, bestScore = j, score
		}
	}
	//
	return best, bestScore >= 0
}

// fourierMotzkin eliminates a given existential column which appears only in
// inequalities.  The result is exact over the integers: when neither the
// lower nor upper bounds all have unit coefficients, the dark shadow is
// returned along with the splinters covering the gap to the real shadow.
func (s *system) fourierMotzkin(col uint) []*system {
	var lowers, uppers, rest []affine.Aff
	//
	for _, e := range s.ineqs {
		switch c := e.Coeff(col); {
		case c > 0:
			lowers = append(lowers, e)
		case c < 0:
			uppers = append(uppers, e)
		default:
			rest = append(rest, e)
		}
	}
	//
	shadow := s.clone()
	shadow.exist[col] = false
	shadow.ineqs = slices.Clone(rest)
	// Unbounded in one direction
	if len(lowers) == 0 || len(uppers) == 0 {
		return []*system{shadow}
	}
	//
	var (
		bmax int64
		dark = shadow.clone()
	)
	//
	for _, l := range lowers {
		for _, u := range uppers {
			a, b := l.Coeff(col), -u.Coeff(col)
			pair := l.Scale(b).Add(u.Scale(a))
			shadow.ineqs = append(shadow.ineqs, pair)
			dark.ineqs = append(dark.ineqs, pair.AddConstant(-math.Mul(a-1, b-1)))
		}
	}
	//
	for _, u := range uppers {
		bmax = max(bmax, -u.Coeff(col))
	}
	//
	if allUnit(lowers, col) || allUnit(uppers, col) || shadow.implies(dark) {
		return []*system{shadow}
	}
	// Dark shadow plus splinters
	result := []*system{dark}
	//
	for _, l := range lowers {
		a := l.Coeff(col)
		imax := math.FloorDiv(a*bmax-a-bmax, bmax)
		//
		for i := int64(0); i <= imax; i++ {
			splinter := s.clone()
			splinter.eqs = append(splinter.eqs, l.AddConstant(-i))
			result = append(result, splinter)
		}
	}
	//
	return result
}

func allUnit(bounds []affine.Aff, col uint) bool {
	for _, e := range bounds {
		if math.Abs(e.Coeff(col)) != 1 {
			return false
		}
	}
	//
	return true
}

// implies checks whether every inequality of another system (over the same
// columns) holds at every integer point of this system.
func (s *system) implies(o *system) bool {
	for _, e := range o.ineqs {
		t := s.clone()
		t.ineqs = append(t.ineqs, e.Neg().AddConstant(-1))
		//
		if !t.isEmpty() {
			return false
		}
	}
	//
	return true
}

// constraints extracts the constraints of this system, which must have no
// existential columns remaining, remapping kept columns via a given mapping.
func (s *system) constraints(n uint, mapping func(uint) (uint, bool)) []Constraint {
	var cons []Constraint
	//
	for _, e := range s.eqs {
		cons = append(cons, NewEquality(e.Remap(n, mapping)))
	}
	//
	for _, e := range s.ineqs {
		cons = append(cons, NewInequality(e.Remap(n, mapping)))
	}
	//
	for _, c := range s.congs {
		cons = append(cons, Constraint{Congruence, c.expr.Remap(n, mapping), c.modulus})
	}
	//
	return cons
}
