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
	"fmt"
	"testing"
)

var names = []string{"i", "j", "k"}

func env(i uint) string {
	return names[i]
}

func Test_AffString_01(t *testing.T) {
	checkString(t, FromCoeffs(3, 2, -1, 0), "2i - j + 3")
	checkString(t, FromCoeffs(0, 0, 0, 0), "0")
	checkString(t, FromCoeffs(-4, -1, 0, 3), "-i + 3k - 4")
	checkString(t, Var(3, 1), "j")
}

func Test_AffArith_01(t *testing.T) {
	p := FromCoeffs(1, 2, 3, 0)
	q := FromCoeffs(-1, 1, 0, 5)
	//
	checkString(t, p.Add(q), "3i + 3j + 5k")
	checkString(t, p.Sub(q), "i + 3j - 5k + 2")
	checkString(t, p.Neg(), "-2i - 3j - 1")
	checkString(t, p.Scale(2), "4i + 6j + 2")
	checkString(t, p.Scale(0), "0")
	checkString(t, p.AddConstant(-1), "2i + 3j")
}

func Test_AffArith_02(t *testing.T) {
	p := FromCoeffs(6, 4, -2, 8)
	//
	if p.Gcd() != 2 {
		t.Errorf("unexpected gcd %d", p.Gcd())
	}
	//
	checkString(t, p.DivExact(2), "2i - j + 4k + 3")
	//
	defer func() {
		if recover() == nil {
			t.Errorf("expected inexact division to panic")
		}
	}()
	//
	p.DivExact(4)
}

func Test_AffSubstitute_01(t *testing.T) {
	// 2i + j + 1 with i := (j + k) / 3 gives 3 * (2(j+k)/3 + j + 1)
	p := FromCoeffs(1, 2, 1, 0)
	by := FromCoeffs(0, 0, 1, 1)
	//
	checkString(t, p.Substitute(0, by, 3), "5j + 2k + 3")
	// Substituting an absent column just scales
	checkString(t, by.Substitute(0, p, 2), "2j + 2k")
}

func Test_AffRemap_01(t *testing.T) {
	p := FromCoeffs(7, 1, 0, 2)
	// Swap i and k, dropping j
	q := p.Remap(3, func(i uint) (uint, bool) {
		switch i {
		case 0:
			return 2, true
		case 2:
			return 0, true
		default:
			return 0, false
		}
	})
	//
	checkString(t, q, "2i + k + 7")
	//
	defer func() {
		if recover() == nil {
			t.Errorf("expected remapping to panic")
		}
	}()
	//
	p.Remap(1, func(i uint) (uint, bool) { return 0, i == 1 })
}

func Test_AffEval_01(t *testing.T) {
	p := FromCoeffs(-3, 2, -1, 4)
	//
	for i := int64(-3); i <= 3; i++ {
		for j := int64(-3); j <= 3; j++ {
			for k := int64(-3); k <= 3; k++ {
				if p.Eval([]int64{i, j, k}) != 2*i-j+4*k-3 {
					t.Errorf("incorrect evaluation at (%d,%d,%d)", i, j, k)
				}
			}
		}
	}
}

func Test_AffCmp_01(t *testing.T) {
	ps := []Aff{FromCoeffs(0, 0, 0, 1), FromCoeffs(-1, 0, 1, 0), FromCoeffs(1, 0, 1, 0), FromCoeffs(0, 1, 0, 0)}
	//
	for i := range ps {
		for j := range ps {
			c := ps[i].Cmp(ps[j])
			if (i < j && c >= 0) || (i > j && c <= 0) || (i == j && (c != 0 || !ps[i].Equal(ps[j]))) {
				t.Errorf("incorrect comparison of %s and %s", ps[i].String(env), ps[j].String(env))
			}
		}
	}
	//
	if !FromCoeffs(0, 0, 0).IsConstant() || FromCoeffs(0, 0, 1).IsConstant() || !FromCoeffs(0, 0).IsZero() {
		t.Errorf("incorrect constant detection")
	}
}

func checkString(t *testing.T, p Aff, expected string) {
	t.Helper()
	//
	if actual := p.String(env); actual != expected {
		t.Error(fmt.Sprintf("incorrect expression (was %s, expected %s)", actual, expected))
	}
}
