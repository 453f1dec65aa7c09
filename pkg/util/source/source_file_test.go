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
package source

import "testing"

func Test_LineAt_01(t *testing.T) {
	file := NewSourceFile("test", []byte("(params N)\n\n(schedule x)\n"))
	// offset, line number, line text
	checkLine(t, file, 0, 1, "(params N)")
	checkLine(t, file, 10, 1, "(params N)")
	checkLine(t, file, 11, 2, "")
	checkLine(t, file, 15, 3, "(schedule x)")
	checkLine(t, file, 25, 4, "")
	checkLine(t, file, 100, 4, "")
}

func Test_SyntaxError_01(t *testing.T) {
	file := NewSourceFile("input.lisp", []byte("(params N)\n(schedule (map S [i] [i] (< i M)))"))
	err := file.SyntaxError(NewSpan(41, 42), "unknown variable M")
	//
	if msg := err.Error(); msg != "input.lisp:2: unknown variable M" {
		t.Errorf("unexpected error %q", msg)
	}
	//
	if line := err.Line(); line.Start() != 11 || line.Length() != 34 {
		t.Errorf("unexpected line %d+%d", line.Start(), line.Length())
	}
}

func checkLine(t *testing.T, file *File, offset int, number int, text string) {
	t.Helper()
	//
	line := file.LineAt(offset)
	//
	if line.Number() != number || line.String() != text {
		t.Errorf("offset %d: expected line %d %q, got line %d %q", offset, number, text, line.Number(), line.String())
	}
}
