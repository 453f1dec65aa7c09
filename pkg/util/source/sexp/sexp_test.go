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
package sexp

import (
	"testing"

	"github.com/j2kun/isl/pkg/util/source"
)

func Test_Parse_01(t *testing.T) {
	checkParse(t, "", "")
	checkParse(t, "x", "x")
	checkParse(t, "(+ 1 x)", "(+ 1 x)")
	checkParse(t, "(map S[i j] [t] (<= 0 i))", "(map S [i j] [t] (<= 0 i))")
	checkParse(t, "; comment\n(a) ; more\n(b)", "(a) (b)")
	checkParse(t, "(a\n  ;; inner\n  b)", "(a b)")
}

func Test_Parse_02(t *testing.T) {
	checkParseError(t, "(", 1)
	checkParseError(t, "(a]", 1)
	checkParseError(t, "\n\n)", 3)
	checkParseError(t, "(a\n[b", 2)
}

func Test_Translate_01(t *testing.T) {
	var (
		file          = source.NewSourceFile("test", []byte("(+ 1 (+ 2 3))\n(+ 1 y)"))
		terms, sm, pe = ParseAll(file)
		tr            = NewTranslator[*int](file, sm)
	)
	//
	if pe != nil {
		t.Fatal(pe)
	}
	//
	tr.AddSymbolRule(func(s string) (*int, bool, error) {
		if s == "1" || s == "2" || s == "3" {
			v := int(s[0] - '0')
			return &v, true, nil
		}
		//
		return nil, false, nil
	})
	tr.AddRecursiveListRule("+", func(_ string, args []*int) (*int, error) {
		var sum int
		for _, a := range args {
			sum += *a
		}
		//
		return &sum, nil
	})
	//
	if v, errs := tr.Translate(terms[0]); len(errs) != 0 || *v != 6 {
		t.Errorf("unexpected translation %v %v", v, errs)
	} else if span := tr.SourceMap().Get(v); span.Start() != 0 || span.End() != 13 {
		t.Errorf("unexpected span %d..%d", span.Start(), span.End())
	}
	// Unknown symbol on the second line
	if _, errs := tr.Translate(terms[1]); len(errs) != 1 {
		t.Errorf("expected one error, got %v", errs)
	} else if line := errs[0].Line(); line.Number() != 2 {
		t.Errorf("expected error on line 2, got %d", line.Number())
	}
}

func checkParse(t *testing.T, input string, expected string) {
	t.Helper()
	//
	terms, _, err := ParseAll(source.NewSourceFile("test", []byte(input)))
	if err != nil {
		t.Fatalf("parsing %q: %s", input, err.Message())
	}
	//
	if actual := NewList(terms).String(); actual != "("+expected+")" {
		t.Errorf("parsing %q: expected %s, got %s", input, expected, actual)
	}
}

func checkParseError(t *testing.T, input string, line int) {
	t.Helper()
	//
	_, _, err := ParseAll(source.NewSourceFile("test", []byte(input)))
	//
	if err == nil {
		t.Errorf("parsing %q: expected error", input)
	} else if l := err.Line(); l.Number() != line {
		t.Errorf("parsing %q: expected error on line %d, got %d", input, line, l.Number())
	}
}
