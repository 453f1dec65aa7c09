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
package reader

import (
	"fmt"
	"slices"

	"github.com/j2kun/isl/pkg/affine"
	"github.com/j2kun/isl/pkg/options"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/j2kun/isl/pkg/util/math"
	"github.com/j2kun/isl/pkg/util/source"
	"github.com/j2kun/isl/pkg/util/source/sexp"
)

// Input is everything needed to generate code for a schedule.
type Input struct {
	// Params lists the declared parameters, in order.
	Params []string
	// Schedule maps statement instances to schedule points.
	Schedule relation.UnionMap
	// Context constrains the parameters.
	Context relation.Map
	// Options map schedule points to the options applying at each level.
	Options options.Map
}

// Read translates a source file into an input.  The file consists of the
// following declarations, in any order:
//
//	(params N M)                              ; optional
//	(schedule (map S [i] [t] (= t i) ...))    ; one or more maps
//	(context (set [] (>= N 1)))               ; optional
//	(options (map [t] separate [x] ...))      ; optional
//
// Tuples are written as an optional name followed by an array of dimension
// names.  Constraints are (= a b), (<= a b), (< a b), (>= a b), (> a b) and
// (mod e m r), the last meaning e ≡ r modulo m.  Expressions are integers,
// names, and (+ ...), (- ...) or (* ...) with at most one non-constant factor.
func Read(file *source.File) (*Input, []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(file)
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	var (
		r     = &reader{file: file, srcmap: srcmap}
		decls = make(map[string]*sexp.List)
		errs  []source.SyntaxError
	)
	//
	for _, t := range terms {
		l := t.AsList()
		//
		switch {
		case l == nil || !slices.Contains([]string{"params", "schedule", "context", "options"}, l.Head()):
			errs = append(errs, *r.error(t, "unknown declaration"))
		case decls[l.Head()] != nil:
			errs = append(errs, *r.error(t, "duplicate declaration"))
		default:
			decls[l.Head()] = l
		}
	}
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if l := decls["params"]; l != nil {
		if errs = r.readParams(l); len(errs) > 0 {
			return nil, errs
		}
	}
	//
	input := &Input{Params: r.params}
	//
	if l := decls["schedule"]; l == nil {
		return nil, []source.SyntaxError{*file.SyntaxError(source.NewSpan(0, 0), "missing schedule")}
	} else if input.Schedule, errs = r.readUnion(l, false); len(errs) > 0 {
		return nil, errs
	}
	//
	if input.Context, errs = r.readContext(decls["context"]); len(errs) > 0 {
		return nil, errs
	}
	//
	if input.Options, errs = r.readOptions(decls["options"]); len(errs) > 0 {
		return nil, errs
	}
	//
	return input, nil
}

type reader struct {
	file   *source.File
	srcmap *source.Map[sexp.SExp]
	params []string
}

func (r *reader) readParams(l *sexp.List) []source.SyntaxError {
	for _, e := range l.Elements[1:] {
		name, err := r.name(e)
		//
		if err != nil {
			return []source.SyntaxError{*err}
		} else if slices.Contains(r.params, name) {
			return r.errors(e, "duplicate parameter")
		}
		//
		r.params = append(r.params, name)
	}
	//
	return nil
}

func (r *reader) readContext(l *sexp.List) (relation.Map, []source.SyntaxError) {
	var space = relation.NewParamSpace(r.params...)
	//
	if l == nil {
		return relation.Universe(space), nil
	} else if l.Len() != 2 {
		return relation.Map{}, r.errors(l, "expected one context")
	}
	//
	m, errs := r.readRelation(l.Get(1))
	//
	if len(errs) > 0 {
		return m, errs
	} else if !m.Space().Compatible(space) {
		return m, r.errors(l.Get(1), "context must be a parameter set")
	}
	//
	return m, nil
}

func (r *reader) readOptions(l *sexp.List) (options.Map, []source.SyntaxError) {
	if l == nil {
		return options.Empty(r.params...), nil
	}
	//
	u, errs := r.readUnion(l, true)
	if len(errs) > 0 {
		return options.Map{}, errs
	}
	//
	m, err := options.NewMap(u)
	if err != nil {
		return m, r.errors(l, err.Error())
	}
	//
	return m, nil
}

// readUnion reads a list of maps into a union map.  Unless empty is permitted,
// at least one map must be given.
func (r *reader) readUnion(l *sexp.List, empty bool) (relation.UnionMap, []source.SyntaxError) {
	var (
		u    = relation.NewUnionMap(r.params...)
		errs []source.SyntaxError
	)
	//
	if l.Len() == 1 && !empty {
		return u, r.errors(l, "expected at least one map")
	}
	//
	for _, e := range l.Elements[1:] {
		m, es := r.readRelation(e)
		//
		if len(es) == 0 && m.IsSet() {
			es = r.errors(e, "expected map")
		}
		//
		if errs = append(errs, es...); len(es) == 0 {
			u = u.Add(m)
		}
	}
	//
	return u, errs
}

// readRelation reads a relation of the form (map in out constraints...) or
// (set tuple constraints...).
func (r *reader) readRelation(e sexp.SExp) (relation.Map, []source.SyntaxError) {
	var (
		l     = e.AsList()
		space relation.Space
		index = 1
		in    relation.Tuple
		out   relation.Tuple
		err   *source.SyntaxError
	)
	//
	if l == nil || (l.Head() != "map" && l.Head() != "set") {
		return relation.Map{}, r.errors(e, "expected map or set")
	}
	//
	if l.Head() == "map" {
		if in, index, err = r.tuple(l, index); err == nil {
			out, index, err = r.tuple(l, index)
		}
		//
		space = relation.NewMapSpace(r.params, in, out)
	} else {
		out, index, err = r.tuple(l, index)
		space = relation.NewSetSpace(r.params, out)
	}
	//
	if err != nil {
		return relation.Map{}, []source.SyntaxError{*err}
	}
	//
	var (
		tr   = r.translator(space)
		cons []relation.Constraint
		errs []source.SyntaxError
	)
	//
	if tr == nil {
		return relation.Map{}, r.errors(l, "duplicate dimension names")
	}
	//
	for _, c := range l.Elements[index:] {
		con, es := r.constraint(tr, c)
		cons = append(cons, con...)
		errs = append(errs, es...)
	}
	//
	return relation.FromConstraints(space, cons...), errs
}

// tuple reads a tuple starting at a given position within a list, returning
// the position following it.
func (r *reader) tuple(l *sexp.List, index int) (relation.Tuple, int, *source.SyntaxError) {
	var tuple relation.Tuple
	//
	if index < l.Len() {
		if s := l.Get(index).AsSymbol(); s != nil {
			tuple.Name = s.Value
			index++
		}
	}
	//
	if index >= l.Len() || l.Get(index).AsArray() == nil {
		return tuple, index, r.error(l, "expected tuple")
	}
	//
	for _, e := range l.Get(index).AsArray().Elements {
		name, err := r.name(e)
		if err != nil {
			return tuple, index, err
		}
		//
		tuple.Dims = append(tuple.Dims, name)
	}
	//
	return tuple, index + 1, nil
}

func (r *reader) constraint(tr *sexp.Translator[*affine.Aff], e sexp.SExp) ([]relation.Constraint,
	[]source.SyntaxError) {
	var (
		l    = e.AsList()
		args []affine.Aff
	)
	//
	if l == nil || l.Len() < 2 {
		return nil, r.errors(e, "expected constraint")
	}
	//
	if l.Head() == "mod" {
		return r.congruence(tr, l)
	}
	//
	for _, arg := range l.Elements[1:] {
		a, errs := tr.Translate(arg)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		args = append(args, *a)
	}
	//
	var build func(affine.Aff, affine.Aff) relation.Constraint
	//
	switch l.Head() {
	case "=":
		build = relation.Eq
	case "<=":
		build = relation.Le
	case "<":
		build = relation.Lt
	case ">=":
		build = relation.Ge
	case ">":
		build = relation.Gt
	default:
		return nil, r.errors(l, "unknown constraint")
	}
	// Comparisons may be chained, as in (<= 0 i N)
	var cons []relation.Constraint
	//
	for i := 1; i < len(args); i++ {
		cons = append(cons, build(args[i-1], args[i]))
	}
	//
	if len(cons) == 0 {
		return nil, r.errors(l, "expected at least two operands")
	}
	//
	return cons, nil
}

// congruence reads a constraint (mod e m r).
func (r *reader) congruence(tr *sexp.Translator[*affine.Aff], l *sexp.List) ([]relation.Constraint,
	[]source.SyntaxError) {
	if l.Len() != 4 {
		return nil, r.errors(l, "expected (mod expr modulus residue)")
	}
	//
	e, errs := tr.Translate(l.Get(1))
	if len(errs) > 0 {
		return nil, errs
	}
	//
	m, ok1 := integer(l.Get(2))
	v, ok2 := integer(l.Get(3))
	//
	if !ok1 || !ok2 || m <= 0 {
		return nil, r.errors(l, "invalid modulus or residue")
	}
	//
	return []relation.Constraint{relation.NewCongruence(*e, m, v)}, nil
}

// translator constructs a translator for the affine expressions over a given
// space, or nil if the names of the space clash.
func (r *reader) translator(space relation.Space) *sexp.Translator[*affine.Aff] {
	var (
		tr    = sexp.NewTranslator[*affine.Aff](r.file, r.srcmap)
		n     = space.Columns()
		names = make(map[string]uint)
	)
	//
	for i := range n {
		name := space.ColumnName(i)
		//
		if _, ok := names[name]; ok {
			return nil
		}
		//
		names[name] = i
	}
	//
	tr.AddSymbolRule(func(s string) (*affine.Aff, bool, error) {
		if v, ok := integer(sexp.NewSymbol(s)); ok {
			c := affine.Const(n, v)
			return &c, true, nil
		} else if i, ok := names[s]; ok {
			v := affine.Var(n, i)
			return &v, true, nil
		}
		//
		return nil, true, fmt.Errorf("unknown variable %s", s)
	})
	tr.AddRecursiveListRule("+", func(_ string, args []*affine.Aff) (*affine.Aff, error) {
		sum := affine.NewAff(n)
		for _, a := range args {
			sum = sum.Add(*a)
		}
		//
		return &sum, nil
	})
	tr.AddRecursiveListRule("-", func(_ string, args []*affine.Aff) (*affine.Aff, error) {
		switch len(args) {
		case 0:
			return nil, fmt.Errorf("missing operand")
		case 1:
			neg := args[0].Neg()
			return &neg, nil
		}
		//
		diff := *args[0]
		for _, a := range args[1:] {
			diff = diff.Sub(*a)
		}
		//
		return &diff, nil
	})
	tr.AddRecursiveListRule("*", func(_ string, args []*affine.Aff) (*affine.Aff, error) {
		var (
			k    = int64(1)
			term *affine.Aff
		)
		//
		for _, a := range args {
			if a.IsConstant() {
				k = math.Mul(k, a.Constant())
			} else if term == nil {
				term = a
			} else {
				return nil, fmt.Errorf("non-affine product")
			}
		}
		//
		if term == nil {
			c := affine.Const(n, k)
			return &c, nil
		}
		//
		prod := term.Scale(k)
		//
		return &prod, nil
	})
	//
	return tr
}

func (r *reader) name(e sexp.SExp) (string, *source.SyntaxError) {
	s := e.AsSymbol()
	//
	if s == nil {
		return "", r.error(e, "expected name")
	} else if _, ok := s.Int(); ok {
		return "", r.error(e, "expected name")
	}
	//
	return s.Value, nil
}

func (r *reader) error(e sexp.SExp, msg string) *source.SyntaxError {
	return r.file.SyntaxError(r.srcmap.Get(e), msg)
}

func (r *reader) errors(e sexp.SExp, msg string) []source.SyntaxError {
	return []source.SyntaxError{*r.error(e, msg)}
}

func integer(e sexp.SExp) (int64, bool) {
	if s := e.AsSymbol(); s != nil {
		return s.Int()
	}
	//
	return 0, false
}
