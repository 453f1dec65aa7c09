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
	"fmt"

	"github.com/j2kun/isl/pkg/util/source"
)

// SymbolRule is responsible for converting a terminating expression (i.e. a
// symbol) into an expression type T.  For example, a symbol might represent an
// integer constant or a variable.  A rule which does not apply to a given
// symbol returns false.
type SymbolRule[T comparable] func(string) (T, bool, error)

// ListRule is responsible for converting a list with a given head into an
// expression type T.
type ListRule[T comparable] func(*List) (T, []source.SyntaxError)

// RecursiveRule is a ListRule whose arguments have already been translated,
// leaving only the construction of the final term.
type RecursiveRule[T comparable] func(string, []T) (T, error)

// Translator is a generic mechanism for translating S-Expressions into a
// structured form, whilst maintaining a source map from the translated terms
// back to the original text.
type Translator[T comparable] struct {
	srcfile *source.File
	// Rules for parsing lists
	lists map[string]ListRule[T]
	// Rules for parsing symbols
	symbols []SymbolRule[T]
	// Maps S-Expressions to their spans in the original source file.  This is
	// used to build the new source map.
	oldSrcmap *source.Map[SExp]
	// Maps translated expressions to their spans in the original source file.
	newSrcmap *source.Map[T]
}

// NewTranslator constructs a new Translator instance.
func NewTranslator[T comparable](srcfile *source.File, srcmap *source.Map[SExp]) *Translator[T] {
	return &Translator[T]{
		srcfile:   srcfile,
		lists:     make(map[string]ListRule[T]),
		oldSrcmap: srcmap,
		newSrcmap: source.NewSourceMap[T](srcmap.Source()),
	}
}

// SourceMap returns the source map from translated terms to the original text.
func (p *Translator[T]) SourceMap() *source.Map[T] {
	return p.newSrcmap
}

// Translate a given S-Expression into an instance of T.
func (p *Translator[T]) Translate(sexp SExp) (T, []source.SyntaxError) {
	var empty T
	//
	switch e := sexp.(type) {
	case *List:
		return p.translateList(e)
	case *Symbol:
		for _, rule := range p.symbols {
			node, ok, err := rule(e.Value)
			//
			if ok && err != nil {
				return empty, p.SyntaxErrors(sexp, err.Error())
			} else if ok {
				p.newSrcmap.Put(node, p.oldSrcmap.Get(sexp))
				return node, nil
			}
		}
		//
		return empty, p.SyntaxErrors(sexp, fmt.Sprintf("unknown symbol %s", e.Value))
	}
	//
	return empty, p.SyntaxErrors(sexp, "unexpected array")
}

// AddRecursiveListRule adds a list translator whose arguments are translated
// before the rule is applied.
func (p *Translator[T]) AddRecursiveListRule(name string, rule RecursiveRule[T]) {
	p.lists[name] = func(l *List) (T, []source.SyntaxError) {
		var (
			empty  T
			errors []source.SyntaxError
			args   = make([]T, len(l.Elements)-1)
		)
		//
		for i, s := range l.Elements[1:] {
			var errs []source.SyntaxError
			args[i], errs = p.Translate(s)
			errors = append(errors, errs...)
		}
		//
		if len(errors) > 0 {
			return empty, errors
		}
		//
		term, err := rule(l.Head(), args)
		if err != nil {
			return empty, p.SyntaxErrors(l, err.Error())
		}
		//
		return term, nil
	}
}

// AddSymbolRule adds a new symbol translator to this translator.  Rules are
// tried in the order they are added.
func (p *Translator[T]) AddSymbolRule(rule SymbolRule[T]) {
	p.symbols = append(p.symbols, rule)
}

// SyntaxError constructs a syntax error for a given S-Expression.
func (p *Translator[T]) SyntaxError(s SExp, msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(p.oldSrcmap.Get(s), msg)
}

// SyntaxErrors is a convenience wrapper around SyntaxError.
func (p *Translator[T]) SyntaxErrors(s SExp, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.SyntaxError(s, msg)}
}

func (p *Translator[T]) translateList(l *List) (T, []source.SyntaxError) {
	var empty T
	//
	rule, ok := p.lists[l.Head()]
	if !ok {
		return empty, p.SyntaxErrors(l, fmt.Sprintf("unknown list %s", l.String()))
	}
	//
	node, errors := rule(l)
	//
	if len(errors) == 0 {
		p.newSrcmap.Put(node, p.oldSrcmap.Get(l))
	}
	//
	return node, errors
}
