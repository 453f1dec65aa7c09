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

import (
	"fmt"
	"os"
	"slices"
)

// File is a source file held in memory, together with the offset at which
// each of its lines starts.
type File struct {
	filename string
	contents []rune
	// Offset of the first character of each line, in increasing order.
	lines []int
}

// NewSourceFile constructs a source file from its raw contents.
func NewSourceFile(filename string, bytes []byte) *File {
	var (
		contents = []rune(string(bytes))
		lines    = []int{0}
	)
	//
	for i, r := range contents {
		if r == '\n' {
			lines = append(lines, i+1)
		}
	}
	//
	return &File{filename, contents, lines}
}

// ReadFile reads a source file from disk.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// Filename returns the name of this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// LineAt returns the line enclosing a given offset.  Offsets past the end of
// the file belong to its last line.
func (s *File) LineAt(offset int) Line {
	n, found := slices.BinarySearch(s.lines, offset)
	if !found {
		n = max(0, n-1)
	}
	//
	var (
		start = s.lines[n]
		end   = len(s.contents)
	)
	//
	if n+1 < len(s.lines) {
		end = s.lines[n+1] - 1
	}
	//
	return Line{string(s.contents[start:end]), start, end - start, n + 1}
}

// SyntaxError constructs a syntax error over a given span of this file.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// Line is a single line of a source file, without its terminating newline.
type Line struct {
	text   string
	start  int
	length int
	number int
}

func (l Line) String() string {
	return l.text
}

// Number returns the line number, counting from 1.
func (l Line) Number() int {
	return l.number
}

// Start returns the offset of the first character of this line.
func (l Line) Start() int {
	return l.start
}

// Length returns the number of characters in this line.
func (l Line) Length() int {
	return l.length
}

// SyntaxError is an error reported against a span of a source file.
type SyntaxError struct {
	file *File
	span Span
	msg  string
}

// File returns the file in which this error arose.
func (p *SyntaxError) File() *File {
	return p.file
}

// Span returns the span of text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Line returns the line on which this error starts.
func (p *SyntaxError) Line() Line {
	return p.file.LineAt(p.span.start)
}

func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", p.file.filename, p.Line().Number(), p.msg)
}
