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

import "fmt"

// ErrorKind classifies the failures which can be reported by the relation
// algebra and the AST synthesizer.
type ErrorKind uint8

const (
	// SpaceMismatch indicates operands were drawn from incompatible spaces.
	SpaceMismatch ErrorKind = iota + 1
	// InvalidOption indicates an unknown option tag was requested.
	InvalidOption
	// NonAffineSchedule indicates a schedule could not be described by exact
	// affine (and modular) expressions.
	NonAffineSchedule
	// EmptyInput indicates a required operand was missing.
	EmptyInput
)

func (k ErrorKind) String() string {
	switch k {
	case SpaceMismatch:
		return "space mismatch"
	case InvalidOption:
		return "invalid option"
	case NonAffineSchedule:
		return "non-affine schedule"
	case EmptyInput:
		return "empty input"
	default:
		return fmt.Sprintf("unknown error (%d)", k)
	}
}

// Error is a structured error carrying the kind of failure along with a
// message describing the failure.  Errors of the same kind match under
// errors.Is, hence callers can test against the sentinel values below.
type Error struct {
	Kind ErrorKind
	Msg  string
}

// Sentinels for use with errors.Is.
var (
	ErrSpaceMismatch     = &Error{Kind: SpaceMismatch}
	ErrInvalidOption     = &Error{Kind: InvalidOption}
	ErrNonAffineSchedule = &Error{Kind: NonAffineSchedule}
	ErrEmptyInput        = &Error{Kind: EmptyInput}
)

// NewError constructs a new error of a given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{kind, fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	//
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Msg)
}

// Is implements error matching by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
