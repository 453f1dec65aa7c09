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
package options

import (
	"slices"

	"github.com/j2kun/isl/pkg/relation"
)

// Tag identifies one of the (closed) set of code generation options which can
// be attached to schedule points.
type Tag uint8

const (
	// Atomic keeps all statement instances at a schedule point in a single
	// loop body, suppressing separation.
	Atomic Tag = iota
	// Separate splits loops so that each covers a single affine piece.
	Separate
)

// Tags lists every recognised tag.
var Tags = []Tag{Atomic, Separate}

// ParseTag returns the tag with a given name.
func ParseTag(name string) (Tag, error) {
	for _, t := range Tags {
		if t.String() == name {
			return t, nil
		}
	}
	//
	return 0, relation.NewError(relation.InvalidOption, "unknown option \"%s\"", name)
}

func (t Tag) String() string {
	switch t {
	case Atomic:
		return "atomic"
	case Separate:
		return "separate"
	default:
		panic("unknown tag")
	}
}

// Tuple returns the one-dimensional tuple of this tag's universe, e.g.
// atomic[x] where x identifies a schedule level.
func (t Tag) Tuple() relation.Tuple {
	return relation.NewTuple(t.String(), "x")
}

// Space returns the set space of this tag's universe.
func (t Tag) Space(params []string) relation.Space {
	return relation.NewSetSpace(params, t.Tuple())
}

// Config determines which tags are applied globally to a schedule and in what
// order.  Order lists tags from lowest to highest priority: where two
// requested tags claim the same schedule point, the later one wins.  An empty
// order means DefaultOrder.
type Config struct {
	Atomic   bool
	Separate bool
	Order    []Tag
}

// DefaultOrder registers separate before atomic, such that atomic wins when
// both are requested.
func DefaultOrder() []Tag {
	return []Tag{Separate, Atomic}
}

// Requested returns the requested tags of this configuration, in priority
// order.
func (c Config) Requested() []Tag {
	var (
		order = c.Order
		tags  []Tag
	)
	//
	if len(order) == 0 {
		order = DefaultOrder()
	}
	//
	for _, t := range order {
		if c.IsRequested(t) && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	//
	return tags
}

// IsRequested determines whether a given tag is requested by this
// configuration.
func (c Config) IsRequested(t Tag) bool {
	switch t {
	case Atomic:
		return c.Atomic
	case Separate:
		return c.Separate
	default:
		return false
	}
}

// Validate checks that the order of this configuration mentions every
// requested tag exactly once.
func (c Config) Validate() error {
	if len(c.Order) == 0 {
		return nil
	}
	//
	for _, o := range c.Order {
		if !slices.Contains(Tags, o) {
			return relation.NewError(relation.InvalidOption, "unknown option %d", o)
		}
	}
	//
	for _, t := range Tags {
		n := 0
		//
		for _, o := range c.Order {
			if o == t {
				n++
			}
		}
		//
		if n > 1 {
			return relation.NewError(relation.InvalidOption, "option %s registered more than once", t.String())
		} else if n == 0 && c.IsRequested(t) {
			return relation.NewError(relation.InvalidOption, "option %s requested but not ordered", t.String())
		}
	}
	//
	return nil
}
