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
package ast

// Node represents a node in a generated loop nest.  Nodes form a tree, where
// each node owns its children.
type Node interface {
	// Children returns the immediate children of this node.
	Children() []Node
}

// For is a loop whose iterator ranges from Lower to Upper (both inclusive) in
// steps of Stride.
type For struct {
	Iterator string
	Lower    Expr
	Upper    Expr
	Stride   int64
	Body     Node
}

// If executes its Then branch when a condition holds, and its (optional) Else
// branch otherwise.
type If struct {
	Cond Expr
	Then Node
	Else Node
}

// Block is a sequence of nodes executed in order.
type Block struct {
	Nodes []Node
}

// User is an instance of a statement, given by the statement name and the
// expressions for each of its domain dimensions.
type User struct {
	Name string
	Args []Expr
}

// Mark attaches a label (e.g. the option under which a loop was generated) to
// a child node.
type Mark struct {
	Label string
	Child Node
}

// NewBlock constructs a node executing a sequence of nodes.  Nested blocks are
// flattened, and a block of one node is just that node.
func NewBlock(nodes ...Node) Node {
	var flat []Node
	//
	for _, n := range nodes {
		if b, ok := n.(*Block); ok {
			flat = append(flat, b.Nodes...)
		} else if n != nil {
			flat = append(flat, n)
		}
	}
	//
	if len(flat) == 1 {
		return flat[0]
	}
	//
	return &Block{flat}
}

// Children implementation for Node interface.
func (n *For) Children() []Node {
	return []Node{n.Body}
}

// Children implementation for Node interface.
func (n *If) Children() []Node {
	if n.Else == nil {
		return []Node{n.Then}
	}
	//
	return []Node{n.Then, n.Else}
}

// Children implementation for Node interface.
func (n *Block) Children() []Node {
	return n.Nodes
}

// Children implementation for Node interface.
func (n *User) Children() []Node {
	return nil
}

// Children implementation for Node interface.
func (n *Mark) Children() []Node {
	return []Node{n.Child}
}

// Expr returns the statement instance as a call expression, e.g. S(c0, c1).
func (n *User) Expr() Expr {
	return NewOp(Call, append([]Expr{NewId(n.Name)}, n.Args...)...)
}

// Count returns the number of nodes of a given type within a tree.
func Count[T Node](root Node) uint {
	var n uint
	//
	if _, ok := root.(T); ok {
		n++
	}
	//
	for _, child := range root.Children() {
		n += Count[T](child)
	}
	//
	return n
}
