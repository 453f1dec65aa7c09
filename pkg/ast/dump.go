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

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Dump renders a tree as YAML, following the layout of isl's AST dumps:
// loops have an iterator, an init, a cond and an inc; guards have a guard and
// then/else branches; blocks are sequences; user statements are calls.
func Dump(root Node) ([]byte, error) {
	var buf bytes.Buffer
	//
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	//
	if err := enc.Encode(ToYAML(root)); err != nil {
		return nil, err
	} else if err := enc.Close(); err != nil {
		return nil, err
	}
	//
	return buf.Bytes(), nil
}

// ToYAML converts a tree into a YAML document node.
func ToYAML(root Node) *yaml.Node {
	switch n := root.(type) {
	case *For:
		iter := NewId(n.Iterator)
		//
		return mapping(
			"iterator", exprYAML(iter),
			"init", exprYAML(n.Lower),
			"cond", exprYAML(NewOp(Le, iter, n.Upper)),
			"inc", exprYAML(NewInt(n.Stride)),
			"body", ToYAML(n.Body))
	case *If:
		if n.Else == nil {
			return mapping("guard", exprYAML(n.Cond), "then", ToYAML(n.Then))
		}
		//
		return mapping("guard", exprYAML(n.Cond), "then", ToYAML(n.Then), "else", ToYAML(n.Else))
	case *Block:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		//
		for _, child := range n.Nodes {
			seq.Content = append(seq.Content, ToYAML(child))
		}
		//
		return seq
	case *Mark:
		return mapping("mark", scalar("!!str", n.Label), "node", ToYAML(n.Child))
	case *User:
		return mapping("user", exprYAML(n.Expr()))
	default:
		panic(fmt.Sprintf("unknown node %T", root))
	}
}

func exprYAML(e Expr) *yaml.Node {
	switch e := e.(type) {
	case *Int:
		return mapping("val", scalar("!!int", strconv.FormatInt(e.Value, 10)))
	case *Id:
		return mapping("id", scalar("!!str", e.Name))
	case *Op:
		args := &yaml.Node{Kind: yaml.SequenceNode}
		//
		for _, arg := range e.Args {
			args.Content = append(args.Content, exprYAML(arg))
		}
		//
		return mapping("op", scalar("!!str", e.Kind.String()), "args", args)
	default:
		panic(fmt.Sprintf("unknown expression %T", e))
	}
}

// mapping constructs a YAML mapping from alternating keys and values,
// preserving their order.
func mapping(kvs ...any) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	//
	for i := 0; i < len(kvs); i += 2 {
		m.Content = append(m.Content, scalar("!!str", kvs[i].(string)), kvs[i+1].(*yaml.Node))
	}
	//
	return m
}

func scalar(tag string, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
