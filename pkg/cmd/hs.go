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
package cmd

import (
	"github.com/j2kun/isl/pkg/options"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/spf13/cobra"
)

var hsCmd = &cobra.Command{
	Use:   "hs [flags]",
	Short: "generate and dump the tree for the Halevi-Shoup schedule.",
	Long: `Build the schedule of a Halevi-Shoup diagonal packing of a 4x8
	matrix into four ciphertexts of 32 slots, then generate and dump its tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureColour()
		//
		var (
			schedule = haleviShoup()
			context  = relation.Universe(relation.NewParamSpace())
		)
		//
		root, err := generate(cmd, context, schedule, options.Empty())
		if err != nil {
			fail(err)
		}
		//
		if err := printTree("Manual HS AST Debug Information", root); err != nil {
			fail(err)
		}
	},
}

// haleviShoup constructs the schedule
//
//	S[row,col,ct,slot] -> [ct,slot] : 0 <= row < 4 and 0 <= col < 8 and
//	  0 <= ct < 4 and 0 <= slot < 32 and (slot - row) % 4 = 0 and
//	  (ct + slot - col) % 8 = 0
//
// one constraint at a time.
func haleviShoup() relation.UnionMap {
	var (
		space = relation.NewMapSpace(nil, relation.NewTuple("S", "row", "col", "ct", "slot"),
			relation.NewTuple("", "ct", "slot"))
		bounds = []int64{4, 8, 4, 32}
		m      = relation.FromBasic(relation.UniverseBasic(space))
	)
	//
	for i, n := range bounds {
		v := space.Var(relation.In, uint(i))
		m = m.AddConstraint(relation.NewInequality(v))
		m = m.AddConstraint(relation.NewInequality(v.Neg().AddConstant(n - 1)))
	}
	// Output dimensions copy ct and slot
	for i := range uint(2) {
		m = m.AddConstraint(relation.NewEquality(space.Var(relation.Out, i).Sub(space.Var(relation.In, i+2))))
	}
	//
	var (
		row  = space.Var(relation.In, 0)
		col  = space.Var(relation.In, 1)
		ct   = space.Var(relation.In, 2)
		slot = space.Var(relation.In, 3)
	)
	//
	m = m.AddConstraint(relation.NewCongruence(slot.Sub(row), 4, 0))
	m = m.AddConstraint(relation.NewCongruence(ct.Add(slot).Sub(col), 8, 0))
	//
	return relation.FromMap(m)
}

func init() {
	rootCmd.AddCommand(hsCmd)
}
