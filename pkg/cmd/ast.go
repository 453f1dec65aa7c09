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
	"fmt"
	"os"

	"github.com/j2kun/isl/pkg/reader"
	"github.com/j2kun/isl/pkg/util/source"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var astCmd = &cobra.Command{
	Use:   "ast [flags] input_file",
	Short: "generate and dump the tree for a schedule.",
	Long: `Read a schedule, a context and an options map from a file, then
	generate the loop nest executing the schedule and dump its tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureColour()
		//
		file, err := source.ReadFile(args[0])
		if err != nil {
			fail(errors.Wrapf(err, "reading %s", args[0]))
		}
		//
		input, errs := reader.Read(file)
		if len(errs) > 0 {
			for i := range errs {
				printSyntaxError(&errs[i])
			}
			//
			os.Exit(2)
		}
		//
		log.Debugf("schedule: %s", input.Schedule.String())
		log.Debugf("context: %s", input.Context.String())
		//
		root, err := generate(cmd, input.Context, input.Schedule, input.Options)
		if err != nil {
			fail(errors.Wrapf(err, "%s", args[0]))
		}
		//
		if err := printTree("AST Debug Information", root); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(astCmd)
}
