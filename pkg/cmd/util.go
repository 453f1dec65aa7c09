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
	"strings"

	"github.com/fatih/color"
	"github.com/j2kun/isl/pkg/ast"
	"github.com/j2kun/isl/pkg/codegen"
	"github.com/j2kun/isl/pkg/options"
	"github.com/j2kun/isl/pkg/relation"
	"github.com/j2kun/isl/pkg/util"
	"github.com/j2kun/isl/pkg/util/source"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetStringArray gets an expected string array, or panic if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// getOptionsConfig determines the global options requested on the command
// line.
func getOptionsConfig(cmd *cobra.Command) (options.Config, error) {
	config := options.Config{
		Atomic:   GetFlag(cmd, "atomic"),
		Separate: GetFlag(cmd, "separate"),
	}
	//
	for _, name := range GetStringArray(cmd, "order") {
		tag, err := options.ParseTag(name)
		if err != nil {
			return config, errors.Wrap(err, "--order")
		}
		//
		config.Order = append(config.Order, tag)
	}
	//
	return config, nil
}

// generate applies the command-line options to a given options map and
// generates the tree for a schedule.
func generate(cmd *cobra.Command, context relation.Map, schedule relation.UnionMap,
	base options.Map) (ast.Node, error) {
	config, err := getOptionsConfig(cmd)
	if err != nil {
		return nil, err
	}
	//
	opts, err := options.Merge(base, config, schedule)
	if err != nil {
		return nil, errors.Wrap(err, "merging options")
	}
	//
	log.Debugf("options: %s", opts.String())
	//
	stats := util.NewPerfStats()
	root, err := codegen.Generate(context, schedule, opts, codegen.Config{Marks: GetFlag(cmd, "marks")})
	//
	stats.Log("code generation")
	//
	return root, errors.Wrap(err, "generating code")
}

// printTree dumps a tree between a pair of banners.
func printTree(title string, root ast.Node) error {
	bytes, err := ast.Dump(root)
	if err != nil {
		return errors.Wrap(err, "dumping tree")
	}
	//
	banner := color.New(color.FgCyan, color.Bold)
	banner.Printf("=== %s ===\n", title)
	fmt.Println("AST structure dump:")
	fmt.Print(string(bytes))
	banner.Printf("=== End %s ===\n", title)
	//
	return nil
}

// configureColour enables coloured output only when writing to a terminal.
func configureColour() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
}

// printSyntaxError prints a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	var (
		span = err.Span()
		line = err.Line()
		red  = color.New(color.FgRed, color.Bold)
	)
	// Print error + line number
	red.Fprintf(os.Stderr, "%s:%d: ", err.File().Filename(), line.Number())
	fmt.Fprintln(os.Stderr, err.Message())
	// Print line
	fmt.Fprintln(os.Stderr, line.String())
	// Print indent (todo: account for tabs)
	indent := max(0, span.Start()-line.Start())
	fmt.Fprint(os.Stderr, strings.Repeat(" ", indent))
	// Print highlight
	length := max(1, min(span.Length(), line.Length()-indent))
	red.Fprintln(os.Stderr, strings.Repeat("^", length))
}

// fail logs an error and terminates.
func fail(err error) {
	log.Error(err)
	os.Exit(2)
}
