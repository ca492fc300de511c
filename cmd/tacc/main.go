/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// tacc lowers a YAML syntax tree document into three-address code, splits it
// into basic blocks and optimizes every block.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/tebeka/atexit"
	"gopkg.in/urfave/cli.v1"

	"github.com/cloudwego/tacopt"
)

var (
	maxDepthFlag = cli.IntFlag{
		Name:  "max-depth",
		Usage: "Maximum nesting depth of the syntax tree, 0 for no limit",
	}
	noOptimizeFlag = cli.BoolFlag{
		Name:  "no-optimize",
		Usage: "Skip the block-local optimizer",
	}
	verifyFlag = cli.BoolFlag{
		Name:  "verify",
		Usage: "Check the control flow graph after each stage",
	}
	reachableFlag = cli.BoolFlag{
		Name:  "reachable",
		Usage: "Only print blocks reachable from the entry",
	}
	tableFlag = cli.BoolFlag{
		Name:  "table",
		Usage: "Print blocks as a table instead of a listing",
	}
	dotFlag = cli.StringFlag{
		Name:  "dot",
		Usage: "Write the control flow graph in DOT format to this file",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log pipeline statistics",
	}

	compileFlags = []cli.Flag{
		maxDepthFlag,
		noOptimizeFlag,
		verifyFlag,
		reachableFlag,
		tableFlag,
		dotFlag,
		verboseFlag,
	}

	compileCommand = cli.Command{
		Action:    compile,
		Name:      "compile",
		Usage:     "Compile a syntax tree document",
		ArgsUsage: "<file>",
		Flags:     compileFlags,
		Description: `The compile command lowers the syntax tree, builds the control flow graph
and prints the optimized three-address code, one basic block after another.`,
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tacc"
	app.Usage = "three-address code compiler and block-local optimizer"
	app.Flags = []cli.Flag{configFileFlag}
	app.Commands = []cli.Command{compileCommand, dumpConfigCommand}
	return app
}

func compile(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expect exactly one syntax tree document, got %d", ctx.NArg())
	}

	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}

	/* open the document */
	fp, err := os.Open(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer fp.Close()

	/* compile it */
	unit, err := tacopt.Compile(bufio.NewReader(fp), cfg.options(cfg.logger())...)
	if err != nil {
		return err
	}

	/* print the result */
	if cfg.Output.Table {
		writeTable(os.Stdout, unit)
	} else if err = unit.WriteListing(os.Stdout); err != nil {
		return err
	}

	/* render the graph if needed */
	if cfg.Output.DOT == "" {
		return nil
	} else {
		return writeDOT(cfg.Output.DOT, unit)
	}
}

func writeTable(w io.Writer, unit *tacopt.Unit) {
	tab := tablewriter.NewWriter(w)
	tab.SetHeader([]string{"Block", "Level", "Succs", "Instructions"})
	tab.SetAutoWrapText(false)
	tab.SetAlignment(tablewriter.ALIGN_LEFT)

	/* one row per block */
	for _, bb := range unit.Blocks() {
		succs := make([]string, 0, len(bb.Succs))
		for _, id := range bb.Succs {
			succs = append(succs, strconv.Itoa(id))
		}
		tab.Append([]string{
			strconv.Itoa(bb.Id),
			strconv.Itoa(bb.Level),
			strings.Join(succs, ","),
			strings.Join(bb.Instrs, "\n"),
		})
	}

	/* stats in the footer */
	tab.SetFooter([]string{"", "", "", fmt.Sprintf(
		"%d -> %d instructions",
		unit.Stats.Before,
		unit.Stats.After,
	)})
	tab.Render()
}

func writeDOT(file string, unit *tacopt.Unit) error {
	if buf, err := unit.MarshalDOT("tac"); err != nil {
		return err
	} else {
		return os.WriteFile(file, buf, 0644)
	}
}

func fatalf(code int, format string, args ...interface{}) {
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "tacc: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(code)
}

func main() {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(tacopt.InternalError); ok {
				fatalf(2, "%v", e)
			} else {
				panic(v)
			}
		}
	}()

	/* run the command */
	if err := newApp().Run(os.Args); err != nil {
		fatalf(1, "%v", err)
	}
	atexit.Exit(0)
}
