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

package tacopt

import (
	"io"

	"github.com/cloudwego/tacopt/internal/ast"
	"github.com/cloudwego/tacopt/internal/cfg"
	"github.com/cloudwego/tacopt/internal/lower"
	"github.com/cloudwego/tacopt/internal/opt"
	"github.com/cloudwego/tacopt/internal/opts"
	"github.com/cloudwego/tacopt/internal/tac"
)

// Stats counts what the optimizer did to a unit.
type Stats = opt.Stats

// Block is a printable view of one basic block.
type Block struct {
	Id     int
	Level  int
	Succs  []int
	Instrs []string
}

// Unit is a compiled unit: the TAC program split into basic blocks, after
// optimization if enabled.
type Unit struct {
	g     *cfg.Graph
	list  cfg.ListingOptions
	Stats Stats
}

// Compile decodes a YAML syntax tree document and compiles it.
func Compile(src io.Reader, options ...Option) (*Unit, error) {
	if file, err := ast.Decode(src); err != nil {
		return nil, err
	} else {
		return CompileTree(file, options...)
	}
}

// CompileTree lowers an annotated syntax tree, builds its control flow graph
// and optimizes it.
func CompileTree(file *ast.File, options ...Option) (*Unit, error) {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}

	/* lower into TAC */
	log := o.Log()
	prog, err := lower.Lower(file, &o)
	if err != nil {
		return nil, err
	}

	/* split into basic blocks */
	log.Debug("lowered syntax tree", "instructions", prog.Len(), "globals", len(prog.Globals))
	g := cfg.Build(prog)
	log.Debug("built control flow graph", "blocks", len(g.Blocks), "roots", len(g.Roots), "loops", len(g.Loops()))

	/* check the graph if needed */
	if err = verify(g, &o, "cfg"); err != nil {
		return nil, err
	}

	/* optimize if needed */
	ret := &Unit{g: g, list: cfg.ListingOptions{OnlyReachable: o.OnlyReachable}}
	ret.Stats = opt.Stats{Before: g.Len(), After: g.Len()}
	if !o.Optimize {
		return ret, nil
	}

	/* optimizing must keep the graph intact */
	ret.Stats = opt.Optimize(g, &o)
	if err = verify(g, &o, "opt"); err != nil {
		return nil, err
	}

	/* all done */
	log.Info("compiled unit", "stats", ret.Stats)
	return ret, nil
}

func verify(g *cfg.Graph, o *opts.Options, pass string) error {
	if !o.Verify {
		return nil
	} else if err := g.Verify(); err != nil {
		return InternalError{Pass: pass, Reason: err.Error()}
	} else {
		return nil
	}
}

// WriteListing prints the instructions of the unit, one block after another,
// each followed by a blank line.
func (self *Unit) WriteListing(w io.Writer) error {
	return self.g.WriteListing(w, self.list)
}

func (self *Unit) String() string {
	return self.g.Listing(self.list)
}

// Blocks returns the blocks a listing would print, in layout order.
func (self *Unit) Blocks() []Block {
	var ret []Block
	for _, bb := range self.g.Listed(self.list) {
		v := Block{Id: bb.Id, Level: bb.Level}
		for _, to := range bb.Succs {
			v.Succs = append(v.Succs, to.Id)
		}
		self.g.Instrs(bb, func(_ tac.Ref, p *tac.Instr) {
			v.Instrs = append(v.Instrs, p.String())
		})
		ret = append(ret, v)
	}
	return ret
}

// Loops returns the block ids of every cycle in the control flow graph.
func (self *Unit) Loops() [][]int {
	var ret [][]int
	for _, loop := range self.g.Loops() {
		ids := make([]int, 0, len(loop))
		for _, bb := range loop {
			ids = append(ids, bb.Id)
		}
		ret = append(ret, ids)
	}
	return ret
}

// MarshalDOT renders the control flow graph in the DOT language.
func (self *Unit) MarshalDOT(name string) ([]byte, error) {
	return self.g.MarshalDOT(name)
}

// Dump renders the internal state of the unit for debugging.
func (self *Unit) Dump() string {
	return self.g.Dump()
}
