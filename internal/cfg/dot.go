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

package cfg

import (
    `fmt`
    `sort`
    `strings`

    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/encoding`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/simple`
    `gonum.org/v1/gonum/graph/topo`
    `gonum.org/v1/gonum/graph/traverse`

    `github.com/cloudwego/tacopt/internal/tac`
)

type _BlockNode struct {
    g  *Graph
    bb *BasicBlock
}

func (self _BlockNode) ID() int64 {
    return int64(self.bb.Id)
}

func (self _BlockNode) DOTID() string {
    return fmt.Sprintf("bb_%d", self.bb.Id)
}

func (self _BlockNode) Attributes() []encoding.Attribute {
    var sb strings.Builder
    fmt.Fprintf(&sb, "bb_%d (level %d)\n", self.bb.Id, self.bb.Level)

    /* one line per instruction */
    self.g.Instrs(self.bb, func(_ tac.Ref, p *tac.Instr) {
        sb.WriteString(p.String())
        sb.WriteByte('\n')
    })

    /* the encoder quotes and escapes the label text */
    return []encoding.Attribute {
        { Key: "shape", Value: "box" },
        { Key: "label", Value: sb.String() },
    }
}

// mirror builds a gonum graph with the same nodes and edges. Self loops are
// left out since simple graphs cannot hold them.
func (self *Graph) mirror() *simple.DirectedGraph {
    g := simple.NewDirectedGraph()
    for _, bb := range self.Blocks {
        g.AddNode(_BlockNode { g: self, bb: bb })
    }

    /* add all the edges */
    for _, bb := range self.Blocks {
        for _, to := range bb.Succs {
            if to != bb {
                g.SetEdge(g.NewEdge(g.Node(int64(bb.Id)), g.Node(int64(to.Id))))
            }
        }
    }
    return g
}

// MarshalDOT renders the graph in the DOT language.
func (self *Graph) MarshalDOT(name string) ([]byte, error) {
    return dot.Marshal(self.mirror(), name, "", "    ")
}

// Reachable returns the ids of all the blocks reachable from the entry.
func (self *Graph) Reachable() map[int]bool {
    ret := make(map[int]bool, len(self.Blocks))
    if self.Entry == nil {
        return ret
    }

    /* walk the mirror depth-first */
    g := self.mirror()
    w := traverse.DepthFirst { Visit: func(n graph.Node) { ret[int(n.ID())] = true } }
    w.Walk(g, g.Node(int64(self.Entry.Id)), nil)
    return ret
}

// Loops returns the blocks of every cycle in the graph, each sorted by id.
func (self *Graph) Loops() [][]*BasicBlock {
    var ret [][]*BasicBlock
    for _, scc := range topo.TarjanSCC(self.mirror()) {
        if len(scc) == 1 {
            if bb := self.Blocks[scc[0].ID()]; !bb.HasSucc(bb) {
                continue
            }
        }

        /* convert to blocks */
        loop := make([]*BasicBlock, 0, len(scc))
        for _, n := range scc {
            loop = append(loop, self.Blocks[n.ID()])
        }

        /* stable order */
        sort.Slice(loop, func(i int, j int) bool { return loop[i].Id < loop[j].Id })
        ret = append(ret, loop)
    }

    /* order loops by their first block */
    sort.Slice(ret, func(i int, j int) bool { return ret[i][0].Id < ret[j][0].Id })
    return ret
}
