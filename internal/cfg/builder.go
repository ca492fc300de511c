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
    `github.com/oleiade/lane`

    `github.com/cloudwego/tacopt/internal/tac`
)

// _Pin is where a label is defined: the LABEL instruction and its block.
type _Pin struct {
    ins tac.Ref
    bb  *BasicBlock
}

// GraphBuilder partitions a program into basic blocks and links them. The
// label table only lives as long as the builder.
type GraphBuilder struct {
    prog   *tac.Program
    blocks []*BasicBlock
    labels map[tac.Operand]_Pin
}

func CreateGraphBuilder() *GraphBuilder {
    return &GraphBuilder {
        labels: make(map[tac.Operand]_Pin),
    }
}

// Build creates the control flow graph of prog. The program is kept, and
// every instruction is stamped with the id of its owning block.
func (self *GraphBuilder) Build(prog *tac.Program) *Graph {
    self.prog = prog
    self.segment()

    /* link every block, starting from the entry */
    ret := &Graph { Prog: prog, Blocks: self.blocks }
    ret.Roots = self.link()

    /* the first block is the entry */
    if len(ret.Blocks) != 0 {
        ret.Entry = ret.Blocks[0]
    }

    /* the builder's life-time ends here */
    self.prog = nil
    self.blocks = nil
    self.labels = make(map[tac.Operand]_Pin)
    return ret
}

func (self *GraphBuilder) open(r tac.Ref) *BasicBlock {
    bb := &BasicBlock {
        Id    : len(self.blocks),
        Head  : r,
        Tail  : r,
        Level : -1,
    }

    /* chain into the layout order */
    if n := len(self.blocks); n != 0 {
        self.blocks[n - 1].Next = bb
    }

    /* add to block list */
    self.blocks = append(self.blocks, bb)
    return bb
}

func (self *GraphBuilder) segment() {
    var bb *BasicBlock
    self.prog.ForEach(func(r tac.Ref, p *tac.Instr) {
        lb := p.Op == tac.OP_label

        /* every label except function ends starts a new block */
        if lb && !p.X.IsFuncEnd() {
            bb = nil
        }

        /* open a new block if needed */
        if bb == nil {
            bb = self.open(r)
        }

        /* stamp the instruction */
        bb.Tail = r
        p.Block = bb.Id

        /* remember where the label lives */
        if lb {
            self.labels[p.X] = _Pin { ins: r, bb: bb }
        }

        /* transfers and function ends close the block */
        if p.Op.IsTransfer() || p.IsFuncEnd() {
            bb = nil
        }
    })
}

func (self *GraphBuilder) resolve(lb tac.Operand) *BasicBlock {
    pin, ok := self.labels[lb]
    if !ok {
        panic(tac.ConsistencyError { Pass: "cfg", Reason: "unresolved label " + lb.String() })
    }

    /* the label must still be defined where it was pinned */
    if p := self.prog.At(pin.ins); p.Op != tac.OP_label || p.X != lb || p.Block != pin.bb.Id {
        panic(tac.ConsistencyError { Pass: "cfg", Reason: "label " + lb.String() + " moved after segmentation" })
    }
    return pin.bb
}

func (self *GraphBuilder) fall(bb *BasicBlock) *BasicBlock {
    next := bb.Next

    /* skip over function bodies, they are only entered by calls */
    for next != nil && !next.Empty() {
        p := self.prog.At(next.Head)
        if p.Op != tac.OP_label || !p.X.IsFuncStart() {
            break
        }

        /* continue after the function end */
        next = self.resolve(p.X.Toggle()).Next
    }
    return next
}

func (self *GraphBuilder) successors(bb *BasicBlock) []*BasicBlock {
    var ret []*BasicBlock
    p := self.prog.At(bb.Tail)

    /* transfer target comes first */
    if p.Op.IsTransfer() {
        ret = append(ret, self.resolve(p.Target()))
    }

    /* unconditional transfers and function ends never fall through */
    if p.Op == tac.OP_jmp || p.Op == tac.OP_ret || p.IsFuncEnd() {
        return ret
    }

    /* add the fallthrough edge if any */
    if next := self.fall(bb); next != nil {
        ret = append(ret, next)
    }
    return ret
}

// link leaves every block marked as visited.
func (self *GraphBuilder) link() []*BasicBlock {
    var roots []*BasicBlock

    /* blocks that cannot be reached from the entry become roots of their own */
    for _, root := range self.blocks {
        if root.Visited {
            continue
        }

        /* depth-first from the root */
        q := lane.NewStack()
        root.Level = 0
        roots = append(roots, root)

        /* link every block reachable from here */
        for q.Push(root); !q.Empty(); {
            bb := q.Pop().(*BasicBlock)
            if bb.Visited {
                continue
            }

            /* add all the edges */
            bb.Visited = true
            for _, to := range self.successors(bb) {
                if !bb.addSucc(to) {
                    continue
                }

                /* keep the smallest level seen so far */
                if to.Level < 0 || to.Level > bb.Level + 1 {
                    to.Level = bb.Level + 1
                }

                /* visit it later */
                if !to.Visited {
                    q.Push(to)
                }
            }
        }
    }
    return roots
}
