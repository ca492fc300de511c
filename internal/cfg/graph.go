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

    `github.com/cloudwego/tacopt/internal/tac`
)

// Graph owns the program and its blocks. Blocks are kept in layout order,
// Roots lists the entry followed by every block that starts a separate walk.
type Graph struct {
    Prog   *tac.Program
    Entry  *BasicBlock
    Blocks []*BasicBlock
    Roots  []*BasicBlock
}

// Build is a shorthand of CreateGraphBuilder().Build(prog).
func Build(prog *tac.Program) *Graph {
    return CreateGraphBuilder().Build(prog)
}

func (self *Graph) ResetVisited() {
    for _, bb := range self.Blocks {
        bb.Visited = false
    }
}

// Instrs iterates the instructions of bb in program order. Removing the
// current instruction inside fn is allowed.
func (self *Graph) Instrs(bb *BasicBlock, fn func(r tac.Ref, p *tac.Instr)) {
    if !bb.Empty() {
        self.Prog.Range(bb.Head, bb.Tail, fn)
    }
}

// ReverseInstrs is like Instrs, but from the tail to the head.
func (self *Graph) ReverseInstrs(bb *BasicBlock, fn func(r tac.Ref, p *tac.Instr)) {
    if bb.Empty() {
        return
    }

    /* the head may be removed by fn, remember where to stop */
    head := bb.Head
    for r := bb.Tail; r != tac.Head; {
        prev := self.Prog.At(r).Prev
        fn(r, self.Prog.At(r))

        /* stop after the head */
        if r == head {
            break
        }

        /* move to the previous one */
        r = prev
    }
}

// Remove unlinks an instruction and repairs the bounds of its block.
func (self *Graph) Remove(r tac.Ref) {
    p := self.Prog.At(r)
    if p.Block < 0 || p.Block >= len(self.Blocks) {
        panic(tac.ConsistencyError { Pass: "cfg", Reason: fmt.Sprintf("instruction %d is not owned by any block: %s", r, p) })
    }

    /* repair the block bounds */
    switch bb := self.Blocks[p.Block]; {
        case bb.Head == r && bb.Tail == r : bb.Head, bb.Tail = tac.Head, tac.Head
        case bb.Head == r                 : bb.Head = p.Next
        case bb.Tail == r                 : bb.Tail = p.Prev
    }

    /* remove from the program */
    self.Prog.Unlink(r)
}

// Len returns the number of live instructions owned by the blocks.
func (self *Graph) Len() (n int) {
    for _, bb := range self.Blocks {
        self.Instrs(bb, func(tac.Ref, *tac.Instr) { n++ })
    }
    return
}

// Verify checks that the blocks partition the program and that every edge
// points to a block of this graph.
func (self *Graph) Verify() error {
    var refs []tac.Ref
    var want []tac.Ref

    /* the entry must be the first block */
    if len(self.Blocks) != 0 && self.Entry != self.Blocks[0] {
        return fmt.Errorf("cfg: entry is not the first block")
    }

    /* check every block */
    for i, bb := range self.Blocks {
        if bb.Id != i {
            return fmt.Errorf("cfg: block %d has id %d", i, bb.Id)
        }

        /* layout chain */
        if i != len(self.Blocks) - 1 && bb.Next != self.Blocks[i + 1] {
            return fmt.Errorf("cfg: bb_%d is not followed by bb_%d", i, i + 1)
        }

        /* successors must belong to this graph */
        for _, to := range bb.Succs {
            if to.Id < 0 || to.Id >= len(self.Blocks) || self.Blocks[to.Id] != to {
                return fmt.Errorf("cfg: bb_%d has a foreign successor bb_%d", bb.Id, to.Id)
            }
        }

        /* head and tail are either both set or both cleared */
        if (bb.Head == tac.Head) != (bb.Tail == tac.Head) {
            return fmt.Errorf("cfg: bb_%d has inconsistent bounds %d..%d", bb.Id, bb.Head, bb.Tail)
        }

        /* every instruction is owned by this block, and the run ends at the tail */
        if err := self.verifyBlock(bb, &refs); err != nil {
            return err
        }
    }

    /* the blocks together must be exactly the program */
    self.Prog.ForEach(func(r tac.Ref, _ *tac.Instr) { want = append(want, r) })
    if len(refs) != len(want) {
        return fmt.Errorf("cfg: blocks hold %d instructions, program has %d", len(refs), len(want))
    }

    /* in the same order */
    for i := range refs {
        if refs[i] != want[i] {
            return fmt.Errorf("cfg: instruction %d is out of place", refs[i])
        }
    }
    return nil
}

func (self *Graph) verifyBlock(bb *BasicBlock, refs *[]tac.Ref) error {
    if bb.Empty() {
        return nil
    }

    /* walk the run */
    for r := bb.Head;; r = self.Prog.At(r).Next {
        p := self.Prog.At(r)
        switch {
            case r == tac.Head     : return fmt.Errorf("cfg: bb_%d does not reach its tail", bb.Id)
            case p.Dead()          : return fmt.Errorf("cfg: bb_%d holds a removed instruction %d", bb.Id, r)
            case p.Block != bb.Id  : return fmt.Errorf("cfg: instruction %d is stamped bb_%d, but held by bb_%d", r, p.Block, bb.Id)
        }

        /* record the instruction */
        if *refs = append(*refs, r); r == bb.Tail {
            return nil
        }
    }
}
