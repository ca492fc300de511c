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

package tac

import (
    `fmt`
    `strings`
)

// Ref is the arena index of an instruction. Head is the list anchor.
type Ref int32

const (
    Head Ref = 0
)

// NoBlock marks instructions that have not been assigned to a block yet.
const NoBlock = -1

// Program is a doubly-linked instruction list backed by an index-stable arena.
// Removed instructions keep their slot, so a Ref never aliases another one.
type Program struct {
    ins     []Instr
    Globals map[string]bool
}

func NewProgram() *Program {
    return &Program {
        ins     : []Instr {{ Op: OP_head, Block: NoBlock }},
        Globals : make(map[string]bool),
    }
}

func (self *Program) At(r Ref) *Instr {
    return &self.ins[r]
}

func (self *Program) First() Ref {
    return self.ins[Head].Next
}

func (self *Program) Last() Ref {
    return self.ins[Head].Prev
}

// Len returns the number of live instructions, excluding the anchor.
func (self *Program) Len() (n int) {
    for p := self.First(); p != Head; p = self.ins[p].Next {
        n++
    }
    return
}

// Append links a new instruction after the current tail.
func (self *Program) Append(ins Instr) Ref {
    r := Ref(len(self.ins))
    ins.Prev = self.ins[Head].Prev
    ins.Next = Head
    ins.Block = NoBlock

    /* link into the ring */
    self.ins = append(self.ins, ins)
    self.ins[ins.Prev].Next = r
    self.ins[Head].Prev = r
    return r
}

// Unlink removes an instruction from the list by patching both neighbours.
func (self *Program) Unlink(r Ref) {
    p := &self.ins[r]

    /* the anchor is never removed */
    if r == Head {
        panic(ConsistencyError { Pass: "tac", Reason: "unlinking the list head" })
    }

    /* removing twice means somebody holds a stale reference */
    if p.dead {
        panic(ConsistencyError { Pass: "tac", Reason: fmt.Sprintf("instruction %d already unlinked: %s", r, p) })
    }

    /* patch the neighbours */
    self.ins[p.Prev].Next = p.Next
    self.ins[p.Next].Prev = p.Prev
    p.Prev, p.Next, p.dead = Head, Head, true
}

// ForEach iterates live instructions in program order. Unlinking the current
// instruction inside fn is allowed.
func (self *Program) ForEach(fn func(r Ref, p *Instr)) {
    for p := self.First(); p != Head; {
        next := self.ins[p].Next
        fn(p, &self.ins[p])
        p = next
    }
}

// Range iterates instructions from `head` to `tail` inclusive.
func (self *Program) Range(head Ref, tail Ref, fn func(r Ref, p *Instr)) {
    for p := head; p != Head; {
        next := self.ins[p].Next
        fn(p, &self.ins[p])

        /* stop at the end of the run */
        if p == tail {
            break
        }

        /* move to the next one */
        p = next
    }
}

func (self *Program) String() string {
    ret := make([]string, 0, len(self.ins))
    self.ForEach(func(_ Ref, p *Instr) { ret = append(ret, p.String()) })
    return strings.Join(ret, "\n")
}
