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

package opt

import (
    `github.com/oleiade/lane`

    `github.com/cloudwego/tacopt/internal/cfg`
    `github.com/cloudwego/tacopt/internal/tac`
)

// VarState is the backward usage state of a variable.
type VarState struct {
    Uses     int
    NextUse  bool
    Assigned bool
    Scan     int
}

// DSE removes writes whose values are never read. A write is dead when the
// variable has no recorded use at all, or when it is overwritten later in the
// same block without being read in between. Globals are only subject to the
// latter, since code outside of the unit may read them.
type DSE struct{}

func (self DSE) Apply(ctx *Context, bb *cfg.BasicBlock) {
    ctx.scan++
    self.seed(ctx, bb)

    /* scan from the tail to the head */
    ctx.Graph.ReverseInstrs(bb, func(r tac.Ref, p *tac.Instr) {
        switch {
            case p.Op.IsPure(): {
                if self.dead(ctx, p.Res) {
                    ctx.Graph.Remove(r)
                    ctx.Stats.Eliminated++
                } else {
                    self.write(ctx, p.Res)
                    self.read(ctx, p)
                }
            }

            case p.Op == tac.OP_call: {
                if p.Res.IsVar() {
                    if self.dead(ctx, p.Res) {
                        p.Res = tac.Void
                        ctx.Stats.Cleared++
                    } else {
                        self.write(ctx, p.Res)
                    }
                }

                /* the callee may read every global */
                for v := range ctx.Graph.Prog.Globals {
                    self.use(ctx, v)
                }
            }

            default: {
                self.read(ctx, p)
            }
        }
    })
}

func (DSE) state(ctx *Context, v string) *VarState {
    if st, ok := ctx.vars[v]; ok {
        return st
    } else {
        st = new(VarState)
        ctx.vars[v] = st
        return st
    }
}

func (self DSE) dead(ctx *Context, v tac.Operand) bool {
    st := self.state(ctx, v.S)
    switch {
        case st.Scan == ctx.scan && st.Assigned && !st.NextUse : return true
        case ctx.Graph.Prog.Globals[v.S]                       : return false
        default                                                : return st.Uses == 0
    }
}

func (self DSE) write(ctx *Context, v tac.Operand) {
    st := self.state(ctx, v.S)
    st.Scan = ctx.scan
    st.NextUse = false
    st.Assigned = true
}

func (self DSE) use(ctx *Context, v string) {
    st := self.state(ctx, v)
    st.Uses++
    st.Scan = ctx.scan
    st.NextUse = true
}

func (self DSE) read(ctx *Context, p *tac.Instr) {
    for _, v := range p.Uses() {
        if v.IsVar() {
            self.use(ctx, v.S)
        }
    }
}

// seed records the uses in successors that have not been scanned yet, and in
// everything reachable from them, so that values carried around loops survive.
func (self DSE) seed(ctx *Context, bb *cfg.BasicBlock) {
    q := lane.NewQueue()
    m := make(map[*cfg.BasicBlock]bool)

    /* start from the pending successors */
    for _, v := range bb.Succs {
        if !ctx.back[v.Id] && !m[v] {
            m[v] = true
            q.Enqueue(v)
        }
    }

    /* traverse the graph with BFS */
    for !q.Empty() {
        p := q.Dequeue().(*cfg.BasicBlock)
        ctx.Graph.Instrs(p, func(_ tac.Ref, ins *tac.Instr) {
            for _, v := range ins.Uses() {
                if v.IsVar() {
                    self.state(ctx, v.S).Uses++
                }
            }
        })

        /* add all the successors into the queue */
        for _, v := range p.Succs {
            if !ctx.back[v.Id] && !m[v] {
                m[v] = true
                q.Enqueue(v)
            }
        }
    }
}
