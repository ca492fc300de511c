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
    `github.com/cloudwego/tacopt/internal/cfg`
    `github.com/cloudwego/tacopt/internal/tac`
)

// ConstProp substitutes known literals into operands and folds pure
// instructions whose operands are all literals. Bindings never cross blocks.
type ConstProp struct{}

func (ConstProp) Apply(ctx *Context, bb *cfg.BasicBlock) {
    consts := make(map[string]tac.Operand)
    ctx.Graph.Instrs(bb, func(_ tac.Ref, p *tac.Instr) {
        for _, v := range p.Uses() {
            if v.IsVar() {
                if c, ok := consts[v.S]; ok {
                    *v = c
                    ctx.Stats.Propagated++
                }
            }
        }

        /* only pure instructions write their results */
        if !p.Op.IsPure() {
            if p.Op == tac.OP_call && p.Res.IsVar() {
                delete(consts, p.Res.S)
            }
            return
        }

        /* copying a literal binds the result */
        if p.Op == tac.OP_mov {
            if p.X.IsLit() {
                consts[p.Res.S] = p.X
            } else {
                delete(consts, p.Res.S)
            }
            return
        }

        /* fold the instruction if possible */
        if v, ok := Eval(p.Op, p.X, p.Y); !ok {
            delete(consts, p.Res.S)
        } else {
            p.Rewrite(v)
            consts[p.Res.S] = v
            ctx.Stats.Folded++
        }
    })
}
