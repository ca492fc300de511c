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
)

// Pass rewrites the instructions of a single block.
type Pass interface {
    Apply(*Context, *cfg.BasicBlock)
}

type _Direction uint8

const (
    _Forward _Direction = iota
    _Backward
)

type _PassDescriptor struct {
    pass Pass
    desc string
    dir  _Direction
}

var _passes = [...]_PassDescriptor {
    { desc: "Constant Propagation"   , pass: new(ConstProp), dir: _Forward },
    { desc: "Dead Store Elimination" , pass: new(DSE)      , dir: _Backward },
}

func (self *Context) run(dir _Direction, bb *cfg.BasicBlock) {
    for _, p := range _passes {
        if p.dir == dir {
            p.pass.Apply(self, bb)
        }
    }
}
