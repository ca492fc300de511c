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
    `github.com/davecgh/go-spew/spew`

    `github.com/cloudwego/tacopt/internal/tac`
)

var _DumpConfig = spew.ConfigState {
    Indent                  : "    ",
    SortKeys                : true,
    DisableMethods          : true,
    DisablePointerAddresses : true,
    DisableCapacities       : true,
}

type _BlockDump struct {
    Id     int
    Level  int
    Succs  []int
    Instrs []string
}

// Dump renders the blocks, their edges and their instructions for debugging.
func (self *Graph) Dump() string {
    ret := make([]_BlockDump, 0, len(self.Blocks))
    for _, bb := range self.Blocks {
        bd := _BlockDump { Id: bb.Id, Level: bb.Level }

        /* edges by id, the blocks themselves are cyclic */
        for _, to := range bb.Succs {
            bd.Succs = append(bd.Succs, to.Id)
        }

        /* instructions in text form */
        self.Instrs(bb, func(_ tac.Ref, p *tac.Instr) { bd.Instrs = append(bd.Instrs, p.String()) })
        ret = append(ret, bd)
    }
    return _DumpConfig.Sdump(ret)
}
