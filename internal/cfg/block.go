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
    `strings`

    `github.com/cloudwego/tacopt/internal/tac`
)

// BasicBlock is a maximal run of instructions entered only at its head.
// Head and Tail are both tac.Head when every instruction has been removed.
type BasicBlock struct {
    Id      int
    Head    tac.Ref
    Tail    tac.Ref
    Succs   []*BasicBlock
    Next    *BasicBlock
    Level   int
    Visited bool
}

func (self *BasicBlock) Empty() bool {
    return self.Head == tac.Head
}

func (self *BasicBlock) HasSucc(bb *BasicBlock) bool {
    for _, v := range self.Succs {
        if v == bb {
            return true
        }
    }
    return false
}

func (self *BasicBlock) addSucc(bb *BasicBlock) bool {
    if self.HasSucc(bb) {
        return false
    } else {
        self.Succs = append(self.Succs, bb)
        return true
    }
}

func (self *BasicBlock) String() string {
    ret := make([]string, 0, len(self.Succs))
    for _, v := range self.Succs {
        ret = append(ret, fmt.Sprintf("bb_%d", v.Id))
    }
    return fmt.Sprintf("bb_%d (level %d) -> [%s]", self.Id, self.Level, strings.Join(ret, ", "))
}
