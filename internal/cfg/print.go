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
    `bufio`
    `io`
    `strings`

    `github.com/cloudwego/tacopt/internal/tac`
)

type ListingOptions struct {
    OnlyReachable bool
}

// Listed returns the blocks a listing would print, in layout order.
func (self *Graph) Listed(opts ListingOptions) []*BasicBlock {
    var ret []*BasicBlock
    var reach map[int]bool

    /* only blocks reachable from the entry */
    if opts.OnlyReachable {
        reach = self.Reachable()
    }

    /* empty blocks print nothing */
    for _, bb := range self.Blocks {
        if !bb.Empty() && (reach == nil || reach[bb.Id]) {
            ret = append(ret, bb)
        }
    }
    return ret
}

// WriteListing prints the instructions of every block contiguously, each
// block followed by a blank line.
func (self *Graph) WriteListing(w io.Writer, opts ListingOptions) error {
    wr := bufio.NewWriter(w)
    for _, bb := range self.Listed(opts) {
        self.Instrs(bb, func(_ tac.Ref, p *tac.Instr) {
            wr.WriteString(p.String())
            wr.WriteByte('\n')
        })
        wr.WriteByte('\n')
    }
    return wr.Flush()
}

func (self *Graph) Listing(opts ListingOptions) string {
    var buf strings.Builder
    _ = self.WriteListing(&buf, opts)
    return buf.String()
}

func (self *Graph) String() string {
    return self.Listing(ListingOptions{})
}
