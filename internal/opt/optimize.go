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
    `context`
    `log/slog`

    `github.com/davecgh/go-spew/spew`
    `github.com/oleiade/lane`

    `github.com/cloudwego/tacopt/internal/cfg`
    `github.com/cloudwego/tacopt/internal/opts`
)

type Stats struct {
    Before     int
    After      int
    Folded     int
    Propagated int
    Eliminated int
    Cleared    int
}

func (self Stats) LogValue() slog.Value {
    return slog.GroupValue(
        slog.Int("before", self.Before),
        slog.Int("after", self.After),
        slog.Int("folded", self.Folded),
        slog.Int("propagated", self.Propagated),
        slog.Int("eliminated", self.Eliminated),
        slog.Int("cleared", self.Cleared),
    )
}

// Context is the working state of one optimizer run. Nothing in it outlives
// the run.
type Context struct {
    Graph *cfg.Graph
    Stats Stats
    vars  map[string]*VarState
    back  []bool
    scan  int
}

func newContext(g *cfg.Graph) *Context {
    return &Context {
        Graph : g,
        vars  : make(map[string]*VarState),
        back  : make([]bool, len(g.Blocks)),
    }
}

func (self *Context) forward(bb *cfg.BasicBlock) {
    self.run(_Forward, bb)
}

func (self *Context) backward(bb *cfg.BasicBlock) {
    self.run(_Backward, bb)
    self.back[bb.Id] = true
}

// ready reports whether bb can be swept backward: each successor is either
// done or not deeper than bb, which excludes the back edges of outer loops.
func (self *Context) ready(bb *cfg.BasicBlock) bool {
    for _, v := range bb.Succs {
        if !self.back[v.Id] && v.Level > bb.Level {
            return false
        }
    }
    return true
}

type _Frame struct {
    bb *cfg.BasicBlock
    i  int
}

func (self *Context) walk(root *cfg.BasicBlock) {
    if root.Visited {
        return
    }

    /* forward pass on first visit */
    s := lane.NewStack()
    root.Visited = true
    self.forward(root)

    /* depth-first on an explicit stack */
    for s.Push(&_Frame { bb: root }); !s.Empty(); {
        fp := s.Head().(*_Frame)

        /* descend into the next unvisited successor */
        if fp.i < len(fp.bb.Succs) {
            bb := fp.bb.Succs[fp.i]
            fp.i++

            /* forward pass before anything below it */
            if !bb.Visited {
                bb.Visited = true
                self.forward(bb)
                s.Push(&_Frame { bb: bb })
            }
            continue
        }

        /* the subtree of this block is finished */
        if s.Pop(); !s.Empty() && !self.back[fp.bb.Id] && self.ready(fp.bb) {
            self.backward(fp.bb)
        }
    }
}

// Optimize runs the forward and backward passes over every block in one
// depth-first sweep.
func Optimize(g *cfg.Graph, o *opts.Options) Stats {
    ctx := newContext(g)
    ctx.Stats.Before = g.Len()
    g.ResetVisited()

    /* walk from the entry first, then from the other roots */
    for _, root := range g.Roots {
        ctx.walk(root)
    }

    /* sweep the roots at last */
    for _, root := range g.Roots {
        if !ctx.back[root.Id] {
            ctx.backward(root)
        }
    }

    /* dump the variable states if needed */
    log := o.Log()
    if log.Enabled(context.Background(), slog.LevelDebug) {
        log.Debug("optimizer variable states", "vars", spew.Sdump(ctx.vars))
    }

    /* collect the statistics */
    ctx.Stats.After = g.Len()
    log.Debug("optimizer finished", "stats", ctx.Stats)
    return ctx.Stats
}
