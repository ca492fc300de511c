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
    `testing`

    `github.com/google/go-cmp/cmp`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/tacopt/internal/tac`
)

func ids(v []*BasicBlock) []int {
    ret := make([]int, 0, len(v))
    for _, bb := range v {
        ret = append(ret, bb.Id)
    }
    return ret
}

func buildIfElse() *Graph {
    b := tac.CreateBuilder()
    lt := tac.Label(tac.IfTrue, 5)
    lf := tac.Label(tac.IfFalse, 5)
    le := tac.Label(tac.IfEnd, 5)
    b.Label(tac.FuncStart("f"))
    b.JE(tac.Bool(true), tac.Int(1), lt)
    b.JMP(lf)
    b.Label(lt)
    b.RET(tac.Int(1), tac.FuncEnd("f"))
    b.JMP(le)
    b.Label(lf)
    b.RET(tac.Int(2), tac.FuncEnd("f"))
    b.Label(le)
    b.Label(tac.FuncEnd("f"))
    return Build(b.Build())
}

func buildLoop() *Graph {
    b := tac.CreateBuilder()
    ls := tac.Label(tac.ForStart, 1)
    lb := tac.Label(tac.ForBody, 1)
    le := tac.Label(tac.ForEnd, 1)
    i := tac.Var("i")
    b.MOV(tac.Int(0), i)
    b.Label(ls)
    t := b.Temp()
    b.Binary(tac.OP_lt, i, tac.Int(10), t)
    b.JE(t, tac.Int(1), lb)
    b.JMP(le)
    b.Label(lb)
    b.ADD(i, tac.Int(1), i)
    b.JMP(ls)
    b.Label(le)
    return Build(b.Build())
}

func TestGraph_IfElse(t *testing.T) {
    g := buildIfElse()
    require.NoError(t, g.Verify())
    require.Len(t, g.Blocks, 6)
    assert.Equal(t, g.Blocks[0], g.Entry)
    assert.Equal(t, []int { 2, 1 }, ids(g.Blocks[0].Succs))
    assert.Equal(t, []int { 4 }, ids(g.Blocks[1].Succs))
    assert.Equal(t, []int { 5 }, ids(g.Blocks[2].Succs))
    assert.Equal(t, []int { 5 }, ids(g.Blocks[3].Succs))
    assert.Equal(t, []int { 5 }, ids(g.Blocks[4].Succs))
    assert.Empty(t, g.Blocks[5].Succs)

    /* the jump after the first return is only reachable as a root */
    assert.Equal(t, []int { 0, 3 }, ids(g.Roots))
    assert.Equal(t, 0, g.Blocks[3].Level)
    assert.Equal(t, 1, g.Blocks[1].Level)
    assert.Equal(t, 1, g.Blocks[5].Level)

    /* each block is printed contiguously and followed by a blank line */
    want := "LABEL S#f\nJE L#true, L#1, IF_TRUE#5\n\n" +
        "JMP IF_FALSE#5\n\n" +
        "LABEL IF_TRUE#5\nRET L#1\n\n" +
        "JMP IF_END#5\n\n" +
        "LABEL IF_FALSE#5\nRET L#2\n\n" +
        "LABEL IF_END#5\nLABEL E#f\n\n"
    if d := cmp.Diff(want, g.String()); d != "" {
        t.Fatalf("listing mismatch (-want +got):\n%s", d)
    }

    /* the dead jump is not reachable from the entry */
    assert.NotContains(t, g.Listing(ListingOptions { OnlyReachable: true }), "JMP IF_END#5")
}

func TestGraph_InstructionsStamped(t *testing.T) {
    g := buildIfElse()
    for _, bb := range g.Blocks {
        g.Instrs(bb, func(_ tac.Ref, p *tac.Instr) {
            assert.Equal(t, bb.Id, p.Block, p.String())
        })
    }
}

func TestGraph_SkipFunctionBody(t *testing.T) {
    b := tac.CreateBuilder()
    v := tac.Var("g")
    b.Global(v)
    b.MOV(tac.Int(0), v)
    b.Label(tac.FuncStart("f"))
    b.RET(tac.Void, tac.FuncEnd("f"))
    b.Label(tac.FuncEnd("f"))
    b.MOV(tac.Int(1), v)
    g := Build(b.Build())

    /* top-level code never falls into a function */
    require.NoError(t, g.Verify())
    require.Len(t, g.Blocks, 4)
    assert.Equal(t, []int { 3 }, ids(g.Blocks[0].Succs))
    assert.Equal(t, []int { 2 }, ids(g.Blocks[1].Succs))
    assert.Empty(t, g.Blocks[2].Succs)
    assert.Equal(t, []int { 0, 1 }, ids(g.Roots))
}

func TestGraph_Calls(t *testing.T) {
    b := tac.CreateBuilder()
    b.Label(tac.FuncStart("f"))
    b.RET(tac.Int(1), tac.FuncEnd("f"))
    b.Label(tac.FuncEnd("f"))
    b.Label(tac.FuncStart("main"))
    b.CALL(tac.FuncStart("f"), 0, b.Temp())
    b.RET(tac.Void, tac.FuncEnd("main"))
    b.Label(tac.FuncEnd("main"))
    g := Build(b.Build())

    /* the call target comes first, then the fallthrough */
    require.NoError(t, g.Verify())
    require.Len(t, g.Blocks, 5)
    assert.Equal(t, []int { 0, 3 }, ids(g.Blocks[2].Succs))
    assert.Equal(t, []int { 4 }, ids(g.Blocks[3].Succs))
    assert.Empty(t, g.Blocks[4].Succs)
}

func TestGraph_Loop(t *testing.T) {
    g := buildLoop()
    require.NoError(t, g.Verify())
    require.Len(t, g.Blocks, 5)
    assert.Equal(t, []int { 1 }, ids(g.Blocks[0].Succs))
    assert.Equal(t, []int { 3, 2 }, ids(g.Blocks[1].Succs))
    assert.Equal(t, []int { 4 }, ids(g.Blocks[2].Succs))
    assert.Equal(t, []int { 1 }, ids(g.Blocks[3].Succs))
    assert.Empty(t, g.Blocks[4].Succs)

    /* the condition and the body form the only cycle */
    loops := g.Loops()
    require.Len(t, loops, 1)
    assert.Equal(t, []int { 1, 3 }, ids(loops[0]))
    assert.Len(t, g.Reachable(), 5)
}

func TestGraph_Remove(t *testing.T) {
    g := buildLoop()
    bb := g.Blocks[3]
    head, tail := bb.Head, bb.Tail

    /* drop the label, then the jump, then the remaining add */
    g.Remove(head)
    assert.Equal(t, g.Prog.At(tail).Prev, bb.Head)
    g.Remove(tail)
    assert.Equal(t, bb.Head, bb.Tail)
    g.Remove(bb.Head)
    assert.True(t, bb.Empty())
    require.NoError(t, g.Verify())
    assert.NotContains(t, g.String(), "LABEL FOR_BODY")

    /* removed instructions are not removed twice */
    assert.Panics(t, func() { g.Remove(head) })
}

func TestGraph_UnresolvedLabel(t *testing.T) {
    p := tac.NewProgram()
    p.Append(tac.Instr { Op: tac.OP_jmp, Res: tac.Label(tac.IfEnd, 9) })
    assert.PanicsWithError(t, "cfg: internal consistency failure: unresolved label IF_END#9", func() { Build(p) })

    /* a call to a function that is not defined anywhere */
    p = tac.NewProgram()
    p.Append(tac.Instr { Op: tac.OP_label, X: tac.FuncStart("main") })
    p.Append(tac.Instr { Op: tac.OP_call, X: tac.FuncStart("helper"), Y: tac.Int(0) })
    p.Append(tac.Instr { Op: tac.OP_label, X: tac.FuncEnd("main") })
    assert.PanicsWithValue(t, tac.ConsistencyError { Pass: "cfg", Reason: "unresolved label S#helper" }, func() { Build(p) })
}

func TestGraphBuilder_LabelTable(t *testing.T) {
    g := buildLoop()
    b := CreateGraphBuilder()
    b.prog = g.Prog
    b.segment()

    /* every label is pinned to its instruction and its block */
    require.Len(t, b.labels, 3)
    for lb, pin := range b.labels {
        p := g.Prog.At(pin.ins)
        assert.Equal(t, tac.OP_label, p.Op)
        assert.Equal(t, lb, p.X)
        assert.Equal(t, pin.bb.Head, pin.ins)
        assert.Equal(t, p.Block, pin.bb.Id)
    }
    assert.Equal(t, 3, b.labels[tac.Label(tac.ForBody, 1)].bb.Id)

    /* a pinned label that no longer starts its block is a broken program */
    g.Prog.At(b.labels[tac.Label(tac.ForEnd, 1)].ins).X = tac.Label(tac.ForEnd, 2)
    assert.PanicsWithValue(t, tac.ConsistencyError { Pass: "cfg", Reason: "label FOR_END#1 moved after segmentation" }, func() {
        b.resolve(tac.Label(tac.ForEnd, 1))
    })
}

func TestGraph_LinkingMarksVisited(t *testing.T) {
    g := buildIfElse()

    /* linking visits every block, including the extra roots */
    for _, bb := range g.Blocks {
        assert.True(t, bb.Visited, "bb_%d", bb.Id)
    }

    /* reset for the next walk */
    g.ResetVisited()
    for _, bb := range g.Blocks {
        assert.False(t, bb.Visited, "bb_%d", bb.Id)
    }
}

func TestGraph_VerifyDetectsCorruption(t *testing.T) {
    g := buildLoop()
    g.Prog.At(g.Blocks[1].Tail).Block = 3
    assert.Error(t, g.Verify())
}

func TestGraph_Empty(t *testing.T) {
    g := Build(tac.NewProgram())
    assert.Nil(t, g.Entry)
    assert.Empty(t, g.Blocks)
    assert.NoError(t, g.Verify())
    assert.Equal(t, "", g.String())
    assert.Empty(t, g.Reachable())
}

func TestGraph_Render(t *testing.T) {
    g := buildLoop()
    buf, err := g.MarshalDOT("loop")
    require.NoError(t, err)
    assert.Contains(t, string(buf), "digraph loop")
    assert.Contains(t, string(buf), "bb_3 -> bb_1")
    assert.Contains(t, g.Dump(), "JE V#t0, L#1, FOR_BODY#1")
}

func TestGraph_RenderEscapesLiterals(t *testing.T) {
    b := tac.CreateBuilder()
    b.MOV(tac.Lit(`"a\"b"`), tac.Var("s"))
    buf, err := Build(b.Build()).MarshalDOT("str")
    require.NoError(t, err)
    assert.Contains(t, string(buf), `"bb_0 (level 0)\nMOV V#s, L#\"a\\\"b\"\n"`)
}
