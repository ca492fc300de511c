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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestOperand_RoundTrip(t *testing.T) {
    for _, v := range []Operand {
        Var("a"),
        Var("t12"),
        Lit("3"),
        Lit("true"),
        Lit(`""`),
        FuncStart("main"),
        FuncEnd("main"),
        Label(IfTrue, 7),
        Label(ForEnd, 12),
        Void,
    } {
        p, err := ParseOperand(v.String())
        require.NoError(t, err, v.String())
        assert.Equal(t, v, p, v.String())
    }
}

func TestOperand_Text(t *testing.T) {
    assert.Equal(t, "V#a", Var("a").String())
    assert.Equal(t, "L#3", Int(3).String())
    assert.Equal(t, "S#f", FuncStart("f").String())
    assert.Equal(t, "E#f", FuncEnd("f").String())
    assert.Equal(t, "IF_TRUE#4", Label(IfTrue, 4).String())
    assert.Equal(t, FuncEnd("f"), FuncStart("f").Toggle())
    assert.Equal(t, FuncStart("f"), FuncEnd("f").Toggle())
    assert.Panics(t, func() { Label(IfEnd, 1).Toggle() })
}

func TestOperand_ParseErrors(t *testing.T) {
    for _, s := range []string { "a", "#a", "X#a", "IF_TRUE#x" } {
        _, err := ParseOperand(s)
        assert.Error(t, err, s)
    }
}

func TestProgram_Unlink(t *testing.T) {
    p := NewProgram()
    a := p.Append(Instr { Op: OP_mov, X: Int(1), Res: Var("a") })
    b := p.Append(Instr { Op: OP_mov, X: Int(2), Res: Var("b") })
    c := p.Append(Instr { Op: OP_mov, X: Int(3), Res: Var("c") })
    require.Equal(t, 3, p.Len())
    p.Unlink(b)
    assert.Equal(t, 2, p.Len())
    assert.Equal(t, c, p.At(a).Next)
    assert.Equal(t, a, p.At(c).Prev)
    assert.True(t, p.At(b).Dead())
    assert.Panics(t, func() { p.Unlink(b) })
    assert.Panics(t, func() { p.Unlink(Head) })
    p.Unlink(a)
    p.Unlink(c)
    assert.Equal(t, Head, p.First())
    assert.Equal(t, Head, p.Last())
}

func TestProgram_ForEachUnlink(t *testing.T) {
    p := NewProgram()
    for i := 0; i < 5; i++ {
        p.Append(Instr { Op: OP_mov, X: Int(int64(i)), Res: Var("a") })
    }
    p.ForEach(func(r Ref, ins *Instr) {
        if ins.X.S != "4" {
            p.Unlink(r)
        }
    })
    assert.Equal(t, "MOV V#a, L#4", p.String())
}

func TestBuilder_Labels(t *testing.T) {
    b := CreateBuilder()
    b.JMP(Label(IfEnd, 1))
    b.Label(Label(IfEnd, 1))
    b.CALL(FuncStart("f"), 0, Void)
    b.Label(FuncStart("f"))
    b.Label(FuncEnd("f"))
    p := b.Build()
    assert.Equal(t, "JMP IF_END#1\nLABEL IF_END#1\nCALL S#f, L#0\nLABEL S#f\nLABEL E#f", p.String())

    /* duplicated labels */
    b = CreateBuilder()
    b.Label(Label(IfEnd, 1))
    assert.Panics(t, func() { b.Label(Label(IfEnd, 1)) })

    /* dangling jumps */
    b = CreateBuilder()
    b.JE(Var("a"), Int(1), Label(IfTrue, 2))
    assert.PanicsWithValue(t, ConsistencyError { Pass: "tac", Reason: "labels are not fully resolved: IF_TRUE#2" }, func() { b.Build() })

    /* calls need a callee in the same unit */
    b = CreateBuilder()
    b.CALL(FuncStart("puts"), 0, Void)
    assert.PanicsWithValue(t, ConsistencyError { Pass: "tac", Reason: "labels are not fully resolved: S#puts" }, func() { b.Build() })
}

func TestInstr_String(t *testing.T) {
    b := CreateBuilder()
    t0 := b.Temp()
    b.Binary(OP_lt, Var("a"), Int(3), t0)
    b.NOT(t0, b.Temp())
    b.Label(FuncStart("f"))
    b.PARAM(Var("a"))
    b.CALL(FuncStart("f"), 1, Var("t2"))
    b.RET(Var("t2"), FuncEnd("f"))
    b.RET(Void, FuncEnd("f"))
    b.Label(FuncEnd("f"))
    assert.Equal(t, []string {
        "LT V#t0, V#a, L#3",
        "NOT V#t1, V#t0",
        "LABEL S#f",
        "PARAM V#a",
        "CALL V#t2, S#f, L#1",
        "RET V#t2",
        "RET",
        "LABEL E#f",
    }, splitLines(b.Build().String()))
}

func splitLines(s string) (r []string) {
    for len(s) != 0 {
        i := 0
        for i < len(s) && s[i] != '\n' {
            i++
        }
        r = append(r, s[:i])
        if i == len(s) {
            break
        }
        s = s[i + 1:]
    }
    return
}
