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
    `strconv`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/tacopt/internal/cfg`
    `github.com/cloudwego/tacopt/internal/opts`
    `github.com/cloudwego/tacopt/internal/tac`
)

func direct(op tac.OpCode, x int64, y int64) string {
    switch op {
        case tac.OP_eq  : return strconv.FormatBool(x == y)
        case tac.OP_ne  : return strconv.FormatBool(x != y)
        case tac.OP_lt  : return strconv.FormatBool(x < y)
        case tac.OP_le  : return strconv.FormatBool(x <= y)
        case tac.OP_gt  : return strconv.FormatBool(x > y)
        case tac.OP_ge  : return strconv.FormatBool(x >= y)
        case tac.OP_add : return strconv.FormatInt(x + y, 10)
        case tac.OP_sub : return strconv.FormatInt(x - y, 10)
        case tac.OP_mul : return strconv.FormatInt(x * y, 10)
        case tac.OP_quo : return strconv.FormatInt(x / y, 10)
        case tac.OP_rem : return strconv.FormatInt(x % y, 10)
        case tac.OP_and : return strconv.FormatInt(x & y, 10)
        case tac.OP_or  : return strconv.FormatInt(x | y, 10)
        case tac.OP_xor : return strconv.FormatInt(x ^ y, 10)
        case tac.OP_shl : return strconv.FormatInt(x << y, 10)
        case tac.OP_shr : return strconv.FormatInt(x >> y, 10)
        case tac.OP_not : return strconv.FormatInt(^x, 10)
        default         : panic("unreachable")
    }
}

func TestEval_Examples(t *testing.T) {
    v, ok := Eval(tac.OP_add, tac.Int(2), tac.Int(3))
    require.True(t, ok)
    assert.Equal(t, tac.Lit("5"), v)
    v, ok = Eval(tac.OP_lt, tac.Int(2), tac.Int(3))
    require.True(t, ok)
    assert.Equal(t, tac.Lit("true"), v)
    v, ok = Eval(tac.OP_not, tac.Int(0), tac.Void)
    require.True(t, ok)
    assert.Equal(t, tac.Lit("-1"), v)
    v, ok = Eval(tac.OP_eq, tac.Bool(true), tac.Int(1))
    require.True(t, ok)
    assert.Equal(t, tac.Lit("true"), v)
}

func TestEval_Unfoldable(t *testing.T) {
    for _, c := range []struct {
        op tac.OpCode
        x  tac.Operand
        y  tac.Operand
    } {
        { tac.OP_quo, tac.Int(1), tac.Int(0) },
        { tac.OP_rem, tac.Int(1), tac.Int(0) },
        { tac.OP_shl, tac.Int(1), tac.Int(-1) },
        { tac.OP_add, tac.Lit("0.0"), tac.Int(1) },
        { tac.OP_add, tac.Lit(`""`), tac.Int(1) },
        { tac.OP_add, tac.Var("a"), tac.Int(1) },
        { tac.OP_add, tac.Int(1), tac.Var("a") },
        { tac.OP_not, tac.Var("a"), tac.Void },
        { tac.OP_mov, tac.Int(1), tac.Void },
    } {
        _, ok := Eval(c.op, c.x, c.y)
        assert.False(t, ok, "%s %s, %s", c.op, c.x, c.y)
    }
}

func TestEval_MatchesDirectEvaluation(t *testing.T) {
    fake := gofakeit.New(20241017)
    ops := []tac.OpCode {
        tac.OP_eq, tac.OP_ne, tac.OP_lt, tac.OP_le, tac.OP_gt, tac.OP_ge,
        tac.OP_add, tac.OP_sub, tac.OP_mul, tac.OP_quo, tac.OP_rem,
        tac.OP_and, tac.OP_or, tac.OP_xor, tac.OP_shl, tac.OP_shr, tac.OP_not,
    }

    /* random operand pairs, shift counts stay within the word */
    for i := 0; i < 1000; i++ {
        for _, op := range ops {
            x := int64(fake.Number(-100000, 100000))
            y := int64(fake.Number(-100000, 100000))
            if op == tac.OP_shl || op == tac.OP_shr {
                y = int64(fake.Number(0, 63))
            } else if (op == tac.OP_quo || op == tac.OP_rem) && y == 0 {
                y = 1
            }

            /* folding must agree with Go */
            v, ok := Eval(op, tac.Int(x), tac.Int(y))
            require.True(t, ok, "%s %d, %d", op, x, y)
            require.Equal(t, tac.Lit(direct(op, x, y)), v, "%s %d, %d", op, x, y)
        }
    }
}

func TestConstProp_FoldsIntoMove(t *testing.T) {
    b := tac.CreateBuilder()
    a := tac.Var("a")
    b.Global(a)
    t0 := b.Temp()
    b.MOV(tac.Int(4), a)
    b.Binary(tac.OP_mul, a, tac.Int(5), t0)
    b.PARAM(t0)
    b.CALL(tac.FuncStart("puts"), 1, tac.Void)
    b.Label(tac.FuncStart("puts"))
    b.Label(tac.FuncEnd("puts"))
    g := cfg.Build(b.Build())

    /* forward only */
    ctx := newContext(g)
    ConstProp{}.Apply(ctx, g.Entry)
    assert.Equal(t, "MOV V#a, L#4\nMOV V#t0, L#20\nPARAM L#20\nCALL S#puts, L#1\n\nLABEL S#puts\nLABEL E#puts\n\n", g.String())
    assert.Equal(t, 1, ctx.Stats.Folded)
    assert.Equal(t, 2, ctx.Stats.Propagated)

    /* the whole pipeline drops the temporary but keeps the global */
    o := opts.GetDefaultOptions()
    Optimize(g, &o)
    assert.Equal(t, "MOV V#a, L#4\nPARAM L#20\nCALL S#puts, L#1\n\nLABEL S#puts\nLABEL E#puts\n\n", g.String())
}
