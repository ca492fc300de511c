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
    `fmt`
    `strconv`

    `github.com/cloudwego/tacopt/internal/tac`
)

// literal converts an integer or boolean literal into its value.
func literal(v tac.Operand) (int64, bool) {
    if !v.IsLit() {
        return 0, false
    }

    /* booleans evaluate as 1 and 0 */
    switch v.S {
        case "true"  : return 1, true
        case "false" : return 0, true
    }

    /* everything else must be a decimal integer */
    if x, err := strconv.ParseInt(v.S, 10, 64); err != nil {
        return 0, false
    } else {
        return x, true
    }
}

func cond(v bool) tac.Operand {
    return tac.Bool(v)
}

// Eval evaluates a pure instruction over literal operands. It reports false
// when the result cannot be computed at compile time.
func Eval(op tac.OpCode, x tac.Operand, y tac.Operand) (tac.Operand, bool) {
    a, ok := literal(x)
    if !ok {
        return tac.Void, false
    }

    /* unary operator */
    if op == tac.OP_not {
        return tac.Int(^a), true
    }

    /* binary operators need both sides */
    b, ok := literal(y)
    if !ok || !op.IsBinary() {
        return tac.Void, false
    }

    /* leave the runtime errors to the runtime */
    switch op {
        case tac.OP_quo, tac.OP_rem : if b == 0 { return tac.Void, false }
        case tac.OP_shl, tac.OP_shr : if b < 0 { return tac.Void, false }
    }

    /* evaluate the expression */
    return binary(op, a, b), true
}

func binary(op tac.OpCode, x int64, y int64) tac.Operand {
    switch op {
        case tac.OP_eq  : return cond(x == y)
        case tac.OP_ne  : return cond(x != y)
        case tac.OP_lt  : return cond(x <  y)
        case tac.OP_le  : return cond(x <= y)
        case tac.OP_gt  : return cond(x >  y)
        case tac.OP_ge  : return cond(x >= y)
        case tac.OP_add : return tac.Int(x + y)
        case tac.OP_sub : return tac.Int(x - y)
        case tac.OP_mul : return tac.Int(x * y)
        case tac.OP_quo : return tac.Int(x / y)
        case tac.OP_rem : return tac.Int(x % y)
        case tac.OP_and : return tac.Int(x & y)
        case tac.OP_or  : return tac.Int(x | y)
        case tac.OP_xor : return tac.Int(x ^ y)
        case tac.OP_shl : return tac.Int(x << uint64(y))
        case tac.OP_shr : return tac.Int(x >> uint64(y))
        default         : panic(fmt.Sprintf("constprop: invalid binary operator: %s", op))
    }
}
