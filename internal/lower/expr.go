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

package lower

import (
    `github.com/cloudwego/tacopt/internal/ast`
    `github.com/cloudwego/tacopt/internal/tac`
)

func (self *Lowerer) expr(e ast.Expr) tac.Operand {
    self.enter()
    defer self.leave()

    /* dispatch by expression type */
    switch v := e.(type) {
        case *ast.BasicLit   : return tac.Lit(v.Value)
        case *ast.Name       : return tac.Var(v.Value)
        case *ast.Operation  : return self.operation(v)
        case *ast.AssignExpr : return self.assign(v)
        case *ast.IncExpr    : return self.inc(v)
        case *ast.CallExpr   : return self.call(v)
        default              : self.fail(e, "unexpected expression %T", e)
    }

    /* unreachable */
    return tac.Void
}

func (self *Lowerer) operation(v *ast.Operation) tac.Operand {
    switch v.Op {
        case ast.LAND : return self.logical(v, tac.Int(0), tac.Int(1))
        case ast.LOR  : return self.logical(v, tac.Int(1), tac.Int(0))
        case ast.LNOT : return self.negate(v)
    }

    /* bitwise not */
    if v.Op == ast.NOT {
        res := self.b.Temp()
        self.b.NOT(self.expr(v.X), res)
        return res
    }

    /* must be a binary operator */
    op, ok := _BinaryOps[v.Op]
    if !ok {
        self.fail(v, "invalid operator %s", v.Op)
    }

    /* lower both sides before allocating the result */
    x := self.expr(v.X)
    y := self.expr(v.Y)
    res := self.b.Temp()
    self.b.Binary(op, x, y, res)
    return res
}

// logical lowers the short-circuit operators. Whenever one side equals `short`
// the result is decided as `short`, otherwise it is `full`.
func (self *Lowerer) logical(v *ast.Operation, short tac.Operand, full tac.Operand) tac.Operand {
    res := self.b.Temp()
    lt := tac.Label(tac.IfTrue, v.ID())
    le := tac.Label(tac.IfEnd, v.ID())

    /* the right side is only evaluated if the left one is not decisive */
    self.b.JE(self.expr(v.X), short, lt)
    self.b.JE(self.expr(v.Y), short, lt)

    /* fully evaluated */
    self.b.MOV(full, res)
    self.b.JMP(le)

    /* short-circuited */
    self.b.Label(lt)
    self.b.MOV(short, res)
    self.b.Label(le)
    return res
}

func (self *Lowerer) negate(v *ast.Operation) tac.Operand {
    res := self.b.Temp()
    lf := tac.Label(tac.IfFalse, v.ID())
    le := tac.Label(tac.IfEnd, v.ID())

    /* JE x, 1, IF_FALSE */
    self.b.JE(self.expr(v.X), tac.Int(1), lf)
    self.b.MOV(tac.Int(1), res)
    self.b.JMP(le)

    /* x was true */
    self.b.Label(lf)
    self.b.MOV(tac.Int(0), res)
    self.b.Label(le)
    return res
}

func (self *Lowerer) assign(v *ast.AssignExpr) tac.Operand {
    y := self.expr(v.Y)
    x := tac.Var(v.X.Value)
    self.b.MOV(y, x)
    return x
}

func (self *Lowerer) inc(v *ast.IncExpr) tac.Operand {
    op := tac.OP_add
    x := tac.Var(v.X.Value)

    /* decrement */
    if v.Dec {
        op = tac.OP_sub
    }

    /* ++x, x = x + 1 */
    if v.Pre {
        self.b.Binary(op, x, tac.Int(1), x)
        return x
    }

    /* x++, t = x; x = x + 1 */
    res := self.b.Temp()
    self.b.MOV(x, res)
    self.b.Binary(op, x, tac.Int(1), x)
    return res
}

func (self *Lowerer) call(v *ast.CallExpr) tac.Operand {
    var sym *ast.Symbol
    var res tac.Operand
    var args []tac.Operand

    /* evaluate all the arguments first */
    for _, p := range v.Args {
        args = append(args, self.expr(p))
    }

    /* then pass them in order */
    for _, p := range args {
        self.b.PARAM(p)
    }

    /* resolve the callee through the scope of the call site */
    if v.Scope != nil {
        sym = v.Scope.Lookup(v.Func.Value)
    } else if v.Func.Scope != nil {
        sym = v.Func.Scope.Lookup(v.Func.Value)
    }

    /* the checker guarantees the callee is a function */
    sig, ok := symbolSignature(sym)
    if !ok {
        self.fail(v, "call to %s does not resolve to a function", v.Func.Value)
    }

    /* only allocate a result for non-void functions */
    if sig.Returns() {
        res = self.b.Temp()
    }

    /* res = call fn, argc */
    self.b.CALL(tac.FuncStart(v.Func.Value), len(args), res)
    return res
}

func symbolSignature(sym *ast.Symbol) (*ast.Signature, bool) {
    if sym == nil {
        return nil, false
    } else {
        sig, ok := sym.Type.(*ast.Signature)
        return sig, ok
    }
}
