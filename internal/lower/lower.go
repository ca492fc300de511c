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
    `errors`
    `fmt`

    `github.com/cloudwego/tacopt/internal/ast`
    `github.com/cloudwego/tacopt/internal/opts`
    `github.com/cloudwego/tacopt/internal/tac`
)

// ErrTooDeep is returned when the syntax tree is nested beyond Options.MaxDepth.
var ErrTooDeep = errors.New("lower: syntax tree nested too deeply")

var _BinaryOps = map[ast.Operator]tac.OpCode {
    ast.EQ  : tac.OP_eq,
    ast.NE  : tac.OP_ne,
    ast.LT  : tac.OP_lt,
    ast.LE  : tac.OP_le,
    ast.GT  : tac.OP_gt,
    ast.GE  : tac.OP_ge,
    ast.ADD : tac.OP_add,
    ast.SUB : tac.OP_sub,
    ast.MUL : tac.OP_mul,
    ast.QUO : tac.OP_quo,
    ast.REM : tac.OP_rem,
    ast.AND : tac.OP_and,
    ast.OR  : tac.OP_or,
    ast.XOR : tac.OP_xor,
    ast.SHL : tac.OP_shl,
    ast.SHR : tac.OP_shr,
}

type _TooDeep struct{}

// Lowerer translates an annotated tree into a TAC program.
type Lowerer struct {
    b     *tac.Builder
    fn    string
    loops []int
    depth int
    opts  *opts.Options
}

func newLowerer(o *opts.Options) *Lowerer {
    return &Lowerer {
        b    : tac.CreateBuilder(),
        opts : o,
    }
}

// Lower translates the whole compilation unit.
func Lower(file *ast.File, o *opts.Options) (prog *tac.Program, err error) {
    p := newLowerer(o)

    /* nesting limit unwinds through a private panic value */
    defer func() {
        if v := recover(); v != nil {
            if _, ok := v.(_TooDeep); ok {
                prog, err = nil, ErrTooDeep
            } else {
                panic(v)
            }
        }
    }()

    /* lower every top-level statement */
    for _, s := range file.Stmts {
        p.stmt(s)
    }

    /* all labels must be resolved by now */
    prog = p.b.Build()
    return
}

func (self *Lowerer) fail(n ast.Node, format string, args ...interface{}) {
    panic(tac.ConsistencyError {
        Pass   : "lower",
        Reason : fmt.Sprintf("%s (node %d at %s)", fmt.Sprintf(format, args...), n.ID(), n.Position()),
    })
}

func (self *Lowerer) enter() {
    if self.depth++; !self.opts.CanNest(self.depth) {
        panic(_TooDeep{})
    }
}

func (self *Lowerer) leave() {
    self.depth--
}

func (self *Lowerer) loop() int {
    if n := len(self.loops); n == 0 {
        return -1
    } else {
        return self.loops[n - 1]
    }
}

func (self *Lowerer) stmts(v []ast.Stmt) {
    for _, s := range v {
        self.stmt(s)
    }
}

func (self *Lowerer) block(b *ast.Block) {
    if b != nil {
        self.stmt(b)
    }
}

func (self *Lowerer) stmt(s ast.Stmt) {
    if s == nil || !s.Reachable() {
        return
    }

    /* guard the nesting depth */
    self.enter()
    defer self.leave()

    /* dispatch by statement type */
    switch v := s.(type) {
        case *ast.EmptyStmt    : break
        case *ast.Block        : self.stmts(v.Stmts)
        case *ast.ExprStmt     : self.expr(v.X)
        case *ast.FieldDecl    : self.field(v)
        case *ast.FuncDecl     : self.function(v)
        case *ast.IfStmt       : self.cond(v)
        case *ast.ForStmt      : self.loopStmt(v)
        case *ast.BreakStmt    : self.jump(v, tac.ForEnd)
        case *ast.ContinueStmt : self.jump(v, tac.ForStart)
        case *ast.ReturnStmt   : self.ret(v)
        default                : self.fail(s, "unexpected statement %T", s)
    }
}

func (self *Lowerer) field(v *ast.FieldDecl) {
    name := tac.Var(v.Name.Value)

    /* declarations outside of functions are globals */
    if self.fn == "" {
        self.b.Global(name)
    }

    /* default value first, then the initializer */
    self.b.MOV(tac.Lit(v.Type.Zero()), name)
    if v.Init != nil {
        self.b.MOV(self.expr(v.Init), name)
    }
}

func (self *Lowerer) function(v *ast.FuncDecl) {
    if self.fn != "" {
        self.fail(v, "nested function %s inside %s", v.Name.Value, self.fn)
    }

    /* bracket the body with the start and end labels */
    self.fn = v.Name.Value
    self.b.Label(tac.FuncStart(self.fn))
    self.block(v.Body)
    self.b.Label(tac.FuncEnd(self.fn))
    self.fn = ""
}

func (self *Lowerer) ret(v *ast.ReturnStmt) {
    val := tac.Void
    if self.fn == "" {
        self.fail(v, "return outside of function")
    }

    /* optional return value */
    if v.Value != nil {
        val = self.expr(v.Value)
    }

    /* leave through the end label of the enclosing function */
    self.b.RET(val, tac.FuncEnd(self.fn))
}

func (self *Lowerer) jump(v ast.Stmt, name string) {
    if id := self.loop(); id < 0 {
        self.fail(v, "%s outside of loop", name)
    } else {
        self.b.JMP(tac.Label(name, id))
    }
}

// arm lowers `cond ? then : fallthrough`, leaving through `end`.
func (self *Lowerer) arm(id int, cond ast.Expr, then *ast.Block, end tac.Operand) {
    lt := tac.Label(tac.IfTrue, id)
    lf := tac.Label(tac.IfFalse, id)

    /* JE cond, 1, IF_TRUE; JMP IF_FALSE */
    self.b.JE(self.expr(cond), tac.Int(1), lt)
    self.b.JMP(lf)

    /* the taken arm */
    self.b.Label(lt)
    self.block(then)
    self.b.JMP(end)
    self.b.Label(lf)
}

func (self *Lowerer) cond(v *ast.IfStmt) {
    end := tac.Label(tac.IfEnd, v.ID())
    self.arm(v.ID(), v.Cond, v.Then, end)

    /* else-if arms share the END label */
    for _, p := range v.ElseIfs {
        if p.Reachable() {
            self.arm(p.ID(), p.Cond, p.Then, end)
        }
    }

    /* else arm */
    self.block(v.Else)
    self.b.Label(end)
}

func (self *Lowerer) loopStmt(v *ast.ForStmt) {
    ls := tac.Label(tac.ForStart, v.ID())
    lb := tac.Label(tac.ForBody, v.ID())
    le := tac.Label(tac.ForEnd, v.ID())

    /* initializers run once */
    self.stmts(v.Inits)
    self.b.Label(ls)

    /* a missing condition is always true */
    cond := tac.Int(1)
    if v.Cond != nil {
        cond = self.expr(v.Cond)
    }

    /* JE cond, 1, FOR_BODY; JMP FOR_END */
    self.b.JE(cond, tac.Int(1), lb)
    self.b.JMP(le)
    self.b.Label(lb)

    /* body and updates, break and continue refer to this loop */
    self.loops = append(self.loops, v.ID())
    self.block(v.Body)
    self.stmts(v.Updates)
    self.loops = self.loops[:len(self.loops) - 1]

    /* back edge */
    self.b.JMP(ls)
    self.b.Label(le)
}
