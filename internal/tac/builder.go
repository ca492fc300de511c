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
    `sort`
    `strconv`
)

// Builder appends instructions to a Program and keeps track of label
// definitions, so that a dangling jump is caught where it is produced.
type Builder struct {
    i     int
    prog  *Program
    refs  map[Operand]Ref
    pends map[Operand][]Ref
}

func CreateBuilder() *Builder {
    return &Builder {
        prog  : NewProgram(),
        refs  : make(map[Operand]Ref, 64),
        pends : make(map[Operand][]Ref, 64),
    }
}

func (self *Builder) add(ins Instr) Ref {
    return self.prog.Append(ins)
}

func (self *Builder) jmp(ins Instr, to Operand) Ref {
    if _, ok := self.refs[to]; ok {
        return self.add(ins)
    }

    /* forward jump, remember it until the label shows up */
    r := self.add(ins)
    self.pends[to] = append(self.pends[to], r)
    return r
}

// Temp allocates a fresh temporary variable.
func (self *Builder) Temp() Operand {
    self.i++
    return Var("t" + strconv.Itoa(self.i - 1))
}

// Global marks a variable as visible outside of any function.
func (self *Builder) Global(v Operand) {
    self.prog.Globals[v.S] = true
}

func (self *Builder) Label(lb Operand) Ref {
    if !lb.IsLabel() {
        panic(ConsistencyError { Pass: "tac", Reason: "not a label: " + lb.String() })
    }

    /* check for duplications */
    if _, ok := self.refs[lb]; ok {
        panic(ConsistencyError { Pass: "tac", Reason: "label " + lb.String() + " has already been linked" })
    }

    /* mark the label as resolved */
    r := self.add(Instr { Op: OP_label, X: lb })
    self.refs[lb] = r
    delete(self.pends, lb)
    return r
}

// Build checks that every referenced label is defined and returns the program.
// Calls are no exception, the callee must be defined in the same unit.
func (self *Builder) Build() *Program {
    var keys []string

    /* check for unresolved labels */
    for lb := range self.pends {
        keys = append(keys, lb.String())
    }

    /* report them in a stable order */
    if len(keys) != 0 {
        sort.Strings(keys)
        panic(ConsistencyError { Pass: "tac", Reason: "labels are not fully resolved: " + keys[0] })
    }

    /* the Builder's life-time ends here */
    prog := self.prog
    self.prog = nil
    return prog
}

func (self *Builder) Binary(op OpCode, x Operand, y Operand, res Operand) Ref {
    if !op.IsBinary() {
        panic(ConsistencyError { Pass: "tac", Reason: "not a binary operator: " + op.String() })
    } else {
        return self.add(Instr { Op: op, X: x, Y: y, Res: res })
    }
}

func (self *Builder) ADD(x Operand, y Operand, res Operand) Ref {
    return self.Binary(OP_add, x, y, res)
}

func (self *Builder) SUB(x Operand, y Operand, res Operand) Ref {
    return self.Binary(OP_sub, x, y, res)
}

func (self *Builder) NOT(x Operand, res Operand) Ref {
    return self.add(Instr { Op: OP_not, X: x, Res: res })
}

func (self *Builder) MOV(x Operand, res Operand) Ref {
    return self.add(Instr { Op: OP_mov, X: x, Res: res })
}

func (self *Builder) JMP(to Operand) Ref {
    return self.jmp(Instr { Op: OP_jmp, Res: to }, to)
}

func (self *Builder) JE(x Operand, y Operand, to Operand) Ref {
    return self.jmp(Instr { Op: OP_je, X: x, Y: y, Res: to }, to)
}

func (self *Builder) JNE(x Operand, y Operand, to Operand) Ref {
    return self.jmp(Instr { Op: OP_jne, X: x, Y: y, Res: to }, to)
}

func (self *Builder) PARAM(x Operand) Ref {
    return self.add(Instr { Op: OP_param, X: x })
}

func (self *Builder) CALL(fn Operand, argc int, res Operand) Ref {
    return self.jmp(Instr { Op: OP_call, X: fn, Y: Int(int64(argc)), Res: res }, fn)
}

func (self *Builder) RET(x Operand, end Operand) Ref {
    return self.jmp(Instr { Op: OP_ret, X: x, Res: end }, end)
}
