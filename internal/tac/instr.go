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
    `fmt`
    `strings`
)

type OpCode byte

const (
    OP_head OpCode = iota   // list anchor, never emitted
    OP_eq                   // X == Y -> Res
    OP_ne                   // X != Y -> Res
    OP_lt                   // X <  Y -> Res
    OP_le                   // X <= Y -> Res
    OP_gt                   // X >  Y -> Res
    OP_ge                   // X >= Y -> Res
    OP_add                  // X +  Y -> Res
    OP_sub                  // X -  Y -> Res
    OP_mul                  // X *  Y -> Res
    OP_quo                  // X /  Y -> Res
    OP_rem                  // X %  Y -> Res
    OP_and                  // X &  Y -> Res
    OP_or                   // X |  Y -> Res
    OP_xor                  // X ^  Y -> Res
    OP_shl                  // X << Y -> Res
    OP_shr                  // X >> Y -> Res
    OP_not                  // ^X -> Res
    OP_mov                  // X -> Res
    OP_jmp                  // goto Res
    OP_je                   // if (X == Y) goto Res
    OP_jne                  // if (X != Y) goto Res
    OP_label                // X:
    OP_param                // push X
    OP_call                 // call X with Y arguments -> Res
    OP_ret                  // return X, leave through Res
)

var _OpNames = [...]string {
    OP_head  : "HEAD",
    OP_eq    : "EQ",
    OP_ne    : "NE",
    OP_lt    : "LT",
    OP_le    : "LE",
    OP_gt    : "GT",
    OP_ge    : "GE",
    OP_add   : "ADD",
    OP_sub   : "SUB",
    OP_mul   : "MUL",
    OP_quo   : "QUO",
    OP_rem   : "REM",
    OP_and   : "AND",
    OP_or    : "OR",
    OP_xor   : "XOR",
    OP_shl   : "SHL",
    OP_shr   : "SHR",
    OP_not   : "NOT",
    OP_mov   : "MOV",
    OP_jmp   : "JMP",
    OP_je    : "JE",
    OP_jne   : "JNE",
    OP_label : "LABEL",
    OP_param : "PARAM",
    OP_call  : "CALL",
    OP_ret   : "RET",
}

func (self OpCode) String() string {
    if int(self) < len(_OpNames) {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("OpCode(%d)", self)
    }
}

func (self OpCode) IsRelational() bool {
    return self >= OP_eq && self <= OP_ge
}

// IsBinary reports opcodes of the form `Res <- X op Y`.
func (self OpCode) IsBinary() bool {
    return self >= OP_eq && self <= OP_shr
}

// IsPure reports opcodes whose only effect is writing Res.
func (self OpCode) IsPure() bool {
    return self >= OP_eq && self <= OP_mov
}

// IsTransfer reports opcodes that end a basic block.
func (self OpCode) IsTransfer() bool {
    switch self {
        case OP_jmp, OP_je, OP_jne, OP_call, OP_ret : return true
        default                                     : return false
    }
}

type Instr struct {
    Op    OpCode
    X     Operand
    Y     Operand
    Res   Operand
    Prev  Ref
    Next  Ref
    Block int
    dead  bool
}

func (self *Instr) Dead() bool {
    return self.dead
}

// IsFuncEnd reports whether the instruction is a function-end label.
func (self *Instr) IsFuncEnd() bool {
    return self.Op == OP_label && self.X.IsFuncEnd()
}

// Target returns the label operand a control transfer resolves to.
func (self *Instr) Target() Operand {
    switch self.Op {
        case OP_jmp, OP_je, OP_jne, OP_ret : return self.Res
        case OP_call                       : return self.X
        default                            : return Void
    }
}

// Uses returns the operands read by the instruction.
func (self *Instr) Uses() []*Operand {
    switch self.Op {
        case OP_not, OP_mov, OP_param, OP_ret : return []*Operand { &self.X }
        case OP_je, OP_jne                    : return []*Operand { &self.X, &self.Y }
        case OP_call                          : return []*Operand { &self.Y }
        case OP_head, OP_jmp, OP_label        : return nil
    }

    /* binary expressions read both sides */
    if self.Op.IsBinary() {
        return []*Operand { &self.X, &self.Y }
    } else {
        panic(fmt.Sprintf("tac: invalid OpCode: 0x%02x", byte(self.Op)))
    }
}

// Rewrite turns the instruction into `MOV Res <- v`.
func (self *Instr) Rewrite(v Operand) {
    self.Op = OP_mov
    self.X  = v
    self.Y  = Void
}

func (self *Instr) String() string {
    switch self.Op {
        case OP_head  : return "HEAD"
        case OP_label : return fmt.Sprintf("LABEL %s", self.X)
        case OP_jmp   : return fmt.Sprintf("JMP %s", self.Res)
        case OP_param : return fmt.Sprintf("PARAM %s", self.X)
        case OP_not   : return fmt.Sprintf("NOT %s, %s", self.Res, self.X)
        case OP_mov   : return fmt.Sprintf("MOV %s, %s", self.Res, self.X)
        case OP_je    : return fmt.Sprintf("JE %s, %s, %s", self.X, self.Y, self.Res)
        case OP_jne   : return fmt.Sprintf("JNE %s, %s, %s", self.X, self.Y, self.Res)
    }

    /* calls and returns have optional operands */
    switch self.Op {
        case OP_call: {
            if self.Res.IsVoid() {
                return fmt.Sprintf("CALL %s, %s", self.X, self.Y)
            } else {
                return fmt.Sprintf("CALL %s, %s, %s", self.Res, self.X, self.Y)
            }
        }

        case OP_ret: {
            if self.X.IsVoid() {
                return "RET"
            } else {
                return fmt.Sprintf("RET %s", self.X)
            }
        }
    }

    /* binary expressions */
    if !self.Op.IsBinary() {
        panic(fmt.Sprintf("tac: invalid OpCode: 0x%02x", byte(self.Op)))
    } else {
        return strings.Join([]string { self.Op.String(), " ", self.Res.String(), ", ", self.X.String(), ", ", self.Y.String() }, "")
    }
}
