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
    `strconv`
    `strings`
)

type Kind uint8

const (
    K_void Kind = iota
    K_var
    K_lit
    K_label
)

type LabelKind uint8

const (
    L_control LabelKind = iota
    L_func_start
    L_func_end
)

const (
    IfTrue   = "IF_TRUE"
    IfFalse  = "IF_FALSE"
    IfEnd    = "IF_END"
    ForStart = "FOR_START"
    ForBody  = "FOR_BODY"
    ForEnd   = "FOR_END"
)

const (
    _P_var        = "V"
    _P_lit        = "L"
    _P_func_start = "S"
    _P_func_end   = "E"
)

// Operand is a single TAC operand. The zero value is the absent operand.
type Operand struct {
    K Kind
    L LabelKind
    S string
}

var Void = Operand{}

func Var(name string) Operand {
    return Operand { K: K_var, S: name }
}

func Lit(text string) Operand {
    return Operand { K: K_lit, S: text }
}

func Int(v int64) Operand {
    return Lit(strconv.FormatInt(v, 10))
}

func Bool(v bool) Operand {
    return Lit(strconv.FormatBool(v))
}

func FuncStart(name string) Operand {
    return Operand { K: K_label, L: L_func_start, S: name }
}

func FuncEnd(name string) Operand {
    return Operand { K: K_label, L: L_func_end, S: name }
}

// Label creates a control label, unique by the id of the node that owns it.
func Label(name string, id int) Operand {
    return Operand { K: K_label, L: L_control, S: name + "#" + strconv.Itoa(id) }
}

func (self Operand) IsVoid() bool  { return self.K == K_void }
func (self Operand) IsVar() bool   { return self.K == K_var }
func (self Operand) IsLit() bool   { return self.K == K_lit }
func (self Operand) IsLabel() bool { return self.K == K_label }

func (self Operand) IsFuncStart() bool {
    return self.K == K_label && self.L == L_func_start
}

func (self Operand) IsFuncEnd() bool {
    return self.K == K_label && self.L == L_func_end
}

// Toggle swaps a function-start label with its function-end counterpart.
func (self Operand) Toggle() Operand {
    switch {
        case self.IsFuncStart() : return FuncEnd(self.S)
        case self.IsFuncEnd()   : return FuncStart(self.S)
        default                 : panic("tac: toggling a non-function label: " + self.String())
    }
}

func (self Operand) String() string {
    switch self.K {
        case K_void  : return ""
        case K_var   : return _P_var + "#" + self.S
        case K_lit   : return _P_lit + "#" + self.S
        case K_label : break
        default      : panic(fmt.Sprintf("invalid operand kind: %d", self.K))
    }

    /* labels are distinguished by their sub-kinds */
    switch self.L {
        case L_func_start : return _P_func_start + "#" + self.S
        case L_func_end   : return _P_func_end + "#" + self.S
        default           : return self.S
    }
}

// ParseOperand parses the text form produced by Operand.String.
func ParseOperand(s string) (Operand, error) {
    if s == "" {
        return Void, nil
    }

    /* every operand has a kind prefix */
    i := strings.IndexByte(s, '#')
    if i <= 0 {
        return Void, fmt.Errorf("invalid operand %q: missing kind prefix", s)
    }

    /* dispatch by prefix */
    switch v := s[i + 1:]; s[:i] {
        case _P_var        : return Var(v), nil
        case _P_lit        : return Lit(v), nil
        case _P_func_start : return FuncStart(v), nil
        case _P_func_end   : return FuncEnd(v), nil
    }

    /* control labels carry the owning node id */
    switch s[:i] {
        case IfTrue, IfFalse, IfEnd, ForStart, ForBody, ForEnd: break
        default: return Void, fmt.Errorf("invalid operand %q: unknown kind %q", s, s[:i])
    }

    /* must be a valid id */
    if id, err := strconv.Atoi(s[i + 1:]); err != nil {
        return Void, fmt.Errorf("invalid operand %q: %w", s, err)
    } else {
        return Label(s[:i], id), nil
    }
}
