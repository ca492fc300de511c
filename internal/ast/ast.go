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

// Package ast defines the annotated syntax tree handed over by the front end.
// Every node carries a unique id, a source position and its resolved scope;
// statements additionally carry the reachability verdict of the checker.
package ast

import (
    `fmt`
)

type Pos struct {
    Line int
    Col  int
}

func (self Pos) String() string {
    return fmt.Sprintf("%d:%d", self.Line, self.Col)
}

type Node interface {
    ID() int
    Position() Pos
}

type Stmt interface {
    Node
    Reachable() bool
}

type Expr interface {
    Node
    isExpr()
}

// Base is embedded by every node.
type Base struct {
    Id          int
    Pos         Pos
    Scope       *Scope
    Unreachable bool
}

func (self *Base) ID() int          { return self.Id }
func (self *Base) Position() Pos    { return self.Pos }
func (self *Base) Reachable() bool  { return !self.Unreachable }

type Operator uint8

const (
    ADD Operator = iota
    SUB
    MUL
    QUO
    REM
    AND
    OR
    XOR
    SHL
    SHR
    EQ
    NE
    LT
    LE
    GT
    GE
    LAND
    LOR
    NOT
    LNOT
)

var _OperatorNames = [...]string {
    ADD  : "+",
    SUB  : "-",
    MUL  : "*",
    QUO  : "/",
    REM  : "%",
    AND  : "&",
    OR   : "|",
    XOR  : "^",
    SHL  : "<<",
    SHR  : ">>",
    EQ   : "==",
    NE   : "!=",
    LT   : "<",
    LE   : "<=",
    GT   : ">",
    GE   : ">=",
    LAND : "&&",
    LOR  : "||",
    NOT  : "~",
    LNOT : "!",
}

func (self Operator) String() string {
    if int(self) < len(_OperatorNames) {
        return _OperatorNames[self]
    } else {
        return fmt.Sprintf("Operator(%d)", self)
    }
}

// ParseOperator looks up an operator by its source spelling.
func ParseOperator(s string) (Operator, bool) {
    for i, v := range _OperatorNames {
        if v == s {
            return Operator(i), true
        }
    }
    return 0, false
}

type (
    File struct {
        Base
        Stmts []Stmt
    }

    Block struct {
        Base
        Stmts []Stmt
    }

    EmptyStmt struct {
        Base
    }

    ExprStmt struct {
        Base
        X Expr
    }

    FieldDecl struct {
        Base
        Type BasicType
        Name *Name
        Init Expr
    }

    FuncDecl struct {
        Base
        Name   *Name
        Params []*FieldDecl
        Result Type
        Body   *Block
    }

    IfStmt struct {
        Base
        Cond    Expr
        Then    *Block
        ElseIfs []*ElseIfStmt
        Else    *Block
    }

    ElseIfStmt struct {
        Base
        Cond Expr
        Then *Block
    }

    ForStmt struct {
        Base
        Inits   []Stmt
        Cond    Expr
        Updates []Stmt
        Body    *Block
    }

    BreakStmt struct {
        Base
    }

    ContinueStmt struct {
        Base
    }

    ReturnStmt struct {
        Base
        Value Expr
    }
)

type (
    BasicLit struct {
        Base
        Kind  BasicType
        Value string
    }

    Name struct {
        Base
        Value string
    }

    Operation struct {
        Base
        Op Operator
        X  Expr
        Y  Expr
    }

    AssignExpr struct {
        Base
        X *Name
        Y Expr
    }

    IncExpr struct {
        Base
        X   *Name
        Pre bool
        Dec bool
    }

    CallExpr struct {
        Base
        Func *Name
        Args []Expr
    }
)

func (*BasicLit) isExpr()   {}
func (*Name) isExpr()       {}
func (*Operation) isExpr()  {}
func (*AssignExpr) isExpr() {}
func (*IncExpr) isExpr()    {}
func (*CallExpr) isExpr()   {}
