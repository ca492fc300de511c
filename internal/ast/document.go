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

package ast

import (
    `fmt`
    `io`

    `gopkg.in/yaml.v3`
)

// Document is the YAML interchange form of an annotated tree. Node ids are
// assigned in pre-order while decoding; scopes are rebuilt from declarations.
type Document struct {
    Kind        string      `yaml:"kind"`
    Line        int         `yaml:"line,omitempty"`
    Col         int         `yaml:"col,omitempty"`
    Unreachable bool        `yaml:"unreachable,omitempty"`
    Name        string      `yaml:"name,omitempty"`
    Type        string      `yaml:"type,omitempty"`
    Value       string      `yaml:"value,omitempty"`
    Op          string      `yaml:"op,omitempty"`
    Pre         bool        `yaml:"pre,omitempty"`
    Dec         bool        `yaml:"dec,omitempty"`
    X           *Document   `yaml:"x,omitempty"`
    Y           *Document   `yaml:"y,omitempty"`
    Cond        *Document   `yaml:"cond,omitempty"`
    Init        *Document   `yaml:"init,omitempty"`
    Then        []*Document `yaml:"then,omitempty"`
    ElseIfs     []*Document `yaml:"elseifs,omitempty"`
    Else        []*Document `yaml:"else,omitempty"`
    ThenDead    bool        `yaml:"then_unreachable,omitempty"`
    ElseDead    bool        `yaml:"else_unreachable,omitempty"`
    Inits       []*Document `yaml:"inits,omitempty"`
    Updates     []*Document `yaml:"updates,omitempty"`
    Body        []*Document `yaml:"body,omitempty"`
    Params      []*Document `yaml:"params,omitempty"`
    Args        []*Document `yaml:"args,omitempty"`
    Result      string      `yaml:"result,omitempty"`
}

type DocumentError struct {
    Pos    Pos
    Reason string
}

func (self DocumentError) Error() string {
    return fmt.Sprintf("ast document error at %s: %s", self.Pos, self.Reason)
}

// Decode reads a YAML document and builds the annotated tree it describes.
func Decode(r io.Reader) (*File, error) {
    var doc Document
    if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
        return nil, err
    } else {
        return doc.Build()
    }
}

// Build converts the document into an annotated tree.
func (self *Document) Build() (ret *File, err error) {
    b := &_DocBuilder{}

    /* conversion errors unwind through panics */
    defer func() {
        if v := recover(); v != nil {
            if e, ok := v.(DocumentError); ok {
                ret, err = nil, e
            } else {
                panic(v)
            }
        }
    }()

    /* must be a file node */
    if self.Kind != "file" {
        b.fail(self, "top-level node must be a file, not %q", self.Kind)
    }

    /* build the file scope, functions may be called before they are declared */
    fs := NewScope(nil)
    ret = &File { Base: b.base(self, fs) }

    /* declare all the functions first */
    for _, v := range self.Body {
        if v.Kind == "func" {
            fs.Insert(&Symbol { Name: v.Name, Type: b.signature(v), Pos: Pos { v.Line, v.Col } })
        }
    }

    /* then convert every statement */
    for _, v := range self.Body {
        ret.Stmts = append(ret.Stmts, b.stmt(v, fs))
    }
    return
}

type _DocBuilder struct {
    id int
}

func (self *_DocBuilder) fail(d *Document, format string, args ...interface{}) {
    panic(DocumentError {
        Pos    : Pos { d.Line, d.Col },
        Reason : fmt.Sprintf(format, args...),
    })
}

func (self *_DocBuilder) base(d *Document, sc *Scope) Base {
    self.id++
    return Base {
        Id          : self.id,
        Pos         : Pos { d.Line, d.Col },
        Scope       : sc,
        Unreachable : d.Unreachable,
    }
}

func (self *_DocBuilder) basic(d *Document, s string) BasicType {
    if t, ok := ParseBasicType(s); !ok {
        self.fail(d, "invalid type %q", s)
        return Void
    } else {
        return t
    }
}

func (self *_DocBuilder) signature(d *Document) *Signature {
    ret := &Signature { Result: Void }
    for _, p := range d.Params {
        ret.Params = append(ret.Params, self.basic(p, p.Type))
    }
    if d.Result != "" {
        ret.Result = self.basic(d, d.Result)
    }
    return ret
}

// name converts d, which must be a name. A missing name is reported at the
// position of parent.
func (self *_DocBuilder) name(parent *Document, d *Document, sc *Scope) *Name {
    if d == nil {
        self.fail(parent, "missing name")
    } else if d.Kind != "name" {
        self.fail(d, "expect a name, got %q", d.Kind)
    }
    return &Name { Base: self.base(d, sc), Value: d.Name }
}

func (self *_DocBuilder) block(d *Document, body []*Document, sc *Scope) *Block {
    ret := &Block { Base: self.base(d, sc) }
    for _, v := range body {
        ret.Stmts = append(ret.Stmts, self.stmt(v, sc))
    }
    return ret
}

// arm converts the body of a conditional arm. An arm is unreachable when its
// statement is, or when the document marks the arm itself.
func (self *_DocBuilder) arm(d *Document, body []*Document, dead bool, sc *Scope) *Block {
    ret := self.block(d, body, sc)
    ret.Unreachable = ret.Unreachable || dead
    return ret
}

func (self *_DocBuilder) stmts(body []*Document, sc *Scope) (ret []Stmt) {
    for _, v := range body {
        ret = append(ret, self.stmt(v, sc))
    }
    return
}

func (self *_DocBuilder) field(d *Document, sc *Scope) *FieldDecl {
    ret := &FieldDecl { Base: self.base(d, sc), Type: self.basic(d, d.Type) }
    ret.Name = &Name { Base: self.base(d, sc), Value: d.Name }

    /* optional initializer */
    if d.Init != nil {
        ret.Init = self.expr(d, d.Init, sc)
    }

    /* the name is visible after the declaration */
    sc.Insert(&Symbol { Name: d.Name, Type: ret.Type, Pos: ret.Pos })
    return ret
}

func (self *_DocBuilder) stmt(d *Document, sc *Scope) Stmt {
    switch d.Kind {
        case "empty"    : return &EmptyStmt { Base: self.base(d, sc) }
        case "break"    : return &BreakStmt { Base: self.base(d, sc) }
        case "continue" : return &ContinueStmt { Base: self.base(d, sc) }
        case "field"    : return self.field(d, sc)
        case "block"    : return self.block(d, d.Body, NewScope(sc))
    }

    /* compound statements */
    switch d.Kind {
        case "expr": {
            ret := &ExprStmt { Base: self.base(d, sc) }
            ret.X = self.expr(d, d.X, sc)
            return ret
        }

        case "return": {
            ret := &ReturnStmt { Base: self.base(d, sc) }
            if d.X != nil {
                ret.Value = self.expr(d, d.X, sc)
            }
            return ret
        }

        case "func": {
            fs := NewScope(sc)
            ret := &FuncDecl { Base: self.base(d, sc) }
            ret.Name = &Name { Base: self.base(d, sc), Value: d.Name }
            ret.Result = self.signature(d).Result

            /* parameters live in the function scope */
            for _, p := range d.Params {
                ret.Params = append(ret.Params, self.field(p, fs))
            }

            /* function body */
            ret.Body = self.block(d, d.Body, fs)
            return ret
        }

        case "if": {
            ret := &IfStmt { Base: self.base(d, sc) }
            ret.Cond = self.expr(d, d.Cond, sc)
            ret.Then = self.arm(d, d.Then, d.ThenDead, NewScope(sc))

            /* else-if arms */
            for _, v := range d.ElseIfs {
                arm := &ElseIfStmt { Base: self.base(v, sc) }
                arm.Cond = self.expr(v, v.Cond, sc)
                arm.Then = self.arm(v, v.Then, v.ThenDead, NewScope(sc))
                ret.ElseIfs = append(ret.ElseIfs, arm)
            }

            /* optional else arm */
            if d.Else != nil {
                ret.Else = self.arm(d, d.Else, d.ElseDead, NewScope(sc))
            }
            return ret
        }

        case "for": {
            ls := NewScope(sc)
            ret := &ForStmt { Base: self.base(d, sc) }
            ret.Inits = self.stmts(d.Inits, ls)

            /* the condition is optional */
            if d.Cond != nil {
                ret.Cond = self.expr(d, d.Cond, ls)
            }

            /* updates run after the body */
            ret.Updates = self.stmts(d.Updates, ls)
            ret.Body = self.block(d, d.Body, NewScope(ls))
            return ret
        }

        default: {
            self.fail(d, "invalid statement kind %q", d.Kind)
            return nil
        }
    }
}

func (self *_DocBuilder) expr(parent *Document, d *Document, sc *Scope) Expr {
    if d == nil {
        self.fail(parent, "missing expression")
    }

    /* dispatch by kind */
    switch d.Kind {
        case "name": {
            return self.name(d, d, sc)
        }

        case "lit": {
            ret := &BasicLit { Base: self.base(d, sc), Kind: Int, Value: d.Value }
            if d.Type != "" {
                ret.Kind = self.basic(d, d.Type)
            }
            return ret
        }

        case "binary", "unary": {
            op, ok := ParseOperator(d.Op)
            if !ok {
                self.fail(d, "invalid operator %q", d.Op)
            }

            /* unary operators only have the left side */
            ret := &Operation { Base: self.base(d, sc), Op: op }
            ret.X = self.expr(d, d.X, sc)
            if d.Kind == "binary" {
                ret.Y = self.expr(d, d.Y, sc)
            }
            return ret
        }

        case "assign": {
            ret := &AssignExpr { Base: self.base(d, sc) }
            ret.X = self.name(d, d.X, sc)
            ret.Y = self.expr(d, d.Y, sc)
            return ret
        }

        case "inc": {
            ret := &IncExpr { Base: self.base(d, sc), Pre: d.Pre, Dec: d.Dec }
            ret.X = self.name(d, d.X, sc)
            return ret
        }

        case "call": {
            ret := &CallExpr { Base: self.base(d, sc) }
            ret.Func = &Name { Base: self.base(d, sc), Value: d.Name }

            /* arguments are evaluated from left to right */
            for _, v := range d.Args {
                ret.Args = append(ret.Args, self.expr(d, v, sc))
            }
            return ret
        }

        default: {
            self.fail(d, "invalid expression kind %q", d.Kind)
            return nil
        }
    }
}
