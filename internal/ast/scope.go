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
    `strings`
)

type Type interface {
    fmt.Stringer
    isType()
}

type BasicType uint8

const (
    Void BasicType = iota
    Int
    Float
    Bool
    Char
    String
)

var _BasicTypes = [...]struct {
    name string
    zero string
} {
    Void   : { "void"   , ""      },
    Int    : { "int"    , "0"     },
    Float  : { "float"  , "0.0"   },
    Bool   : { "bool"   , "false" },
    Char   : { "char"   , "0"     },
    String : { "string" , `""`    },
}

func (BasicType) isType() {}

func (self BasicType) String() string {
    return _BasicTypes[self].name
}

// Zero returns the literal text of the default value of the type.
func (self BasicType) Zero() string {
    return _BasicTypes[self].zero
}

func ParseBasicType(s string) (BasicType, bool) {
    for i, v := range _BasicTypes {
        if v.name == s {
            return BasicType(i), true
        }
    }
    return Void, false
}

type Signature struct {
    Params []Type
    Result Type
}

func (*Signature) isType() {}

func (self *Signature) String() string {
    args := make([]string, len(self.Params))
    for i, p := range self.Params {
        args[i] = p.String()
    }
    return fmt.Sprintf("func(%s) %s", strings.Join(args, ", "), self.Result)
}

// Returns reports whether calling the signature produces a value.
func (self *Signature) Returns() bool {
    return self.Result != nil && self.Result != Void
}

type Symbol struct {
    Name string
    Type Type
    Pos  Pos
}

type Scope struct {
    Parent  *Scope
    Symbols map[string]*Symbol
}

func NewScope(parent *Scope) *Scope {
    return &Scope {
        Parent  : parent,
        Symbols : make(map[string]*Symbol),
    }
}

func (self *Scope) Insert(sym *Symbol) {
    self.Symbols[sym.Name] = sym
}

// Lookup resolves a name through this scope and all of its parents.
func (self *Scope) Lookup(name string) *Symbol {
    for s := self; s != nil; s = s.Parent {
        if sym, ok := s.Symbols[name]; ok {
            return sym
        }
    }
    return nil
}
