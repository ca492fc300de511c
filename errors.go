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

package tacopt

import (
    `github.com/cloudwego/tacopt/internal/ast`
    `github.com/cloudwego/tacopt/internal/lower`
    `github.com/cloudwego/tacopt/internal/tac`
)

// InternalError is the panic value of an internal consistency failure, such
// as a jump to a label that was never placed. It always indicates a bug in
// the compiler, never in the input.
type InternalError = tac.ConsistencyError

// DocumentError occurs when the syntax tree document is malformed.
type DocumentError = ast.DocumentError

// ErrTooDeep is returned when the syntax tree nests deeper than the limit set
// by WithMaxDepth.
var ErrTooDeep = lower.ErrTooDeep
