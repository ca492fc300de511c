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
)

// ConsistencyError is the panic value of every internal-consistency failure.
// It always indicates a defect in the compiler, never bad user input.
type ConsistencyError struct {
    Pass   string
    Reason string
}

func (self ConsistencyError) Error() string {
    return fmt.Sprintf("%s: internal consistency failure: %s", self.Pass, self.Reason)
}
