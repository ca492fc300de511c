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

package opts

import (
	"io"
	"log/slog"
)

type Options struct {
	MaxDepth      int
	Optimize      bool
	Verify        bool
	OnlyReachable bool
	Logger        *slog.Logger
}

func (self *Options) CanNest(depth int) bool {
	return self.MaxDepth > depth || self.MaxDepth == 0
}

// Log returns the configured logger, or one that discards everything.
func (self *Options) Log() *slog.Logger {
	if self.Logger != nil {
		return self.Logger
	} else {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

func GetDefaultOptions() Options {
	return Options{
		MaxDepth: MaxDepth,
		Optimize: !NoOptimize,
		Verify:   Verify,
	}
}
