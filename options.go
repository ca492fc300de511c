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
	"fmt"
	"log/slog"

	"github.com/cloudwego/tacopt/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMaxDepth sets the maximum nesting depth of the syntax tree. Deeper trees
// are rejected with ErrTooDeep.
//
// Set this option to "0" disables this limit.
//
// The default value of this option is "4096".
func WithMaxDepth(depth int) Option {
	if depth < 0 {
		panic(fmt.Sprintf("tacopt: invalid max depth: %d", depth))
	} else {
		return func(o *opts.Options) { o.MaxDepth = depth }
	}
}

// WithOptimize enables or disables the block-local optimizer.
func WithOptimize(v bool) Option {
	return func(o *opts.Options) { o.Optimize = v }
}

// WithVerify checks the well-formedness of the control flow graph after it is
// built and after it is optimized.
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// WithOnlyReachable limits listings to the blocks reachable from the entry.
func WithOnlyReachable(v bool) Option {
	return func(o *opts.Options) { o.OnlyReachable = v }
}

// WithLogger sets the logger for pipeline statistics, which are logged at the
// debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *opts.Options) { o.Logger = l }
}

// SetMaxDepth sets the default maximum nesting depth from now on.
//
// This value can also be configured with the `TACOPT_MAX_DEPTH` environment
// variable.
//
// Returns the old opts.MaxDepth value.
func SetMaxDepth(depth int) int {
	depth, opts.MaxDepth = opts.MaxDepth, depth
	return depth
}
