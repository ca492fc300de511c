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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/tacopt"
)

const testDocument = `
kind: file
body:
  - kind: field
    name: a
    type: int
    init: { kind: binary, op: "*", x: { kind: lit, value: "6" }, y: { kind: lit, value: "7" } }
`

func writeFile(t *testing.T, name string, data string) string {
	fn := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fn, []byte(data), 0644))
	return fn
}

func TestConfig_Load(t *testing.T) {
	fn := writeFile(t, "tacc.toml", "[Compiler]\nMaxDepth = 64\nOptimize = false\n\n[Output]\nTable = true\n")
	cfg := defaultConfig()
	require.NoError(t, loadConfig(fn, &cfg))
	assert.Equal(t, 64, cfg.Compiler.MaxDepth)
	assert.False(t, cfg.Compiler.Optimize)
	assert.True(t, cfg.Output.Table)
	assert.Equal(t, "warn", cfg.Output.LogLevel)
}

func TestConfig_UnknownField(t *testing.T) {
	fn := writeFile(t, "tacc.toml", "[Compiler]\nInline = true\n")
	cfg := defaultConfig()
	err := loadConfig(fn, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Inline")
	assert.True(t, strings.HasPrefix(err.Error(), fn+", "))
}

func TestConfig_Check(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.check())
	cfg.Output.LogLevel = "loud"
	assert.Error(t, cfg.check())
	cfg = defaultConfig()
	cfg.Compiler.MaxDepth = -1
	assert.Error(t, cfg.check())
}

func TestDumpConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dump.toml")
	require.NoError(t, newApp().Run([]string{"tacc", "dumpconfig", "--max-depth", "12", "--table", out}))

	/* the dump loads back into the same configuration */
	cfg := taccConfig{}
	require.NoError(t, loadConfig(out, &cfg))
	exp := defaultConfig()
	exp.Compiler.MaxDepth = 12
	exp.Output.Table = true
	assert.Equal(t, exp, cfg)
}

func TestCompile_DOT(t *testing.T) {
	src := writeFile(t, "unit.yaml", testDocument)
	out := filepath.Join(t.TempDir(), "unit.dot")
	require.NoError(t, newApp().Run([]string{"tacc", "compile", "--dot", out, src}))
	buf, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "digraph tac")
	assert.Contains(t, string(buf), "MOV V#a, L#42")
}

func TestCompile_Arguments(t *testing.T) {
	assert.Error(t, newApp().Run([]string{"tacc", "compile"}))
	assert.Error(t, newApp().Run([]string{"tacc", "compile", filepath.Join(t.TempDir(), "missing.yaml")}))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	unit, err := tacopt.Compile(strings.NewReader(testDocument))
	require.NoError(t, err)
	writeTable(&buf, unit)
	assert.Contains(t, buf.String(), "INSTRUCTIONS")
	assert.Contains(t, buf.String(), "MOV V#a, L#42")
	assert.Contains(t, buf.String(), "3 -> 1")
}
