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
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/cloudwego/tacopt"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[file]",
		Flags:       compileFlags,
		Description: `The dumpconfig command shows configuration values after applying flags.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type compilerConfig struct {
	MaxDepth int
	Optimize bool
	Verify   bool
}

type outputConfig struct {
	OnlyReachable bool
	Table         bool
	DOT           string `toml:",omitempty"`
	LogLevel      string
}

type taccConfig struct {
	Compiler compilerConfig
	Output   outputConfig
}

func defaultConfig() taccConfig {
	return taccConfig{
		Compiler: compilerConfig{
			MaxDepth: 4096,
			Optimize: true,
		},
		Output: outputConfig{
			LogLevel: "warn",
		},
	}
}

func loadConfig(file string, cfg *taccConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration file if any, then applies flags on top.
func makeConfig(ctx *cli.Context) (taccConfig, error) {
	cfg := defaultConfig()

	// Load config file.
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	// Apply flags.
	if ctx.IsSet(maxDepthFlag.Name) {
		cfg.Compiler.MaxDepth = ctx.Int(maxDepthFlag.Name)
	}
	if ctx.Bool(noOptimizeFlag.Name) {
		cfg.Compiler.Optimize = false
	}
	if ctx.Bool(verifyFlag.Name) {
		cfg.Compiler.Verify = true
	}
	if ctx.Bool(reachableFlag.Name) {
		cfg.Output.OnlyReachable = true
	}
	if ctx.Bool(tableFlag.Name) {
		cfg.Output.Table = true
	}
	if ctx.IsSet(dotFlag.Name) {
		cfg.Output.DOT = ctx.String(dotFlag.Name)
	}
	if ctx.Bool(verboseFlag.Name) {
		cfg.Output.LogLevel = "debug"
	}
	return cfg, cfg.check()
}

func (self taccConfig) check() error {
	if self.Compiler.MaxDepth < 0 {
		return fmt.Errorf("invalid max depth: %d", self.Compiler.MaxDepth)
	}
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(self.Output.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", self.Output.LogLevel)
	}
	return nil
}

func (self taccConfig) logger() *slog.Logger {
	var lv slog.Level
	_ = lv.UnmarshalText([]byte(self.Output.LogLevel))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

func (self taccConfig) options(log *slog.Logger) []tacopt.Option {
	return []tacopt.Option{
		tacopt.WithMaxDepth(self.Compiler.MaxDepth),
		tacopt.WithOptimize(self.Compiler.Optimize),
		tacopt.WithVerify(self.Compiler.Verify),
		tacopt.WithOnlyReachable(self.Output.OnlyReachable),
		tacopt.WithLogger(log),
	}
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}

	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
