// Copyright 2026 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/cmd/utils"
	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/internal/avmapi"
	"github.com/publicvm/avm/log"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       configFlags,
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

var configFlags = append(append(append([]cli.Flag{utils.ConfigFileFlag}, utils.DatabaseFlags...), utils.VMFlags...), utils.RPCFlags...)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type metricsConfig struct {
	Enabled bool
}

type avmConfig struct {
	VM      vm.Config
	DB      utils.DatabaseConfig
	RPC     utils.RPCConfig
	Log     utils.LogConfig
	Metrics metricsConfig
}

func defaultConfig() avmConfig {
	return avmConfig{
		VM: vm.DefaultConfig(),
		DB: utils.DatabaseConfig{
			Engine:         rawdb.DBPebble,
			Cache:          utils.DBCacheFlag.Value,
			StateCache:     utils.StateCacheFlag.Value,
			TranspileCache: transpiler.DefaultCacheSize,
		},
		RPC: utils.RPCConfig{
			HTTPHost:          utils.HTTPListenAddrFlag.Value,
			HTTPPort:          utils.HTTPPortFlag.Value,
			SimulationTimeout: avmapi.DefaultTimeout,
		},
		Log: utils.LogConfig{
			Verbosity:   utils.VerbosityFlag.Value,
			RotateHours: utils.LogRotateHoursFlag.Value,
		},
	}
}

func loadConfig(file string, cfg *avmConfig) error {
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

// loadBaseConfig loads the defaults overridden by the config file.
func loadBaseConfig(ctx *cli.Context) (avmConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
	}
	return cfg, nil
}

// makeConfig loads the defaults, then the config file, then the command
// line flags, each overriding the previous.
func makeConfig(ctx *cli.Context) (avmConfig, error) {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return cfg, err
	}
	utils.SetDatabaseConfig(ctx, &cfg.DB)
	if err := utils.SetVMConfig(ctx, &cfg.VM); err != nil {
		return cfg, err
	}
	utils.SetRPCConfig(ctx, &cfg.RPC)
	utils.SetLogConfig(ctx, &cfg.Log)
	if ctx.IsSet(utils.MetricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(utils.MetricsEnabledFlag.Name)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
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
	dump.WriteString("# Note: this config doesn't contain the tracer, which is chosen per call.\n\n")
	dump.Write(out)
	log.Debug("Dumped configuration", "bytes", len(out))
	return nil
}
