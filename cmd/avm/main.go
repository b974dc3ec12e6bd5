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

// avm is the command-line client for the public function virtual machine.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	gethmetrics "github.com/ethereum/go-ethereum/metrics"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/cmd/utils"
	"github.com/publicvm/avm/log"
	"github.com/publicvm/avm/metrics"
)

var app = &cli.App{
	Name:     "avm",
	Usage:    "the public function virtual machine",
	Flags:    append([]cli.Flag{utils.ConfigFileFlag}, utils.LoggingFlags...),
	Commands: []*cli.Command{runCommand, transpileCommand, disasmCommand, dbCommand, serveCommand, dumpConfigCommand},
	Before:   setupLogging,
	After:    stopLogging,
}

func init() {
	sort.Sort(cli.CommandsByName(app.Commands))
}

var logWriter *log.AsyncFileWriter

// setupLogging installs the root logger from the global flags and the
// config file.
func setupLogging(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	utils.SetLogConfig(ctx, &cfg.Log)
	if ctx.IsSet(utils.MetricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(utils.MetricsEnabledFlag.Name)
	}
	var w io.Writer = os.Stderr
	if cfg.Log.File != "" {
		if logWriter, err = log.NewAsyncFileWriter(cfg.Log.File, 1000, cfg.Log.RotateHours); err != nil {
			return err
		}
		if err := logWriter.Start(); err != nil {
			return err
		}
		w = logWriter
	}
	color := w == os.Stderr && os.Getenv("TERM") != "dumb"
	if err := log.Setup(w, log.FromVerbosity(cfg.Log.Verbosity), cfg.Log.Format, color); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		gethmetrics.Enable()
		log.Info("Enabling metrics collection")
	}
	metrics.GetOrRegisterLabel("avm/info", nil).Mark(map[string]any{
		"go":           runtime.Version(),
		"memory_limit": cfg.VM.MemoryLimit,
		"total_memory": cfg.VM.TotalMemoryLimit,
		"call_depth":   cfg.VM.MaxCallDepth,
		"fault_policy": cfg.VM.NestedFaultPolicy.String(),
		"db_engine":    cfg.DB.Engine,
	})
	return nil
}

func stopLogging(ctx *cli.Context) error {
	if logWriter != nil {
		logWriter.Stop()
	}
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
