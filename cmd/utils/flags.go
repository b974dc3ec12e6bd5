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

// Package utils contains internal helper functions for avm commands.
package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/log"
)

const (
	VMCategory       = "VIRTUAL MACHINE"
	DatabaseCategory = "DATABASE"
	APICategory      = "API AND CONSOLE"
	LoggingCategory  = "LOGGING AND DEBUGGING"
	MetricsCategory  = "METRICS"
	MiscCategory     = "MISC"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: MiscCategory,
	}
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the state and contracts databases",
		Category: DatabaseCategory,
	}

	// Database settings
	DBEngineFlag = &cli.StringFlag{
		Name:     "db.engine",
		Usage:    "Backing database implementation to use ('memory', 'leveldb' or 'pebble')",
		Value:    rawdb.DBPebble,
		Category: DatabaseCategory,
	}
	DBCacheFlag = &cli.IntFlag{
		Name:     "db.cache",
		Usage:    "Megabytes of memory allocated to the database internal caching",
		Value:    64,
		Category: DatabaseCategory,
	}
	DBHandlesFlag = &cli.IntFlag{
		Name:     "db.handles",
		Usage:    "Number of file descriptors the database may use (0 = half the system allowance)",
		Category: DatabaseCategory,
	}
	StateCacheFlag = &cli.IntFlag{
		Name:     "cache.state",
		Usage:    "Megabytes of memory allocated to the public storage clean cache",
		Value:    32,
		Category: DatabaseCategory,
	}
	TranspileCacheFlag = &cli.IntFlag{
		Name:     "cache.transpile",
		Usage:    "Number of transpiled functions kept in memory",
		Value:    1024,
		Category: DatabaseCategory,
	}

	// Virtual machine settings
	VMMemoryLimitFlag = &cli.Uint64Flag{
		Name:     "vm.memory",
		Usage:    "Words of memory addressable by one frame",
		Category: VMCategory,
	}
	VMTotalMemoryFlag = &cli.Uint64Flag{
		Name:     "vm.totalmemory",
		Usage:    "Words of memory held by all frames of one simulation",
		Category: VMCategory,
	}
	VMCallDepthFlag = &cli.Uint64Flag{
		Name:     "vm.calldepth",
		Usage:    "Maximum nesting of public calls",
		Category: VMCategory,
	}
	VMMaxStepsFlag = &cli.Uint64Flag{
		Name:     "vm.maxsteps",
		Usage:    "Instructions executed per frame before aborting (0 = unlimited)",
		Category: VMCategory,
	}
	VMFaultPolicyFlag = &cli.StringFlag{
		Name:     "vm.faultpolicy",
		Usage:    "Behaviour of CALL when the callee faults ('propagate' or 'status')",
		Category: VMCategory,
	}
	VMDebugFlag = &cli.BoolFlag{
		Name:     "vm.debug",
		Usage:    "Log every executed instruction at trace level",
		Category: VMCategory,
	}

	// RPC settings
	HTTPListenAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP-RPC server listening interface",
		Value:    "localhost",
		Category: APICategory,
	}
	HTTPPortFlag = &cli.IntFlag{
		Name:     "http.port",
		Usage:    "HTTP-RPC server listening port",
		Value:    8645,
		Category: APICategory,
	}
	RPCTimeoutFlag = &cli.DurationFlag{
		Name:     "rpc.simtimeout",
		Usage:    "Time allowed for a single simulation served over RPC",
		Value:    5 * time.Second,
		Category: APICategory,
	}

	// Logging
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: LoggingCategory,
	}
	LogFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: LoggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file, rotated hourly",
		Category: LoggingCategory,
	}
	LogRotateHoursFlag = &cli.UintFlag{
		Name:     "log.rotate.hours",
		Usage:    "Hours between log file rotations",
		Value:    1,
		Category: LoggingCategory,
	}

	// Metrics
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and reporting",
		Category: MetricsCategory,
	}
)

var (
	DatabaseFlags = []cli.Flag{
		DataDirFlag,
		DBEngineFlag,
		DBCacheFlag,
		DBHandlesFlag,
		StateCacheFlag,
		TranspileCacheFlag,
	}
	VMFlags = []cli.Flag{
		VMMemoryLimitFlag,
		VMTotalMemoryFlag,
		VMCallDepthFlag,
		VMMaxStepsFlag,
		VMFaultPolicyFlag,
		VMDebugFlag,
	}
	RPCFlags = []cli.Flag{
		HTTPListenAddrFlag,
		HTTPPortFlag,
		RPCTimeoutFlag,
	}
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		LogFormatFlag,
		LogFileFlag,
		LogRotateHoursFlag,
		MetricsEnabledFlag,
	}
)

// DatabaseConfig selects and sizes the backing store.
type DatabaseConfig struct {
	Engine         string
	DataDir        string `toml:",omitempty"`
	Cache          int
	Handles        int
	StateCache     int
	TranspileCache int
}

// RPCConfig configures the HTTP-RPC endpoint.
type RPCConfig struct {
	HTTPHost          string
	HTTPPort          int
	SimulationTimeout time.Duration
}

// LogConfig configures logging.
type LogConfig struct {
	Verbosity   int
	Format      string `toml:",omitempty"`
	File        string `toml:",omitempty"`
	RotateHours uint
}

// SetDatabaseConfig applies database flags to the config.
func SetDatabaseConfig(ctx *cli.Context, cfg *DatabaseConfig) {
	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.String(DataDirFlag.Name)
	}
	if ctx.IsSet(DBEngineFlag.Name) {
		cfg.Engine = ctx.String(DBEngineFlag.Name)
	}
	if ctx.IsSet(DBCacheFlag.Name) {
		cfg.Cache = ctx.Int(DBCacheFlag.Name)
	}
	if ctx.IsSet(DBHandlesFlag.Name) {
		cfg.Handles = ctx.Int(DBHandlesFlag.Name)
	}
	if ctx.IsSet(StateCacheFlag.Name) {
		cfg.StateCache = ctx.Int(StateCacheFlag.Name)
	}
	if ctx.IsSet(TranspileCacheFlag.Name) {
		cfg.TranspileCache = ctx.Int(TranspileCacheFlag.Name)
	}
	// Without a directory only the in-memory store makes sense.
	if cfg.DataDir == "" && cfg.Engine != rawdb.DBMemory {
		log.Info("No data directory given, using in-memory database", "engine", cfg.Engine)
		cfg.Engine = rawdb.DBMemory
	}
}

// SetVMConfig applies virtual machine flags to the config.
func SetVMConfig(ctx *cli.Context, cfg *vm.Config) error {
	if ctx.IsSet(VMMemoryLimitFlag.Name) {
		cfg.MemoryLimit = ctx.Uint64(VMMemoryLimitFlag.Name)
	}
	if ctx.IsSet(VMTotalMemoryFlag.Name) {
		cfg.TotalMemoryLimit = ctx.Uint64(VMTotalMemoryFlag.Name)
	}
	if ctx.IsSet(VMCallDepthFlag.Name) {
		cfg.MaxCallDepth = ctx.Uint64(VMCallDepthFlag.Name)
	}
	if ctx.IsSet(VMMaxStepsFlag.Name) {
		cfg.MaxSteps = ctx.Uint64(VMMaxStepsFlag.Name)
	}
	if ctx.IsSet(VMFaultPolicyFlag.Name) {
		if err := cfg.NestedFaultPolicy.UnmarshalText([]byte(ctx.String(VMFaultPolicyFlag.Name))); err != nil {
			return err
		}
	}
	if ctx.IsSet(VMDebugFlag.Name) {
		cfg.Debug = ctx.Bool(VMDebugFlag.Name)
	}
	return nil
}

// SetRPCConfig applies RPC flags to the config.
func SetRPCConfig(ctx *cli.Context, cfg *RPCConfig) {
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.HTTPHost = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.HTTPPort = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(RPCTimeoutFlag.Name) {
		cfg.SimulationTimeout = ctx.Duration(RPCTimeoutFlag.Name)
	}
}

// SetLogConfig applies logging flags to the config.
func SetLogConfig(ctx *cli.Context, cfg *LogConfig) {
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
	if ctx.IsSet(LogFormatFlag.Name) {
		cfg.Format = ctx.String(LogFormatFlag.Name)
	}
	if ctx.IsSet(LogFileFlag.Name) {
		cfg.File = ctx.String(LogFileFlag.Name)
	}
	if ctx.IsSet(LogRotateHoursFlag.Name) {
		cfg.RotateHours = ctx.Uint(LogRotateHoursFlag.Name)
	}
}

// HTTPEndpoint resolves the HTTP-RPC listen address.
func (c *RPCConfig) HTTPEndpoint() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// MakeDatabaseHandles raises out the number of allowed file handles per process
// and returns half of the allowance to assign to the database.
func MakeDatabaseHandles(max int) int {
	limit, err := fdlimit.Maximum()
	if err != nil {
		Fatalf("Failed to retrieve file descriptor allowance: %v", err)
	}
	switch {
	case max == 0:
		// User didn't specify a meaningful value, use system limits
	case max < 128:
		// User specified something unhealthy, just use system defaults
		log.Error("File descriptor limit invalid (<128)", "had", max, "updated", limit)
	case max > limit:
		// User requested more than the OS allows, notify that we can't allocate it
		log.Warn("Requested file descriptors denied by OS", "req", max, "limit", limit)
	default:
		// User limit is meaningful and within allowed range, use that
		limit = max
	}
	raised, err := fdlimit.Raise(uint64(limit))
	if err != nil {
		Fatalf("Failed to raise file descriptor allowance: %v", err)
	}
	return int(raised / 2)
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user.
func CheckExclusive(ctx *cli.Context, flags ...cli.Flag) {
	set := make([]string, 0, 1)
	for _, flag := range flags {
		if name := flag.Names()[0]; ctx.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		Fatalf("Flags %v can't be used at the same time", strings.Join(set, ", "))
	}
}
