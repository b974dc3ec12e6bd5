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

package utils

import (
	"flag"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/vm"
)

func newContext(t *testing.T, flags []cli.Flag, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSplitAndTrim(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b ,,c ", []string{"a", "b", "c"}},
		{",,", nil},
	}
	for _, tt := range tests {
		if got := SplitAndTrim(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetVMConfig(t *testing.T) {
	cfg := vm.DefaultConfig()
	ctx := newContext(t, VMFlags, "--vm.maxsteps", "100", "--vm.faultpolicy", "status", "--vm.debug", "--vm.totalmemory", "4096")
	require.NoError(t, SetVMConfig(ctx, &cfg))
	assert.Equal(t, uint64(100), cfg.MaxSteps)
	assert.Equal(t, vm.FaultReturnStatus, cfg.NestedFaultPolicy)
	assert.True(t, cfg.Debug)
	assert.Equal(t, uint64(4096), cfg.TotalMemoryLimit)
	assert.Equal(t, vm.DefaultConfig().MemoryLimit, cfg.MemoryLimit)

	ctx = newContext(t, VMFlags, "--vm.faultpolicy", "ignore")
	assert.Error(t, SetVMConfig(ctx, &cfg))
}

func TestSetDatabaseConfig(t *testing.T) {
	cfg := DatabaseConfig{Engine: rawdb.DBPebble, Cache: 64}
	SetDatabaseConfig(newContext(t, DatabaseFlags, "--db.cache", "16"), &cfg)
	assert.Equal(t, 16, cfg.Cache)
	assert.Equal(t, rawdb.DBMemory, cfg.Engine)

	cfg = DatabaseConfig{Engine: rawdb.DBPebble}
	SetDatabaseConfig(newContext(t, DatabaseFlags, "--datadir", t.TempDir(), "--db.engine", "leveldb"), &cfg)
	assert.Equal(t, rawdb.DBLeveldb, cfg.Engine)
}

func TestSetRPCConfig(t *testing.T) {
	cfg := RPCConfig{HTTPHost: "localhost", HTTPPort: 8645}
	SetRPCConfig(newContext(t, RPCFlags, "--http.port", "9000", "--rpc.simtimeout", "2s"), &cfg)
	assert.Equal(t, "localhost:9000", cfg.HTTPEndpoint())
	assert.Equal(t, 2*time.Second, cfg.SimulationTimeout)
}
