// Copyright 2026 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package native_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/tracers"
	"github.com/publicvm/avm/core/tracers/native"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/core/vm/program"
)

var (
	callee = common.BytesToAddress([]byte("callee"))
	caller = common.BytesToAddress([]byte("caller"))
)

// run deploys a caller forwarding to a callee that writes calldata[0] to
// slot 1 twice, and simulates it under the named tracer.
func run(t *testing.T, name string, cfg string) json.RawMessage {
	t.Helper()

	contracts := vm.NewMockContractsDB()
	contracts.Deploy(callee, program.New().
		LoadCalldata(1).
		Set(2, 1).
		Set(3, 0).
		Sstore(2, 3).
		Sstore(2, 1).
		ReturnRange(1, 1, 20).Bytes(), ethcommon.Address{}, false)
	contracts.Deploy(caller, program.New().
		LoadCalldata(1).
		Set(10, 2).
		Set(11, 1).
		Set(12, 30).
		Set(13, 1).
		Call(10, 100, 1, 40).
		ReturnRange(30, 1, 20).Bytes(), ethcommon.Address{}, false)

	var raw json.RawMessage
	if cfg != "" {
		raw = json.RawMessage(cfg)
	}
	tracer, err := tracers.DefaultDirectory.New(name, raw)
	require.NoError(t, err)

	config := vm.DefaultConfig()
	config.Tracer = tracer.Hooks
	res, err := vm.Simulate(context.Background(), vm.NewMockStateDB(), contracts, config, vm.PublicCall{
		ContractAddress: caller,
		Calldata:        []fr.Element{callee.Field(), common.NewField(7)},
	})
	require.NoError(t, err)
	require.Equal(t, common.Fields(7), res.ReturnValues)

	out, err := tracer.GetResult()
	require.NoError(t, err)
	return out
}

func TestDirectory(t *testing.T) {
	assert.Equal(t, []string{"callTracer", "noopTracer", "storageTracer", "structLogger"}, tracers.DefaultDirectory.Names())
	_, err := tracers.DefaultDirectory.New("fourByteTracer", nil)
	assert.Error(t, err)
	assert.JSONEq(t, `{}`, string(run(t, "noopTracer", "")))
}

func TestCallTracer(t *testing.T) {
	var root struct {
		To     common.Address `json:"to"`
		Input  []string       `json:"input"`
		Output []string       `json:"output"`
		Calls  []struct {
			From   common.Address `json:"from"`
			To     common.Address `json:"to"`
			Input  []string       `json:"input"`
			Output []string       `json:"output"`
		} `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(run(t, "callTracer", ""), &root))
	assert.Equal(t, caller, root.To)
	assert.Equal(t, []string{"7"}, root.Output)
	require.Len(t, root.Calls, 1)
	assert.Equal(t, caller, root.Calls[0].From)
	assert.Equal(t, callee, root.Calls[0].To)
	assert.Equal(t, []string{"7"}, root.Calls[0].Input)

	require.NoError(t, json.Unmarshal(run(t, "callTracer", `{"onlyTopCall":true}`), &root))
	assert.Empty(t, root.Calls)
}

func TestStorageTracer(t *testing.T) {
	var diff map[common.Address]map[string]struct {
		Pre  string `json:"pre"`
		Post string `json:"post"`
	}
	require.NoError(t, json.Unmarshal(run(t, "storageTracer", ""), &diff))
	require.Len(t, diff, 1)
	slot := diff[callee][common.FieldHex(common.NewField(1))]
	assert.Equal(t, common.FieldHex(common.NewField(0)), slot.Pre)
	assert.Equal(t, common.FieldHex(common.NewField(7)), slot.Post)
}

func TestStructLogger(t *testing.T) {
	var logs []native.StructLog
	require.NoError(t, json.Unmarshal(run(t, "structLogger", `{"limit":3,"enableMemory":true}`), &logs))
	require.Len(t, logs, 3)
	assert.Equal(t, "CALLDATASIZE 0", logs[0].Op)
	assert.Equal(t, uint64(1), logs[1].Pc)
	assert.Equal(t, 1, logs[1].Depth)
	assert.Equal(t, []string{"2"}, logs[1].Memory)
}

func TestStructLoggerLimitOnFault(t *testing.T) {
	contracts := vm.NewMockContractsDB()
	contracts.Deploy(callee, program.New().Jump(1000).Bytes(), ethcommon.Address{}, false)

	tracer, err := tracers.DefaultDirectory.New("structLogger", json.RawMessage(`{"limit":1}`))
	require.NoError(t, err)
	config := vm.DefaultConfig()
	config.Tracer = tracer.Hooks
	_, err = vm.Simulate(context.Background(), vm.NewMockStateDB(), contracts, config, vm.PublicCall{ContractAddress: callee})
	require.ErrorIs(t, err, vm.ErrInvalidJump)

	out, err := tracer.GetResult()
	require.NoError(t, err)
	var logs []native.StructLog
	require.NoError(t, json.Unmarshal(out, &logs))
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Err)
}

func TestTracerStopConcurrent(t *testing.T) {
	errStopped := errors.New("stopped")
	for _, name := range tracers.DefaultDirectory.Names() {
		if name == "noopTracer" {
			continue
		}
		tracer, err := tracers.DefaultDirectory.New(name, nil)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			tracer.Stop(errStopped)
		}()
		go func() {
			defer wg.Done()
			tracer.GetResult()
		}()
		wg.Wait()

		_, err = tracer.GetResult()
		assert.ErrorIs(t, err, errStopped, name)
	}
}
