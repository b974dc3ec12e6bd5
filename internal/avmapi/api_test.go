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

package avmapi

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/state"
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/core/vm/program"
)

var (
	counter = common.BytesToAddress([]byte("counter"))
	looper  = common.BytesToAddress([]byte("looper"))
	portal  = ethcommon.HexToAddress("0x00000000000000000000000000000000000000aa")
)

// counterProgram adds calldata[0] to slot 1 and returns the new value.
func counterProgram() *program.Program {
	return program.New().
		LoadCalldata(20).
		Set(1, 1).
		Sload(2, 1).
		Add(3, 2, 20).
		Sstore(1, 3).
		ReturnRange(3, 1, 10)
}

func newTestClient(t *testing.T, timeout time.Duration) *rpc.Client {
	t.Helper()
	db := memorydb.New()
	tc := transpiler.NewCache(16)
	b := &Backend{
		State:      state.NewPublicStateDB(db, 1),
		Contracts:  state.NewContractsDB(db, tc),
		Transpiler: tc,
		Config:     vm.DefaultConfig(),
		Timeout:    timeout,
	}
	require.NoError(t, b.Contracts.Deploy(counter, counterProgram().Bytes(), portal, false))
	p := program.New()
	p.Jump(p.Label())
	require.NoError(t, b.Contracts.Deploy(looper, p.Bytes(), portal, false))

	server := rpc.NewServer()
	for _, api := range APIs(b) {
		require.NoError(t, server.RegisterName(api.Namespace, api.Service))
	}
	client := rpc.DialInProc(server)
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	return client
}

func TestSimulateRoundTrip(t *testing.T) {
	client := newTestClient(t, 0)

	args := map[string]any{
		"to":       counter,
		"selector": "0x1234",
		"calldata": []string{"5"},
	}
	var res SimulationResult
	require.NoError(t, client.Call(&res, "avm_simulate", args))
	assert.Equal(t, counter, res.Contract)
	assert.Equal(t, hexutil.Uint64(0x1234), res.Selector)
	assert.Equal(t, toFields(common.Fields(5)), res.ReturnValues)
	require.Len(t, res.StorageReads, 1)
	require.Len(t, res.StorageWrites, 1)
	assert.Equal(t, uint32(0), res.StorageReads[0].Counter)
	assert.Equal(t, uint32(1), res.StorageWrites[0].Counter)
	assert.Equal(t, Field(common.NewField(5)), res.StorageWrites[0].NewValue)

	// The simulation was not committed.
	var v Field
	require.NoError(t, client.Call(&v, "avm_getStorageAt", counter, "1"))
	assert.Equal(t, Field(common.NewField(0)), v)

	args["commit"] = true
	args["calldata"] = []string{"0x7"}
	require.NoError(t, client.Call(&res, "avm_simulate", args))
	require.NoError(t, client.Call(&res, "avm_simulate", args))
	assert.Equal(t, toFields(common.Fields(14)), res.ReturnValues)
	require.NoError(t, client.Call(&v, "avm_getStorageAt", counter, "0x1"))
	assert.Equal(t, Field(common.NewField(14)), v)
}

func TestSimulateWithTracer(t *testing.T) {
	client := newTestClient(t, 0)

	var res SimulationResult
	require.NoError(t, client.Call(&res, "avm_simulate", map[string]any{
		"to":       counter,
		"calldata": []string{"3"},
		"tracer":   "storageTracer",
	}))
	var diff map[common.Address]map[string]struct {
		Pre  string `json:"pre"`
		Post string `json:"post"`
	}
	require.NoError(t, json.Unmarshal(res.Trace, &diff))
	assert.Equal(t, common.FieldHex(common.NewField(3)), diff[counter][common.FieldHex(common.NewField(1))].Post)

	err := client.Call(&res, "avm_simulate", map[string]any{"to": counter, "tracer": "nope"})
	assert.Error(t, err)

	var names []string
	require.NoError(t, client.Call(&names, "avm_tracers"))
	assert.Contains(t, names, "callTracer")
}

func TestSimulateErrors(t *testing.T) {
	client := newTestClient(t, 50*time.Millisecond)

	var res SimulationResult
	err := client.Call(&res, "avm_simulate", map[string]any{"to": common.BytesToAddress([]byte("nobody"))})
	var rpcErr rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, vm.VMErrorCodeContractNotFound, rpcErr.ErrorCode())

	err = client.Call(&res, "avm_simulate", map[string]any{"to": looper})
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, vm.VMErrorCodeAborted, rpcErr.ErrorCode())

	err = client.Call(&res, "avm_simulate", map[string]any{"to": counter, "static": true, "calldata": []string{"1"}})
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, vm.VMErrorCodeWriteProtection, rpcErr.ErrorCode())
}

func TestDeployAndTranspile(t *testing.T) {
	client := newTestClient(t, 0)
	ctx := context.Background()

	ir, err := transpiler.NewCircuit(
		transpiler.BinaryOp(transpiler.BinMul, 2, 0, 1),
		transpiler.Stop(2, 1),
	).Encode()
	require.NoError(t, err)

	var code hexutil.Bytes
	require.NoError(t, client.CallContext(ctx, &code, "avm_transpile", hexutil.Bytes(ir)))
	expected, err := transpiler.Transpile(ir)
	require.NoError(t, err)
	assert.Equal(t, hexutil.Bytes(expected), code)

	var listing []string
	require.NoError(t, client.CallContext(ctx, &listing, "avm_disassemble", code))
	assert.Len(t, listing, 6)

	multiplier := common.BytesToAddress([]byte("multiplier"))
	var deployed hexutil.Bytes
	require.NoError(t, client.CallContext(ctx, &deployed, "avm_deployCircuit", multiplier, hexutil.Bytes(ir), portal, false))
	assert.Equal(t, code, deployed)

	var res SimulationResult
	require.NoError(t, client.CallContext(ctx, &res, "avm_simulate", map[string]any{
		"to":       multiplier,
		"calldata": []string{"6", "7"},
	}))
	assert.Equal(t, toFields(common.Fields(42)), res.ReturnValues)

	copied := common.BytesToAddress([]byte("copy"))
	var hash ethcommon.Hash
	require.NoError(t, client.CallContext(ctx, &hash, "avm_deploy", copied, code, portal, true))
	assert.NotEqual(t, ethcommon.Hash{}, hash)
	var got hexutil.Bytes
	require.NoError(t, client.CallContext(ctx, &got, "avm_getCode", copied))
	assert.Equal(t, code, got)

	assert.Error(t, client.CallContext(ctx, &hash, "avm_deploy", copied, hexutil.Bytes{0xff}, portal, false))
}

func TestFieldText(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`"0x10"`), &f))
	assert.Equal(t, Field(common.NewField(16)), f)
	enc, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"16"`, string(enc))
	assert.Error(t, json.Unmarshal([]byte(`"zz"`), &f))
}
