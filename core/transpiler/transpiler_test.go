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

package transpiler

import (
	"context"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/crypto"
)

var (
	contract = common.BytesToAddress([]byte("token"))
	adder    = common.BytesToAddress([]byte("adder"))
	sender   = common.BytesToAddress([]byte("minter"))
)

func encode(t *testing.T, ops ...IROp) []byte {
	t.Helper()
	ir, err := NewCircuit(ops...).Encode()
	require.NoError(t, err)
	return ir
}

func transpile(t *testing.T, ops ...IROp) []byte {
	t.Helper()
	code, err := Transpile(encode(t, ops...))
	require.NoError(t, err)
	return code
}

type world struct {
	state     *vm.MockStateDB
	contracts *vm.MockContractsDB
}

func newWorld(code []byte) *world {
	w := &world{state: vm.NewMockStateDB(), contracts: vm.NewMockContractsDB()}
	w.contracts.Deploy(contract, code, ethcommon.Address{}, false)
	return w
}

func (w *world) simulate(t *testing.T, calldata ...fr.Element) (*vm.ExecutionResult, error) {
	t.Helper()
	return vm.Simulate(context.Background(), w.state, w.contracts, vm.DefaultConfig(), vm.PublicCall{
		ContractAddress: contract,
		Calldata:        calldata,
		Context:         vm.CallContext{Sender: sender},
	})
}

func addCircuit() []IROp {
	return []IROp{
		BinaryOp(BinAdd, 2, 0, 1),
		Stop(2, 1),
	}
}

func TestTranspileAdd(t *testing.T) {
	code := transpile(t, addCircuit()...)
	program, err := vm.DecodeBytecode(code)
	require.NoError(t, err)
	assert.Equal(t, []vm.Instruction{
		vm.NewInstruction(vm.CALLDATASIZE, 0),
		vm.NewInstruction(vm.CALLDATACOPY, RegisterBase, 0, 0),
		vm.NewInstruction(vm.ADD, RegisterBase+2, RegisterBase, RegisterBase+1),
		vm.NewInstruction(vm.SET, tmp1, RegisterBase+2),
		vm.NewInstruction(vm.SET, tmp2, 1),
		vm.NewInstruction(vm.RETURN, tmp1, tmp2),
	}, program)

	res, err := newWorld(code).simulate(t, common.Fields(42, 25)...)
	require.NoError(t, err)
	assert.Equal(t, common.Fields(67), res.ReturnValues)
}

func TestTranspileDeterministic(t *testing.T) {
	ir := encode(t, addCircuit()...)
	a, err := Transpile(ir)
	require.NoError(t, err)
	b, err := Transpile(ir)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTranspileArithmetic(t *testing.T) {
	code := transpile(t,
		BinaryOp(BinAdd, 3, 0, 1),
		BinaryOp(BinAdd, 4, 3, 3),
		BinaryOp(BinSub, 5, 4, 2),
		Stop(5, 1),
	)
	res, err := newWorld(code).simulate(t, common.Fields(42, 25, 30)...)
	require.NoError(t, err)
	assert.Equal(t, common.Fields(107), res.ReturnValues)
}

func TestTranspileStorage(t *testing.T) {
	code := transpile(t,
		ForeignCall(ForeignStorageRead, []uint32{1}, []uint32{2}),
		BinaryOp(BinAdd, 3, 0, 2),
		ForeignCall(ForeignStorageWrite, []uint32{1, 3}, nil),
		ForeignCall(ForeignStorageRead, []uint32{1}, []uint32{4}),
		Stop(4, 1),
	)
	w := newWorld(code)
	w.state.Preset(contract, common.NewField(61), common.NewField(96))

	res, err := w.simulate(t, common.Fields(42, 61)...)
	require.NoError(t, err)
	assert.Equal(t, common.Fields(138), res.ReturnValues)
	assert.Equal(t, []vm.StorageRead{
		{Contract: contract, Slot: common.NewField(61), Value: common.NewField(96), Counter: 0},
		{Contract: contract, Slot: common.NewField(61), Value: common.NewField(138), Counter: 2},
	}, res.StorageReads)
	assert.Equal(t, []vm.StorageWrite{
		{Contract: contract, Slot: common.NewField(61), OldValue: common.NewField(96), NewValue: common.NewField(138), Counter: 1},
	}, res.StorageWrites)
}

func TestTranspileStorageRange(t *testing.T) {
	code := transpile(t,
		ForeignCall(ForeignStorageWrite, []uint32{0, 1, 2}, []uint32{5, 6}),
		ForeignCall(ForeignStorageRead, []uint32{0}, []uint32{3, 4}),
		Stop(3, 4),
	)
	res, err := newWorld(code).simulate(t, common.Fields(10, 7, 8)...)
	require.NoError(t, err)
	assert.Equal(t, common.Fields(7, 8, 7, 8), res.ReturnValues)
	require.Len(t, res.StorageWrites, 2)
	assert.Equal(t, common.NewField(11), res.StorageWrites[1].Slot)
}

func TestTranspileNestedCall(t *testing.T) {
	code := transpile(t,
		ForeignCall(ForeignCallPublicFunction, []uint32{0, 1, 2}, []uint32{3}),
		Stop(3, 1),
	)
	w := newWorld(code)
	w.contracts.Deploy(adder, transpile(t, addCircuit()...), ethcommon.Address{}, false)

	res, err := w.simulate(t, adder.Field(), common.NewField(42), common.NewField(25))
	require.NoError(t, err)
	assert.Equal(t, common.Fields(67), res.ReturnValues)
	require.Len(t, res.NestedExecutions, 1)
	assert.Equal(t, common.Fields(42, 25), res.NestedExecutions[0].Call.Calldata)
}

func TestTranspileStorageMap(t *testing.T) {
	code := transpile(t,
		ConstUint64(1, 6),
		ForeignCall(ForeignHash, []uint32{1, 0}, []uint32{2}),
		ForeignCall(ForeignStorageRead, []uint32{2}, []uint32{3}),
		Stop(3, 1),
	)
	user := common.NewField(0xabcdef)
	slot := crypto.DeriveMapSlot(common.NewField(6), user)
	w := newWorld(code)
	w.state.Preset(contract, slot, common.NewField(96))

	res, err := w.simulate(t, user)
	require.NoError(t, err)
	assert.Equal(t, common.Fields(96), res.ReturnValues)
	assert.Equal(t, []vm.StorageRead{{Contract: contract, Slot: slot, Value: common.NewField(96)}}, res.StorageReads)
}

func TestTranspileContextVariable(t *testing.T) {
	code := transpile(t,
		ForeignCall(ForeignSender, nil, []uint32{0}),
		ForeignCall(ForeignAddress, nil, []uint32{1}),
		Stop(0, 2),
	)
	res, err := newWorld(code).simulate(t)
	require.NoError(t, err)
	assert.Equal(t, []fr.Element{sender.Field(), contract.Field()}, res.ReturnValues)
}

func TestTranspileMintPublic(t *testing.T) {
	const (
		mintersSlot        = 2
		totalSupplySlot    = 4
		publicBalancesSlot = 6
	)
	code := transpile(t,
		ForeignCall(ForeignSender, nil, []uint32{2}), // 0
		ConstUint64(3, mintersSlot),                  // 1
		ForeignCall(ForeignHash, []uint32{3, 2}, []uint32{4}),
		ForeignCall(ForeignStorageRead, []uint32{4}, []uint32{5}),
		ConstUint64(6, 1),
		BinaryOp(BinEq, 7, 5, 6), // 5
		JumpIf(7, 8),
		Trap(),
		ConstUint64(8, publicBalancesSlot), // 8
		ForeignCall(ForeignHash, []uint32{8, 0}, []uint32{9}),
		ForeignCall(ForeignStorageRead, []uint32{9}, []uint32{10}), // 10
		ConstUint64(11, totalSupplySlot),
		ForeignCall(ForeignStorageRead, []uint32{11}, []uint32{12}),
		BinaryOp(BinAdd, 10, 10, 1),
		ForeignCall(ForeignStorageWrite, []uint32{9, 10}, nil),
		BinaryOp(BinAdd, 12, 12, 1), // 15
		ForeignCall(ForeignStorageWrite, []uint32{11, 12}, nil),
		Stop(6, 1),
	)
	var (
		receiver       = common.NewField(0x1234567)
		mintersKey     = crypto.DeriveMapSlot(common.NewField(mintersSlot), sender.Field())
		balanceKey     = crypto.DeriveMapSlot(common.NewField(publicBalancesSlot), receiver)
		totalSupplyKey = common.NewField(totalSupplySlot)
	)
	w := newWorld(code)
	w.state.Preset(contract, mintersKey, common.NewField(1))
	w.state.Preset(contract, balanceKey, common.NewField(96))
	w.state.Preset(contract, totalSupplyKey, common.NewField(123))

	res, err := w.simulate(t, receiver, common.NewField(42))
	require.NoError(t, err)
	assert.Equal(t, common.Fields(1), res.ReturnValues)
	assert.Equal(t, []vm.StorageRead{
		{Contract: contract, Slot: mintersKey, Value: common.NewField(1), Counter: 0},
		{Contract: contract, Slot: balanceKey, Value: common.NewField(96), Counter: 1},
		{Contract: contract, Slot: totalSupplyKey, Value: common.NewField(123), Counter: 2},
	}, res.StorageReads)
	assert.Equal(t, []vm.StorageWrite{
		{Contract: contract, Slot: balanceKey, OldValue: common.NewField(96), NewValue: common.NewField(138), Counter: 3},
		{Contract: contract, Slot: totalSupplyKey, OldValue: common.NewField(123), NewValue: common.NewField(165), Counter: 4},
	}, res.StorageWrites)

	// An unknown minter traps.
	w.state.Preset(contract, mintersKey, common.NewField(0))
	_, err = w.simulate(t, receiver, common.NewField(42))
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
}

func TestTranspileLargeConstants(t *testing.T) {
	var pMinus1, wide fr.Element
	pMinus1.SetOne().Neg(&pMinus1)
	wide.SetUint64(1<<40 + 5)

	code := transpile(t,
		ConstField(0, pMinus1),
		ConstField(1, wide),
		ConstUint64(2, 0),
		ConstUint64(3, 1<<32),
		Stop(0, 4),
	)
	res, err := newWorld(code).simulate(t)
	require.NoError(t, err)
	assert.Equal(t, []fr.Element{pMinus1, wide, common.NewField(0), common.NewField(1 << 32)}, res.ReturnValues)

	// Constants must be canonical field elements.
	overflow := make([]byte, 32)
	for i := range overflow {
		overflow[i] = 0xff
	}
	_, err = Transpile(encode(t, Const(0, overflow), Stop(0, 1)))
	assert.ErrorIs(t, err, ErrInvalidCircuit)
}

func TestTranspileLoop(t *testing.T) {
	code := transpile(t,
		ConstUint64(1, 0), // 0: acc
		ConstUint64(2, 1), // 1: one
		JumpIfNot(0, 6),   // 2
		BinaryOp(BinAdd, 1, 1, 0),
		BinaryOp(BinSub, 0, 0, 2),
		Jump(2),    // 5
		Stop(1, 1), // 6
	)
	res, err := newWorld(code).simulate(t, common.NewField(10))
	require.NoError(t, err)
	assert.Equal(t, common.Fields(55), res.ReturnValues)
}

func TestTranspileInternalCall(t *testing.T) {
	code := transpile(t,
		Call(3),
		Stop(0, 1),
		Trap(),
		BinaryOp(BinAdd, 0, 0, 0),
		Return(),
	)
	res, err := newWorld(code).simulate(t, common.NewField(21))
	require.NoError(t, err)
	assert.Equal(t, common.Fields(42), res.ReturnValues)
}

func TestTranspileTrap(t *testing.T) {
	code := transpile(t, Trap())
	_, err := newWorld(code).simulate(t)
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
}

func TestTranspileErrors(t *testing.T) {
	many := make([]uint32, 17)
	tests := []struct {
		name string
		ops  []IROp
		want error
	}{
		{"foreign call", []IROp{ForeignCall("emitUnencryptedLog", []uint32{0}, nil)}, ErrUnsupportedForeignCall},
		{"kind", []IROp{{Kind: 99}}, ErrUnsupportedOpcode},
		{"binary op", []IROp{BinaryOp(42, 0, 0, 0)}, ErrUnsupportedOpcode},
		{"jump", []IROp{Jump(100)}, ErrJumpOutOfRange},
		{"register", []IROp{Mov(1<<30, 0)}, ErrRegisterOutOfRange},
		{"stop range", []IROp{Stop(0, 1<<21)}, ErrRegisterOutOfRange},
		{"hash inputs", []IROp{ForeignCall(ForeignHash, many, []uint32{0})}, ErrTooManyInputs},
		{"arity", []IROp{ForeignCall(ForeignSender, []uint32{1}, []uint32{0})}, ErrInvalidCircuit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transpile(encode(t, tt.ops...))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeCircuit(t *testing.T) {
	_, err := Transpile([]byte{0xde, 0xad})
	assert.ErrorIs(t, err, ErrInvalidCircuit)

	ir, err := (&Circuit{Version: 2}).Encode()
	require.NoError(t, err)
	_, err = Transpile(ir)
	assert.ErrorIs(t, err, ErrInvalidCircuit)

	_, err = Transpile([]byte{0x1f, 0x8b, 0x00})
	assert.ErrorIs(t, err, ErrInvalidCircuit)
}

func TestTranspileCompressed(t *testing.T) {
	circuit := NewCircuit(addCircuit()...)
	plain, err := circuit.Encode()
	require.NoError(t, err)
	compressed, err := circuit.EncodeCompressed()
	require.NoError(t, err)
	require.NotEqual(t, plain, compressed)

	want, err := Transpile(plain)
	require.NoError(t, err)
	got, err := Transpile(compressed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCache(t *testing.T) {
	cache := NewCache(4)
	ir := encode(t, addCircuit()...)

	first, err := cache.Transpile(ir)
	require.NoError(t, err)
	second, err := cache.Transpile(ir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Contains(crypto.Keccak256Hash(ir)))

	_, err = cache.Transpile([]byte{0x01})
	assert.Error(t, err)
	assert.Equal(t, 1, cache.Len(), "failures are not cached")

	cache.Purge()
	assert.Zero(t, cache.Len())
}

func TestTranspileAll(t *testing.T) {
	cache := NewCache(0)
	add := encode(t, addCircuit()...)
	trap := encode(t, Trap())

	codes, err := TranspileAll(cache, [][]byte{add, trap, add})
	require.NoError(t, err)
	require.Len(t, codes, 3)
	assert.Equal(t, codes[0], codes[2])
	assert.Equal(t, transpile(t, Trap()), codes[1])

	_, err = TranspileAll(cache, [][]byte{add, {0x01}})
	require.ErrorIs(t, err, ErrInvalidCircuit)
	assert.Contains(t, err.Error(), "circuit 1")
}

func TestDisassemble(t *testing.T) {
	out, err := Disassemble(encode(t, addCircuit()...))
	require.NoError(t, err)
	assert.Contains(t, out, "CALLDATACOPY 64, 0, 0")
	assert.Contains(t, out, "ADD 66, 64, 65")
}
