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

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/core/vm/program"
	"github.com/publicvm/avm/crypto"
)

var (
	counter = common.BytesToAddress([]byte("counter"))
	adder   = common.BytesToAddress([]byte("adder"))
	portal  = ethcommon.HexToAddress("0x00000000000000000000000000000000000000aa")
)

// brokenDB fails every lookup.
type brokenDB struct {
	*memorydb.Database
}

var errBroken = errors.New("broken disk")

func (db brokenDB) Has(key []byte) (bool, error) { return false, errBroken }

// counterProgram increments slot 1 and returns the new value.
func counterProgram() *program.Program {
	return program.New().
		Set(1, 1).
		Sload(2, 1).
		Add(3, 2, 1).
		Sstore(1, 3).
		ReturnRange(3, 1, 10)
}

func TestPublicStateReadWrite(t *testing.T) {
	ctx := context.Background()
	s := NewPublicStateDB(memorydb.New(), 1)

	v, err := s.GetPublicStorage(ctx, counter, common.NewField(5))
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	prev, err := s.SetPublicStorage(ctx, counter, common.NewField(5), common.NewField(9))
	require.NoError(t, err)
	assert.True(t, prev.IsZero())

	prev, err = s.SetPublicStorage(ctx, counter, common.NewField(5), common.NewField(11))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(9), prev)

	v, err = s.GetPublicStorage(ctx, counter, common.NewField(5))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(11), v)

	// Other contracts do not share the slot.
	v, err = s.GetPublicStorage(ctx, adder, common.NewField(5))
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	storage, err := s.Storage(counter)
	require.NoError(t, err)
	assert.Equal(t, map[fr.Element]fr.Element{common.NewField(5): common.NewField(11)}, storage)
}

func TestPublicStateCleanCache(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	s := NewPublicStateDB(db, 1)

	_, err := s.SetPublicStorage(ctx, counter, common.NewField(1), common.NewField(7))
	require.NoError(t, err)

	// Remove the value behind the cache's back.
	require.NoError(t, rawdb.WriteStorage(db, counter, common.NewField(1), fr.Element{}))
	v, err := s.GetPublicStorage(ctx, counter, common.NewField(1))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(7), v)

	// Without a cache the database is authoritative.
	v, err = NewPublicStateDB(db, 0).GetPublicStorage(ctx, counter, common.NewField(1))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestPublicStateRevert(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	s := NewPublicStateDB(db, 1)

	_, err := s.SetPublicStorage(ctx, counter, common.NewField(1), common.NewField(1))
	require.NoError(t, err)
	snap := s.Snapshot()
	assert.Equal(t, 1, snap)

	_, err = s.SetPublicStorage(ctx, counter, common.NewField(1), common.NewField(2))
	require.NoError(t, err)
	_, err = s.SetPublicStorage(ctx, counter, common.NewField(2), common.NewField(3))
	require.NoError(t, err)
	require.NoError(t, s.RevertToSnapshot(snap))

	v, err := s.GetPublicStorage(ctx, counter, common.NewField(1))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(1), v)
	v, err = rawdb.ReadStorage(db, counter, common.NewField(2))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
	assert.Equal(t, snap, s.Snapshot())

	assert.Error(t, s.RevertToSnapshot(5))
	assert.Error(t, s.RevertToSnapshot(-1))

	s.DiscardJournal()
	assert.Equal(t, 0, s.Snapshot())
	require.NoError(t, s.RevertToSnapshot(0))
	v, err = s.GetPublicStorage(ctx, counter, common.NewField(1))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(1), v)
}

func TestPublicStateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewPublicStateDB(memorydb.New(), 0)
	_, err := s.GetPublicStorage(ctx, counter, common.NewField(1))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.SetPublicStorage(ctx, counter, common.NewField(1), common.NewField(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContractsDeploy(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	contracts := NewContractsDB(db, nil)

	code := counterProgram().Bytes()
	require.NoError(t, contracts.Deploy(counter, code, portal, true))

	got, err := contracts.GetBytecode(ctx, counter)
	require.NoError(t, err)
	assert.Equal(t, code, got)
	p, err := contracts.GetPortalAddress(ctx, counter)
	require.NoError(t, err)
	assert.Equal(t, portal, p)
	internal, err := contracts.GetIsInternal(ctx, counter)
	require.NoError(t, err)
	assert.True(t, internal)

	// A fresh registry over the same database sees the contract.
	got, err = NewContractsDB(db, nil).GetBytecode(ctx, counter)
	require.NoError(t, err)
	assert.Equal(t, code, got)

	// Unknown contracts have no code and no metadata.
	got, err = contracts.GetBytecode(ctx, adder)
	require.NoError(t, err)
	assert.Nil(t, got)
	p, err = contracts.GetPortalAddress(ctx, adder)
	require.NoError(t, err)
	assert.Equal(t, ethcommon.Address{}, p)

	require.NoError(t, contracts.Undeploy(counter))
	got, err = contracts.GetBytecode(ctx, counter)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContractsDeployInvalid(t *testing.T) {
	contracts := NewContractsDB(memorydb.New(), nil)
	assert.Error(t, contracts.Deploy(counter, nil, portal, false))
	assert.Error(t, contracts.Deploy(counter, []byte{0x00, 0x01}, portal, false))
	unknown := make([]byte, 17)
	unknown[0] = 0xff
	assert.Error(t, contracts.Deploy(counter, unknown, portal, false))
}

func TestContractsDeployCircuit(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	tc := transpiler.NewCache(16)
	contracts := NewContractsDB(db, tc)

	ir, err := transpiler.NewCircuit(
		transpiler.BinaryOp(transpiler.BinAdd, 2, 0, 1),
		transpiler.Stop(2, 1),
	).Encode()
	require.NoError(t, err)

	code, err := contracts.DeployCircuit(adder, ir, portal, false)
	require.NoError(t, err)
	assert.Equal(t, 1, tc.Len())

	stored, err := rawdb.ReadTranspiledCode(db, crypto.Keccak256Hash(ir))
	require.NoError(t, err)
	assert.Equal(t, code, stored)
	meta, err := contracts.Meta(adder)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(ir), meta.CircuitHash)
	assert.Equal(t, crypto.Keccak256Hash(code), meta.CodeHash)

	// Redeploying elsewhere reuses the persisted lowering.
	tc.Purge()
	again, err := contracts.DeployCircuit(counter, ir, portal, false)
	require.NoError(t, err)
	assert.Equal(t, code, again)
	assert.Equal(t, 0, tc.Len())

	res, err := vm.Simulate(ctx, NewPublicStateDB(db, 0), contracts, vm.DefaultConfig(), vm.PublicCall{
		ContractAddress: adder,
		Calldata:        common.Fields(40, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, common.Fields(42), res.ReturnValues)

	_, err = contracts.DeployCircuit(adder, []byte{0x01}, portal, false)
	assert.ErrorIs(t, err, transpiler.ErrInvalidCircuit)
}

func TestSimulateOverDatabase(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	s := NewPublicStateDB(db, 1)
	contracts := NewContractsDB(db, nil)
	require.NoError(t, contracts.Deploy(counter, counterProgram().Bytes(), portal, false))

	call := vm.PublicCall{ContractAddress: counter}
	for i := uint64(1); i <= 3; i++ {
		res, err := vm.Simulate(ctx, s, contracts, vm.DefaultConfig(), call)
		require.NoError(t, err)
		assert.Equal(t, common.Fields(i), res.ReturnValues)
		assert.Equal(t, portal, res.Call.Context.Portal)
	}

	// A dry run leaves storage untouched once reverted.
	snap := s.Snapshot()
	res, err := vm.Simulate(ctx, s, contracts, vm.DefaultConfig(), call)
	require.NoError(t, err)
	assert.Equal(t, common.Fields(4), res.ReturnValues)
	require.NoError(t, s.RevertToSnapshot(snap))

	v, err := rawdb.ReadStorage(db, counter, common.NewField(1))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(3), v)
}

func TestSimulateBackendFailure(t *testing.T) {
	db := brokenDB{memorydb.New()}
	contracts := NewContractsDB(memorydb.New(), nil)
	require.NoError(t, contracts.Deploy(counter, counterProgram().Bytes(), portal, false))

	_, err := vm.Simulate(context.Background(), NewPublicStateDB(db, 0), contracts, vm.DefaultConfig(), vm.PublicCall{ContractAddress: counter})
	assert.ErrorIs(t, err, vm.ErrStorageBackend)
	assert.ErrorIs(t, err, errBroken)
}
