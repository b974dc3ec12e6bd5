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

package rawdb

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/crypto"
)

var contract = common.BytesToAddress([]byte("contract"))

// brokenDB fails every lookup.
type brokenDB struct {
	*memorydb.Database
}

var errBroken = errors.New("broken disk")

func (db brokenDB) Has(key []byte) (bool, error) { return false, errBroken }
func (db brokenDB) Put(key []byte, value []byte) error { return errBroken }

func TestStorageAccessors(t *testing.T) {
	db := memorydb.New()

	v, err := ReadStorage(db, contract, common.NewField(1))
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, WriteStorage(db, contract, common.NewField(1), common.NewField(42)))
	require.NoError(t, WriteStorage(db, contract, common.NewField(2), common.NewField(43)))
	require.NoError(t, WriteStorage(db, common.BytesToAddress([]byte("other")), common.NewField(1), common.NewField(44)))

	v, err = ReadStorage(db, contract, common.NewField(1))
	require.NoError(t, err)
	assert.Equal(t, common.NewField(42), v)

	var slots []fr.Element
	require.NoError(t, IterateStorage(db, contract, func(slot, value fr.Element) bool {
		slots = append(slots, slot)
		return true
	}))
	assert.Equal(t, common.Fields(1, 2), slots)

	// Zero values are deleted rather than stored.
	require.NoError(t, WriteStorage(db, contract, common.NewField(1), fr.Element{}))
	one := common.NewField(1)
	has, err := db.Has(storageKey(contract, one.Bytes()))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStorageBackendFailure(t *testing.T) {
	db := brokenDB{memorydb.New()}

	_, err := ReadStorage(db, contract, common.NewField(1))
	assert.ErrorIs(t, err, errBroken)

	err = WriteStorage(db, contract, common.NewField(1), common.NewField(2))
	assert.ErrorIs(t, err, errBroken)

	_, err = ReadContractMeta(db, contract)
	assert.ErrorIs(t, err, errBroken)
}

func TestContractAccessors(t *testing.T) {
	db := memorydb.New()

	meta, err := ReadContractMeta(db, contract)
	require.NoError(t, err)
	assert.Nil(t, meta)

	code := []byte{0x10, 0, 0, 0, 1}
	want := &ContractMeta{
		CodeHash: crypto.Keccak256Hash(code),
		Portal:   ethcommon.HexToAddress("0xdeadbeef"),
		Internal: true,
	}
	require.NoError(t, WriteContractMeta(db, contract, want))
	require.NoError(t, WriteCode(db, want.CodeHash, code))

	meta, err = ReadContractMeta(db, contract)
	require.NoError(t, err)
	assert.Equal(t, want, meta)

	stored, err := ReadCode(db, want.CodeHash)
	require.NoError(t, err)
	assert.Equal(t, code, stored)

	has, err := HasCode(db, ethcommon.Hash{})
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, DeleteContractMeta(db, contract))
	meta, err = ReadContractMeta(db, contract)
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestTranspiledCodeAccessors(t *testing.T) {
	db := memorydb.New()
	hash := ethcommon.HexToHash("0x01")

	code, err := ReadTranspiledCode(db, hash)
	require.NoError(t, err)
	assert.Nil(t, code)

	want := make([]byte, 17*100) // compresses well
	require.NoError(t, WriteTranspiledCode(db, hash, want))

	raw, err := db.Get(transpiledKey(hash))
	require.NoError(t, err)
	assert.Less(t, len(raw), len(want))

	code, err = ReadTranspiledCode(db, hash)
	require.NoError(t, err)
	assert.Equal(t, want, code)
}

func TestOpen(t *testing.T) {
	for _, engine := range []string{DBMemory, DBLeveldb, DBPebble} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			db, err := Open(OpenOptions{Type: engine, Directory: dir, Cache: 16, Handles: 16})
			require.NoError(t, err)

			version := ReadDatabaseVersion(db)
			require.NotNil(t, version)
			assert.Equal(t, uint64(DatabaseVersion), *version)

			require.NoError(t, WriteStorage(db, contract, common.NewField(1), common.NewField(7)))
			require.NoError(t, db.Close())

			if engine == DBMemory {
				return
			}
			db, err = Open(OpenOptions{Type: engine, Directory: dir, Cache: 16, Handles: 16})
			require.NoError(t, err)
			defer db.Close()
			v, err := ReadStorage(db, contract, common.NewField(1))
			require.NoError(t, err)
			assert.Equal(t, common.NewField(7), v)
		})
	}

	_, err := Open(OpenOptions{Type: "bolt"})
	assert.Error(t, err)
}
