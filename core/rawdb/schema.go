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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/publicvm/avm/common"
)

// The fields below define the low level database schema prefixing.
var (
	// databaseVersionKey tracks the current database version.
	databaseVersionKey = []byte("DatabaseVersion")

	storagePrefix    = []byte("s") // storagePrefix + contract + slot -> value
	contractPrefix   = []byte("c") // contractPrefix + contract -> rlp(ContractMeta)
	codePrefix       = []byte("C") // codePrefix + code hash -> bytecode
	transpiledPrefix = []byte("T") // transpiledPrefix + circuit hash -> snappy(bytecode)
)

// DatabaseVersion is the version of the schema written by this package.
const DatabaseVersion = 1

// storageKey = storagePrefix + contract + slot
func storageKey(contract common.Address, slot [common.FieldBytes]byte) []byte {
	key := make([]byte, 0, len(storagePrefix)+len(contract)+len(slot))
	key = append(key, storagePrefix...)
	key = append(key, contract[:]...)
	return append(key, slot[:]...)
}

// storagePrefixKey = storagePrefix + contract
func storagePrefixKey(contract common.Address) []byte {
	return append(append([]byte{}, storagePrefix...), contract[:]...)
}

// contractKey = contractPrefix + contract
func contractKey(contract common.Address) []byte {
	return append(append([]byte{}, contractPrefix...), contract[:]...)
}

// codeKey = codePrefix + hash
func codeKey(hash ethcommon.Hash) []byte {
	return append(append([]byte{}, codePrefix...), hash.Bytes()...)
}

// transpiledKey = transpiledPrefix + hash
func transpiledKey(hash ethcommon.Hash) []byte {
	return append(append([]byte{}, transpiledPrefix...), hash.Bytes()...)
}
