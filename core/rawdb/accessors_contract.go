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
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/publicvm/avm/common"
)

// ContractMeta is the stored description of a deployed contract.
type ContractMeta struct {
	CodeHash    ethcommon.Hash    // keccak256 of the bytecode
	CircuitHash ethcommon.Hash    // keccak256 of the source circuit, zero if deployed as bytecode
	Portal      ethcommon.Address // base chain portal
	Internal    bool              // only callable by the contract itself
}

// ReadContractMeta retrieves the metadata of a contract. It returns nil,
// nil if no contract is deployed at the address.
func ReadContractMeta(db ethdb.KeyValueReader, contract common.Address) (*ContractMeta, error) {
	key := contractKey(contract)
	has, err := db.Has(key)
	if err != nil {
		return nil, errors.Wrap(err, "checking contract")
	}
	if !has {
		return nil, nil
	}
	enc, err := db.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "reading contract")
	}
	meta := new(ContractMeta)
	if err := rlp.DecodeBytes(enc, meta); err != nil {
		return nil, errors.Wrapf(err, "corrupt contract %v", contract)
	}
	return meta, nil
}

// WriteContractMeta stores the metadata of a contract.
func WriteContractMeta(db ethdb.KeyValueWriter, contract common.Address, meta *ContractMeta) error {
	enc, err := rlp.EncodeToBytes(meta)
	if err != nil {
		return errors.Wrap(err, "encoding contract")
	}
	return errors.Wrap(db.Put(contractKey(contract), enc), "writing contract")
}

// DeleteContractMeta removes the metadata of a contract. Its code is kept,
// since it may be shared.
func DeleteContractMeta(db ethdb.KeyValueWriter, contract common.Address) error {
	return errors.Wrap(db.Delete(contractKey(contract)), "deleting contract")
}

// ReadCode retrieves bytecode by its hash, nil if absent.
func ReadCode(db ethdb.KeyValueReader, hash ethcommon.Hash) ([]byte, error) {
	key := codeKey(hash)
	has, err := db.Has(key)
	if err != nil {
		return nil, errors.Wrap(err, "checking code")
	}
	if !has {
		return nil, nil
	}
	code, err := db.Get(key)
	return code, errors.Wrap(err, "reading code")
}

// HasCode reports whether bytecode with the given hash is stored.
func HasCode(db ethdb.KeyValueReader, hash ethcommon.Hash) (bool, error) {
	has, err := db.Has(codeKey(hash))
	return has, errors.Wrap(err, "checking code")
}

// WriteCode stores bytecode under its hash.
func WriteCode(db ethdb.KeyValueWriter, hash ethcommon.Hash, code []byte) error {
	return errors.Wrap(db.Put(codeKey(hash), code), "writing code")
}

// ReadTranspiledCode retrieves the bytecode a circuit was lowered to, nil if
// the circuit was never transpiled.
func ReadTranspiledCode(db ethdb.KeyValueReader, circuitHash ethcommon.Hash) ([]byte, error) {
	key := transpiledKey(circuitHash)
	has, err := db.Has(key)
	if err != nil {
		return nil, errors.Wrap(err, "checking transpiled code")
	}
	if !has {
		return nil, nil
	}
	enc, err := db.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "reading transpiled code")
	}
	code, err := snappy.Decode(nil, enc)
	return code, errors.Wrap(err, "decompressing transpiled code")
}

// WriteTranspiledCode stores the lowering of a circuit, snappy compressed.
func WriteTranspiledCode(db ethdb.KeyValueWriter, circuitHash ethcommon.Hash, code []byte) error {
	return errors.Wrap(db.Put(transpiledKey(circuitHash), snappy.Encode(nil, code)), "writing transpiled code")
}
