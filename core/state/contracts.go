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

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/pkg/errors"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/crypto"
	"github.com/publicvm/avm/log"
)

const (
	codeCacheSize = 64 * 1024 * 1024
	metaCacheSize = 4096
)

var _ vm.ContractsDB = (*ContractsDB)(nil)

// ContractsDB is the registry of deployed contracts, backed by a key-value
// store. Bytecode is shared between contracts with identical code.
type ContractsDB struct {
	db         ethdb.KeyValueStore
	codes      *lru.SizeConstrainedCache[ethcommon.Hash, []byte]
	metas      *lru.Cache[common.Address, *rawdb.ContractMeta]
	transpiler *transpiler.Cache
}

// NewContractsDB creates a registry over db. Circuits deployed through it
// are lowered with the given transpiler cache, a fresh one if nil.
func NewContractsDB(db ethdb.KeyValueStore, tc *transpiler.Cache) *ContractsDB {
	if tc == nil {
		tc = transpiler.NewCache(transpiler.DefaultCacheSize)
	}
	return &ContractsDB{
		db:         db,
		codes:      lru.NewSizeConstrainedCache[ethcommon.Hash, []byte](codeCacheSize),
		metas:      lru.NewCache[common.Address, *rawdb.ContractMeta](metaCacheSize),
		transpiler: tc,
	}
}

// Deploy registers code at the given address, replacing any contract
// already there. The code must decode into whole instructions.
func (c *ContractsDB) Deploy(addr common.Address, code []byte, portal ethcommon.Address, internal bool) error {
	return c.deploy(addr, code, ethcommon.Hash{}, portal, internal)
}

// DeployCircuit lowers an IR circuit and registers the resulting bytecode.
// The lowering is persisted so that redeploying the same circuit skips the
// transpiler.
func (c *ContractsDB) DeployCircuit(addr common.Address, ir []byte, portal ethcommon.Address, internal bool) ([]byte, error) {
	circuitHash := crypto.Keccak256Hash(ir)
	code, err := rawdb.ReadTranspiledCode(c.db, circuitHash)
	if err != nil {
		return nil, err
	}
	if code == nil {
		if code, err = c.transpiler.Transpile(ir); err != nil {
			return nil, err
		}
		if err := rawdb.WriteTranspiledCode(c.db, circuitHash, code); err != nil {
			return nil, err
		}
	}
	if err := c.deploy(addr, code, circuitHash, portal, internal); err != nil {
		return nil, err
	}
	return code, nil
}

func (c *ContractsDB) deploy(addr common.Address, code []byte, circuitHash ethcommon.Hash, portal ethcommon.Address, internal bool) error {
	if len(code) == 0 {
		return errors.New("empty bytecode")
	}
	if _, err := vm.DecodeBytecode(code); err != nil {
		return errors.Wrap(err, "invalid bytecode")
	}
	meta := &rawdb.ContractMeta{
		CodeHash:    crypto.Keccak256Hash(code),
		CircuitHash: circuitHash,
		Portal:      portal,
		Internal:    internal,
	}
	has, err := rawdb.HasCode(c.db, meta.CodeHash)
	if err != nil {
		return err
	}
	if !has {
		if err := rawdb.WriteCode(c.db, meta.CodeHash, code); err != nil {
			return err
		}
	}
	if err := rawdb.WriteContractMeta(c.db, addr, meta); err != nil {
		return err
	}
	c.metas.Add(addr, meta)
	log.Info("Deployed contract", "address", addr, "code", meta.CodeHash, "size", len(code), "portal", portal, "internal", internal)
	return nil
}

// Undeploy removes the contract at addr. It is not an error if none exists.
func (c *ContractsDB) Undeploy(addr common.Address) error {
	c.metas.Remove(addr)
	return rawdb.DeleteContractMeta(c.db, addr)
}

// Meta returns the stored description of a contract, nil if none exists.
func (c *ContractsDB) Meta(addr common.Address) (*rawdb.ContractMeta, error) {
	if meta, ok := c.metas.Get(addr); ok {
		return meta, nil
	}
	meta, err := rawdb.ReadContractMeta(c.db, addr)
	if err != nil || meta == nil {
		return nil, err
	}
	c.metas.Add(addr, meta)
	return meta, nil
}

// GetBytecode returns the bytecode deployed at the address, nil if none.
func (c *ContractsDB) GetBytecode(ctx context.Context, contract common.Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta, err := c.Meta(contract)
	if err != nil || meta == nil {
		return nil, err
	}
	if code, ok := c.codes.Get(meta.CodeHash); ok {
		codeHitMeter.Mark(1)
		return code, nil
	}
	codeMissMeter.Mark(1)
	code, err := rawdb.ReadCode(c.db, meta.CodeHash)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, errors.Errorf("missing code %v of contract %v", meta.CodeHash, contract)
	}
	c.codes.Add(meta.CodeHash, code)
	return code, nil
}

// GetPortalAddress returns the portal of a contract, zero if it has none or
// is not deployed.
func (c *ContractsDB) GetPortalAddress(ctx context.Context, contract common.Address) (ethcommon.Address, error) {
	if err := ctx.Err(); err != nil {
		return ethcommon.Address{}, err
	}
	meta, err := c.Meta(contract)
	if err != nil || meta == nil {
		return ethcommon.Address{}, err
	}
	return meta.Portal, nil
}

// GetIsInternal reports whether a contract may only be called by itself.
func (c *ContractsDB) GetIsInternal(ctx context.Context, contract common.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	meta, err := c.Meta(contract)
	if err != nil || meta == nil {
		return false, err
	}
	return meta.Internal, nil
}
