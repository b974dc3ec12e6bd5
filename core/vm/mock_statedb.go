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

package vm

import (
	"context"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/publicvm/avm/common"
)

// MockStateDB is an in-memory StateDB. Setting Err makes every access
// fail, emulating a broken storage backend.
type MockStateDB struct {
	mu      sync.Mutex
	storage map[common.Address]map[fr.Element]fr.Element
	Err     error
}

// NewMockStateDB creates an empty in-memory state.
func NewMockStateDB() *MockStateDB {
	return &MockStateDB{storage: make(map[common.Address]map[fr.Element]fr.Element)}
}

// Preset stores a value without going through the VM.
func (m *MockStateDB) Preset(contract common.Address, slot, value fr.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(contract, slot, value)
}

func (m *MockStateDB) set(contract common.Address, slot, value fr.Element) fr.Element {
	slots, ok := m.storage[contract]
	if !ok {
		slots = make(map[fr.Element]fr.Element)
		m.storage[contract] = slots
	}
	prev := slots[slot]
	slots[slot] = value
	return prev
}

func (m *MockStateDB) GetPublicStorage(ctx context.Context, contract common.Address, slot fr.Element) (fr.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return fr.Element{}, m.Err
	}
	return m.storage[contract][slot], nil
}

func (m *MockStateDB) SetPublicStorage(ctx context.Context, contract common.Address, slot, value fr.Element) (fr.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return fr.Element{}, m.Err
	}
	return m.set(contract, slot, value), nil
}

type mockContract struct {
	code     []byte
	portal   ethcommon.Address
	internal bool
}

// MockContractsDB is an in-memory ContractsDB.
type MockContractsDB struct {
	mu        sync.Mutex
	contracts map[common.Address]mockContract
	Err       error
}

// NewMockContractsDB creates an empty in-memory contract registry.
func NewMockContractsDB() *MockContractsDB {
	return &MockContractsDB{contracts: make(map[common.Address]mockContract)}
}

// Deploy registers bytecode and metadata at addr.
func (m *MockContractsDB) Deploy(addr common.Address, code []byte, portal ethcommon.Address, internal bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[addr] = mockContract{code: code, portal: portal, internal: internal}
}

func (m *MockContractsDB) GetBytecode(ctx context.Context, contract common.Address) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.contracts[contract].code, nil
}

func (m *MockContractsDB) GetPortalAddress(ctx context.Context, contract common.Address) (ethcommon.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return ethcommon.Address{}, m.Err
	}
	return m.contracts[contract].portal, nil
}

func (m *MockContractsDB) GetIsInternal(ctx context.Context, contract common.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return m.contracts[contract].internal, nil
}
