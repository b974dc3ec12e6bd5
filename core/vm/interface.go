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

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/publicvm/avm/common"
)

// StateDB is the public storage collaborator of the AVM. Writes commit
// immediately: a read issued after a write to the same slot, in the same
// or any later frame, observes the written value.
type StateDB interface {
	GetPublicStorage(ctx context.Context, contract common.Address, slot fr.Element) (fr.Element, error)
	// SetPublicStorage stores value and returns the value previously held.
	SetPublicStorage(ctx context.Context, contract common.Address, slot, value fr.Element) (fr.Element, error)
}

// ContractsDB resolves deployed contract bytecode and the metadata needed to
// build nested call contexts.
type ContractsDB interface {
	// GetBytecode returns nil, nil if no contract is deployed at the address.
	GetBytecode(ctx context.Context, contract common.Address) ([]byte, error)
	GetPortalAddress(ctx context.Context, contract common.Address) (ethcommon.Address, error)
	GetIsInternal(ctx context.Context, contract common.Address) (bool, error)
}
