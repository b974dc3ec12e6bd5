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
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/publicvm/avm/common"
)

type (
	// EnterHook is invoked before a frame starts executing.
	EnterHook = func(depth int, from common.Address, to common.Address, input []fr.Element, gas uint64)

	// ExitHook is invoked when a frame returns or faults.
	ExitHook = func(depth int, output []fr.Element, err error)

	// OpcodeHook is invoked just prior to the execution of an instruction.
	OpcodeHook = func(pc uint64, ins Instruction, scope *ScopeContext, depth int)

	// FaultHook is invoked when an instruction faults.
	FaultHook = func(pc uint64, ins Instruction, scope *ScopeContext, depth int, err error)

	// StorageReadHook is invoked for every recorded SLOAD.
	StorageReadHook = func(depth int, read StorageRead)

	// StorageWriteHook is invoked for every recorded SSTORE.
	StorageWriteHook = func(depth int, write StorageWrite)
)

// Hooks is a set of optional callbacks observing an AVM execution.
type Hooks struct {
	OnEnter        EnterHook
	OnExit         ExitHook
	OnOpcode       OpcodeHook
	OnFault        FaultHook
	OnStorageRead  StorageReadHook
	OnStorageWrite StorageWriteHook
}
