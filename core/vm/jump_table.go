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
)

type executionFunc func(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error)

type operation struct {
	// execute is the operation function
	execute executionFunc
}

// JumpTable contains the AVM opcodes supported at a given fork.
type JumpTable [256]*operation

var instructionSet = newInstructionSet()

// newInstructionSet returns the instruction set of the public VM.
func newInstructionSet() JumpTable {
	var tbl JumpTable
	for op, fn := range map[OpCode]executionFunc{
		ADD: opAdd,
		SUB: opSub,
		MUL: opMul,
		DIV: opDiv,
		EQ:  opEq,
		LT:  opLt,

		SET:          opSet,
		MOV:          opMov,
		CALLDATASIZE: opCalldataSize,
		CALLDATACOPY: opCalldataCopy,

		ADDRESS:  opAddress,
		SENDER:   opSender,
		PORTAL:   opPortal,
		SELECTOR: opSelector,

		SLOAD:  opSload,
		SSTORE: opSstore,
		HASH:   opHash,

		JUMP:           opJump,
		JUMPI:          opJumpi,
		INTERNALCALL:   opInternalCall,
		INTERNALRETURN: opInternalReturn,

		CALL:   opCall,
		RETURN: opReturn,
		REVERT: opRevert,
	} {
		tbl[op] = &operation{execute: fn}
	}
	return tbl
}
