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

// Package program is a utility to create AVM bytecode for testing, but
// also for generating the fixed programs shipped with the CLI.
package program

import (
	"fmt"

	"github.com/publicvm/avm/core/vm"
)

// Program is a simple bytecode container. It can be used to construct
// simple AVM programs. Errors during construction of a Program typically
// cause panics: so avoid using these programs in production settings or on
// untrusted input.
type Program struct {
	code []vm.Instruction
}

// New creates a new Program
func New() *Program {
	return &Program{}
}

// Op appends the given instruction.
func (p *Program) Op(op vm.OpCode, operands ...uint32) *Program {
	p.code = append(p.code, vm.NewInstruction(op, operands...))
	return p
}

// Label returns the pc of the next instruction to be appended.
func (p *Program) Label() uint32 {
	return uint32(len(p.code))
}

// Instructions returns the instructions appended so far.
func (p *Program) Instructions() []vm.Instruction {
	return p.code
}

// Bytes returns the Program bytecode.
func (p *Program) Bytes() []byte {
	return vm.EncodeBytecode(p.code)
}

// Hex returns the Program bytecode as a hex string.
func (p *Program) Hex() string {
	return fmt.Sprintf("%02x", p.Bytes())
}

func (p *Program) Add(dst, a, b uint32) *Program { return p.Op(vm.ADD, dst, a, b) }
func (p *Program) Sub(dst, a, b uint32) *Program { return p.Op(vm.SUB, dst, a, b) }
func (p *Program) Mul(dst, a, b uint32) *Program { return p.Op(vm.MUL, dst, a, b) }
func (p *Program) Div(dst, a, b uint32) *Program { return p.Op(vm.DIV, dst, a, b) }
func (p *Program) Eq(dst, a, b uint32) *Program  { return p.Op(vm.EQ, dst, a, b) }
func (p *Program) Lt(dst, a, b uint32) *Program  { return p.Op(vm.LT, dst, a, b) }

// Set stores the literal value at dst.
func (p *Program) Set(dst, literal uint32) *Program { return p.Op(vm.SET, dst, literal) }
func (p *Program) Mov(dst, src uint32) *Program     { return p.Op(vm.MOV, dst, src) }

func (p *Program) CalldataSize(dst uint32) *Program { return p.Op(vm.CALLDATASIZE, dst) }

// CalldataCopy copies memory[sizeAddr] words of calldata, starting at the
// literal calldata offset cdOffset, to dst.
func (p *Program) CalldataCopy(dst, cdOffset, sizeAddr uint32) *Program {
	return p.Op(vm.CALLDATACOPY, dst, cdOffset, sizeAddr)
}

// LoadCalldata is the usual prologue: memory[0] = len(calldata) and the
// calldata itself at dst.
func (p *Program) LoadCalldata(dst uint32) *Program {
	return p.CalldataSize(0).CalldataCopy(dst, 0, 0)
}

func (p *Program) Address(dst uint32) *Program  { return p.Op(vm.ADDRESS, dst) }
func (p *Program) Sender(dst uint32) *Program   { return p.Op(vm.SENDER, dst) }
func (p *Program) Portal(dst uint32) *Program   { return p.Op(vm.PORTAL, dst) }
func (p *Program) Selector(dst uint32) *Program { return p.Op(vm.SELECTOR, dst) }

func (p *Program) Sload(dst, slotAddr uint32) *Program     { return p.Op(vm.SLOAD, dst, slotAddr) }
func (p *Program) Sstore(slotAddr, valueAddr uint32) *Program { return p.Op(vm.SSTORE, slotAddr, valueAddr) }

// Hash stores the hash of memory[src:src+n] at dst.
func (p *Program) Hash(dst, src, n uint32) *Program { return p.Op(vm.HASH, dst, src, n) }

func (p *Program) Jump(target uint32) *Program            { return p.Op(vm.JUMP, target) }
func (p *Program) Jumpi(target, condAddr uint32) *Program { return p.Op(vm.JUMPI, target, condAddr) }
func (p *Program) InternalCall(target uint32) *Program    { return p.Op(vm.INTERNALCALL, target) }
func (p *Program) InternalReturn() *Program               { return p.Op(vm.INTERNALRETURN) }

// Call performs a nested call with the args block at argsBlock.
func (p *Program) Call(argsBlock, gasAddr, targetAddr, successAddr uint32) *Program {
	return p.Op(vm.CALL, argsBlock, gasAddr, targetAddr, successAddr)
}

// Return halts with memory[memory[offsetAddr] .. +memory[sizeAddr]].
func (p *Program) Return(offsetAddr, sizeAddr uint32) *Program {
	return p.Op(vm.RETURN, offsetAddr, sizeAddr)
}

func (p *Program) Revert(offsetAddr, sizeAddr uint32) *Program {
	return p.Op(vm.REVERT, offsetAddr, sizeAddr)
}

// ReturnRange returns memory[offset:offset+size], using scratch and
// scratch+1 to hold the offset and size.
func (p *Program) ReturnRange(offset, size, scratch uint32) *Program {
	return p.Set(scratch, offset).Set(scratch+1, size).Return(scratch, scratch+1)
}
