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
	"github.com/publicvm/avm/params"
)

// Frame is one activation of a public function: its bytecode, calldata
// and call context. Memory lives in the ScopeContext for the duration of
// the run.
type Frame struct {
	Address  common.Address // address the bytecode was loaded from
	Context  CallContext
	Code     []byte
	Calldata []fr.Element
	Gas      uint64

	returnStack []uint64 // internal call return addresses
	result      *ExecutionResult
}

// Len returns the number of instruction slots in the bytecode. A trailing
// partial instruction counts as a slot and faults when fetched.
func (f *Frame) Len() uint64 {
	return (uint64(len(f.Code)) + params.InstructionSize - 1) / params.InstructionSize
}

// GetInstruction fetches and decodes the instruction at pc.
func (f *Frame) GetInstruction(pc uint64) (Instruction, error) {
	if pc >= f.Len() {
		return Instruction{}, ErrBytecodeExhausted
	}
	return decodeAt(f.Code, int(pc*params.InstructionSize))
}

// ScopeContext contains the things that are per-call, such as memory and
// the frame, but not transients like pc.
type ScopeContext struct {
	Memory *Memory
	Frame  *Frame
}

// MemoryData returns the underlying memory slice. Callers must not modify
// the contents of the returned data.
func (ctx *ScopeContext) MemoryData() []fr.Element {
	if ctx.Memory == nil {
		return nil
	}
	return ctx.Memory.Data()
}

// Address returns the storage address of the executing frame.
func (ctx *ScopeContext) Address() common.Address {
	return ctx.Frame.Context.StorageAddress
}

// Caller returns the sender of the executing frame.
func (ctx *ScopeContext) Caller() common.Address {
	return ctx.Frame.Context.Sender
}

func (ctx *ScopeContext) load(addr uint32) (fr.Element, error) {
	return ctx.Memory.Get(uint64(addr))
}

func (ctx *ScopeContext) store(addr uint32, value fr.Element) error {
	return ctx.Memory.Set(uint64(addr), value)
}

// loadOffset reads memory[addr] and interprets it as a memory offset or size.
func (ctx *ScopeContext) loadOffset(addr uint32) (uint64, error) {
	v, err := ctx.load(addr)
	if err != nil {
		return 0, err
	}
	return toOffset(&v)
}
