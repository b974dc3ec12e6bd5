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

package params

const (
	// CallDepthLimit is the maximum depth of nested public calls.
	CallDepthLimit uint64 = 1024

	// MemoryLimit is the default number of field words a single frame may address.
	MemoryLimit uint64 = 1 << 20

	// TotalMemoryLimit is the default number of field words all live frames
	// of one simulation may hold together.
	TotalMemoryLimit uint64 = 1 << 22

	// InstructionSize is the encoded width of one instruction: a one byte
	// opcode followed by four big-endian uint32 operands.
	InstructionSize = 1 + 4*4

	// MaxHashInputs bounds the number of words a single HASH may absorb.
	MaxHashInputs = 16
)
