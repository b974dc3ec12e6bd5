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
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/publicvm/avm/params"
)

// Instruction is a decoded AVM instruction. The meaning of each operand
// (memory address, literal or block pointer) is fixed by the opcode.
type Instruction struct {
	Op       OpCode
	Operands [4]uint32
}

// NewInstruction creates an instruction, zero filling missing operands.
func NewInstruction(op OpCode, operands ...uint32) Instruction {
	if len(operands) > 4 {
		panic(fmt.Sprintf("%v: too many operands (%d)", op, len(operands)))
	}
	ins := Instruction{Op: op}
	copy(ins.Operands[:], operands)
	return ins
}

// MarshalBinary encodes the instruction in its fixed width wire form.
func (ins Instruction) MarshalBinary() ([]byte, error) {
	return ins.appendTo(make([]byte, 0, params.InstructionSize)), nil
}

// UnmarshalBinary decodes a single instruction.
func (ins *Instruction) UnmarshalBinary(data []byte) error {
	if len(data) != params.InstructionSize {
		return fmt.Errorf("%w: instruction is %d bytes, want %d", ErrTruncatedBytecode, len(data), params.InstructionSize)
	}
	decoded, err := decodeAt(data, 0)
	if err != nil {
		return err
	}
	*ins = decoded
	return nil
}

func (ins Instruction) appendTo(buf []byte) []byte {
	buf = append(buf, byte(ins.Op))
	for _, operand := range ins.Operands {
		buf = binary.BigEndian.AppendUint32(buf, operand)
	}
	return buf
}

func (ins Instruction) String() string {
	var b strings.Builder
	b.WriteString(ins.Op.String())
	for i, operand := range ins.Operands[:ins.Op.operandCount()] {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", operand)
	}
	return b.String()
}

// operandCount is the number of operands the opcode gives meaning to. It is
// used for display only; the wire form always carries four.
func (op OpCode) operandCount() int {
	switch op {
	case CALLDATASIZE, ADDRESS, SENDER, PORTAL, SELECTOR, JUMP, INTERNALCALL:
		return 1
	case SET, MOV, SLOAD, SSTORE, JUMPI, RETURN, REVERT:
		return 2
	case ADD, SUB, MUL, DIV, EQ, LT, CALLDATACOPY, HASH:
		return 3
	case CALL:
		return 4
	}
	return 0
}

// decodeAt decodes the instruction starting at byte offset off.
func decodeAt(code []byte, off int) (Instruction, error) {
	if len(code)-off < params.InstructionSize {
		return Instruction{}, fmt.Errorf("%w: %d trailing bytes at offset %d", ErrTruncatedBytecode, len(code)-off, off)
	}
	op := OpCode(code[off])
	if !op.IsDefined() {
		return Instruction{}, &ErrUnknownOpcode{Opcode: op, Offset: uint64(off)}
	}
	ins := Instruction{Op: op}
	for i := range ins.Operands {
		start := off + 1 + 4*i
		ins.Operands[i] = binary.BigEndian.Uint32(code[start : start+4])
	}
	return ins, nil
}

// EncodeBytecode serializes an instruction sequence.
func EncodeBytecode(program []Instruction) []byte {
	buf := make([]byte, 0, len(program)*params.InstructionSize)
	for _, ins := range program {
		buf = ins.appendTo(buf)
	}
	return buf
}

// DecodeBytecode parses a serialized instruction sequence. Decoding stops at
// the first unknown opcode.
func DecodeBytecode(code []byte) ([]Instruction, error) {
	if len(code)%params.InstructionSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrTruncatedBytecode, len(code), params.InstructionSize)
	}
	program := make([]Instruction, 0, len(code)/params.InstructionSize)
	for off := 0; off < len(code); off += params.InstructionSize {
		ins, err := decodeAt(code, off)
		if err != nil {
			return nil, err
		}
		program = append(program, ins)
	}
	return program, nil
}

// Disassemble renders bytecode one instruction per line, prefixed by pc.
func Disassemble(code []byte) (string, error) {
	program, err := DecodeBytecode(code)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for pc, ins := range program {
		fmt.Fprintf(&b, "%05d: %v\n", pc, ins)
	}
	return b.String(), nil
}
