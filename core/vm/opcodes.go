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
	"fmt"
)

// OpCode is an AVM opcode
type OpCode byte

// 0x0 range - arithmetic ops.
const (
	ADD OpCode = 0x0 + iota
	SUB
	MUL
	DIV
	EQ
	LT
)

// 0x10 range - memory and calldata ops.
const (
	SET OpCode = 0x10 + iota
	MOV
	CALLDATASIZE
	CALLDATACOPY
)

// 0x20 range - call context ops.
const (
	ADDRESS OpCode = 0x20 + iota
	SENDER
	PORTAL
	SELECTOR
)

// 0x30 range - storage and hashing ops.
const (
	SLOAD OpCode = 0x30 + iota
	SSTORE
	HASH
)

// 0x40 range - control flow ops.
const (
	JUMP OpCode = 0x40 + iota
	JUMPI
	INTERNALCALL
	INTERNALRETURN
)

// 0x50 range - external calls and halting.
const (
	CALL OpCode = 0x50 + iota
	RETURN
	REVERT
)

var opCodeToString = [256]string{
	ADD: "ADD",
	SUB: "SUB",
	MUL: "MUL",
	DIV: "DIV",
	EQ:  "EQ",
	LT:  "LT",

	SET:          "SET",
	MOV:          "MOV",
	CALLDATASIZE: "CALLDATASIZE",
	CALLDATACOPY: "CALLDATACOPY",

	ADDRESS:  "ADDRESS",
	SENDER:   "SENDER",
	PORTAL:   "PORTAL",
	SELECTOR: "SELECTOR",

	SLOAD:  "SLOAD",
	SSTORE: "SSTORE",
	HASH:   "HASH",

	JUMP:           "JUMP",
	JUMPI:          "JUMPI",
	INTERNALCALL:   "INTERNALCALL",
	INTERNALRETURN: "INTERNALRETURN",

	CALL:   "CALL",
	RETURN: "RETURN",
	REVERT: "REVERT",
}

func (op OpCode) String() string {
	if s := opCodeToString[op]; s != "" {
		return s
	}
	return fmt.Sprintf("opcode %#x not defined", int(op))
}

// IsDefined reports whether op is part of the instruction set.
func (op OpCode) IsDefined() bool {
	return opCodeToString[op] != ""
}

var stringToOp = map[string]OpCode{}

func init() {
	for op, name := range opCodeToString {
		if name != "" {
			stringToOp[name] = OpCode(op)
		}
	}
}

// StringToOp finds the opcode whose name is stored in `str`.
func StringToOp(str string) (OpCode, bool) {
	op, ok := stringToOp[str]
	return op, ok
}
