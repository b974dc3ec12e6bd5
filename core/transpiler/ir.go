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

package transpiler

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/klauspost/compress/gzip"
)

// CircuitVersion is the only circuit encoding version understood.
const CircuitVersion = 1

// maxCircuitSize bounds the decompressed size of a circuit.
const maxCircuitSize = 16 * 1024 * 1024

var gzipMagic = []byte{0x1f, 0x8b}

// Kinds of circuit operations.
const (
	KindBinaryFieldOp uint8 = iota + 1 // Dest = Lhs BinOp Rhs
	KindConst                          // Dest = Value
	KindMov                            // Dest = Lhs
	KindJump                           // goto Location
	KindJumpIf                         // if Lhs != 0 goto Location
	KindJumpIfNot                      // if Lhs == 0 goto Location
	KindCall                           // internal call to Location
	KindReturn                         // return from internal call
	KindStop                           // halt returning registers [Offset, Offset+Size)
	KindTrap                           // halt with a failure
	KindForeignCall                    // Outputs = Function(Inputs)
)

// Binary field operations.
const (
	BinAdd uint8 = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinLt
)

// Foreign call names understood by the lowering.
const (
	ForeignStorageRead        = "storageRead"
	ForeignStorageWrite       = "storageWrite"
	ForeignHash               = "hash"
	ForeignAddress            = "address"
	ForeignSender             = "sender"
	ForeignPortal             = "portal"
	ForeignSelector           = "selector"
	ForeignCallPublicFunction = "callPublicFunction"
)

// IROp is one operation of the circuit register machine. Which fields are
// meaningful depends on Kind.
type IROp struct {
	Kind     uint8
	BinOp    uint8
	Dest     uint32
	Lhs      uint32
	Rhs      uint32
	Location uint32 // jump or call target, as an index into the op list
	Offset   uint32
	Size     uint32
	Value    []byte // big-endian constant
	Function string
	Inputs   []uint32
	Outputs  []uint32
}

// Circuit is a compiled public function.
type Circuit struct {
	Version uint64
	Opcodes []IROp
}

// NewCircuit wraps ops in a circuit of the current version.
func NewCircuit(ops ...IROp) *Circuit {
	return &Circuit{Version: CircuitVersion, Opcodes: ops}
}

// Encode returns the RLP encoding of the circuit.
func (c *Circuit) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(c)
}

// EncodeCompressed returns the gzip compressed RLP encoding of the circuit.
func (c *Circuit) EncodeCompressed() ([]byte, error) {
	enc, err := c.Encode()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(enc); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCircuit parses a circuit, gzip wrapped or not.
func DecodeCircuit(data []byte) (*Circuit, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCircuit, err)
		}
		defer r.Close()
		if data, err = io.ReadAll(io.LimitReader(r, maxCircuitSize+1)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCircuit, err)
		}
		if len(data) > maxCircuitSize {
			return nil, fmt.Errorf("%w: circuit exceeds %d bytes", ErrInvalidCircuit, maxCircuitSize)
		}
	}
	var c Circuit
	if err := rlp.DecodeBytes(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCircuit, err)
	}
	if c.Version != CircuitVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidCircuit, c.Version)
	}
	return &c, nil
}

// Op constructors.

func BinaryOp(op uint8, dest, lhs, rhs uint32) IROp {
	return IROp{Kind: KindBinaryFieldOp, BinOp: op, Dest: dest, Lhs: lhs, Rhs: rhs}
}

func Const(dest uint32, value []byte) IROp {
	return IROp{Kind: KindConst, Dest: dest, Value: value}
}

// ConstUint64 loads a small integer constant.
func ConstUint64(dest uint32, v uint64) IROp {
	return Const(dest, binary.BigEndian.AppendUint64(nil, v))
}

// ConstField loads a field element constant.
func ConstField(dest uint32, v fr.Element) IROp {
	b := v.Bytes()
	return Const(dest, b[:])
}

func Mov(dest, src uint32) IROp { return IROp{Kind: KindMov, Dest: dest, Lhs: src} }

func Jump(location uint32) IROp { return IROp{Kind: KindJump, Location: location} }

func JumpIf(cond, location uint32) IROp {
	return IROp{Kind: KindJumpIf, Lhs: cond, Location: location}
}

func JumpIfNot(cond, location uint32) IROp {
	return IROp{Kind: KindJumpIfNot, Lhs: cond, Location: location}
}

func Call(location uint32) IROp { return IROp{Kind: KindCall, Location: location} }

func Return() IROp { return IROp{Kind: KindReturn} }

func Stop(offset, size uint32) IROp { return IROp{Kind: KindStop, Offset: offset, Size: size} }

func Trap() IROp { return IROp{Kind: KindTrap} }

func ForeignCall(function string, inputs, outputs []uint32) IROp {
	return IROp{Kind: KindForeignCall, Function: function, Inputs: inputs, Outputs: outputs}
}
