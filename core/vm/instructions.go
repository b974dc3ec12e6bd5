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
	"math"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/crypto"
	"github.com/publicvm/avm/params"
)

var fieldOne = common.NewField(1)

// binaryOp applies fn to memory[o1] and memory[o2], storing into memory[o0].
func binaryOp(scope *ScopeContext, ins *Instruction, fn func(z, x, y *fr.Element) error) error {
	x, err := scope.load(ins.Operands[1])
	if err != nil {
		return err
	}
	y, err := scope.load(ins.Operands[2])
	if err != nil {
		return err
	}
	var z fr.Element
	if err := fn(&z, &x, &y); err != nil {
		return err
	}
	return scope.store(ins.Operands[0], z)
}

func opAdd(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, binaryOp(scope, ins, func(z, x, y *fr.Element) error {
		z.Add(x, y)
		return nil
	})
}

func opSub(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, binaryOp(scope, ins, func(z, x, y *fr.Element) error {
		z.Sub(x, y)
		return nil
	})
}

func opMul(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, binaryOp(scope, ins, func(z, x, y *fr.Element) error {
		z.Mul(x, y)
		return nil
	})
}

func opDiv(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, binaryOp(scope, ins, func(z, x, y *fr.Element) error {
		if y.IsZero() {
			return ErrDivisionByZero
		}
		z.Div(x, y)
		return nil
	})
}

func opEq(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, binaryOp(scope, ins, func(z, x, y *fr.Element) error {
		if x.Equal(y) {
			z.SetOne()
		}
		return nil
	})
}

func opLt(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, binaryOp(scope, ins, func(z, x, y *fr.Element) error {
		if x.Cmp(y) < 0 {
			z.SetOne()
		}
		return nil
	})
}

func opSet(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, scope.store(ins.Operands[0], common.NewField(uint64(ins.Operands[1])))
}

func opMov(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	v, err := scope.load(ins.Operands[1])
	if err != nil {
		return nil, err
	}
	return nil, scope.store(ins.Operands[0], v)
}

func opCalldataSize(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, scope.store(ins.Operands[0], common.NewField(uint64(len(scope.Frame.Calldata))))
}

// opCalldataCopy copies memory[sizeAddr] calldata words, starting at the
// literal calldata offset, to memory[dst:]. Words past the end of calldata
// read as zero.
func opCalldataCopy(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	var (
		dst      = uint64(ins.Operands[0])
		cdOffset = uint64(ins.Operands[1])
		calldata = scope.Frame.Calldata
	)
	count, err := scope.loadOffset(ins.Operands[2])
	if err != nil {
		return nil, err
	}
	if err := scope.Memory.check(dst, count); err != nil {
		return nil, err
	}
	words := make([]fr.Element, count)
	if cdOffset < uint64(len(calldata)) {
		copy(words, calldata[cdOffset:])
	}
	return nil, scope.Memory.SetRange(dst, words)
}

func opAddress(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, scope.store(ins.Operands[0], scope.Frame.Context.StorageAddress.Field())
}

func opSender(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, scope.store(ins.Operands[0], scope.Frame.Context.Sender.Field())
}

func opPortal(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	var portal fr.Element
	portal.SetBytes(scope.Frame.Context.Portal.Bytes())
	return nil, scope.store(ins.Operands[0], portal)
}

func opSelector(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	return nil, scope.store(ins.Operands[0], scope.Frame.Context.Selector.Field())
}

func opSload(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	slot, err := scope.load(ins.Operands[1])
	if err != nil {
		return nil, err
	}
	value, err := interpreter.avm.sload(scope.Frame, slot)
	if err != nil {
		return nil, err
	}
	return nil, scope.store(ins.Operands[0], value)
}

func opSstore(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	if scope.Frame.Context.IsStaticCall {
		return nil, ErrWriteProtection
	}
	slot, err := scope.load(ins.Operands[0])
	if err != nil {
		return nil, err
	}
	value, err := scope.load(ins.Operands[1])
	if err != nil {
		return nil, err
	}
	return nil, interpreter.avm.sstore(scope.Frame, slot, value)
}

// opHash stores the field hash of the literal number of words at src.
func opHash(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	n := uint64(ins.Operands[2])
	if n > params.MaxHashInputs {
		return nil, fmt.Errorf("%w: hash of %d words exceeds %d", ErrInvalidOperand, n, params.MaxHashInputs)
	}
	inputs, err := scope.Memory.GetCopy(uint64(ins.Operands[1]), n)
	if err != nil {
		return nil, err
	}
	return nil, scope.store(ins.Operands[0], crypto.HashFields(inputs...))
}

// jumpTo points pc just before target; the interpreter loop advances it.
func jumpTo(pc *uint64, scope *ScopeContext, target uint32) error {
	if uint64(target) >= scope.Frame.Len() {
		return fmt.Errorf("%w: %d", ErrInvalidJump, target)
	}
	*pc = uint64(target) - 1
	return nil
}

func opJump(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	if interpreter.avm.abort.Load() {
		return nil, ErrAborted
	}
	return nil, jumpTo(pc, scope, ins.Operands[0])
}

func opJumpi(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	if interpreter.avm.abort.Load() {
		return nil, ErrAborted
	}
	cond, err := scope.load(ins.Operands[1])
	if err != nil {
		return nil, err
	}
	if cond.IsZero() {
		return nil, nil
	}
	return nil, jumpTo(pc, scope, ins.Operands[0])
}

func opInternalCall(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	frame := scope.Frame
	if uint64(len(frame.returnStack)) >= interpreter.avm.Config.MaxCallDepth {
		return nil, ErrDepth
	}
	frame.returnStack = append(frame.returnStack, *pc+1)
	return nil, jumpTo(pc, scope, ins.Operands[0])
}

func opInternalReturn(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	frame := scope.Frame
	if len(frame.returnStack) == 0 {
		return nil, ErrReturnStackUnderflow
	}
	ret := frame.returnStack[len(frame.returnStack)-1]
	frame.returnStack = frame.returnStack[:len(frame.returnStack)-1]
	*pc = ret - 1
	return nil, nil
}

// opCall performs a nested call. memory[o0..o0+4) holds {argsOffset,
// argsSize, retOffset, retSize}, memory[o1] the gas limit, memory[o2] the
// target address. memory[o3] receives 1 on success.
func opCall(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	mem := scope.Memory
	gasWord, err := scope.load(ins.Operands[1])
	if err != nil {
		return nil, err
	}
	targetWord, err := scope.load(ins.Operands[2])
	if err != nil {
		return nil, err
	}
	block, err := mem.GetCopy(uint64(ins.Operands[0]), 4)
	if err != nil {
		return nil, err
	}
	var offsets [4]uint64 // argsOffset, argsSize, retOffset, retSize
	for i := range block {
		if offsets[i], err = toOffset(&block[i]); err != nil {
			return nil, err
		}
	}
	args, err := mem.GetCopy(offsets[0], offsets[1])
	if err != nil {
		return nil, err
	}
	retOffset, retSize := offsets[2], offsets[3]
	if err := mem.check(retOffset, retSize); err != nil {
		return nil, err
	}
	// Gas is carried to the callee but never charged.
	gas := uint64(math.MaxUint64)
	if gasWord.IsUint64() {
		gas = gasWord.Uint64()
	}

	var success fr.Element
	ret, err := interpreter.avm.Call(scope.Frame, common.FieldToAddress(targetWord), args, gas)
	switch {
	case err == nil:
		success = fieldOne
	case interpreter.avm.tolerates(err):
		ret = nil
	default:
		return nil, err
	}
	// Exactly retSize words are written: short results are zero padded and
	// long ones truncated.
	out := make([]fr.Element, retSize)
	copy(out, ret)
	if err := mem.SetRange(retOffset, out); err != nil {
		return nil, err
	}
	return nil, scope.store(ins.Operands[3], success)
}

func opReturn(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	ret, err := haltData(scope, ins)
	if err != nil {
		return nil, err
	}
	return ret, errStopToken
}

func opRevert(pc *uint64, interpreter *AVMInterpreter, scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	data, err := haltData(scope, ins)
	if err != nil {
		return nil, err
	}
	return nil, &RevertError{Data: data}
}

// haltData reads memory[memory[o0] .. +memory[o1]).
func haltData(scope *ScopeContext, ins *Instruction) ([]fr.Element, error) {
	offset, err := scope.loadOffset(ins.Operands[0])
	if err != nil {
		return nil, err
	}
	size, err := scope.loadOffset(ins.Operands[1])
	if err != nil {
		return nil, err
	}
	return scope.Memory.GetCopy(offset, size)
}
