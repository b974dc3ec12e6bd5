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

// Package transpiler lowers circuit register-machine code to AVM bytecode.
package transpiler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	mapset "github.com/deckarep/golang-set/v2"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/log"
	"github.com/publicvm/avm/params"
)

var (
	ErrInvalidCircuit         = errors.New("invalid circuit")
	ErrUnsupportedOpcode      = errors.New("unsupported circuit opcode")
	ErrUnsupportedForeignCall = errors.New("unsupported foreign call")
	ErrJumpOutOfRange         = errors.New("jump target out of range")
	ErrRegisterOutOfRange     = errors.New("register out of range")
	ErrTooManyInputs          = errors.New("too many foreign call inputs")
)

// Memory layout of transpiled code. Register r lives at RegisterBase + r,
// everything below is scratch owned by the lowering.
const (
	calldataSizeAddr = 0  // len(calldata), set by the prologue
	tmp1             = 1  // scratch words
	tmp2             = 2  //
	tmp3             = 3  //
	callArgsBlock    = 4  // {argsOffset, argsSize, retOffset, retSize} of CALL
	callGasAddr      = 8  // gas handed to CALL
	callSuccessAddr  = 9  // CALL success flag
	stagingBase      = 16 // contiguous buffer for HASH and CALL arguments
	stagingSize      = 32

	// RegisterBase is the memory address of register 0.
	RegisterBase = 64
)

// callGas is the gas handed to nested calls. Gas is carried, not charged.
const callGas = math.MaxUint32

// Transpile lowers an encoded circuit to AVM bytecode.
func Transpile(ir []byte) ([]byte, error) {
	start := time.Now()
	defer transpileTimer.UpdateSince(start)

	circuit, err := DecodeCircuit(ir)
	if err != nil {
		return nil, err
	}
	program, err := Lower(circuit)
	if err != nil {
		return nil, err
	}
	log.Debug("Transpiled circuit", "ops", len(circuit.Opcodes), "instructions", len(program), "elapsed", ethcommon.PrettyDuration(time.Since(start)))
	return vm.EncodeBytecode(program), nil
}

// Disassemble transpiles ir and renders the resulting bytecode.
func Disassemble(ir []byte) (string, error) {
	code, err := Transpile(ir)
	if err != nil {
		return "", err
	}
	return vm.Disassemble(code)
}

type fixup struct {
	at     int    // index of the jump instruction
	target uint32 // circuit op index it refers to
}

type lowering struct {
	code    []vm.Instruction
	pcOf    []uint32 // first instruction emitted for each circuit op
	fixups  []fixup
	targets mapset.Set[uint32]
}

// Lower translates a decoded circuit. The output is deterministic.
func Lower(c *Circuit) ([]vm.Instruction, error) {
	l := &lowering{
		pcOf:    make([]uint32, len(c.Opcodes)),
		targets: mapset.NewThreadUnsafeSet[uint32](),
	}
	l.emit(vm.CALLDATASIZE, calldataSizeAddr)
	l.emit(vm.CALLDATACOPY, RegisterBase, 0, calldataSizeAddr)

	for i, op := range c.Opcodes {
		l.pcOf[i] = uint32(len(l.code))
		if err := l.lower(op); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	// Second pass: point jumps at the first instruction of their target.
	targets := l.targets.ToSlice()
	slices.Sort(targets)
	for _, target := range targets {
		if int(target) >= len(c.Opcodes) {
			return nil, fmt.Errorf("%w: %d of %d ops", ErrJumpOutOfRange, target, len(c.Opcodes))
		}
	}
	for _, f := range l.fixups {
		l.code[f.at].Operands[0] = l.pcOf[f.target]
	}
	return l.code, nil
}

func (l *lowering) emit(op vm.OpCode, operands ...uint32) {
	l.code = append(l.code, vm.NewInstruction(op, operands...))
}

// emitJump emits a control transfer whose first operand is patched later.
func (l *lowering) emitJump(op vm.OpCode, target uint32, operands ...uint32) {
	l.targets.Add(target)
	l.fixups = append(l.fixups, fixup{at: len(l.code), target: target})
	l.emit(op, append([]uint32{0}, operands...)...)
}

// reg returns the memory address of a register.
func reg(r uint32) (uint32, error) {
	if uint64(r)+RegisterBase >= params.MemoryLimit {
		return 0, fmt.Errorf("%w: %d", ErrRegisterOutOfRange, r)
	}
	return r + RegisterBase, nil
}

func regs(rs ...uint32) ([]uint32, error) {
	out := make([]uint32, len(rs))
	for i, r := range rs {
		addr, err := reg(r)
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}

var binaryOps = map[uint8]vm.OpCode{
	BinAdd: vm.ADD,
	BinSub: vm.SUB,
	BinMul: vm.MUL,
	BinDiv: vm.DIV,
	BinEq:  vm.EQ,
	BinLt:  vm.LT,
}

func (l *lowering) lower(op IROp) error {
	switch op.Kind {
	case KindBinaryFieldOp:
		vmOp, ok := binaryOps[op.BinOp]
		if !ok {
			return fmt.Errorf("%w: binary op %d", ErrUnsupportedOpcode, op.BinOp)
		}
		addrs, err := regs(op.Dest, op.Lhs, op.Rhs)
		if err != nil {
			return err
		}
		l.emit(vmOp, addrs...)

	case KindConst:
		dest, err := reg(op.Dest)
		if err != nil {
			return err
		}
		return l.lowerConst(dest, op.Value)

	case KindMov:
		addrs, err := regs(op.Dest, op.Lhs)
		if err != nil {
			return err
		}
		l.emit(vm.MOV, addrs...)

	case KindJump:
		l.emitJump(vm.JUMP, op.Location)

	case KindJumpIf:
		cond, err := reg(op.Lhs)
		if err != nil {
			return err
		}
		l.emitJump(vm.JUMPI, op.Location, cond)

	case KindJumpIfNot:
		cond, err := reg(op.Lhs)
		if err != nil {
			return err
		}
		l.emit(vm.SET, tmp3, 0)
		l.emit(vm.EQ, tmp3, cond, tmp3)
		l.emitJump(vm.JUMPI, op.Location, tmp3)

	case KindCall:
		l.emitJump(vm.INTERNALCALL, op.Location)

	case KindReturn:
		l.emit(vm.INTERNALRETURN)

	case KindStop:
		offset, err := reg(op.Offset)
		if err != nil {
			return err
		}
		if uint64(op.Offset)+uint64(op.Size)+RegisterBase > params.MemoryLimit {
			return fmt.Errorf("%w: return range [%d, +%d)", ErrRegisterOutOfRange, op.Offset, op.Size)
		}
		l.emit(vm.SET, tmp1, offset)
		l.emit(vm.SET, tmp2, op.Size)
		l.emit(vm.RETURN, tmp1, tmp2)

	case KindTrap:
		l.emit(vm.SET, tmp1, 0)
		l.emit(vm.REVERT, tmp1, tmp1)

	case KindForeignCall:
		return l.lowerForeignCall(op)

	default:
		return fmt.Errorf("%w: kind %d", ErrUnsupportedOpcode, op.Kind)
	}
	return nil
}

// lowerConst loads a constant. Values wider than 32 bits are assembled
// from 32-bit limbs, most significant first: dest = dest*2^32 + limb.
func (l *lowering) lowerConst(dest uint32, value []byte) error {
	var v fr.Element
	if len(value) > common.FieldBytes {
		return fmt.Errorf("%w: constant of %d bytes", ErrInvalidCircuit, len(value))
	}
	var padded [common.FieldBytes]byte
	copy(padded[common.FieldBytes-len(value):], value)
	if err := v.SetBytesCanonical(padded[:]); err != nil {
		return fmt.Errorf("%w: constant: %v", ErrInvalidCircuit, err)
	}

	var limbs []uint32
	for i := 0; i < common.FieldBytes; i += 4 {
		limb := binary.BigEndian.Uint32(padded[i : i+4])
		if len(limbs) == 0 && limb == 0 {
			continue
		}
		limbs = append(limbs, limb)
	}
	if len(limbs) <= 1 {
		var literal uint32
		if len(limbs) == 1 {
			literal = limbs[0]
		}
		l.emit(vm.SET, dest, literal)
		return nil
	}
	// tmp3 = 2^32
	l.emit(vm.SET, tmp3, 1<<16)
	l.emit(vm.MUL, tmp3, tmp3, tmp3)

	l.emit(vm.SET, dest, limbs[0])
	for _, limb := range limbs[1:] {
		l.emit(vm.MUL, dest, dest, tmp3)
		if limb != 0 {
			l.emit(vm.SET, tmp2, limb)
			l.emit(vm.ADD, dest, dest, tmp2)
		}
	}
	return nil
}

func (l *lowering) lowerForeignCall(op IROp) error {
	inputs, err := regs(op.Inputs...)
	if err != nil {
		return err
	}
	outputs, err := regs(op.Outputs...)
	if err != nil {
		return err
	}
	arity := func(in, out int) error {
		if len(inputs) != in || len(outputs) != out {
			return fmt.Errorf("%w: %s takes %d inputs and %d outputs, have %d and %d",
				ErrInvalidCircuit, op.Function, in, out, len(inputs), len(outputs))
		}
		return nil
	}

	switch op.Function {
	case ForeignStorageRead:
		// Reads len(outputs) consecutive slots starting at inputs[0].
		if len(inputs) != 1 || len(outputs) == 0 {
			return fmt.Errorf("%w: %s takes a slot and at least one output", ErrInvalidCircuit, op.Function)
		}
		l.walkSlots(inputs[0], len(outputs), func(slotAddr uint32, i int) {
			l.emit(vm.SLOAD, outputs[i], slotAddr)
		})

	case ForeignStorageWrite:
		// Writes inputs[1:] to consecutive slots starting at inputs[0] and
		// echoes the written values to the outputs.
		if len(inputs) < 2 || len(outputs) > len(inputs)-1 {
			return fmt.Errorf("%w: %s takes a slot and at least one value", ErrInvalidCircuit, op.Function)
		}
		values := inputs[1:]
		l.walkSlots(inputs[0], len(values), func(slotAddr uint32, i int) {
			l.emit(vm.SSTORE, slotAddr, values[i])
		})
		for i, out := range outputs {
			l.emit(vm.MOV, out, values[i])
		}

	case ForeignHash:
		if len(inputs) > params.MaxHashInputs {
			return fmt.Errorf("%w: hash of %d inputs", ErrTooManyInputs, len(inputs))
		}
		if len(outputs) != 1 {
			return fmt.Errorf("%w: %s has one output", ErrInvalidCircuit, op.Function)
		}
		l.stage(inputs)
		l.emit(vm.HASH, outputs[0], stagingBase, uint32(len(inputs)))

	case ForeignAddress, ForeignSender, ForeignPortal, ForeignSelector:
		if err := arity(0, 1); err != nil {
			return err
		}
		l.emit(contextOps[op.Function], outputs[0])

	case ForeignCallPublicFunction:
		// inputs[0] is the target, inputs[1:] the arguments.
		if len(inputs) == 0 {
			return fmt.Errorf("%w: %s needs a target", ErrInvalidCircuit, op.Function)
		}
		args := inputs[1:]
		if len(args) > stagingSize || len(outputs) > stagingSize {
			return fmt.Errorf("%w: call with %d arguments and %d results", ErrTooManyInputs, len(args), len(outputs))
		}
		l.stage(args)
		l.emit(vm.SET, callArgsBlock, stagingBase)
		l.emit(vm.SET, callArgsBlock+1, uint32(len(args)))
		l.emit(vm.SET, callArgsBlock+2, stagingBase)
		l.emit(vm.SET, callArgsBlock+3, uint32(len(outputs)))
		l.emit(vm.SET, callGasAddr, callGas)
		l.emit(vm.CALL, callArgsBlock, callGasAddr, inputs[0], callSuccessAddr)
		for i, out := range outputs {
			l.emit(vm.MOV, out, stagingBase+uint32(i))
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedForeignCall, op.Function)
	}
	return nil
}

var contextOps = map[string]vm.OpCode{
	ForeignAddress:  vm.ADDRESS,
	ForeignSender:   vm.SENDER,
	ForeignPortal:   vm.PORTAL,
	ForeignSelector: vm.SELECTOR,
}

// stage copies the given addresses into the staging buffer.
func (l *lowering) stage(addrs []uint32) {
	for i, addr := range addrs {
		l.emit(vm.MOV, stagingBase+uint32(i), addr)
	}
}

// walkSlots calls fn for n consecutive slots starting at memory[base],
// keeping the current slot in tmp1.
func (l *lowering) walkSlots(base uint32, n int, fn func(slotAddr uint32, i int)) {
	if n == 1 {
		fn(base, 0)
		return
	}
	l.emit(vm.MOV, tmp1, base)
	l.emit(vm.SET, tmp2, 1)
	for i := 0; i < n; i++ {
		if i > 0 {
			l.emit(vm.ADD, tmp1, tmp1, tmp2)
		}
		fn(tmp1, i)
	}
}
