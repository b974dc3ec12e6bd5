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
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/publicvm/avm/log"
	"github.com/publicvm/avm/params"
)

// FaultPolicy selects what a CALL does when its child frame faults.
type FaultPolicy uint8

const (
	// FaultPropagate faults the calling frame as well.
	FaultPropagate FaultPolicy = iota
	// FaultReturnStatus reports failure through the CALL success word and
	// lets the caller continue.
	FaultReturnStatus
)

func (p FaultPolicy) String() string {
	switch p {
	case FaultPropagate:
		return "propagate"
	case FaultReturnStatus:
		return "status"
	}
	return fmt.Sprintf("FaultPolicy(%d)", uint8(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p FaultPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FaultPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "propagate":
		*p = FaultPropagate
	case "status":
		*p = FaultReturnStatus
	default:
		return fmt.Errorf("unknown nested fault policy %q", text)
	}
	return nil
}

// Config are the configuration options for the Interpreter
type Config struct {
	Tracer            *Hooks      `toml:"-"`
	MemoryLimit       uint64      // Words addressable by one frame
	TotalMemoryLimit  uint64      // Words held by all live frames of a simulation
	MaxCallDepth      uint64      // Maximum nesting of CALL
	MaxSteps          uint64      // Instructions per frame, 0 for no limit
	NestedFaultPolicy FaultPolicy // Behaviour of CALL on a faulted child
	Debug             bool        // Log every executed instruction at trace level
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MemoryLimit:      params.MemoryLimit,
		TotalMemoryLimit: params.TotalMemoryLimit,
		MaxCallDepth:     params.CallDepthLimit,
	}
}

func (c Config) sanitize() Config {
	if c.MemoryLimit == 0 {
		c.MemoryLimit = params.MemoryLimit
	}
	if c.TotalMemoryLimit == 0 {
		c.TotalMemoryLimit = params.TotalMemoryLimit
	}
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = params.CallDepthLimit
	}
	return c
}

// AVMInterpreter represents an AVM interpreter
type AVMInterpreter struct {
	avm   *AVM
	table *JumpTable
}

// NewAVMInterpreter returns a new instance of the Interpreter.
func NewAVMInterpreter(avm *AVM) *AVMInterpreter {
	return &AVMInterpreter{
		avm:   avm,
		table: &instructionSet,
	}
}

// Run loops and evaluates the frame's bytecode with the frame's calldata
// and returns the return values and an error if one occurred.
//
// It's important to note that any errors returned by the interpreter should
// be considered a fault of the frame: the partial return value is discarded
// while storage writes already issued stay committed.
func (in *AVMInterpreter) Run(frame *Frame) (ret []fr.Element, err error) {
	// Increment the call depth which is restricted by MaxCallDepth
	in.avm.depth++
	defer func() { in.avm.depth-- }()

	var (
		ins   Instruction                            // current instruction
		mem   = NewMemory(in.avm.Config.MemoryLimit, in.avm.memory) // bound memory
		scope = &ScopeContext{
			Memory: mem,
			Frame:  frame,
		}
		pc       = uint64(0) // program counter
		steps    uint64
		res      []fr.Element // result of the instruction execution function
		debug    = in.avm.Config.Tracer != nil
		logSteps = in.avm.Config.Debug
	)
	// The fault hook needs memory, so this deferred call is placed first
	// and runs last.
	defer func() {
		instructionCounter.Inc(int64(steps))
		mem.Free()
	}()

	if debug {
		defer func() { // this deferred method handles exit-with-error
			if err != nil && in.avm.Config.Tracer.OnFault != nil {
				in.avm.Config.Tracer.OnFault(pc, ins, scope, in.avm.depth, err)
			}
		}()
	}
	// The Interpreter main run loop. This loop runs until either an
	// explicit RETURN or REVERT is executed, an error occurred during the
	// execution of one of the instructions or until the abort flag is set
	// by the caller.
	for {
		if in.avm.abort.Load() {
			err = ErrAborted
			break
		}
		if limit := in.avm.Config.MaxSteps; limit > 0 && steps >= limit {
			err = ErrStepLimit
			break
		}
		steps++

		// Get the instruction from the jump table and validate that it is
		// part of the instruction set.
		next, fetchErr := frame.GetInstruction(pc)
		if fetchErr != nil {
			err = fetchErr
			break
		}
		ins = next
		operation := in.table[ins.Op]
		if operation == nil {
			err = &ErrUnknownOpcode{Opcode: ins.Op, Offset: pc * params.InstructionSize}
			break
		}
		if debug && in.avm.Config.Tracer.OnOpcode != nil {
			in.avm.Config.Tracer.OnOpcode(pc, ins, scope, in.avm.depth)
		}
		log.TraceIf(logSteps, "Executing instruction", "depth", in.avm.depth, "pc", pc, "ins", ins)

		// execute the operation
		res, err = operation.execute(&pc, in, scope, &ins)
		if err != nil {
			break
		}
		pc++
	}

	if err == errStopToken {
		err = nil // clear stop token error
	}
	if err != nil {
		log.Debug("Frame faulted", "depth", in.avm.depth, "contract", frame.Context.StorageAddress, "pc", pc, "op", ins.Op, "err", err)
		return nil, err
	}
	return res, nil
}
