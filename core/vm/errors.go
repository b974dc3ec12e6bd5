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
	"context"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/publicvm/avm/common"
)

// List AVM execution errors
var (
	ErrBytecodeExhausted    = errors.New("bytecode exhausted without return")
	ErrTruncatedBytecode    = errors.New("truncated bytecode")
	ErrContractNotFound     = errors.New("contract not found")
	ErrStorageBackend       = errors.New("storage backend failure")
	ErrNestedCallFault      = errors.New("nested call faulted")
	ErrDepth                = errors.New("max call depth exceeded")
	ErrMemoryLimit          = errors.New("memory limit exceeded")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrWriteProtection      = errors.New("write protection")
	ErrInternalCall         = errors.New("internal function called by another contract")
	ErrReturnStackUnderflow = errors.New("internal return with empty return stack")
	ErrExecutionReverted    = errors.New("execution reverted")
	ErrStepLimit            = errors.New("step limit reached")
	ErrAborted              = errors.New("execution aborted")
	ErrInvalidJump          = errors.New("invalid jump destination")
	ErrInvalidOperand       = errors.New("invalid operand")

	// errStopToken is an internal token indicating interpreter loop termination,
	// never returned to outside callers.
	errStopToken = errors.New("stop token")
)

// ErrUnknownOpcode wraps an opcode tag that has no instruction definition.
type ErrUnknownOpcode struct {
	Opcode OpCode
	Offset uint64 // byte offset of the tag within the bytecode
}

func (e *ErrUnknownOpcode) Error() string {
	return fmt.Sprintf("unknown opcode %#x at offset %d", byte(e.Opcode), e.Offset)
}

// RevertError is returned by a frame that halted with REVERT.
type RevertError struct {
	Data []fr.Element
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%v (%d words)", ErrExecutionReverted, len(e.Data))
}

func (e *RevertError) Unwrap() error { return ErrExecutionReverted }

// NestedCallError is returned by a CALL whose child frame faulted.
type NestedCallError struct {
	Target common.Address
	Depth  int
	Err    error
}

func (e *NestedCallError) Error() string {
	return fmt.Sprintf("%v: target %v at depth %d: %v", ErrNestedCallFault, e.Target, e.Depth, e.Err)
}

// Is reports the error as a nested call fault while Unwrap exposes the
// child's own fault.
func (e *NestedCallError) Is(target error) bool { return target == ErrNestedCallFault }

func (e *NestedCallError) Unwrap() error { return e.Err }

// backendError tags a collaborator failure so that it aborts the whole
// simulation regardless of nested fault policy. A collaborator giving up on
// a cancelled context reports an abort.
func backendError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrAborted, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageBackend, op, err)
}

// VMError wraps a VM error with an additional stable error code. It
// satisfies the JSON-RPC error interface.
type VMError struct {
	error
	code int
}

// VMErrorFromErr constructs a VMError from the given error. It returns nil
// if err is nil.
func VMErrorFromErr(err error) error {
	if err == nil {
		return nil
	}
	return &VMError{
		error: err,
		code:  vmErrorCodeFromErr(err),
	}
}

func (e *VMError) Error() string {
	return e.error.Error()
}

func (e *VMError) Unwrap() error {
	return e.error
}

func (e *VMError) ErrorCode() int {
	return e.code
}

const (
	// We start the error code at 1 so that we can use 0 later for some possible extension. There
	// is no unspecified value for the code today because it should always be set to a valid value
	// that could be VMErrorCodeUnknown if the error is not mapped to a known error code.

	VMErrorCodeBytecodeExhausted = 1 + iota
	VMErrorCodeUnknownOpcode
	VMErrorCodeContractNotFound
	VMErrorCodeStorageBackend
	VMErrorCodeNestedCallFault
	VMErrorCodeDepth
	VMErrorCodeMemoryLimit
	VMErrorCodeDivisionByZero
	VMErrorCodeWriteProtection
	VMErrorCodeInternalCall
	VMErrorCodeReturnStackUnderflow
	VMErrorCodeExecutionReverted
	VMErrorCodeStepLimit
	VMErrorCodeAborted
	VMErrorCodeInvalidJump
	VMErrorCodeInvalidOperand
	VMErrorCodeTruncatedBytecode

	VMErrorCodeUnknown = 1_000
)

func vmErrorCodeFromErr(err error) int {
	// The order matters: a nested fault wrapping a backend failure must
	// report the backend failure.
	switch {
	case errors.Is(err, ErrStorageBackend):
		return VMErrorCodeStorageBackend
	case errors.Is(err, ErrAborted):
		return VMErrorCodeAborted
	case errors.Is(err, ErrNestedCallFault):
		return VMErrorCodeNestedCallFault
	case errors.Is(err, ErrBytecodeExhausted):
		return VMErrorCodeBytecodeExhausted
	case errors.Is(err, ErrContractNotFound):
		return VMErrorCodeContractNotFound
	case errors.Is(err, ErrDepth):
		return VMErrorCodeDepth
	case errors.Is(err, ErrMemoryLimit):
		return VMErrorCodeMemoryLimit
	case errors.Is(err, ErrDivisionByZero):
		return VMErrorCodeDivisionByZero
	case errors.Is(err, ErrWriteProtection):
		return VMErrorCodeWriteProtection
	case errors.Is(err, ErrInternalCall):
		return VMErrorCodeInternalCall
	case errors.Is(err, ErrReturnStackUnderflow):
		return VMErrorCodeReturnStackUnderflow
	case errors.Is(err, ErrExecutionReverted):
		return VMErrorCodeExecutionReverted
	case errors.Is(err, ErrStepLimit):
		return VMErrorCodeStepLimit
	case errors.Is(err, ErrInvalidJump):
		return VMErrorCodeInvalidJump
	case errors.Is(err, ErrInvalidOperand):
		return VMErrorCodeInvalidOperand
	case errors.Is(err, ErrTruncatedBytecode):
		return VMErrorCodeTruncatedBytecode
	default:
		// Dynamic errors
		if v := (*ErrUnknownOpcode)(nil); errors.As(err, &v) {
			return VMErrorCodeUnknownOpcode
		}
		return VMErrorCodeUnknown
	}
}
