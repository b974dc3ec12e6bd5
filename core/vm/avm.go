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
	"sync/atomic"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/log"
)

// simulationLog reports progress once every so many simulations.
var simulationLog = &log.EveryN{N: 1000}

// AVM is the public function virtual machine. It provides the tools to run
// a public call against the given state and contracts collaborators, and
// the nested call protocol between frames.
//
// The AVM should never be reused between simulations running concurrently
// and is not thread safe.
type AVM struct {
	// StateDB gives access to public storage
	StateDB StateDB
	// Contracts resolves bytecode and contract metadata
	Contracts ContractsDB
	// Config are the options of the interpreter
	Config Config

	interpreter *AVMInterpreter
	// ctx is the context of the running simulation, handed to collaborators
	ctx context.Context
	// counter orders the storage side effects of the running simulation
	counter SideEffectCounter
	// memory bounds the words held by the frames of the running simulation
	memory *MemoryBudget
	// depth is the current call stack
	depth int
	// abort is used to abort the AVM calling operations
	abort atomic.Bool
}

// NewAVM returns a new AVM. The returned AVM is not thread safe and should
// only ever be used *once*.
func NewAVM(statedb StateDB, contracts ContractsDB, config Config) *AVM {
	avm := &AVM{
		StateDB:   statedb,
		Contracts: contracts,
		Config:    config.sanitize(),
		ctx:       context.Background(),
	}
	avm.memory = NewMemoryBudget(avm.Config.TotalMemoryLimit)
	avm.interpreter = NewAVMInterpreter(avm)
	return avm
}

// Cancel cancels any running AVM operation. This may be called concurrently
// and it's safe to be called multiple times.
func (avm *AVM) Cancel() {
	avm.abort.Store(true)
}

// Cancelled returns true if Cancel has been called
func (avm *AVM) Cancelled() bool {
	return avm.abort.Load()
}

// Interpreter returns the current interpreter
func (avm *AVM) Interpreter() *AVMInterpreter {
	return avm.interpreter
}

// Simulate executes a public call from the top of the call tree. The
// result holds the return values and the storage trace of every frame in
// counter order. A faulted root frame is reported as an error.
func (avm *AVM) Simulate(ctx context.Context, call PublicCall) (*ExecutionResult, error) {
	start := time.Now()
	defer simulateTimer.UpdateSince(start)
	simulationCounter.Inc(1)

	avm.ctx = ctx
	avm.counter = SideEffectCounter{}
	avm.memory = NewMemoryBudget(avm.Config.TotalMemoryLimit)
	if call.Context.StorageAddress == (common.Address{}) {
		call.Context.StorageAddress = call.ContractAddress
	}
	if call.Context.Selector == 0 {
		call.Context.Selector = call.Selector
	}
	code, err := avm.Contracts.GetBytecode(ctx, call.ContractAddress)
	if err != nil {
		return nil, backendError("bytecode lookup", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrContractNotFound, call.ContractAddress)
	}
	if call.Context.Portal == (ethcommon.Address{}) {
		if call.Context.Portal, err = avm.Contracts.GetPortalAddress(ctx, call.ContractAddress); err != nil {
			return nil, backendError("portal lookup", err)
		}
	}
	frame := GetFrame(call, code, 0)
	defer ReturnFrame(frame)

	ret, err := avm.run(frame)
	if err != nil {
		faultCounter.Inc(1)
		log.Debug("Public simulation faulted", "contract", call.ContractAddress, "selector", call.Selector, "err", err)
		return nil, err
	}
	result := frame.result
	result.ReturnValues = ret

	log.InfoBy(simulationLog, "Public simulations processed", "total", simulationCounter.Snapshot().Count(), "last", ethcommon.PrettyDuration(time.Since(start)))
	return result, nil
}

// Call executes the contract at target from within caller, passing
// calldata as the callee's input. The callee's storage records and result
// are spliced into the caller's result whether or not the callee faults.
func (avm *AVM) Call(caller *Frame, target common.Address, calldata []fr.Element, gas uint64) (ret []fr.Element, err error) {
	// Fail if we're trying to execute above the call depth limit
	if uint64(avm.depth) >= avm.Config.MaxCallDepth {
		return nil, ErrDepth
	}
	code, err := avm.Contracts.GetBytecode(avm.ctx, target)
	if err != nil {
		return nil, backendError("bytecode lookup", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrContractNotFound, target)
	}
	portal, err := avm.Contracts.GetPortalAddress(avm.ctx, target)
	if err != nil {
		return nil, backendError("portal lookup", err)
	}
	internal, err := avm.Contracts.GetIsInternal(avm.ctx, target)
	if err != nil {
		return nil, backendError("internal flag lookup", err)
	}
	if internal && caller.Context.StorageAddress != target {
		return nil, fmt.Errorf("%w: %v called by %v", ErrInternalCall, target, caller.Context.StorageAddress)
	}
	nestedCallCounter.Inc(1)
	log.Trace("Nested call", "depth", avm.depth, "from", caller.Context.StorageAddress, "to", target, "args", len(calldata), "gas", gas)

	callCtx := caller.Context.nested(target, portal)
	child := GetFrame(PublicCall{
		ContractAddress: target,
		Selector:        callCtx.Selector,
		Calldata:        calldata,
		Context:         callCtx,
	}, code, gas)
	defer ReturnFrame(child)

	ret, err = avm.run(child)
	result := child.result
	result.ReturnValues, result.Err = ret, err
	caller.result.splice(result)

	if err != nil {
		return nil, &NestedCallError{Target: target, Depth: avm.depth + 1, Err: err}
	}
	return ret, nil
}

// run executes a frame, reporting entry and exit to the tracer.
func (avm *AVM) run(frame *Frame) (ret []fr.Element, err error) {
	if tracer := avm.Config.Tracer; tracer != nil {
		if tracer.OnEnter != nil {
			tracer.OnEnter(avm.depth, frame.Context.Sender, frame.Address, frame.Calldata, frame.Gas)
		}
		if tracer.OnExit != nil {
			defer func() {
				tracer.OnExit(avm.depth, ret, err)
			}()
		}
	}
	return avm.interpreter.Run(frame)
}

// tolerates reports whether a failed CALL may resume its caller under the
// configured fault policy. Collaborator failures and aborts never do.
func (avm *AVM) tolerates(err error) bool {
	if avm.Config.NestedFaultPolicy != FaultReturnStatus {
		return false
	}
	var nested *NestedCallError
	if !errors.As(err, &nested) {
		return false
	}
	return !errors.Is(err, ErrStorageBackend) && !errors.Is(err, ErrAborted)
}

func (avm *AVM) sload(frame *Frame, slot fr.Element) (fr.Element, error) {
	value, err := avm.StateDB.GetPublicStorage(avm.ctx, frame.Context.StorageAddress, slot)
	if err != nil {
		return fr.Element{}, backendError("storage read", err)
	}
	avm.recordRead(frame, slot, value)
	return value, nil
}

func (avm *AVM) sstore(frame *Frame, slot, value fr.Element) error {
	prev, err := avm.StateDB.SetPublicStorage(avm.ctx, frame.Context.StorageAddress, slot, value)
	if err != nil {
		return backendError("storage write", err)
	}
	avm.recordWrite(frame, slot, prev, value)
	return nil
}

// Simulate runs call on a fresh AVM.
func Simulate(ctx context.Context, statedb StateDB, contracts ContractsDB, config Config, call PublicCall) (*ExecutionResult, error) {
	return NewAVM(statedb, contracts, config).Simulate(ctx, call)
}
