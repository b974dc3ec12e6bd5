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
)

// StorageRead records one SLOAD.
type StorageRead struct {
	Contract common.Address
	Slot     fr.Element
	Value    fr.Element
	Counter  uint32
}

// StorageWrite records one SSTORE together with the value it replaced.
type StorageWrite struct {
	Contract common.Address
	Slot     fr.Element
	OldValue fr.Element
	NewValue fr.Element
	Counter  uint32
}

// SideEffectCounter orders side effects across a whole call tree. One
// counter is shared by every frame of a simulation.
type SideEffectCounter struct {
	next uint32
}

// Next returns the next counter value and advances the counter.
func (c *SideEffectCounter) Next() uint32 {
	n := c.next
	c.next++
	return n
}

// Peek returns the value the next side effect will receive.
func (c *SideEffectCounter) Peek() uint32 {
	return c.next
}

// ExecutionResult is the outcome of one frame. The records of a result
// cover its frame and every frame nested below it, in counter order.
type ExecutionResult struct {
	Call             PublicCall
	Gas              uint64 // gas limit carried by the call, not enforced
	ReturnValues     []fr.Element
	StorageReads     []StorageRead
	StorageWrites    []StorageWrite
	NestedExecutions []*ExecutionResult

	// Err is set on nested results whose frame faulted without faulting
	// the caller.
	Err error
}

// Failed reports whether the frame ended in a fault.
func (r *ExecutionResult) Failed() bool {
	return r.Err != nil
}

// splice appends a finished child's records after the caller's own. The
// child ran to completion before the caller resumed, so this keeps the
// records ordered by counter.
func (r *ExecutionResult) splice(child *ExecutionResult) {
	r.StorageReads = append(r.StorageReads, child.StorageReads...)
	r.StorageWrites = append(r.StorageWrites, child.StorageWrites...)
	r.NestedExecutions = append(r.NestedExecutions, child)
}

func (avm *AVM) recordRead(frame *Frame, slot, value fr.Element) {
	rec := StorageRead{
		Contract: frame.Context.StorageAddress,
		Slot:     slot,
		Value:    value,
		Counter:  avm.counter.Next(),
	}
	frame.result.StorageReads = append(frame.result.StorageReads, rec)
	if tracer := avm.Config.Tracer; tracer != nil && tracer.OnStorageRead != nil {
		tracer.OnStorageRead(avm.depth, rec)
	}
}

func (avm *AVM) recordWrite(frame *Frame, slot, oldValue, newValue fr.Element) {
	rec := StorageWrite{
		Contract: frame.Context.StorageAddress,
		Slot:     slot,
		OldValue: oldValue,
		NewValue: newValue,
		Counter:  avm.counter.Next(),
	}
	frame.result.StorageWrites = append(frame.result.StorageWrites, rec)
	if tracer := avm.Config.Tracer; tracer != nil && tracer.OnStorageWrite != nil {
		tracer.OnStorageWrite(avm.depth, rec)
	}
}
