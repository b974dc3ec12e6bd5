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
	"sync"
)

var framePool = sync.Pool{
	New: func() any {
		return &Frame{}
	},
}

// GetFrame returns a frame from the pool, reset for the given call.
func GetFrame(call PublicCall, code []byte, gas uint64) *Frame {
	frame := framePool.Get().(*Frame)

	frame.Address = call.ContractAddress
	frame.Context = call.Context
	frame.Code = code
	frame.Calldata = call.Calldata
	frame.Gas = gas
	frame.returnStack = frame.returnStack[:0]
	frame.result = &ExecutionResult{Call: call, Gas: gas}

	return frame
}

// ReturnFrame returns a frame to the pool. The frame's result stays valid.
func ReturnFrame(frame *Frame) {
	if frame == nil {
		return
	}
	frame.Code = nil
	frame.Calldata = nil
	frame.result = nil
	framePool.Put(frame)
}
