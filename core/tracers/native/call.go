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

package native

import (
	"encoding/json"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/tracers"
	"github.com/publicvm/avm/core/vm"
)

func init() {
	tracers.DefaultDirectory.Register("callTracer", newCallTracer)
}

type callFrame struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Gas    uint64         `json:"gas"`
	Input  []string       `json:"input"`
	Output []string       `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
	Calls  []*callFrame   `json:"calls,omitempty"`
}

type callTracerConfig struct {
	OnlyTopCall bool `json:"onlyTopCall"` // If true, call tracer won't collect any subcalls
}

// callTracer records the call tree of a simulation.
type callTracer struct {
	callstack []*callFrame
	root      *callFrame
	config    callTracerConfig
	stopper
}

func newCallTracer(cfg json.RawMessage) (*tracers.Tracer, error) {
	var config callTracerConfig
	if cfg != nil {
		if err := json.Unmarshal(cfg, &config); err != nil {
			return nil, err
		}
	}
	t := &callTracer{config: config}
	return &tracers.Tracer{
		Hooks: &vm.Hooks{
			OnEnter: t.OnEnter,
			OnExit:  t.OnExit,
		},
		GetResult: t.GetResult,
		Stop:      t.Stop,
	}, nil
}

func (t *callTracer) OnEnter(depth int, from common.Address, to common.Address, input []fr.Element, gas uint64) {
	if t.stopped() {
		return
	}
	call := &callFrame{
		From:  from,
		To:    to,
		Gas:   gas,
		Input: fieldStrings(input),
	}
	if len(t.callstack) == 0 {
		t.root = call
	} else if t.config.OnlyTopCall {
		// Keep the stack balanced without recording the subcall.
		t.callstack = append(t.callstack, call)
		return
	} else {
		parent := t.callstack[len(t.callstack)-1]
		parent.Calls = append(parent.Calls, call)
	}
	t.callstack = append(t.callstack, call)
}

func (t *callTracer) OnExit(depth int, output []fr.Element, err error) {
	if len(t.callstack) == 0 {
		return
	}
	call := t.callstack[len(t.callstack)-1]
	t.callstack = t.callstack[:len(t.callstack)-1]
	call.Output = fieldStrings(output)
	if err != nil {
		call.Error = err.Error()
	}
}

// GetResult returns the json-encoded call tree.
func (t *callTracer) GetResult() (json.RawMessage, error) {
	if t.root == nil {
		return json.RawMessage(`null`), t.stopReason()
	}
	res, err := json.Marshal(t.root)
	if err != nil {
		return nil, err
	}
	return res, t.stopReason()
}
