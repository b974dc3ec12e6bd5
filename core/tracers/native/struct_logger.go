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

	"github.com/publicvm/avm/core/tracers"
	"github.com/publicvm/avm/core/vm"
)

func init() {
	tracers.DefaultDirectory.Register("structLogger", newStructLogger)
}

// StructLog is emitted for every executed instruction.
type StructLog struct {
	Pc     uint64   `json:"pc"`
	Op     string   `json:"op"`
	Depth  int      `json:"depth"`
	Memory []string `json:"memory,omitempty"`
	Err    string   `json:"error,omitempty"`
}

type structLoggerConfig struct {
	EnableMemory bool `json:"enableMemory"` // enable memory capture
	Limit        int  `json:"limit"`        // maximum number of logs to capture, 0 for no limit
}

// structLogger records every instruction executed by the interpreter.
type structLogger struct {
	cfg  structLoggerConfig
	logs []StructLog
	stopper
}

func newStructLogger(cfg json.RawMessage) (*tracers.Tracer, error) {
	var config structLoggerConfig
	if cfg != nil {
		if err := json.Unmarshal(cfg, &config); err != nil {
			return nil, err
		}
	}
	l := &structLogger{cfg: config}
	return &tracers.Tracer{
		Hooks: &vm.Hooks{
			OnOpcode: l.OnOpcode,
			OnFault:  l.OnFault,
		},
		GetResult: l.GetResult,
		Stop:      l.Stop,
	}, nil
}

func (l *structLogger) OnOpcode(pc uint64, ins vm.Instruction, scope *vm.ScopeContext, depth int) {
	if l.stopped() {
		return
	}
	if l.full() {
		return
	}
	entry := StructLog{Pc: pc, Op: ins.String(), Depth: depth}
	if l.cfg.EnableMemory {
		entry.Memory = fieldStrings(scope.MemoryData())
	}
	l.logs = append(l.logs, entry)
}

func (l *structLogger) OnFault(pc uint64, ins vm.Instruction, scope *vm.ScopeContext, depth int, err error) {
	if l.stopped() || l.full() {
		return
	}
	l.logs = append(l.logs, StructLog{Pc: pc, Op: ins.String(), Depth: depth, Err: err.Error()})
}

func (l *structLogger) full() bool {
	return l.cfg.Limit != 0 && len(l.logs) >= l.cfg.Limit
}

// GetResult returns the json-encoded instruction log.
func (l *structLogger) GetResult() (json.RawMessage, error) {
	res, err := json.Marshal(l.logs)
	if err != nil {
		return nil, err
	}
	return res, l.stopReason()
}
