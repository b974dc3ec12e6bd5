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
	tracers.DefaultDirectory.Register("storageTracer", newStorageTracer)
}

type slotDiff struct {
	Pre  string `json:"pre"`
	Post string `json:"post"`
}

// contractDiff is the storage diff of one contract, keyed by slot.
type contractDiff map[string]*slotDiff

// storageTracer collects the net storage changes of a simulation: for
// every written slot, the value before the first write and after the last.
// Slots written back to their original value are dropped.
type storageTracer struct {
	diff map[common.Address]contractDiff
	stopper
}

func newStorageTracer(_ json.RawMessage) (*tracers.Tracer, error) {
	t := &storageTracer{diff: make(map[common.Address]contractDiff)}
	return &tracers.Tracer{
		Hooks: &vm.Hooks{
			OnStorageWrite: t.OnStorageWrite,
		},
		GetResult: t.GetResult,
		Stop:      t.Stop,
	}, nil
}

func (t *storageTracer) OnStorageWrite(depth int, write vm.StorageWrite) {
	if t.stopped() {
		return
	}
	contract, ok := t.diff[write.Contract]
	if !ok {
		contract = make(contractDiff)
		t.diff[write.Contract] = contract
	}
	key := common.FieldHex(write.Slot)
	if d, ok := contract[key]; ok {
		d.Post = common.FieldHex(write.NewValue)
		return
	}
	contract[key] = &slotDiff{Pre: common.FieldHex(write.OldValue), Post: common.FieldHex(write.NewValue)}
}

// GetResult returns the json-encoded storage diff.
func (t *storageTracer) GetResult() (json.RawMessage, error) {
	out := make(map[common.Address]contractDiff)
	for addr, contract := range t.diff {
		for slot, d := range contract {
			if d.Pre == d.Post {
				continue
			}
			if out[addr] == nil {
				out[addr] = make(contractDiff)
			}
			out[addr][slot] = d
		}
	}
	res, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return res, t.stopReason()
}

func fieldStrings(values []fr.Element) []string {
	return common.FieldsToStrings(values)
}
