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

package avmapi

import (
	"encoding/json"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/vm"
)

// Field is a field element encoded as a decimal string. Decimal and 0x
// prefixed hex strings are accepted on input.
type Field fr.Element

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	e := fr.Element(f)
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(input []byte) error {
	v, err := common.ParseField(string(input))
	if err != nil {
		return err
	}
	*f = Field(v)
	return nil
}

func toFields(fs []fr.Element) []Field {
	out := make([]Field, len(fs))
	for i, f := range fs {
		out[i] = Field(f)
	}
	return out
}

func fromFields(fs []Field) []fr.Element {
	out := make([]fr.Element, len(fs))
	for i, f := range fs {
		out[i] = fr.Element(f)
	}
	return out
}

// SimulateArgs represents the arguments for simulating a public call.
type SimulateArgs struct {
	To       common.Address     `json:"to"`
	From     common.Address     `json:"from"`
	Selector hexutil.Uint64     `json:"selector"`
	Calldata []Field            `json:"calldata"`
	Portal   *ethcommon.Address `json:"portal,omitempty"`
	Static   bool               `json:"static"`

	// Commit keeps the storage writes of the simulation. By default they
	// are reverted once the result is collected.
	Commit bool `json:"commit"`

	Tracer       *string         `json:"tracer,omitempty"`
	TracerConfig json.RawMessage `json:"tracerConfig,omitempty"`
}

func (args *SimulateArgs) call() vm.PublicCall {
	call := vm.PublicCall{
		ContractAddress: args.To,
		Selector:        vm.FunctionSelector(args.Selector),
		Calldata:        fromFields(args.Calldata),
		Context: vm.CallContext{
			Sender:       args.From,
			IsStaticCall: args.Static,
		},
	}
	if args.Portal != nil {
		call.Context.Portal = *args.Portal
	}
	return call
}

// StorageRead is the JSON form of a recorded SLOAD.
type StorageRead struct {
	Contract common.Address `json:"contract"`
	Slot     Field          `json:"slot"`
	Value    Field          `json:"value"`
	Counter  uint32         `json:"counter"`
}

// StorageWrite is the JSON form of a recorded SSTORE.
type StorageWrite struct {
	Contract common.Address `json:"contract"`
	Slot     Field          `json:"slot"`
	OldValue Field          `json:"oldValue"`
	NewValue Field          `json:"newValue"`
	Counter  uint32         `json:"counter"`
}

// SimulationResult is the JSON form of an execution result tree.
type SimulationResult struct {
	Contract      common.Address      `json:"contract"`
	Selector      hexutil.Uint64      `json:"selector"`
	ReturnValues  []Field             `json:"returnValues"`
	StorageReads  []StorageRead       `json:"storageReads"`
	StorageWrites []StorageWrite      `json:"storageWrites"`
	Nested        []*SimulationResult `json:"nested"`
	Error         string              `json:"error,omitempty"`
	Trace         json.RawMessage     `json:"trace,omitempty"`
}

// NewSimulationResult converts an execution result tree to its JSON form.
func NewSimulationResult(res *vm.ExecutionResult) *SimulationResult {
	out := &SimulationResult{
		Contract:      res.Call.ContractAddress,
		Selector:      hexutil.Uint64(res.Call.Selector),
		ReturnValues:  toFields(res.ReturnValues),
		StorageReads:  make([]StorageRead, len(res.StorageReads)),
		StorageWrites: make([]StorageWrite, len(res.StorageWrites)),
		Nested:        make([]*SimulationResult, len(res.NestedExecutions)),
	}
	for i, r := range res.StorageReads {
		out.StorageReads[i] = StorageRead{
			Contract: r.Contract,
			Slot:     Field(r.Slot),
			Value:    Field(r.Value),
			Counter:  r.Counter,
		}
	}
	for i, w := range res.StorageWrites {
		out.StorageWrites[i] = StorageWrite{
			Contract: w.Contract,
			Slot:     Field(w.Slot),
			OldValue: Field(w.OldValue),
			NewValue: Field(w.NewValue),
			Counter:  w.Counter,
		}
	}
	for i, nested := range res.NestedExecutions {
		out.Nested[i] = NewSimulationResult(nested)
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
