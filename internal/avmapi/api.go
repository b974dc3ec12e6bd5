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

// Package avmapi implements the avm JSON-RPC namespace.
package avmapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/state"
	"github.com/publicvm/avm/core/tracers"
	_ "github.com/publicvm/avm/core/tracers/native" // register the native tracers
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/log"
)

// DefaultTimeout bounds a single simulation when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Backend holds the collaborators served over RPC.
type Backend struct {
	State      *state.PublicStateDB
	Contracts  *state.ContractsDB
	Transpiler *transpiler.Cache
	Config     vm.Config
	Timeout    time.Duration // per simulation, DefaultTimeout if zero
}

// AVMAPI provides an API to simulate public calls and manage contracts.
type AVMAPI struct {
	b *Backend

	// lock serialises simulations, which share the state journal.
	lock sync.Mutex
}

// NewAVMAPI creates a new AVM API.
func NewAVMAPI(b *Backend) *AVMAPI {
	if b.Transpiler == nil {
		b.Transpiler = transpiler.NewCache(transpiler.DefaultCacheSize)
	}
	return &AVMAPI{b: b}
}

// APIs returns the RPC services offered by the backend.
func APIs(b *Backend) []rpc.API {
	return []rpc.API{{
		Namespace: "avm",
		Service:   NewAVMAPI(b),
	}}
}

// Simulate executes a public call and returns its result tree. Unless
// args.commit is set, storage is restored afterwards.
func (api *AVMAPI) Simulate(ctx context.Context, args SimulateArgs) (*SimulationResult, error) {
	id := uuid.New()
	logger := log.New("id", id, "contract", args.To, "selector", uint64(args.Selector))

	var tracer *tracers.Tracer
	config := api.b.Config
	if args.Tracer != nil {
		var err error
		if tracer, err = tracers.DefaultDirectory.New(*args.Tracer, args.TracerConfig); err != nil {
			return nil, err
		}
		config.Tracer = tracer.Hooks
	}

	api.lock.Lock()
	defer api.lock.Unlock()

	snapshot := api.b.State.Snapshot()
	defer func() {
		if args.Commit {
			api.b.State.DiscardJournal()
			return
		}
		if err := api.b.State.RevertToSnapshot(snapshot); err != nil {
			logger.Error("Failed to revert simulation", "err", err)
		}
	}()

	timeout := api.b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	avm := vm.NewAVM(api.b.State, api.b.Contracts, config)
	go func() {
		<-ctx.Done()
		avm.Cancel()
		if tracer != nil && tracer.Stop != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			tracer.Stop(vm.ErrAborted)
		}
	}()

	start := time.Now()
	res, err := avm.Simulate(ctx, args.call())
	if err != nil {
		if errors.Is(err, vm.ErrAborted) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn("Simulation timed out", "timeout", timeout)
		}
		logger.Debug("Simulation failed", "err", err)
		return nil, vm.VMErrorFromErr(err)
	}
	out := NewSimulationResult(res)
	if tracer != nil {
		if out.Trace, err = tracer.GetResult(); err != nil {
			return nil, err
		}
	}
	logger.Debug("Simulated public call", "returns", len(res.ReturnValues), "commit", args.Commit, "elapsed", ethcommon.PrettyDuration(time.Since(start)))
	return out, nil
}

// Transpile lowers a circuit to AVM bytecode.
func (api *AVMAPI) Transpile(ir hexutil.Bytes) (hexutil.Bytes, error) {
	return api.b.Transpiler.Transpile(ir)
}

// Disassemble lists the instructions of a bytecode blob.
func (api *AVMAPI) Disassemble(code hexutil.Bytes) ([]string, error) {
	program, err := vm.DecodeBytecode(code)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(program))
	for i, ins := range program {
		out[i] = ins.String()
	}
	return out, nil
}

// GetStorageAt returns the value of a storage slot of a contract.
func (api *AVMAPI) GetStorageAt(ctx context.Context, contract common.Address, slot Field) (Field, error) {
	v, err := api.b.State.GetPublicStorage(ctx, contract, fr.Element(slot))
	return Field(v), err
}

// GetCode returns the bytecode deployed at an address.
func (api *AVMAPI) GetCode(ctx context.Context, contract common.Address) (hexutil.Bytes, error) {
	return api.b.Contracts.GetBytecode(ctx, contract)
}

// Deploy registers bytecode at an address.
func (api *AVMAPI) Deploy(contract common.Address, code hexutil.Bytes, portal ethcommon.Address, internal bool) (ethcommon.Hash, error) {
	if err := api.b.Contracts.Deploy(contract, code, portal, internal); err != nil {
		return ethcommon.Hash{}, err
	}
	meta, err := api.b.Contracts.Meta(contract)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return meta.CodeHash, nil
}

// DeployCircuit transpiles a circuit and registers the bytecode at an
// address, returning the bytecode.
func (api *AVMAPI) DeployCircuit(contract common.Address, ir hexutil.Bytes, portal ethcommon.Address, internal bool) (hexutil.Bytes, error) {
	return api.b.Contracts.DeployCircuit(contract, ir, portal, internal)
}

// Tracers lists the tracers accepted by Simulate.
func (api *AVMAPI) Tracers() []string {
	return tracers.DefaultDirectory.Names()
}
