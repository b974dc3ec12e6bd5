// Copyright 2026 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/cmd/utils"
	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/tracers"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/internal/avmapi"
	"github.com/publicvm/avm/log"
)

var (
	toFlag = &cli.StringFlag{
		Name:  "to",
		Usage: "Address of the contract to call, or to deploy the given code at",
	}
	codeFlag = &cli.StringFlag{
		Name:  "code",
		Usage: "Bytecode to run, as hex or a file",
	}
	circuitFlag = &cli.StringFlag{
		Name:  "circuit",
		Usage: "Circuit to transpile and run, as hex or a file",
	}
	calldataFlag = &cli.StringFlag{
		Name:  "calldata",
		Usage: "Comma separated field elements passed as calldata",
	}
	selectorFlag = &cli.StringFlag{
		Name:  "selector",
		Usage: "Function selector",
		Value: "0",
	}
	senderFlag = &cli.StringFlag{
		Name:  "sender",
		Usage: "Caller address",
	}
	portalFlag = &cli.StringFlag{
		Name:  "portal",
		Usage: "Base chain portal address of a deployed contract",
	}
	internalFlag = &cli.BoolFlag{
		Name:  "internal",
		Usage: "Deploy the contract as only callable by itself",
	}
	staticFlag = &cli.BoolFlag{
		Name:  "static",
		Usage: "Forbid storage writes",
	}
	commitFlag = &cli.BoolFlag{
		Name:  "commit",
		Usage: "Keep the storage writes of the run",
	}
	tracerFlag = &cli.StringFlag{
		Name:  "tracer",
		Usage: "Name of the tracer to attach",
	}
	tracerConfigFlag = &cli.StringFlag{
		Name:  "tracer.config",
		Usage: "JSON configuration of the tracer",
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as JSON",
	}
	benchFlag = &cli.BoolFlag{
		Name:  "bench",
		Usage: "Report the execution time",
	}
)

// runAddress is where run deploys code given on the command line when no
// address is supplied.
var runAddress = common.BytesToAddress([]byte("avm-run"))

var runCommand = &cli.Command{
	Action:    runCmd,
	Name:      "run",
	Usage:     "Simulate a public call",
	ArgsUsage: "",
	Flags: append([]cli.Flag{
		toFlag,
		codeFlag,
		circuitFlag,
		calldataFlag,
		selectorFlag,
		senderFlag,
		portalFlag,
		internalFlag,
		staticFlag,
		commitFlag,
		tracerFlag,
		tracerConfigFlag,
		jsonFlag,
		benchFlag,
	}, configFlags...),
	Description: `
The run command simulates a public call against the configured database.
Bytecode or a circuit given with --code or --circuit is deployed first, at
--to if set. Unless --commit is given the storage writes are reverted.`,
}

func runCmd(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	var tracer *tracers.Tracer
	if name := ctx.String(tracerFlag.Name); name != "" {
		if tracer, err = tracers.DefaultDirectory.New(name, json.RawMessage(ctx.String(tracerConfigFlag.Name))); err != nil {
			return err
		}
		cfg.VM.Tracer = tracer.Hooks
	}
	backend, db, err := openBackend(&cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	call, err := makeCall(ctx)
	if err != nil {
		return err
	}
	if err := deployFromFlags(ctx, backend.Contracts, call.ContractAddress); err != nil {
		return err
	}

	snapshot := backend.State.Snapshot()
	start := time.Now()
	res, err := vm.Simulate(context.Background(), backend.State, backend.Contracts, cfg.VM, call)
	elapsed := time.Since(start)
	if ctx.Bool(commitFlag.Name) {
		backend.State.DiscardJournal()
	} else if rerr := backend.State.RevertToSnapshot(snapshot); rerr != nil {
		log.Error("Failed to revert run", "err", rerr)
	}
	if err != nil {
		var revert *vm.RevertError
		if errors.As(err, &revert) {
			fmt.Fprintf(os.Stderr, "revert data: %v\n", common.FieldsToStrings(revert.Data))
		}
		return err
	}
	if ctx.Bool(benchFlag.Name) {
		fmt.Fprintf(os.Stderr, "execution time: %v\n", elapsed)
	}

	out := avmapi.NewSimulationResult(res)
	if tracer != nil {
		if out.Trace, err = tracer.GetResult(); err != nil {
			return err
		}
	}
	if ctx.Bool(jsonFlag.Name) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Printf("return: %v\n", common.FieldsToStrings(res.ReturnValues))
	printTrace(os.Stdout, res)
	if out.Trace != nil {
		fmt.Println(string(out.Trace))
	}
	return nil
}

func makeCall(ctx *cli.Context) (vm.PublicCall, error) {
	call := vm.PublicCall{ContractAddress: runAddress}
	if ctx.IsSet(toFlag.Name) {
		call.ContractAddress = common.HexToAddress(ctx.String(toFlag.Name))
	}
	if !ctx.IsSet(toFlag.Name) && !ctx.IsSet(codeFlag.Name) && !ctx.IsSet(circuitFlag.Name) {
		return call, errors.New("one of --to, --code or --circuit is required")
	}
	selector, err := strconv.ParseUint(ctx.String(selectorFlag.Name), 0, 32)
	if err != nil {
		return call, fmt.Errorf("invalid selector: %w", err)
	}
	call.Selector = vm.FunctionSelector(selector)
	if call.Calldata, err = common.ParseFields(ctx.String(calldataFlag.Name)); err != nil {
		return call, err
	}
	if ctx.IsSet(senderFlag.Name) {
		call.Context.Sender = common.HexToAddress(ctx.String(senderFlag.Name))
	}
	call.Context.IsStaticCall = ctx.Bool(staticFlag.Name)
	return call, nil
}

type deployer interface {
	Deploy(addr common.Address, code []byte, portal ethcommon.Address, internal bool) error
	DeployCircuit(addr common.Address, ir []byte, portal ethcommon.Address, internal bool) ([]byte, error)
}

// deployFromFlags deploys the --code or --circuit blob, if any, at addr.
func deployFromFlags(ctx *cli.Context, contracts deployer, addr common.Address) error {
	utils.CheckExclusive(ctx, codeFlag, circuitFlag)
	portal := ethcommon.HexToAddress(ctx.String(portalFlag.Name))
	internal := ctx.Bool(internalFlag.Name)
	switch {
	case ctx.IsSet(codeFlag.Name):
		code, err := readBlob(ctx.String(codeFlag.Name))
		if err != nil {
			return err
		}
		return contracts.Deploy(addr, code, portal, internal)
	case ctx.IsSet(circuitFlag.Name):
		ir, err := readBlob(ctx.String(circuitFlag.Name))
		if err != nil {
			return err
		}
		_, err = contracts.DeployCircuit(addr, ir, portal, internal)
		return err
	}
	return nil
}

// traceRows renders the storage accesses of a result tree in counter order.
// The top-level result already holds every record of the tree; nested
// results are only consulted for the depth each record was issued at.
func traceRows(res *vm.ExecutionResult) [][]string {
	depths := make(map[uint32]int)
	var walk func(r *vm.ExecutionResult, depth int)
	walk = func(r *vm.ExecutionResult, depth int) {
		for _, read := range r.StorageReads {
			depths[read.Counter] = depth
		}
		for _, write := range r.StorageWrites {
			depths[write.Counter] = depth
		}
		for _, nested := range r.NestedExecutions {
			walk(nested, depth+1)
		}
	}
	walk(res, 0)

	type row struct {
		counter uint32
		cells   []string
	}
	rows := make([]row, 0, len(res.StorageReads)+len(res.StorageWrites))
	for _, read := range res.StorageReads {
		rows = append(rows, row{read.Counter, []string{
			strconv.FormatUint(uint64(read.Counter), 10), strconv.Itoa(depths[read.Counter]), "SLOAD",
			read.Contract.TerminalString(), fieldString(read.Slot), "", fieldString(read.Value),
		}})
	}
	for _, write := range res.StorageWrites {
		rows = append(rows, row{write.Counter, []string{
			strconv.FormatUint(uint64(write.Counter), 10), strconv.Itoa(depths[write.Counter]), "SSTORE",
			write.Contract.TerminalString(), fieldString(write.Slot), fieldString(write.OldValue), fieldString(write.NewValue),
		}})
	}
	slices.SortFunc(rows, func(a, b row) int { return cmp.Compare(a.counter, b.counter) })
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = r.cells
	}
	return data
}

// printTrace writes the storage trace of a result tree as a table.
func printTrace(w io.Writer, res *vm.ExecutionResult) {
	data := traceRows(res)
	if len(data) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Counter", "Depth", "Op", "Contract", "Slot", "Old", "Value"})
	table.AppendBulk(data)
	table.Render()
}

func fieldString(f fr.Element) string {
	return f.String()
}
