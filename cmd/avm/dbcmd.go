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
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/common"
)

var addressFlag = &cli.StringFlag{
	Name:     "address",
	Usage:    "Contract address",
	Required: true,
}

var (
	dbCommand = &cli.Command{
		Name:      "db",
		Usage:     "Low level database operations",
		ArgsUsage: "",
		Subcommands: []*cli.Command{
			dbDeployCmd,
			dbInspectCmd,
			dbStorageCmd,
		},
	}
	dbDeployCmd = &cli.Command{
		Action: dbDeploy,
		Name:   "deploy",
		Usage:  "Deploy bytecode or a circuit at an address",
		Flags: append([]cli.Flag{
			addressFlag,
			codeFlag,
			circuitFlag,
			portalFlag,
			internalFlag,
		}, configFlags...),
	}
	dbInspectCmd = &cli.Command{
		Action: dbInspect,
		Name:   "inspect",
		Usage:  "Show the metadata of a deployed contract",
		Flags:  append([]cli.Flag{addressFlag}, configFlags...),
	}
	dbStorageCmd = &cli.Command{
		Action:    dbStorage,
		Name:      "storage",
		Usage:     "Dump the public storage of a contract, or read one slot",
		ArgsUsage: "[slot]",
		Flags:     append([]cli.Flag{addressFlag}, configFlags...),
	}
)

func dbDeploy(ctx *cli.Context) error {
	if !ctx.IsSet(codeFlag.Name) && !ctx.IsSet(circuitFlag.Name) {
		return errors.New("one of --code or --circuit is required")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	backend, db, err := openBackend(&cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	return deployFromFlags(ctx, backend.Contracts, common.HexToAddress(ctx.String(addressFlag.Name)))
}

func dbInspect(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	backend, db, err := openBackend(&cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	addr := common.HexToAddress(ctx.String(addressFlag.Name))
	meta, err := backend.Contracts.Meta(addr)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("no contract at %v", addr)
	}
	code, err := backend.Contracts.GetBytecode(context.Background(), addr)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"address", addr.Hex()},
		{"codeHash", meta.CodeHash.Hex()},
		{"circuitHash", meta.CircuitHash.Hex()},
		{"size", fmt.Sprintf("%d bytes", len(code))},
		{"portal", meta.Portal.Hex()},
		{"internal", fmt.Sprint(meta.Internal)},
	})
	table.Render()
	return nil
}

func dbStorage(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	backend, db, err := openBackend(&cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	addr := common.HexToAddress(ctx.String(addressFlag.Name))
	if ctx.NArg() == 1 {
		slot, err := common.ParseField(ctx.Args().First())
		if err != nil {
			return err
		}
		value, err := backend.State.GetPublicStorage(context.Background(), addr, slot)
		if err != nil {
			return err
		}
		fmt.Println(value.String())
		return nil
	}
	storage, err := backend.State.Storage(addr)
	if err != nil {
		return err
	}
	slots := make([]fr.Element, 0, len(storage))
	for slot := range storage {
		slots = append(slots, slot)
	}
	slices.SortFunc(slots, func(a, b fr.Element) int { return a.Cmp(&b) })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Slot", "Value"})
	for _, slot := range slots {
		value := storage[slot]
		table.Append([]string{slot.String(), value.String()})
	}
	table.Render()
	return nil
}
