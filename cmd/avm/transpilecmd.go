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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/publicvm/avm/common/gopool"
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/log"
	"github.com/publicvm/avm/params"
)

var (
	outDirFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Directory for the bytecode files (default: next to each circuit)",
	}
	hexFlag = &cli.BoolFlag{
		Name:  "hex",
		Usage: "Write bytecode as hex text instead of raw bytes",
	}
	irFlag = &cli.BoolFlag{
		Name:  "ir",
		Usage: "Disassemble a circuit instead of bytecode",
	}
)

var transpileCommand = &cli.Command{
	Action:    transpileCmd,
	Name:      "transpile",
	Usage:     "Lower circuit files to AVM bytecode",
	ArgsUsage: "<circuit files>",
	Flags:     []cli.Flag{outDirFlag, hexFlag},
	Description: `
Each circuit file is transpiled to a file of the same name with the .avm
extension. The files are processed in parallel.`,
}

var disasmCommand = &cli.Command{
	Action:    disasmCmd,
	Name:      "disasm",
	Usage:     "Disassemble bytecode or a circuit",
	ArgsUsage: "<hex or file>",
	Flags:     []cli.Flag{irFlag},
}

func outputPath(in, dir string) string {
	name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".avm"
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name)
}

func transpileCmd(ctx *cli.Context) error {
	files := ctx.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	limit := gopool.Threads(len(files))

	irs := make([][]byte, len(files))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, file := range files {
		g.Go(func() (err error) {
			irs[i], err = readBlob(file)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	codes, err := transpiler.TranspileAll(transpiler.NewCache(len(files)), irs)
	if err != nil {
		return err
	}

	g = new(errgroup.Group)
	g.SetLimit(limit)
	for i, file := range files {
		g.Go(func() error {
			out := outputPath(file, ctx.String(outDirFlag.Name))
			data := codes[i]
			if ctx.Bool(hexFlag.Name) {
				data = []byte(hexutil.Encode(data) + "\n")
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			log.Info("Transpiled circuit", "in", file, "out", out, "instructions", len(codes[i])/params.InstructionSize)
			return nil
		})
	}
	return g.Wait()
}

func disasmCmd(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	blob, err := readBlob(ctx.Args().First())
	if err != nil {
		return err
	}
	if ctx.Bool(irFlag.Name) {
		listing, err := transpiler.Disassemble(blob)
		if err != nil {
			return err
		}
		fmt.Print(listing)
		return nil
	}
	program, err := vm.DecodeBytecode(blob)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"PC", "Offset", "Opcode", "Operands"})
	for pc, ins := range program {
		operands := strings.TrimSpace(strings.TrimPrefix(ins.String(), ins.Op.String()))
		table.Append([]string{
			strconv.Itoa(pc),
			strconv.Itoa(pc * params.InstructionSize),
			ins.Op.String(),
			operands,
		})
	}
	table.Render()
	return nil
}
