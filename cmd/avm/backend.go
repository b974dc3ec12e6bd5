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
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethdb"

	"github.com/publicvm/avm/cmd/utils"
	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/state"
	"github.com/publicvm/avm/core/transpiler"
	"github.com/publicvm/avm/internal/avmapi"
)

// openBackend opens the configured database and builds the collaborators
// over it. The caller closes the returned database.
func openBackend(cfg *avmConfig, readonly bool) (*avmapi.Backend, ethdb.KeyValueStore, error) {
	handles := 0
	if cfg.DB.Engine != rawdb.DBMemory {
		handles = utils.MakeDatabaseHandles(cfg.DB.Handles)
	}
	db, err := rawdb.Open(rawdb.OpenOptions{
		Type:      cfg.DB.Engine,
		Directory: cfg.DB.DataDir,
		Namespace: "avm/db/",
		Cache:     cfg.DB.Cache,
		Handles:   handles,
		ReadOnly:  readonly,
	})
	if err != nil {
		return nil, nil, err
	}
	tc := transpiler.NewCache(cfg.DB.TranspileCache)
	return &avmapi.Backend{
		State:      state.NewPublicStateDB(db, cfg.DB.StateCache),
		Contracts:  state.NewContractsDB(db, tc),
		Transpiler: tc,
		Config:     cfg.VM,
		Timeout:    cfg.RPC.SimulationTimeout,
	}, db, nil
}

// readBlob interprets arg as 0x-prefixed hex, or else as the path of a
// file holding either hex text or raw bytes.
func readBlob(arg string) ([]byte, error) {
	if strings.HasPrefix(arg, "0x") {
		return hexutil.Decode(arg)
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	if text := strings.TrimSpace(string(data)); strings.HasPrefix(text, "0x") {
		return hexutil.Decode(text)
	}
	return data, nil
}
