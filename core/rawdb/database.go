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

package rawdb

import (
	"fmt"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/ethdb/pebble"

	"github.com/publicvm/avm/log"
)

// Supported database engines.
const (
	DBMemory  = "memory"
	DBLeveldb = "leveldb"
	DBPebble  = "pebble"
)

// OpenOptions contains the options to apply when opening a database.
type OpenOptions struct {
	Type      string // "memory" | "leveldb" | "pebble"
	Directory string // the datadir, ignored by the memory engine
	Namespace string // the namespace for database relevant metrics
	Cache     int    // the capacity(in megabytes) of the data caching
	Handles   int    // number of files to be open simultaneously
	ReadOnly  bool
}

// Open opens a key-value database and checks its schema version. A fresh
// writable database is stamped with the current version.
func Open(o OpenOptions) (ethdb.KeyValueStore, error) {
	var (
		db  ethdb.KeyValueStore
		err error
	)
	switch o.Type {
	case DBMemory, "":
		log.Info("Using an in-memory database")
		db = memorydb.New()
	case DBLeveldb:
		log.Info("Using leveldb as the backing database", "dir", o.Directory)
		db, err = leveldb.New(o.Directory, o.Cache, o.Handles, o.Namespace, o.ReadOnly)
	case DBPebble:
		log.Info("Using pebble as the backing database", "dir", o.Directory)
		db, err = pebble.New(o.Directory, o.Cache, o.Handles, o.Namespace, o.ReadOnly)
	default:
		return nil, fmt.Errorf("unknown db.engine %v", o.Type)
	}
	if err != nil {
		return nil, err
	}
	switch version := ReadDatabaseVersion(db); {
	case version == nil && !o.ReadOnly:
		WriteDatabaseVersion(db, DatabaseVersion)
	case version != nil && *version != DatabaseVersion:
		db.Close()
		return nil, fmt.Errorf("database version %d, want %d", *version, DatabaseVersion)
	}
	return db, nil
}
