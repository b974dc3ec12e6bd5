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

// Package state provides the persistent collaborators of the AVM: public
// storage and the contract registry.
package state

import (
	"context"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/pkg/errors"

	"github.com/publicvm/avm/common"
	"github.com/publicvm/avm/core/rawdb"
	"github.com/publicvm/avm/core/vm"
	"github.com/publicvm/avm/log"
)

var _ vm.StateDB = (*PublicStateDB)(nil)

// journalEntry is a modification made to public storage, kept so that it
// can be undone.
type journalEntry struct {
	contract common.Address
	slot     fr.Element
	prev     fr.Element
}

// PublicStateDB is the public storage of every contract. Writes go straight
// to the database; a journal allows reverting them, for example after a
// simulation that must not be kept.
type PublicStateDB struct {
	db    ethdb.KeyValueStore
	clean *fastcache.Cache // clean cache of storage values

	lock    sync.Mutex
	journal []journalEntry
}

// NewPublicStateDB creates the state over db, caching up to cacheMB
// megabytes of storage values.
func NewPublicStateDB(db ethdb.KeyValueStore, cacheMB int) *PublicStateDB {
	s := &PublicStateDB{db: db}
	if cacheMB > 0 {
		s.clean = fastcache.New(cacheMB * 1024 * 1024)
	}
	return s
}

func cacheKey(contract common.Address, slot fr.Element) []byte {
	b := slot.Bytes()
	return append(contract.Bytes(), b[:]...)
}

func (s *PublicStateDB) read(contract common.Address, slot fr.Element) (fr.Element, error) {
	var key []byte
	if s.clean != nil {
		key = cacheKey(contract, slot)
		if enc, ok := s.clean.HasGet(nil, key); ok {
			cleanHitMeter.Mark(1)
			var value fr.Element
			value.SetBytes(enc)
			return value, nil
		}
		cleanMissMeter.Mark(1)
	}
	value, err := rawdb.ReadStorage(s.db, contract, slot)
	if err != nil {
		return fr.Element{}, err
	}
	if s.clean != nil {
		enc := value.Bytes()
		s.clean.Set(key, enc[:])
	}
	return value, nil
}

func (s *PublicStateDB) write(contract common.Address, slot, value fr.Element) error {
	if err := rawdb.WriteStorage(s.db, contract, slot, value); err != nil {
		if s.clean != nil {
			s.clean.Del(cacheKey(contract, slot))
		}
		return err
	}
	if s.clean != nil {
		enc := value.Bytes()
		s.clean.Set(cacheKey(contract, slot), enc[:])
	}
	return nil
}

// GetPublicStorage returns the value of a storage slot.
func (s *PublicStateDB) GetPublicStorage(ctx context.Context, contract common.Address, slot fr.Element) (fr.Element, error) {
	if err := ctx.Err(); err != nil {
		return fr.Element{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.read(contract, slot)
}

// SetPublicStorage writes a storage slot and returns the value it replaced.
func (s *PublicStateDB) SetPublicStorage(ctx context.Context, contract common.Address, slot, value fr.Element) (fr.Element, error) {
	if err := ctx.Err(); err != nil {
		return fr.Element{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	prev, err := s.read(contract, slot)
	if err != nil {
		return fr.Element{}, err
	}
	if err := s.write(contract, slot, value); err != nil {
		return fr.Element{}, err
	}
	s.journal = append(s.journal, journalEntry{contract: contract, slot: slot, prev: prev})
	return prev, nil
}

// Snapshot returns an identifier for the current revision of the state.
func (s *PublicStateDB) Snapshot() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.journal)
}

// RevertToSnapshot undoes every write made since the given snapshot.
func (s *PublicStateDB) RevertToSnapshot(revid int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if revid < 0 || revid > len(s.journal) {
		return errors.Errorf("revision id %v cannot be reverted (valid revisions: 0..%d)", revid, len(s.journal))
	}
	for i := len(s.journal) - 1; i >= revid; i-- {
		entry := s.journal[i]
		if err := s.write(entry.contract, entry.slot, entry.prev); err != nil {
			s.journal = s.journal[:i+1]
			return errors.Wrapf(err, "reverting write %d", i)
		}
	}
	log.Debug("Reverted public state", "writes", len(s.journal)-revid)
	s.journal = s.journal[:revid]
	return nil
}

// DiscardJournal forgets every journaled write, making them permanent.
func (s *PublicStateDB) DiscardJournal() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.journal = s.journal[:0]
}

// Storage returns every non-zero slot of a contract.
func (s *PublicStateDB) Storage(contract common.Address) (map[fr.Element]fr.Element, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make(map[fr.Element]fr.Element)
	err := rawdb.IterateStorage(s.db, contract, func(slot, value fr.Element) bool {
		out[slot] = value
		return true
	})
	return out, err
}
