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
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/pkg/errors"

	"github.com/publicvm/avm/common"
)

// ReadStorage retrieves a public storage slot. Slots never written read as
// zero; only backend failures are reported as errors.
func ReadStorage(db ethdb.KeyValueReader, contract common.Address, slot fr.Element) (fr.Element, error) {
	start := time.Now()
	defer storageReadTimer.UpdateSince(start)

	key := storageKey(contract, slot.Bytes())
	has, err := db.Has(key)
	if err != nil {
		return fr.Element{}, errors.Wrap(err, "checking storage slot")
	}
	if !has {
		return fr.Element{}, nil
	}
	enc, err := db.Get(key)
	if err != nil {
		return fr.Element{}, errors.Wrap(err, "reading storage slot")
	}
	var value fr.Element
	if err := value.SetBytesCanonical(enc); err != nil {
		return fr.Element{}, errors.Wrapf(err, "corrupt storage slot %v of %v", slot.String(), contract)
	}
	return value, nil
}

// WriteStorage stores a public storage slot. Zero values are deleted.
func WriteStorage(db ethdb.KeyValueWriter, contract common.Address, slot, value fr.Element) error {
	start := time.Now()
	defer storageWriteTimer.UpdateSince(start)

	key := storageKey(contract, slot.Bytes())
	if value.IsZero() {
		return errors.Wrap(db.Delete(key), "deleting storage slot")
	}
	enc := value.Bytes()
	return errors.Wrap(db.Put(key, enc[:]), "writing storage slot")
}

// IterateStorage calls fn for every non-zero slot of the contract, in key
// order, until fn returns false.
func IterateStorage(db ethdb.Iteratee, contract common.Address, fn func(slot, value fr.Element) bool) error {
	prefix := storagePrefixKey(contract)
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+common.FieldBytes {
			continue
		}
		var slot, value fr.Element
		if err := slot.SetBytesCanonical(key[len(prefix):]); err != nil {
			return errors.Wrap(err, "corrupt storage key")
		}
		if err := value.SetBytesCanonical(it.Value()); err != nil {
			return errors.Wrap(err, "corrupt storage value")
		}
		if !fn(slot, value) {
			break
		}
	}
	return errors.Wrap(it.Error(), "iterating storage")
}
