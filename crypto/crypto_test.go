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

package crypto

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
)

func field(v uint64) fr.Element {
	var f fr.Element
	f.SetUint64(v)
	return f
}

func TestDeriveMapSlotDeterministic(t *testing.T) {
	base, key := field(6), field(0xdeadbeef)

	a := DeriveMapSlot(base, key)
	b := DeriveMapSlot(base, key)
	assert.Equal(t, a, b)
	assert.NotEqual(t, base, a)

	other := DeriveMapSlot(field(2), key)
	assert.NotEqual(t, a, other, "distinct maps must not share slots")
	swapped := DeriveMapSlot(key, base)
	assert.NotEqual(t, a, swapped, "hash must be order sensitive")
}

func TestHashFieldsMatchesMapSlot(t *testing.T) {
	assert.Equal(t, DeriveMapSlot(field(1), field(2)), HashFields(field(1), field(2)))
}
