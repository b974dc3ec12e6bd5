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

package transpiler

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"

	"github.com/publicvm/avm/crypto"
)

// DefaultCacheSize is the number of transpiled functions kept by default.
const DefaultCacheSize = 1024

// Cache memoizes transpiled bytecode by the keccak256 hash of the circuit.
// It is safe for concurrent use.
type Cache struct {
	codes *lru.Cache[ethcommon.Hash, []byte]
}

// NewCache creates a cache holding up to size functions.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{codes: lru.NewCache[ethcommon.Hash, []byte](size)}
}

// Transpile returns the bytecode for ir, lowering it on a miss. Failed
// lowerings are not cached.
func (c *Cache) Transpile(ir []byte) ([]byte, error) {
	hash := crypto.Keccak256Hash(ir)
	if code, ok := c.codes.Get(hash); ok {
		cacheHitCounter.Inc(1)
		return code, nil
	}
	cacheMissCounter.Inc(1)
	code, err := Transpile(ir)
	if err != nil {
		return nil, err
	}
	c.codes.Add(hash, code)
	return code, nil
}

// Contains reports whether the circuit with the given hash is cached.
func (c *Cache) Contains(hash ethcommon.Hash) bool {
	return c.codes.Contains(hash)
}

// Len returns the number of cached functions.
func (c *Cache) Len() int {
	return c.codes.Len()
}

// Purge drops every cached function.
func (c *Cache) Purge() {
	c.codes.Purge()
}
