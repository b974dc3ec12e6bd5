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

package vm

import (
	"fmt"
	"slices"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// maxPooledWords bounds the backing arrays kept around by the memory pool.
const maxPooledWords = 4 * 1024

var memoryPool = sync.Pool{
	New: func() any {
		return &Memory{}
	},
}

// MemoryBudget bounds the words held by all live frames of one call tree.
// It is not thread safe.
type MemoryBudget struct {
	used  uint64
	limit uint64
}

// NewMemoryBudget returns a budget allowing limit words in total.
func NewMemoryBudget(limit uint64) *MemoryBudget {
	return &MemoryBudget{limit: limit}
}

// Used returns the number of words currently held.
func (b *MemoryBudget) Used() uint64 {
	return b.used
}

func (b *MemoryBudget) reserve(words uint64) error {
	if b.limit-b.used < words {
		return fmt.Errorf("%w: call tree holds %d words, %d more exceed %d", ErrMemoryLimit, b.used, words, b.limit)
	}
	b.used += words
	return nil
}

func (b *MemoryBudget) release(words uint64) {
	b.used -= min(words, b.used)
}

// Memory implements a simple word addressed arena for one call frame. It
// starts out all zero and grows on write up to a fixed limit. Growth is
// also charged to the budget shared by the call tree, if any.
type Memory struct {
	store  []fr.Element
	limit  uint64
	budget *MemoryBudget
}

// NewMemory returns a new, empty memory able to address limit words. A nil
// budget leaves growth bounded by limit alone.
func NewMemory(limit uint64, budget *MemoryBudget) *Memory {
	m := memoryPool.Get().(*Memory)
	m.limit = limit
	m.budget = budget
	return m
}

// Free releases the words held from the budget and returns the memory to
// the pool.
func (m *Memory) Free() {
	if m.budget != nil {
		m.budget.release(uint64(len(m.store)))
		m.budget = nil
	}
	// To reduce peak allocation, return only smaller memory instances to the pool.
	if cap(m.store) <= maxPooledWords {
		clear(m.store)
		m.store = m.store[:0]
		memoryPool.Put(m)
	}
}

func (m *Memory) check(offset, size uint64) error {
	end := offset + size
	if end < offset || end > m.limit {
		return fmt.Errorf("%w: access [%d, +%d) beyond %d words", ErrMemoryLimit, offset, size, m.limit)
	}
	return nil
}

// grow extends the backing store so that it holds at least size words.
func (m *Memory) grow(size uint64) error {
	have := uint64(len(m.store))
	if have >= size {
		return nil
	}
	if m.budget != nil {
		if err := m.budget.reserve(size - have); err != nil {
			return err
		}
	}
	m.store = slices.Grow(m.store, int(size-have))[:size]
	return nil
}

// Get returns the word at offset. Words that were never written read as zero.
func (m *Memory) Get(offset uint64) (fr.Element, error) {
	if err := m.check(offset, 1); err != nil {
		return fr.Element{}, err
	}
	if offset >= uint64(len(m.store)) {
		return fr.Element{}, nil
	}
	return m.store[offset], nil
}

// Set writes value at offset, growing the memory as needed.
func (m *Memory) Set(offset uint64, value fr.Element) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	if err := m.grow(offset + 1); err != nil {
		return err
	}
	m.store[offset] = value
	return nil
}

// GetCopy returns a copy of size words starting at offset, zero filling
// any part that was never written.
func (m *Memory) GetCopy(offset, size uint64) ([]fr.Element, error) {
	if err := m.check(offset, size); err != nil {
		return nil, err
	}
	cpy := make([]fr.Element, size)
	if offset < uint64(len(m.store)) {
		copy(cpy, m.store[offset:])
	}
	return cpy, nil
}

// SetRange writes values starting at offset.
func (m *Memory) SetRange(offset uint64, values []fr.Element) error {
	if len(values) == 0 {
		return nil
	}
	if err := m.check(offset, uint64(len(values))); err != nil {
		return err
	}
	if err := m.grow(offset + uint64(len(values))); err != nil {
		return err
	}
	copy(m.store[offset:], values)
	return nil
}

// Len returns the number of words written so far, including zero gaps.
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the backing slice.
func (m *Memory) Data() []fr.Element {
	return m.store
}

// toOffset interprets a field element read from memory as an address.
func toOffset(f *fr.Element) (uint64, error) {
	if !f.IsUint64() {
		return 0, fmt.Errorf("%w: offset %v out of range", ErrMemoryLimit, f)
	}
	return f.Uint64(), nil
}
