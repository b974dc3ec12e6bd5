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

package native

import (
	"sync"
	"sync/atomic"
)

// stopper carries the interrupt state of a tracer. Stop may be called from
// a goroutine other than the one executing the hooks.
type stopper struct {
	interrupt atomic.Bool

	mu     sync.Mutex
	reason error
}

// Stop terminates execution of the tracer at the first opportune moment.
func (s *stopper) Stop(err error) {
	s.mu.Lock()
	if s.reason == nil {
		s.reason = err
	}
	s.mu.Unlock()
	s.interrupt.Store(true)
}

func (s *stopper) stopped() bool {
	return s.interrupt.Load()
}

func (s *stopper) stopReason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}
