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
	"fmt"
	"sync"

	"github.com/publicvm/avm/common/gopool"
)

// TranspileAll lowers a batch of circuits on the shared goroutine pool. The
// result is index aligned with irs. The first failure, by index, is
// returned.
func TranspileAll(cache *Cache, irs [][]byte) ([][]byte, error) {
	var (
		codes = make([][]byte, len(irs))
		errs  = make([]error, len(irs))
		wg    sync.WaitGroup
	)
	for i := range irs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			codes[i], errs[i] = cache.Transpile(irs[i])
		}
		if err := gopool.Submit(task); err != nil {
			// The pool is closed or saturated, run inline.
			task()
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("circuit %d: %w", i, err)
		}
	}
	return codes, nil
}
