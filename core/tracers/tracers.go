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

// Package tracers is a collection of AVM tracers, looked up by name.
package tracers

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/publicvm/avm/core/vm"
)

// Tracer bundles the hooks observing an execution with the means to
// collect its result.
type Tracer struct {
	*vm.Hooks
	GetResult func() (json.RawMessage, error)
	Stop      func(err error)
}

type ctorFn func(cfg json.RawMessage) (*Tracer, error)

type directory struct {
	elems map[string]ctorFn
}

// DefaultDirectory is the collection of tracers bundled by default.
var DefaultDirectory = directory{elems: make(map[string]ctorFn)}

// Register registers a tracer constructor by name.
func (d *directory) Register(name string, f ctorFn) {
	d.elems[name] = f
}

// New returns a new instance of the named tracer.
func (d *directory) New(name string, cfg json.RawMessage) (*Tracer, error) {
	if f, ok := d.elems[name]; ok {
		return f(cfg)
	}
	return nil, fmt.Errorf("tracer %q not found", name)
}

// Names lists the registered tracers.
func (d *directory) Names() []string {
	names := make([]string, 0, len(d.elems))
	for name := range d.elems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
