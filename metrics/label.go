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

// Package metrics extends the go-ethereum metrics registry with labels:
// named key/value sets describing the running process, mirrored into a
// gauge info metric so exporters see them.
package metrics

import (
	"fmt"
	"maps"
	"sync"

	gethmetrics "github.com/ethereum/go-ethereum/metrics"
)

// LabelValue is a mapping of keys to values
type LabelValue map[string]any

// Label is a named, mutable set of key/value pairs.
type Label struct {
	value LabelValue
	info  *gethmetrics.GaugeInfo
	mutex sync.Mutex
}

var labels sync.Map // name -> *Label

// GetOrRegisterLabel returns an existing Label or constructs a new one and
// registers its gauge info in r. A nil registry means the default one.
func GetOrRegisterLabel(name string, r gethmetrics.Registry) *Label {
	if l, ok := labels.Load(name); ok {
		return l.(*Label)
	}
	l, _ := labels.LoadOrStore(name, &Label{
		value: make(LabelValue),
		info:  gethmetrics.GetOrRegisterGaugeInfo(name, r),
	})
	return l.(*Label)
}

// Value returns a copy of the label values.
func (l *Label) Value() LabelValue {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return maps.Clone(l.value)
}

// Mark merges value into the label.
func (l *Label) Mark(value map[string]any) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	maps.Copy(l.value, value)

	if l.info == nil {
		return
	}
	info := make(gethmetrics.GaugeInfoValue, len(l.value))
	for k, v := range l.value {
		info[k] = fmt.Sprint(v)
	}
	l.info.Update(info)
}
