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

package metrics

import (
	"testing"

	gethmetrics "github.com/ethereum/go-ethereum/metrics"
	"github.com/stretchr/testify/assert"
)

func TestGetOrRegisterLabel(t *testing.T) {
	r := gethmetrics.NewRegistry()
	l := GetOrRegisterLabel("test/info", r)
	l.Mark(map[string]any{"memoryLimit": uint64(1024)})

	again := GetOrRegisterLabel("test/info", r)
	assert.Same(t, l, again)
	assert.Equal(t, LabelValue{"memoryLimit": uint64(1024)}, again.Value())
}

func TestLabelValueIsCopy(t *testing.T) {
	l := &Label{value: make(LabelValue)}
	l.Mark(map[string]any{"a": 1})
	v := l.Value()
	v["a"] = 2
	assert.Equal(t, 1, l.Value()["a"])
}
