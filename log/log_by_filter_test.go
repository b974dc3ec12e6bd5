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

package log

import (
	"bytes"
	"strings"
	"testing"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func captureRoot(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := Root()
	t.Cleanup(func() { SetDefault(prev) })

	out := new(bytes.Buffer)
	SetDefault(gethlog.NewLogger(gethlog.LogfmtHandlerWithLevel(out, LevelTrace)))
	return out
}

func TestEveryN(t *testing.T) {
	out := captureRoot(t)
	filter := &EveryN{N: 3}
	for i := 0; i < 9; i++ {
		InfoBy(filter, "progress", "i", i)
	}
	assert.Equal(t, 3, strings.Count(out.String(), "progress"))
}

func TestNilFilterAllowsAll(t *testing.T) {
	out := captureRoot(t)
	var filter *EveryN
	InfoBy(filter, "one")
	InfoBy(nil, "two")
	assert.Contains(t, out.String(), "one")
	assert.Contains(t, out.String(), "two")
}

func TestConditionalLogging(t *testing.T) {
	out := captureRoot(t)
	TraceIf(false, "hidden")
	DebugIf(false, "hidden")
	TraceIf(true, "shown-trace")
	DebugIf(true, "shown-debug")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown-trace")
	assert.Contains(t, out.String(), "shown-debug")
}
