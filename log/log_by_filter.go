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
	"log/slog"
	"sync/atomic"
)

// Filter decides whether a filtered log call is emitted.
type Filter interface {
	allow() bool
}

// EveryN lets through one call out of every N. The zero value and a nil
// pointer let every call through.
type EveryN struct {
	N       uint32
	counter atomic.Uint32
}

func (e *EveryN) allow() bool {
	if e == nil || e.N == 0 {
		return true
	}
	return e.counter.Add(1)%e.N == 0
}

var _ Filter = &EveryN{}

type ifCondition bool

func (c ifCondition) allow() bool { return bool(c) }

// LogBy writes msg at level if filter allows it. A nil filter allows
// everything.
func LogBy(filter Filter, level slog.Level, msg string, ctx ...interface{}) {
	if filter != nil && !filter.allow() {
		return
	}
	Root().Write(level, msg, ctx...)
}

// TraceIf logs at trace level if condition holds.
func TraceIf(condition bool, msg string, ctx ...interface{}) {
	if condition {
		Root().Write(LevelTrace, msg, ctx...)
	}
}

// DebugIf logs at debug level if condition holds.
func DebugIf(condition bool, msg string, ctx ...interface{}) {
	LogBy(ifCondition(condition), LevelDebug, msg, ctx...)
}

// InfoBy logs at info level if filter allows it.
func InfoBy(filter Filter, msg string, ctx ...interface{}) {
	LogBy(filter, LevelInfo, msg, ctx...)
}

// DebugBy logs at debug level if filter allows it.
func DebugBy(filter Filter, msg string, ctx ...interface{}) {
	LogBy(filter, LevelDebug, msg, ctx...)
}
