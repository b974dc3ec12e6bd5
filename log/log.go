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

// Package log is the module's structured logger. It forwards to the
// go-ethereum slog based logger and adds filtered logging helpers and an
// asynchronous rotating file sink.
package log

import (
	"io"
	"log/slog"
	"os"

	gethlog "github.com/ethereum/go-ethereum/log"
)

// Logger writes key/value pairs to a Handler.
type Logger = gethlog.Logger

const (
	LevelTrace = gethlog.LevelTrace
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelCrit  = gethlog.LevelCrit
)

// Root returns the root logger.
func Root() Logger { return gethlog.Root() }

// SetDefault sets the default global logger.
func SetDefault(l Logger) { gethlog.SetDefault(l) }

// New returns a new logger with the given context.
func New(ctx ...interface{}) Logger { return Root().With(ctx...) }

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...interface{}) { Root().Write(LevelTrace, msg, ctx...) }

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...interface{}) { Root().Write(LevelDebug, msg, ctx...) }

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...interface{}) { Root().Write(LevelInfo, msg, ctx...) }

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...interface{}) { Root().Write(LevelWarn, msg, ctx...) }

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...interface{}) { Root().Write(LevelError, msg, ctx...) }

// Crit logs a message at the critical level and exits the process.
func Crit(msg string, ctx ...interface{}) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

// FromVerbosity maps the classic 0 (silent) to 5 (trace) verbosity scale
// onto slog levels.
func FromVerbosity(verbosity int) slog.Level {
	return gethlog.FromLegacyLevel(verbosity)
}

// Setup installs a root logger writing to w in the given format
// ("terminal", "logfmt" or "json").
func Setup(w io.Writer, level slog.Level, format string, color bool) error {
	var handler slog.Handler
	switch format {
	case "", "terminal":
		handler = gethlog.NewTerminalHandlerWithLevel(w, level, color)
	case "logfmt":
		handler = gethlog.LogfmtHandlerWithLevel(w, level)
	case "json":
		handler = gethlog.JSONHandlerWithLevel(w, level)
	default:
		return errUnknownFormat(format)
	}
	SetDefault(gethlog.NewLogger(handler))
	return nil
}

type errUnknownFormat string

func (e errUnknownFormat) Error() string { return "unknown log format " + string(e) }
