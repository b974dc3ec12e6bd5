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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// rotationLayout is appended to the log path to name each rotated file.
const rotationLayout = "2006-01-02_15"

// TimeTicker fires on the hour boundaries at which log files rotate.
type TimeTicker struct {
	stop chan struct{}
	C    <-chan time.Time
}

// NewTimeTicker creates a TimeTicker that fires every rotateHours hours,
// aligned to the hour. With rotateHours 0 it never fires.
func NewTimeTicker(rotateHours uint) *TimeTicker {
	ch := make(chan time.Time)
	tt := &TimeTicker{
		stop: make(chan struct{}),
		C:    ch,
	}
	if rotateHours > 0 {
		go tt.run(ch, rotateHours)
	}
	return tt
}

// Stop terminates the ticker goroutine.
func (tt *TimeTicker) Stop() {
	close(tt.stop)
}

func (tt *TimeTicker) run(ch chan<- time.Time, rotateHours uint) {
	next := nextRotation(time.Now(), rotateHours)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()
	for {
		select {
		case t := <-timer.C:
			select {
			case ch <- t:
			case <-tt.stop:
				return
			}
			next = nextRotation(t, rotateHours)
			timer.Reset(time.Until(next))
		case <-tt.stop:
			return
		}
	}
}

// nextRotation returns the start of the hour that is delta hours after now.
func nextRotation(now time.Time, delta uint) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour * time.Duration(delta))
}

// AsyncFileWriter is an io.Writer that hands log lines to a background
// goroutine which appends them to a time rotated file. The path given to
// the writer is kept as a symlink to the current file. Lines are dropped,
// and counted, when the buffer is full.
type AsyncFileWriter struct {
	filePath string
	fd       *os.File

	wg         sync.WaitGroup
	started    atomic.Bool
	dropped    atomic.Uint64
	buf        chan []byte
	stop       chan struct{}
	timeTicker *TimeTicker
	now        func() time.Time
}

// NewAsyncFileWriter creates a writer buffering up to bufferLines lines.
func NewAsyncFileWriter(filePath string, bufferLines int, rotateHours uint) (*AsyncFileWriter, error) {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("log file path %q: %w", filePath, err)
	}
	return &AsyncFileWriter{
		filePath:   absFilePath,
		buf:        make(chan []byte, bufferLines),
		stop:       make(chan struct{}),
		timeTicker: NewTimeTicker(rotateHours),
		now:        time.Now,
	}, nil
}

func (w *AsyncFileWriter) initLogFile() error {
	realFilePath := w.filePath + "." + w.now().Format(rotationLayout)
	fd, err := os.OpenFile(realFilePath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	w.fd = fd

	if _, err := os.Lstat(w.filePath); err == nil {
		if err := os.Remove(w.filePath); err != nil {
			return err
		}
	}
	return os.Symlink(realFilePath, w.filePath)
}

// Start opens the log file and launches the writer goroutine.
func (w *AsyncFileWriter) Start() error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("logger has already been started")
	}
	if err := w.initLogFile(); err != nil {
		w.started.Store(false)
		return err
	}
	w.wg.Add(1)
	go w.loop()
	return nil
}

func (w *AsyncFileWriter) loop() {
	defer w.wg.Done()
	for {
		select {
		case msg := <-w.buf:
			w.syncWrite(msg)
		case <-w.timeTicker.C:
			w.rotate()
		case <-w.stop:
			// Drain whatever was queued before the stop request.
			for {
				select {
				case msg := <-w.buf:
					w.syncWrite(msg)
				default:
					if err := w.flushAndClose(); err != nil {
						fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
					}
					return
				}
			}
		}
	}
}

func (w *AsyncFileWriter) syncWrite(msg []byte) {
	if w.fd != nil {
		w.fd.Write(msg)
	}
}

func (w *AsyncFileWriter) rotate() {
	if err := w.flushAndClose(); err != nil {
		fmt.Fprintf(os.Stderr, "flush and close log file: %v\n", err)
	}
	if err := w.initLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "init log file: %v\n", err)
	}
}

// Stop flushes queued lines, closes the file and stops rotation.
func (w *AsyncFileWriter) Stop() {
	if !w.started.Load() {
		return
	}
	close(w.stop)
	w.wg.Wait()
	w.timeTicker.Stop()
}

// Write queues a copy of msg. It never blocks.
func (w *AsyncFileWriter) Write(msg []byte) (int, error) {
	buf := make([]byte, len(msg))
	copy(buf, msg)

	select {
	case w.buf <- buf:
	default:
		w.dropped.Add(1)
	}
	return len(msg), nil
}

// Dropped returns the number of lines discarded because the buffer was full.
func (w *AsyncFileWriter) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *AsyncFileWriter) flushAndClose() error {
	if w.fd == nil {
		return nil
	}
	defer func() { w.fd = nil }()
	if err := w.fd.Sync(); err != nil {
		w.fd.Close()
		return err
	}
	return w.fd.Close()
}
