// Copyright 2026 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"

	"github.com/publicvm/avm/internal/avmapi"
	"github.com/publicvm/avm/log"
)

var serveCommand = &cli.Command{
	Action: serve,
	Name:   "serve",
	Usage:  "Serve the avm JSON-RPC namespace over HTTP",
	Flags:  configFlags,
}

func serve(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	backend, db, err := openBackend(&cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	server := rpc.NewServer()
	defer server.Stop()
	for _, api := range avmapi.APIs(backend) {
		if err := server.RegisterName(api.Namespace, api.Service); err != nil {
			return err
		}
	}

	listener, err := net.Listen("tcp", cfg.RPC.HTTPEndpoint())
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.Serve(listener)
	}()
	log.Info("HTTP server started", "endpoint", "http://"+listener.Addr().String())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case sig := <-sigc:
		log.Info("Got interrupt, shutting down...", "signal", sig)
		return httpServer.Close()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
