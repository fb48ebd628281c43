// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	fwctx "github.com/netwisp/fwmon/context"
)

type Server struct {
	context context.Context
	echo    *echo.Echo
	server  *http.Server
}

func NewServer(ctx context.Context, echo *echo.Echo, port uint16) Server {
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	return Server{context: ctx, echo: echo, server: srv}
}

func (s Server) Start(quit chan error) {
	log := fwctx.CtxGetLog(s.context)
	go func() {
		log.Info("listening", "addr", s.server.Addr)
		if err := s.echo.StartServer(s.server); err != nil && err != http.ErrServerClosed {
			quit <- err
		}
	}()
}

func (s Server) Shutdown(timeout time.Duration) error {
	log := fwctx.CtxGetLog(s.context)
	log.Info("shutting down", "timeout", timeout)
	ctx, cancel := context.WithTimeout(s.context, timeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		log.Warn("shutdown did not complete cleanly", "err", err)
		return err
	}
	return nil
}

func (s Server) GetAddress() string {
	return s.echo.Listener.Addr().String()
}
