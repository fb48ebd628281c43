// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package server

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fwctx "github.com/netwisp/fwmon/context"
)

func newTestServer(t *testing.T) Server {
	t.Helper()
	e := NewEchoServer("test-server", slog.New(slog.DiscardHandler))
	e.GET("/ping", func(c echo.Context) error {
		// The context logger must be installed by the middleware
		fwctx.CtxGetLog(c.Request().Context()).Debug("ping")
		return c.String(http.StatusOK, "pong")
	})

	srv := NewServer(fwctx.Background(), e, 0)
	quit := make(chan error, 1)
	srv.Start(quit)
	require.Eventually(t, func() bool {
		return srv.echo.Listener != nil
	}, time.Second, time.Millisecond)
	select {
	case err := <-quit:
		t.Fatalf("server failed to start: %v", err)
	default:
	}
	t.Cleanup(func() { _ = srv.Shutdown(time.Second) })
	return srv
}

func TestServerServesAndTagsRequests(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get("http://" + srv.GetAddress() + "/ping")
	require.Nil(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	assert.Equal(t, "pong", string(body))
	assert.NotEmpty(t, resp.Header.Get(echo.HeaderXRequestID))
}

func TestServerKeepsClientRequestId(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, "http://"+srv.GetAddress()+"/ping", nil)
	require.Nil(t, err)
	req.Header.Set(echo.HeaderXRequestID, "req-abc123")

	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-abc123", resp.Header.Get(echo.HeaderXRequestID))
}
