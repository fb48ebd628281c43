// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netwisp/fwmon/reconcile"
)

// Reconnect policy. These mirror the operational constants the admin
// frontend always ran with; they bound how long a dead backend is
// retried, they do not define the protocol.
const (
	dialTimeout          = 7 * time.Second
	retryInterval        = 3 * time.Second
	maxReconnectAttempts = 5
	scanRetryDelay       = time.Second
)

// Controller owns the one WebSocket subscription of a page. It dials,
// requests the authoritative current state on every (re)open, and
// routes inbound messages to the reconciler. All reconciliation runs on
// the Run goroutine, preserving delivery order.
type Controller struct {
	wsURL string
	page  PageType
	id    string
	rec   *reconcile.Reconciler
	log   *slog.Logger

	dialer *websocket.Dialer
}

func NewController(apiURL string, page PageType, id string, rec *reconcile.Reconciler, log *slog.Logger) (*Controller, error) {
	wsURL, err := WebSocketURL(apiURL, page, id)
	if err != nil {
		return nil, err
	}
	return &Controller{
		wsURL:  wsURL,
		page:   page,
		id:     id,
		rec:    rec,
		log:    log.With("page", string(page), "id", id),
		dialer: &websocket.Dialer{HandshakeTimeout: dialTimeout},
	}, nil
}

// WebSocketURL derives the feed URL for a page from the API base URL:
// ws(s)://<api-host>/ws/firmware-upgrader/<page>/<id>/.
func WebSocketURL(apiURL string, page PageType, id string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported API URL scheme %q", u.Scheme)
	}
	u.Path = fmt.Sprintf("/ws/firmware-upgrader/%s/%s/", page, id)
	// Drop any query or fragment baggage from the configured base URL,
	// including the bare "?" a ForceQuery URL would re-emit.
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// Run connects and serves the subscription until the context is
// cancelled or the reconnect budget is exhausted. Reconnection is
// transparent: each successful open resets the attempt counter and
// re-requests current state, so the page converges again after any
// amount of missed traffic.
func (c *Controller) Run(ctx context.Context) error {
	attempts := 0
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempts++
			c.log.Warn("connection attempt failed", "attempt", attempts, "err", err)
			if attempts >= maxReconnectAttempts {
				return fmt.Errorf("giving up on %s after %d attempts: %w", c.wsURL, attempts, err)
			}
		} else {
			attempts = 0
			c.serve(ctx, conn)
			_ = conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// serve handles one connection until it drops. The reader goroutine
// only pumps frames; every state mutation happens here, in delivery
// order.
func (c *Controller) serve(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		// Unblock the reader when the caller is done.
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(NewCurrentStateRequest(c.page, c.id)); err != nil {
		c.log.Warn("unable to request current state", "err", err)
		return
	}

	// The page content may be stale relative to server truth after a
	// reconnect; rescan it. One delayed retry covers pages whose rows
	// were not rendered yet.
	var rescan <-chan time.Time
	if c.rec.InitialScan() == 0 {
		rescan = time.After(scanRetryDelay)
	}

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- data:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rescan:
			rescan = nil
			c.rec.InitialScan()
		case data, ok := <-frames:
			if !ok {
				c.logClose(<-readErr)
				return
			}
			c.dispatch(data)
		}
	}
}

func (c *Controller) dispatch(data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		// Never fatal: log and drop, the connection stays open.
		c.log.Error("dropping message", "err", err)
		return
	}
	switch m := msg.(type) {
	case OperationUpdate:
		c.rec.ApplySnapshot(m.Operation)
	case LogDelta:
		c.rec.ApplyLogDelta(m.Content)
	case StatusUpdate:
		c.rec.ApplyStatus(m.Status)
	case BatchStatus:
		if c.page == PageBatch {
			c.rec.ApplyAggregate(m.Aggregate)
		}
	case IgnoredMessage:
		c.log.Debug("ignoring message", "type", m.Type, "model", m.Model)
	}
}

func (c *Controller) logClose(err error) {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.log.Info("connection closed", "err", err)
		return
	}
	// 1006 and friends: worth surfacing in logs, but reconnection is
	// automatic and the user sees nothing.
	c.log.Error("connection closed abnormally", "err", err)
}
