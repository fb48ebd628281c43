// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

// Package simulator is a self-contained upgrader backend speaking the
// same WebSocket and REST surface as the real one. It exists for local
// development of the monitor and for integration tests; it drives
// scripted upgrade scenarios, it does not flash anything.
package simulator

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	fwctx "github.com/netwisp/fwmon/context"
	"github.com/netwisp/fwmon/upgrade"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local development tool
	},
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

type simOperation struct {
	op        upgrade.Operation
	batchId   string
	cancelled bool
}

// Simulator holds the scripted operations and the per-channel
// subscriber sets. Channels mirror the page subscriptions: one per
// device, per operation, and per batch.
type Simulator struct {
	mu   sync.Mutex
	ops  map[string]*simOperation
	subs map[string]map[*subscriber]struct{}
}

func New() *Simulator {
	return &Simulator{
		ops:  make(map[string]*simOperation),
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// RegisterHandlers mounts the upgrader surface on an echo server.
func (s *Simulator) RegisterHandlers(e *echo.Echo) {
	e.GET("/ws/firmware-upgrader/device/:id/", s.wsHandler(channelDevice))
	e.GET("/ws/firmware-upgrader/upgrade-operation/:id/", s.wsHandler(channelOperation))
	e.GET("/ws/firmware-upgrader/batch-upgrade-operation/:id/", s.wsHandler(channelBatch))
	e.POST("/api/v1/firmware-upgrader/upgrade-operation/:id/cancel/", s.cancelHandler)
	e.GET("/api/v1/firmware-upgrader/upgrade-operation/", s.listHandler)
}

type channelKind string

const (
	channelDevice    channelKind = "device"
	channelOperation channelKind = "operation"
	channelBatch     channelKind = "batch"
)

func channelKey(kind channelKind, id string) string {
	return string(kind) + "/" + id
}

func (s *Simulator) wsHandler(kind channelKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		log := fwctx.CtxGetLog(c.Request().Context())
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		sub := &subscriber{conn: conn}
		key := channelKey(kind, id)
		s.subscribe(key, sub)
		defer func() {
			s.unsubscribe(key, sub)
			_ = conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return nil
			}
			var req struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				log.Warn("dropping malformed client message", "err", err)
				continue
			}
			if req.Type == "request_current_state" {
				s.sendCurrentState(kind, id, sub)
			}
		}
	}
}

// sendCurrentState replays authoritative snapshots for everything bound
// to the subscribed channel, plus the aggregate on batch channels.
func (s *Simulator) sendCurrentState(kind channelKind, id string, sub *subscriber) {
	s.mu.Lock()
	var snapshots []upgrade.Operation
	var agg *upgrade.BatchAggregate
	for _, so := range s.ops {
		match := false
		switch kind {
		case channelDevice:
			match = so.op.DeviceId == id
		case channelOperation:
			match = so.op.Id == id
		case channelBatch:
			match = so.batchId == id
		}
		if match {
			snapshots = append(snapshots, so.op)
		}
	}
	if kind == channelBatch {
		a := s.aggregateLocked(id)
		agg = &a
	}
	s.mu.Unlock()

	for _, op := range snapshots {
		_ = sub.send(operationUpdateMsg(op))
	}
	if agg != nil {
		_ = sub.send(batchStatusMsg(*agg))
	}
}

func (s *Simulator) subscribe(key string, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[*subscriber]struct{})
	}
	s.subs[key][sub] = struct{}{}
}

func (s *Simulator) unsubscribe(key string, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs[key], sub)
}

func (s *Simulator) publish(payload any, keys ...string) {
	s.mu.Lock()
	var targets []*subscriber
	for _, key := range keys {
		for sub := range s.subs[key] {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()
	for _, sub := range targets {
		_ = sub.send(payload)
	}
}

func (s *Simulator) cancelHandler(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	so, ok := s.ops[id]
	if !ok {
		s.mu.Unlock()
		return c.JSON(http.StatusNotFound, echo.Map{"error": "upgrade operation not found"})
	}
	if !so.op.Status.IsInProgress() {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, echo.Map{"error": "operation is not in progress"})
	}
	if so.op.Progress != nil && *so.op.Progress >= upgrade.CancelCutoff {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, echo.Map{"error": "firmware flashing in progress, too late to cancel"})
	}
	// The script goroutine observes the flag and publishes the terminal
	// status update, mirroring how a real cancel is confirmed.
	so.cancelled = true
	s.mu.Unlock()
	return c.NoContent(http.StatusOK)
}

func (s *Simulator) listHandler(c echo.Context) error {
	deviceId := c.QueryParam("device")
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]upgrade.Operation, 0, len(s.ops))
	for _, so := range s.ops {
		if deviceId == "" || so.op.DeviceId == deviceId {
			ops = append(ops, so.op)
		}
	}
	return c.JSON(http.StatusOK, ops)
}

// aggregateLocked recomputes the batch roll-up; s.mu must be held.
func (s *Simulator) aggregateLocked(batchId string) upgrade.BatchAggregate {
	agg := upgrade.BatchAggregate{Status: upgrade.StatusInProgress}
	failed := false
	for _, so := range s.ops {
		if so.batchId != batchId {
			continue
		}
		agg.Total++
		if !so.op.Status.IsInProgress() {
			agg.Completed++
		}
		if so.op.Status.IsFailure() {
			failed = true
		}
	}
	if agg.Total > 0 && agg.Completed == agg.Total {
		if failed {
			agg.Status = upgrade.StatusFailed
		} else {
			agg.Status = upgrade.StatusSuccess
		}
	}
	return agg
}

func newOperationId() string {
	return uuid.New().String()
}

func operationUpdateMsg(op upgrade.Operation) echo.Map {
	return echo.Map{
		"type":      "operation_update",
		"model":     "UpgradeOperation",
		"operation": op,
	}
}

func logMsg(content string, status upgrade.Status) echo.Map {
	return echo.Map{"type": "log", "content": content, "status": status}
}

func statusMsg(status upgrade.Status) echo.Map {
	return echo.Map{"type": "status", "status": status}
}

func batchStatusMsg(agg upgrade.BatchAggregate) echo.Map {
	return echo.Map{
		"type":      "batch_status",
		"status":    agg.Status,
		"total":     agg.Total,
		"completed": agg.Completed,
	}
}
