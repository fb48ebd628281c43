// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

// Package client owns the transports toward the upgrader backend: the
// per-page WebSocket feed with its reconnect handling, and the REST
// client used for out-of-band actions like cancelling an operation.
package client

import (
	"encoding/json"
	"fmt"

	"github.com/netwisp/fwmon/upgrade"
)

// PageType selects which upgrader feed a page subscribes to.
type PageType string

const (
	PageDevice    PageType = "device"
	PageOperation PageType = "upgrade-operation"
	PageBatch     PageType = "batch-upgrade-operation"
)

// modelUpgradeOperation is the only envelope model this client
// processes; payloads wrapped in any other model are ignored.
const modelUpgradeOperation = "UpgradeOperation"

// Message is one decoded inbound event. Exactly one concrete type per
// wire "type" discriminator, plus IgnoredMessage for everything this
// client does not understand (forward compatibility).
type Message interface {
	messageKind() string
}

// OperationUpdate is a whole-operation snapshot with replace semantics.
type OperationUpdate struct {
	Operation upgrade.Operation
}

// LogDelta is an incremental log fragment for the in-progress
// operation(s) of the subscribed page.
type LogDelta struct {
	Content string
	Status  upgrade.Status
}

// StatusUpdate changes status only, applied to all in-progress rows.
type StatusUpdate struct {
	Status upgrade.Status
}

// BatchStatus is the aggregate roll-up for a batch page.
type BatchStatus struct {
	Aggregate upgrade.BatchAggregate
}

// IgnoredMessage is an unknown type or a payload wrapped in a foreign
// model envelope.
type IgnoredMessage struct {
	Type  string
	Model string
}

func (OperationUpdate) messageKind() string { return "operation_update" }
func (LogDelta) messageKind() string        { return "log" }
func (StatusUpdate) messageKind() string    { return "status" }
func (BatchStatus) messageKind() string     { return "batch_status" }
func (IgnoredMessage) messageKind() string  { return "ignored" }

// frame is the superset of every inbound payload shape; decoding reads
// the discriminator and picks the fields that belong to it.
type frame struct {
	Type  string `json:"type"`
	Model string `json:"model,omitempty"`

	Operation *upgrade.Operation `json:"operation,omitempty"`

	Content string `json:"content,omitempty"`
	Status  string `json:"status,omitempty"`

	Total     int `json:"total,omitempty"`
	Completed int `json:"completed,omitempty"`

	// operation_progress flattens the row fields instead of nesting an
	// operation object.
	OperationId string `json:"operation_id,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
	Modified    string `json:"modified,omitempty"`
	DeviceName  string `json:"device_name,omitempty"`
	DeviceId    string `json:"device_id,omitempty"`
	ImageName   string `json:"image_name,omitempty"`
}

// DecodeMessage parses one inbound frame. Malformed JSON is an error
// for the caller to log and drop; unknown variants decode successfully
// into IgnoredMessage.
func DecodeMessage(data []byte) (Message, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if f.Model != "" && f.Model != modelUpgradeOperation {
		return IgnoredMessage{Type: f.Type, Model: f.Model}, nil
	}
	switch f.Type {
	case "operation_update", "request_current_state":
		// The current-state echo carries the same snapshot shape.
		if f.Operation == nil {
			return IgnoredMessage{Type: f.Type}, nil
		}
		return OperationUpdate{Operation: *f.Operation}, nil
	case "operation_progress":
		// Batch-row update; normalized into the snapshot shape minus log.
		return OperationUpdate{Operation: upgrade.Operation{
			Id:         f.OperationId,
			Status:     upgrade.Status(f.Status),
			Progress:   f.Progress,
			Modified:   f.Modified,
			DeviceName: f.DeviceName,
			DeviceId:   f.DeviceId,
			ImageName:  f.ImageName,
		}}, nil
	case "log":
		return LogDelta{Content: f.Content, Status: upgrade.Status(f.Status)}, nil
	case "status":
		return StatusUpdate{Status: upgrade.Status(f.Status)}, nil
	case "batch_status":
		return BatchStatus{Aggregate: upgrade.BatchAggregate{
			Status:    upgrade.Status(f.Status),
			Total:     f.Total,
			Completed: f.Completed,
		}}, nil
	default:
		return IgnoredMessage{Type: f.Type}, nil
	}
}

// CurrentStateRequest is the outbound message sent on every (re)open to
// re-establish an authoritative baseline.
type CurrentStateRequest struct {
	Type        string `json:"type"`
	DeviceId    string `json:"device_id,omitempty"`
	OperationId string `json:"operation_id,omitempty"`
	BatchId     string `json:"batch_id,omitempty"`
}

// NewCurrentStateRequest builds the request for one page subscription.
func NewCurrentStateRequest(page PageType, id string) CurrentStateRequest {
	req := CurrentStateRequest{Type: "request_current_state"}
	switch page {
	case PageDevice:
		req.DeviceId = id
	case PageOperation:
		req.OperationId = id
	case PageBatch:
		req.BatchId = id
	}
	return req
}
