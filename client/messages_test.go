// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwisp/fwmon/upgrade"
)

func TestDecodeOperationUpdate(t *testing.T) {
	data := []byte(`{
		"type": "operation_update",
		"model": "UpgradeOperation",
		"operation": {
			"id": "op1",
			"status": "in-progress",
			"progress": 42,
			"log": "Image uploaded",
			"device_name": "ap-07",
			"device_id": "dev-07"
		}
	}`)

	msg, err := DecodeMessage(data)
	require.Nil(t, err)
	update, ok := msg.(OperationUpdate)
	require.True(t, ok)
	assert.Equal(t, "op1", update.Operation.Id)
	assert.Equal(t, upgrade.StatusInProgress, update.Operation.Status)
	require.NotNil(t, update.Operation.Progress)
	assert.Equal(t, 42, *update.Operation.Progress)
	assert.Equal(t, "ap-07", update.Operation.DeviceName)
}

func TestDecodeCurrentStateEcho(t *testing.T) {
	data := []byte(`{
		"type": "request_current_state",
		"operation": {"id": "op1", "status": "success"}
	}`)

	msg, err := DecodeMessage(data)
	require.Nil(t, err)
	update, ok := msg.(OperationUpdate)
	require.True(t, ok)
	assert.Equal(t, upgrade.StatusSuccess, update.Operation.Status)

	// An echo without its snapshot is unusable
	msg, err = DecodeMessage([]byte(`{"type": "request_current_state"}`))
	require.Nil(t, err)
	_, ok = msg.(IgnoredMessage)
	assert.True(t, ok)
}

func TestDecodeOperationProgress(t *testing.T) {
	data := []byte(`{
		"type": "operation_progress",
		"operation_id": "op2",
		"status": "in-progress",
		"progress": 60,
		"device_name": "ap-02",
		"device_id": "dev-02",
		"image_name": "openwrt-22.03"
	}`)

	msg, err := DecodeMessage(data)
	require.Nil(t, err)
	update, ok := msg.(OperationUpdate)
	require.True(t, ok)
	assert.Equal(t, "op2", update.Operation.Id)
	assert.Equal(t, 60, *update.Operation.Progress)
	assert.Empty(t, update.Operation.Log)
}

func TestDecodeLogAndStatus(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type": "log", "content": "a line", "status": "in-progress"}`))
	require.Nil(t, err)
	delta, ok := msg.(LogDelta)
	require.True(t, ok)
	assert.Equal(t, "a line", delta.Content)

	msg, err = DecodeMessage([]byte(`{"type": "status", "status": "cancelled"}`))
	require.Nil(t, err)
	status, ok := msg.(StatusUpdate)
	require.True(t, ok)
	assert.Equal(t, upgrade.StatusCancelled, status.Status)
}

func TestDecodeBatchStatus(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type": "batch_status", "status": "in-progress", "total": 10, "completed": 4}`))
	require.Nil(t, err)
	batch, ok := msg.(BatchStatus)
	require.True(t, ok)
	assert.Equal(t, 10, batch.Aggregate.Total)
	assert.Equal(t, 4, batch.Aggregate.Completed)
	assert.Equal(t, 40, batch.Aggregate.Percent())
}

func TestDecodeForeignModel(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type": "operation_update", "model": "DeviceConfig", "operation": {"id": "x"}}`))
	require.Nil(t, err)
	ignored, ok := msg.(IgnoredMessage)
	require.True(t, ok)
	assert.Equal(t, "DeviceConfig", ignored.Model)
}

func TestDecodeUnknownType(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type": "firmware_inventory"}`))
	require.Nil(t, err)
	ignored, ok := msg.(IgnoredMessage)
	require.True(t, ok)
	assert.Equal(t, "firmware_inventory", ignored.Type)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type": `))
	assert.NotNil(t, err)
}

func TestNewCurrentStateRequest(t *testing.T) {
	req := NewCurrentStateRequest(PageDevice, "dev-1")
	assert.Equal(t, "request_current_state", req.Type)
	assert.Equal(t, "dev-1", req.DeviceId)
	assert.Empty(t, req.OperationId)

	req = NewCurrentStateRequest(PageBatch, "batch-1")
	assert.Equal(t, "batch-1", req.BatchId)
	assert.Empty(t, req.DeviceId)

	data, err := json.Marshal(NewCurrentStateRequest(PageOperation, "op-1"))
	require.Nil(t, err)
	assert.JSONEq(t, `{"type": "request_current_state", "operation_id": "op-1"}`, string(data))
}
