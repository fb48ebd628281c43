// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwisp/fwmon/upgrade"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.Nil(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)

	require.Nil(t, store.Record(upgrade.Operation{
		Id: "op1", Status: upgrade.StatusSuccess, Log: "done",
		DeviceName: "ap-01", DeviceId: "dev-01", ImageName: "openwrt-22.03",
	}))
	require.Nil(t, store.Record(upgrade.Operation{
		Id: "op2", Status: upgrade.StatusFailed,
		DeviceName: "ap-02", DeviceId: "dev-02",
	}))

	records, err := store.List(10)
	require.Nil(t, err)
	require.Len(t, records, 2)

	byId := map[string]Record{}
	for _, r := range records {
		byId[r.Operation.Id] = r
		assert.False(t, r.RecordedAt.IsZero())
	}
	assert.Equal(t, upgrade.StatusSuccess, byId["op1"].Operation.Status)
	assert.Equal(t, "done", byId["op1"].Operation.Log)
	assert.Equal(t, "ap-02", byId["op2"].Operation.DeviceName)
}

func TestRecordUpsert(t *testing.T) {
	store := newTestStore(t)

	op := upgrade.Operation{Id: "op1", Status: upgrade.StatusCancelled, DeviceName: "ap-01"}
	require.Nil(t, store.Record(op))
	op.Log = "cancelled mid-flash"
	require.Nil(t, store.Record(op))

	records, err := store.List(10)
	require.Nil(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "cancelled mid-flash", records[0].Operation.Log)
}

func TestListLimit(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		require.Nil(t, store.Record(upgrade.Operation{Id: id, Status: upgrade.StatusSuccess}))
	}

	records, err := store.List(2)
	require.Nil(t, err)
	assert.Len(t, records, 2)

	// Zero falls back to the default limit
	records, err = store.List(0)
	require.Nil(t, err)
	assert.Len(t, records, 3)
}
