// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package client

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwisp/fwmon/reconcile"
	"github.com/netwisp/fwmon/simulator"
	"github.com/netwisp/fwmon/upgrade"
)

func TestWebSocketURL(t *testing.T) {
	for apiURL, want := range map[string]string{
		"http://host:8080":      "ws://host:8080/ws/firmware-upgrader/device/dev-1/",
		"https://host":          "wss://host/ws/firmware-upgrader/device/dev-1/",
		"ws://host":             "ws://host/ws/firmware-upgrader/device/dev-1/",
		"wss://host/extra?":     "wss://host/ws/firmware-upgrader/device/dev-1/",
		"https://host?a=b#frag": "wss://host/ws/firmware-upgrader/device/dev-1/",
	} {
		got, err := WebSocketURL(apiURL, PageDevice, "dev-1")
		require.Nil(t, err, "url %q", apiURL)
		assert.Equal(t, want, got, "url %q", apiURL)
	}

	got, err := WebSocketURL("http://host", PageBatch, "b-1")
	require.Nil(t, err)
	assert.Equal(t, "ws://host/ws/firmware-upgrader/batch-upgrade-operation/b-1/", got)

	_, err = WebSocketURL("ftp://host", PageDevice, "dev-1")
	assert.NotNil(t, err)
}

type testFeed struct {
	ts   *httptest.Server
	sim  *simulator.Simulator
	page *reconcile.MemPage
	rec  *reconcile.Reconciler
}

func newTestFeed(t *testing.T) *testFeed {
	t.Helper()
	sim := simulator.New()
	e := echo.New()
	sim.RegisterHandlers(e)
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)

	page := reconcile.NewMemPage()
	rec := reconcile.New(page, reconcile.NewLogAccumulator(), slog.New(slog.DiscardHandler))
	return &testFeed{ts: ts, sim: sim, page: page, rec: rec}
}

func (f *testFeed) run(t *testing.T, pageType PageType, id string) context.CancelFunc {
	t.Helper()
	ctrl, err := NewController(f.ts.URL, pageType, id, f.rec, slog.New(slog.DiscardHandler))
	require.Nil(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = ctrl.Run(ctx) }()
	return cancel
}

func (f *testFeed) rowStatus(operationId string) (upgrade.Status, bool) {
	for _, row := range f.page.Snapshot() {
		if row.OperationId == operationId {
			return row.Status, true
		}
	}
	return "", false
}

func TestControllerFollowsOperation(t *testing.T) {
	f := newTestFeed(t)

	opId := f.sim.StartOperation("dev-1", "ap-01", "openwrt-22.03", "", simulator.DefaultScript(time.Millisecond))
	cancel := f.run(t, PageDevice, "dev-1")
	defer cancel()

	require.Eventually(t, func() bool {
		s, ok := f.rowStatus(opId)
		return ok && s.IsSuccess()
	}, 5*time.Second, 10*time.Millisecond)

	row := f.page.Snapshot()[0]
	assert.Contains(t, row.Log, "Connection successful")
	assert.Contains(t, row.Log, "Upgrade completed successfully")
	assert.Equal(t, 100, row.Bar.Percent)
	assert.Equal(t, "ap-01", row.DeviceName)
	assert.Equal(t, reconcile.CancelHidden, row.Cancel)
}

func TestControllerBatchAggregate(t *testing.T) {
	f := newTestFeed(t)

	f.sim.StartOperation("dev-1", "ap-01", "img", "batch-1", simulator.DefaultScript(time.Millisecond))
	f.sim.StartOperation("dev-2", "ap-02", "img", "batch-1", simulator.DefaultScript(time.Millisecond))
	cancel := f.run(t, PageBatch, "batch-1")
	defer cancel()

	require.Eventually(t, func() bool {
		status, _, percent, ok := f.page.Aggregate()
		return ok && status.IsSuccess() && percent == 100
	}, 5*time.Second, 10*time.Millisecond)

	assert.Len(t, f.page.Snapshot(), 2)
}

func TestControllerCancelFlow(t *testing.T) {
	f := newTestFeed(t)

	// Slow script so the cancel lands before the point of no return
	opId := f.sim.StartOperation("dev-1", "ap-01", "img", "", simulator.DefaultScript(200*time.Millisecond))
	cancel := f.run(t, PageOperation, opId)
	defer cancel()

	require.Eventually(t, func() bool {
		_, ok := f.rowStatus(opId)
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	api := NewApi(f.ts.URL, "", "")
	require.Nil(t, api.Cancel(context.Background(), opId))

	require.Eventually(t, func() bool {
		s, _ := f.rowStatus(opId)
		return s == upgrade.StatusCancelled
	}, 10*time.Second, 10*time.Millisecond)
}

func TestApiCancelUnknownOperation(t *testing.T) {
	f := newTestFeed(t)

	api := NewApi(f.ts.URL, "", "")
	err := api.Cancel(context.Background(), "no-such-op")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "no-such-op")
}

func TestApiOperationsList(t *testing.T) {
	f := newTestFeed(t)

	f.sim.StartOperation("dev-1", "ap-01", "img", "", simulator.DefaultScript(time.Millisecond))
	f.sim.StartOperation("dev-2", "ap-02", "img", "", simulator.DefaultScript(time.Millisecond))

	api := NewApi(f.ts.URL, "", "")
	ops, err := api.Operations(context.Background(), "")
	require.Nil(t, err)
	assert.Len(t, ops, 2)

	ops, err = api.Operations(context.Background(), "dev-1")
	require.Nil(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "dev-1", ops[0].DeviceId)
}
