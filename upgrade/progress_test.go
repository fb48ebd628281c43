// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestRenderProgressSuccess(t *testing.T) {
	bar := RenderProgress(StatusSuccess, nil)
	assert.Equal(t, 100, bar.Percent)
	assert.True(t, bar.ShowText)
	assert.False(t, bar.CanCancel)
	assert.Equal(t, "success", bar.StyleClass)

	// Progress on a terminal status is ignored
	bar = RenderProgress(DisplayCompletedSuccessfully, intp(10))
	assert.Equal(t, 100, bar.Percent)
}

func TestRenderProgressFailure(t *testing.T) {
	for _, s := range []Status{StatusFailed, StatusAborted, StatusCancelled} {
		bar := RenderProgress(s, intp(30))
		assert.Equal(t, 100, bar.Percent, "status %q", s)
		assert.False(t, bar.ShowText, "status %q", s)
		assert.False(t, bar.CanCancel, "status %q", s)
		assert.Equal(t, s.StyleClass(), bar.StyleClass, "status %q", s)
	}
}

func TestRenderProgressInProgress(t *testing.T) {
	bar := RenderProgress(StatusInProgress, intp(42))
	assert.Equal(t, 42, bar.Percent)
	assert.True(t, bar.ShowText)
	assert.True(t, bar.CanCancel)
	assert.Equal(t, "in-progress", bar.StyleClass)

	// Clamping
	assert.Equal(t, 100, RenderProgress(StatusInProgress, intp(150)).Percent)
	assert.Equal(t, ProgressFloor, RenderProgress(StatusInProgress, intp(-5)).Percent)
	assert.Equal(t, ProgressFloor, RenderProgress(StatusInProgress, intp(0)).Percent)

	// No progress supplied
	assert.Equal(t, ProgressFloor, RenderProgress(DisplayInProgress, nil).Percent)
}

func TestRenderProgressCancelCutoff(t *testing.T) {
	assert.True(t, RenderProgress(StatusInProgress, intp(CancelCutoff-1)).CanCancel)
	assert.False(t, RenderProgress(StatusInProgress, intp(CancelCutoff)).CanCancel)
	assert.False(t, RenderProgress(StatusInProgress, intp(99)).CanCancel)
}

func TestRenderProgressWithLogEstimate(t *testing.T) {
	log := "Connection successful, starting upgrade...\nImage uploaded"
	bar := RenderProgressWithLog(StatusInProgress, nil, log)
	assert.Equal(t, 35, bar.Percent)
	assert.True(t, bar.CanCancel)

	// Numeric progress wins over the log estimate
	bar = RenderProgressWithLog(StatusInProgress, intp(80), log)
	assert.Equal(t, 80, bar.Percent)
	assert.False(t, bar.CanCancel)

	// Log with no recognizable marker still floors the bar
	bar = RenderProgressWithLog(StatusInProgress, nil, "some chatter")
	assert.Equal(t, ProgressFloor, bar.Percent)
}

func TestRenderProgressUnknownStatus(t *testing.T) {
	bar := RenderProgress(Status("rebooting"), nil)
	assert.Equal(t, ProgressFloor, bar.Percent)
	assert.False(t, bar.CanCancel)
	assert.Empty(t, bar.StyleClass)
}
