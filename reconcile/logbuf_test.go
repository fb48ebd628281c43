// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAccumulatorAppend(t *testing.T) {
	acc := NewLogAccumulator()

	assert.Equal(t, "a", acc.Append("op1", "a"))
	assert.Equal(t, "a\nb", acc.Append("op1", "b"))

	full, ok := acc.Get("op1")
	require.True(t, ok)
	assert.Equal(t, "a\nb", full)
	assert.Equal(t, 1, acc.Len())
}

func TestLogAccumulatorSeed(t *testing.T) {
	acc := NewLogAccumulator()

	acc.Seed("op1", "from page")
	full, ok := acc.Get("op1")
	require.True(t, ok)
	assert.Equal(t, "from page", full)

	// Seeding never clobbers accumulated content
	acc.Seed("op1", "truncated page text")
	full, _ = acc.Get("op1")
	assert.Equal(t, "from page", full)

	// Empty seeds are ignored
	acc.Seed("op2", "")
	acc.Seed("", "content")
	assert.Equal(t, 1, acc.Len())
}

func TestLogAccumulatorReplace(t *testing.T) {
	acc := NewLogAccumulator()

	acc.Append("op1", "a")
	acc.Append("op1", "b")
	assert.Equal(t, "full server log", acc.Replace("op1", "full server log"))

	full, _ := acc.Get("op1")
	assert.Equal(t, "full server log", full)
}

func TestLogAccumulatorEvict(t *testing.T) {
	acc := NewLogAccumulator()

	acc.Append("op1", "a")
	acc.Evict("op1")
	_, ok := acc.Get("op1")
	assert.False(t, ok)
	assert.Equal(t, 0, acc.Len())

	// A fragment after eviction re-seeds instead of merging with stale text
	assert.Equal(t, "b", acc.Append("op1", "b"))
}
