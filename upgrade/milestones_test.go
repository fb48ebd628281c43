// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package upgrade

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateProgress(t *testing.T) {
	assert.Equal(t, 0, EstimateProgress(""))
	assert.Equal(t, 0, EstimateProgress("   \n  "))
	assert.Equal(t, ProgressFloor, EstimateProgress("nothing recognizable here"))
	assert.Equal(t, 10, EstimateProgress("Connection successful"))
	// Matching is case-insensitive
	assert.Equal(t, 10, EstimateProgress("connection SUCCESSFUL"))
	// The furthest milestone wins regardless of line order
	log := "Trying to reconnect\nConnection successful\nImage uploaded"
	assert.Equal(t, 75, EstimateProgress(log))
	assert.Equal(t, 100, EstimateProgress(log+"\nUpgrade completed successfully"))
}

func writeMilestones(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "milestones.toml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMilestones(t *testing.T) {
	defer ResetMilestones()

	path := writeMilestones(t, `
[[milestone]]
marker = "flashing partition"
percent = 40

[[milestone]]
marker = "rebooting"
percent = 95
`)
	require.Nil(t, LoadMilestones(path))

	assert.Equal(t, 40, EstimateProgress("flashing partition 2 of 3"))
	assert.Equal(t, 95, EstimateProgress("rebooting now"))
	// Built-in markers no longer apply once replaced
	assert.Equal(t, ProgressFloor, EstimateProgress("Connection successful"))

	ResetMilestones()
	assert.Equal(t, 10, EstimateProgress("Connection successful"))
}

func TestMilestonesConcurrentReload(t *testing.T) {
	defer ResetMilestones()

	path := writeMilestones(t, "[[milestone]]\nmarker = \"flashing\"\npercent = 40\n")

	// Reloads race with estimates from the feed goroutine; the race
	// detector flags any unguarded access to the table.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Nil(t, LoadMilestones(path))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = EstimateProgress("flashing partition")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, EstimateProgress("flashing partition"))
}

func TestLoadMilestonesValidation(t *testing.T) {
	defer ResetMilestones()

	err := LoadMilestones(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NotNil(t, err)

	err = LoadMilestones(writeMilestones(t, "not [valid toml"))
	assert.NotNil(t, err)

	err = LoadMilestones(writeMilestones(t, "# empty file"))
	assert.ErrorContains(t, err, "no [[milestone]] entries")

	err = LoadMilestones(writeMilestones(t, "[[milestone]]\nmarker = \"\"\npercent = 10\n"))
	assert.ErrorContains(t, err, "empty marker")

	err = LoadMilestones(writeMilestones(t, "[[milestone]]\nmarker = \"x\"\npercent = 140\n"))
	assert.ErrorContains(t, err, "out of range")
}
