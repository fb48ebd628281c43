// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package upgrade

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Milestone ties a log marker to the completion percentage the upgrade
// has reached once that marker appears.
type Milestone struct {
	Marker  string `toml:"marker"`
	Percent int    `toml:"percent"`
}

// Default milestones follow the phases the openwrt upgrader logs while
// flashing a device.
var defaultMilestones = []Milestone{
	{"Connection successful", 10},
	{"Image checksum file found", 15},
	{"Image uploaded", 35},
	{"Upgrade operation in progress", 50},
	{"SSH connection closed", 60},
	{"Trying to reconnect", 75},
	{"Connected! Writing checksum", 90},
	{"Upgrade completed successfully", 100},
}

// The table is read on every estimate from the feed goroutine and only
// replaced at startup or from tests, but nothing enforces that, so
// reads and swaps are serialized.
var (
	milestonesMu sync.RWMutex
	milestones   = defaultMilestones
)

func currentMilestones() []Milestone {
	milestonesMu.RLock()
	defer milestonesMu.RUnlock()
	return milestones
}

// EstimateProgress derives a completion percentage from accumulated log
// content: the maximum percentage over all milestones whose marker
// appears in the log, 5 when the log has content but no marker matched,
// 0 for an empty log. Matching is case-insensitive.
func EstimateProgress(log string) int {
	if strings.TrimSpace(log) == "" {
		return 0
	}
	lowered := strings.ToLower(log)
	best := ProgressFloor
	for _, m := range currentMilestones() {
		if m.Percent > best && strings.Contains(lowered, strings.ToLower(m.Marker)) {
			best = m.Percent
		}
	}
	return best
}

type milestoneFile struct {
	Milestones []Milestone `toml:"milestone"`
}

// LoadMilestones replaces the milestone table from a TOML file of
// [[milestone]] entries. Deployments with custom upgraders log different
// phases and can re-map them without rebuilding.
func LoadMilestones(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read milestones file: %w", err)
	}
	var f milestoneFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unable to parse milestones file %s: %w", path, err)
	}
	if len(f.Milestones) == 0 {
		return fmt.Errorf("milestones file %s defines no [[milestone]] entries", path)
	}
	for i, m := range f.Milestones {
		if strings.TrimSpace(m.Marker) == "" {
			return fmt.Errorf("milestone %d has an empty marker", i)
		}
		if m.Percent < 0 || m.Percent > 100 {
			return fmt.Errorf("milestone %q percent %d out of range 0-100", m.Marker, m.Percent)
		}
	}
	milestonesMu.Lock()
	milestones = f.Milestones
	milestonesMu.Unlock()
	return nil
}

// ResetMilestones restores the built-in table.
func ResetMilestones() {
	milestonesMu.Lock()
	milestones = defaultMilestones
	milestonesMu.Unlock()
}
