// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package simulator

import (
	"time"

	"github.com/netwisp/fwmon/upgrade"
)

// Step is one scripted phase of a simulated upgrade. Progress below 0
// means the step carries no numeric progress, exercising the client's
// log-derived estimation.
type Step struct {
	Log      string
	Progress int
	Delay    time.Duration
}

// DefaultScript walks through the log lines an openwrt upgrade produces,
// ending in success.
func DefaultScript(stepDelay time.Duration) []Step {
	lines := []struct {
		log string
		pct int
	}{
		{"Connection successful, starting upgrade...", 10},
		{"Image checksum file found", 15},
		{"Image uploaded", 35},
		{"Upgrade operation in progress...", 50},
		{"SSH connection closed, will wait 180 seconds before attempting to reconnect...", 60},
		{"Trying to reconnect to device at 10.0.0.5 (attempt n.1)...", 75},
		{"Connected! Writing checksum file to /etc/upgrader/checksum", 90},
		{"Upgrade completed successfully.", 100},
	}
	steps := make([]Step, 0, len(lines))
	for _, l := range lines {
		steps = append(steps, Step{Log: l.log, Progress: l.pct, Delay: stepDelay})
	}
	return steps
}

// StartOperation creates an in-progress operation and plays the script
// against it on a background goroutine, publishing the same message
// sequence the real backend emits: a log delta plus a full snapshot per
// step, a status-only message on the terminal transition, and batch
// aggregates when the operation belongs to a batch.
func (s *Simulator) StartOperation(deviceId, deviceName, imageName, batchId string, script []Step) string {
	zero := 0
	so := &simOperation{
		op: upgrade.Operation{
			Id:         newOperationId(),
			Status:     upgrade.StatusInProgress,
			Progress:   &zero,
			DeviceName: deviceName,
			DeviceId:   deviceId,
			ImageName:  imageName,
			Modified:   time.Now().UTC().Format(time.RFC3339),
		},
		batchId: batchId,
	}
	s.mu.Lock()
	s.ops[so.op.Id] = so
	s.mu.Unlock()

	go s.play(so, script)
	return so.op.Id
}

func (s *Simulator) play(so *simOperation, script []Step) {
	channels := func() []string {
		keys := []string{
			channelKey(channelDevice, so.op.DeviceId),
			channelKey(channelOperation, so.op.Id),
		}
		if so.batchId != "" {
			keys = append(keys, channelKey(channelBatch, so.batchId))
		}
		return keys
	}()

	finish := func(status upgrade.Status) {
		s.mu.Lock()
		so.op.Status = status
		so.op.Modified = time.Now().UTC().Format(time.RFC3339)
		op := so.op
		var agg *upgrade.BatchAggregate
		if so.batchId != "" {
			a := s.aggregateLocked(so.batchId)
			agg = &a
		}
		s.mu.Unlock()

		s.publish(statusMsg(status), channels...)
		s.publish(operationUpdateMsg(op), channels...)
		if agg != nil {
			s.publish(batchStatusMsg(*agg), channelKey(channelBatch, so.batchId))
		}
	}

	for _, step := range script {
		time.Sleep(step.Delay)

		s.mu.Lock()
		if so.cancelled {
			s.mu.Unlock()
			finish(upgrade.StatusCancelled)
			return
		}
		if step.Log != "" {
			if so.op.Log != "" {
				so.op.Log += "\n"
			}
			so.op.Log += step.Log
		}
		if step.Progress >= 0 {
			pct := step.Progress
			so.op.Progress = &pct
		}
		so.op.Modified = time.Now().UTC().Format(time.RFC3339)
		op := so.op
		s.mu.Unlock()

		if step.Log != "" {
			s.publish(logMsg(step.Log, op.Status), channels...)
		}
		s.publish(operationUpdateMsg(op), channels...)
	}
	finish(upgrade.StatusSuccess)
}
