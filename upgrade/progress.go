// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package upgrade

// Canonical rendering constants. The upgrader frontend historically
// drifted between 0/5 for the floor and 60/65 for the cancel cutoff;
// these are the values applied uniformly here.
const (
	// ProgressFloor keeps a bar visible while an upgrade is underway:
	// supplied progress is clamped so it never renders below this.
	ProgressFloor = 5

	// CancelCutoff is the percentage at which cancellation stops being
	// offered. Once flashing has started interrupting it can brick the
	// device.
	CancelCutoff = 65
)

// Bar is the rendered state of one progress bar.
type Bar struct {
	Percent    int
	StyleClass string
	// ShowText controls the "NN%" label. Failures render a full bar with
	// no label: failure is binary, not partial.
	ShowText bool
	// CanCancel is true only for in-progress operations below CancelCutoff.
	CanCancel bool
}

// RenderProgress maps a status plus optional server-supplied progress to
// a fully-determined bar. progress==nil means the server sent none and
// the status decides alone; use RenderProgressWithLog when accumulated
// log content is available for a better in-progress estimate.
func RenderProgress(status Status, progress *int) Bar {
	return RenderProgressWithLog(status, progress, "")
}

// RenderProgressWithLog is RenderProgress with a log-derived fallback:
// when no numeric progress is supplied for an in-progress operation, the
// percentage is estimated from milestone markers found in the log.
func RenderProgressWithLog(status Status, progress *int, log string) Bar {
	switch {
	case status.IsSuccess():
		return Bar{Percent: 100, StyleClass: StatusSuccess.StyleClass(), ShowText: true}
	case status.IsFailure():
		return Bar{Percent: 100, StyleClass: status.StyleClass(), ShowText: false}
	case status.IsInProgress():
		pct := ProgressFloor
		if progress != nil {
			pct = clampProgress(*progress)
		} else if log != "" {
			pct = EstimateProgress(log)
			if pct < ProgressFloor {
				pct = ProgressFloor
			}
		}
		return Bar{
			Percent:    pct,
			StyleClass: StatusInProgress.StyleClass(),
			ShowText:   true,
			CanCancel:  pct < CancelCutoff,
		}
	default:
		// Unknown tokens get a neutral "just started" bar.
		pct := ProgressFloor
		if progress != nil {
			pct = clampProgress(*progress)
		}
		return Bar{Percent: pct, ShowText: true}
	}
}

func clampProgress(pct int) int {
	if pct < ProgressFloor {
		return ProgressFloor
	}
	if pct > 100 {
		return 100
	}
	return pct
}
