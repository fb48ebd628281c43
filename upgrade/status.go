// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

// Package upgrade holds the firmware-upgrade domain vocabulary and the
// pure progress-bar rendering rules shared by every view.
package upgrade

import (
	"regexp"
	"strings"
)

// Status is a raw status token as sent by the upgrader backend. Two synonym
// sets exist: the internal vocabulary stored on operations and the display
// vocabulary used on rendered pages. Both map to the same semantic groups.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusAborted    Status = "aborted"
	StatusCancelled  Status = "cancelled"
	StatusInProgress Status = "in-progress"

	DisplayInProgress             Status = "in progress"
	DisplayCompletedSuccessfully  Status = "completed successfully"
	DisplayCompletedFailures      Status = "completed with some failures"
	DisplayCompletedCancellations Status = "completed with some cancellations"
)

type statusSet map[Status]struct{}

func newStatusSet(statuses ...Status) statusSet {
	s := make(statusSet, len(statuses))
	for _, st := range statuses {
		s[st] = struct{}{}
	}
	return s
}

func (s statusSet) has(st Status) bool {
	_, ok := s[st]
	return ok
}

var (
	validStatuses = newStatusSet(
		StatusSuccess, StatusFailed, StatusAborted, StatusCancelled,
		StatusInProgress, DisplayInProgress,
		DisplayCompletedSuccessfully, DisplayCompletedFailures,
		DisplayCompletedCancellations,
	)

	completedStatuses = newStatusSet(
		StatusSuccess, StatusFailed, StatusAborted, StatusCancelled,
		DisplayCompletedSuccessfully, DisplayCompletedFailures,
		DisplayCompletedCancellations,
	)

	inProgressStatuses = newStatusSet(StatusInProgress, DisplayInProgress)

	successStatuses = newStatusSet(StatusSuccess, DisplayCompletedSuccessfully)

	failureStatuses = newStatusSet(StatusFailed, StatusAborted, StatusCancelled)
)

// IsValid reports whether the token belongs to either vocabulary.
func (s Status) IsValid() bool { return validStatuses.has(s) }

// IsCompleted reports whether the operation reached a terminal state.
// Terminal operations stop accumulating log content client-side.
func (s Status) IsCompleted() bool { return completedStatuses.has(s) }

func (s Status) IsInProgress() bool { return inProgressStatuses.has(s) }

func (s Status) IsSuccess() bool { return successStatuses.has(s) }

func (s Status) IsFailure() bool { return failureStatuses.has(s) }

// IncludesProgress reports whether the token mentions progress at all,
// covering hyphenated and spaced spellings alike.
func (s Status) IncludesProgress() bool {
	return strings.Contains(string(s), "progress")
}

// Display returns the display-vocabulary spelling for an internal token.
// Tokens without a distinct display form render as themselves.
func (s Status) Display() string {
	switch s {
	case StatusSuccess:
		return string(DisplayCompletedSuccessfully)
	case StatusInProgress:
		return string(DisplayInProgress)
	default:
		return string(s)
	}
}

// StyleClass derives a stylesheet-safe class token from the status by
// replacing whitespace runs with hyphens.
func (s Status) StyleClass() string {
	return strings.Join(strings.Fields(string(s)), "-")
}

var trailingPercentRe = regexp.MustCompile(`\d+%.*$`)

// ParseStatus maps a rendered status text back to its internal token.
// Trailing percentage decorations ("in progress 42%") are stripped first.
// Unrecognized tokens come back as-is with ok=false so callers can treat
// them as unknown.
func ParseStatus(text string) (Status, bool) {
	text = strings.TrimSpace(trailingPercentRe.ReplaceAllString(strings.TrimSpace(text), ""))
	s := Status(text)
	switch s {
	case DisplayInProgress:
		return StatusInProgress, true
	case DisplayCompletedSuccessfully:
		return StatusSuccess, true
	}
	if s.IsValid() {
		return s, true
	}
	return s, false
}
