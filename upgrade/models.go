// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package upgrade

// Operation is one firmware-upgrade attempt on one device. Id is the
// primary key for every client-side lookup; status transitions are
// monotonic toward a terminal state server-side, the client only renders
// what it is told.
type Operation struct {
	Id       string `json:"id"`
	Status   Status `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Log      string `json:"log,omitempty"`
	Modified string `json:"modified,omitempty"`

	// Display-only attributes carried on new-operation notifications so
	// batch views can synthesize rows for operations they have not seen.
	DeviceName string `json:"device_name,omitempty"`
	DeviceId   string `json:"device_id,omitempty"`
	ImageName  string `json:"image_name,omitempty"`
}

// BatchAggregate is the server-derived roll-up over the operations of one
// batch. Completed counts every operation no longer in progress,
// regardless of outcome.
type BatchAggregate struct {
	Status    Status `json:"status"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// Percent computes the aggregate completion percentage. A successful
// batch always reads 100 even when the counts lag behind.
func (b BatchAggregate) Percent() int {
	if b.Status == StatusSuccess {
		return 100
	}
	if b.Total <= 0 {
		return 0
	}
	pct := b.Completed * 100 / b.Total
	if pct > 100 {
		pct = 100
	}
	return pct
}
